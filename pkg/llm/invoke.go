// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/retry"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/tokencount"
)

// InvokeRequest is a single structured-output LLM call: a fixed system
// prompt and a caller-built user prompt, optionally validated against a
// JSON Schema.
type InvokeRequest struct {
	System      string
	User        string
	Model       string
	Schema      map[string]any // JSON Schema; nil skips validation
	MaxTokens   int
	Temperature float64
}

// InvokeResponse is the parsed, schema-validated result of an Invoke call.
type InvokeResponse struct {
	RawText      string
	JSON         map[string]any // nil if req.Schema was nil
	PromptTokens int
	OutputTokens int
}

// Invoke wraps Provider.Chat with the conventions every pipeline component
// calling the LLM shares: temperature and system/user messages supplied by
// the caller (never hardcoded here), retry with exponential backoff on
// transport/5xx failures (4xx and schema failures are fatal), tolerant
// single-fence stripping before parsing JSON, and token accounting that
// falls back to local estimation when the provider doesn't report usage.
func Invoke(ctx context.Context, p Provider, req InvokeRequest) (*InvokeResponse, error) {
	var chatResp *ChatResponse

	err := retry.Do(ctx, retry.Default, func(ctx context.Context) error {
		resp, err := p.Chat(ctx, ChatRequest{
			Messages: []Message{
				{Role: "system", Content: req.System},
				{Role: "user", Content: req.User},
			},
			Model:       req.Model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		if err != nil {
			return err
		}
		chatResp = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("llm invoke: %w", err)
	}

	promptTokens := chatResp.PromptTokens
	outputTokens := chatResp.OutputTokens
	if promptTokens == 0 {
		promptTokens = tokencount.Count(req.System + req.User)
	}
	if outputTokens == 0 {
		outputTokens = tokencount.Count(chatResp.Message.Content)
	}

	out := &InvokeResponse{
		RawText:      chatResp.Message.Content,
		PromptTokens: promptTokens,
		OutputTokens: outputTokens,
	}

	if req.Schema == nil {
		return out, nil
	}

	cleaned := stripFence(chatResp.Message.Content)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, retry.Stop(fmt.Errorf("llm invoke: response is not valid JSON: %w", err))
	}

	schemaLoader := gojsonschema.NewGoLoader(req.Schema)
	docLoader := gojsonschema.NewGoLoader(parsed)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("llm invoke: schema validation error: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return nil, retry.Stop(fmt.Errorf("llm invoke: response failed schema validation: %s", strings.Join(errs, "; ")))
	}

	out.JSON = parsed
	return out, nil
}

// stripFence removes a single surrounding markdown code fence
// (```json ... ``` or ``` ... ```) if present, tolerating models that wrap
// structured output in prose formatting despite being asked for raw JSON.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "json" || firstLine == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
