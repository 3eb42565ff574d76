// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analyzer runs a single code chunk through the LLM and produces a
// per-topic functional analysis. Chunks are analyzed one at a time in the
// order they were produced by the chunker; see doc.go for why this stage
// does not fan out across chunks.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/contract"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/tokencount"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/engineerr"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

// forensicTokenThreshold is the input size above which the chunk's file
// list and a content digest are logged at WARN to help diagnose chunks
// that are close to blowing the model's context window.
const forensicTokenThreshold = 150000

const systemPrompt = "You are a specialized code analysis system that produces ONLY valid JSON output following the CodeAnalysisChunk schema. Your entire response must be parseable JSON with no surrounding text, markdown, explanations, or formatting. Never include anything outside the JSON structure. Always include all fields from the schema, using null for fields where no applicable content exists in the code chunk. Maintain this strict JSON-only format under all circumstances."

var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"chunk_id":       map[string]any{"type": "string"},
		"summary":        map[string]any{"type": "string"},
		"data_model":     map[string]any{"type": []any{"string", "null"}},
		"interfaces":     map[string]any{"type": []any{"string", "null"}},
		"business_logic": map[string]any{"type": []any{"string", "null"}},
		"dependencies":   map[string]any{"type": []any{"string", "null"}},
		"configuration":  map[string]any{"type": []any{"string", "null"}},
		"infrastructure": map[string]any{"type": []any{"string", "null"}},
		"non_functional": map[string]any{"type": []any{"string", "null"}},
	},
	"required": []any{"chunk_id", "summary"},
}

// Analyzer produces a functional analysis for a single code chunk.
type Analyzer struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// New builds an Analyzer bound to the given LLM provider.
func New(provider llm.Provider, model string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{provider: provider, model: model, logger: logger}
}

// Analyze sends one code chunk to the LLM and returns its structured
// analysis. The chunk_id in the model's response is repaired to match the
// input chunk if the model drifts.
func (a *Analyzer) Analyze(ctx context.Context, chunk analysis.CodeChunk) (*analysis.CodeAnalysisChunk, error) {
	a.logger.Info("analyzer.analyze.start", "chunk_id", chunk.ChunkID)

	if result := contract.ValidateChunkContent(chunk.Content); !result.OK {
		return nil, engineerr.ContextTooLarge(result.Message, chunk.ChunkID)
	}

	userPrompt, err := buildUserPrompt(chunk)
	if err != nil {
		return nil, fmt.Errorf("analyzer: build prompt for chunk %s: %w", chunk.ChunkID, err)
	}

	systemTokens := tokencount.Count(systemPrompt)
	userTokens := tokencount.Count(userPrompt)
	totalInputTokens := systemTokens + userTokens
	a.logger.Info("analyzer.analyze.input_tokens", "chunk_id", chunk.ChunkID,
		"system_tokens", systemTokens, "user_tokens", userTokens, "total_tokens", totalInputTokens)

	if totalInputTokens > forensicTokenThreshold {
		digest := contentDigest(chunk.Content)
		a.logger.Warn("analyzer.analyze.input_too_large", "chunk_id", chunk.ChunkID,
			"total_tokens", totalInputTokens, "files", chunk.Files, "content_digest", digest)
	}

	resp, err := llm.Invoke(ctx, a.provider, llm.InvokeRequest{
		System:      systemPrompt,
		User:        userPrompt,
		Model:       a.model,
		Schema:      responseSchema,
		MaxTokens:   8192,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: analysis call failed for chunk %s: %w", chunk.ChunkID, err)
	}

	result := fromJSON(resp.JSON)
	if result.ChunkID != chunk.ChunkID {
		a.logger.Warn("analyzer.analyze.chunk_id_mismatch", "expected", chunk.ChunkID, "got", result.ChunkID)
		result.ChunkID = chunk.ChunkID
	}

	outputTokens := tokencount.Count(resp.RawText)
	a.logger.Info("analyzer.analyze.complete", "chunk_id", chunk.ChunkID,
		"output_tokens", outputTokens, "total_tokens", totalInputTokens+outputTokens)

	return result, nil
}

func buildUserPrompt(chunk analysis.CodeChunk) (string, error) {
	chunkData := map[string]any{
		"chunk_id":    chunk.ChunkID,
		"description": chunk.Description,
		"files":       chunk.Files,
		"content":     chunk.Content,
	}
	encoded, err := json.MarshalIndent(chunkData, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Analyze the following code chunk, in the following json format.

%s

Your analysis must return ONLY a valid JSON object with these fields:

1. summary (required): Concise functional description of what this code does from a business perspective (3-5 sentences).

2. data_model (string): If applicable, include a Mermaid ERD diagram and a breakdown of each model's fields, types, and relationships. Set to null if no data models are present.

3. interfaces (string): If applicable, document method signatures, API endpoints, and interface contracts. Set to null if no interfaces are defined.

4. business_logic (string): If applicable, analyze algorithms, processing workflows, business rules, validations, and conditional logic. Set to null if no significant business logic exists.

5. dependencies (string): Always analyze internal and external dependencies and API calls. Set to null only if truly no dependencies exist.

6. configuration (string): If applicable, document configuration variables, environment variables, config files, and loading mechanisms. Set to null if no configuration exists.

7. infrastructure (string): If applicable, analyze deployment requirements, resource requirements, and scaling considerations. Set to null if no infrastructure elements exist.

8. non_functional (string): If applicable, document performance, security, reliability, error handling, logging, monitoring, maintainability, and compliance considerations. Set to null if no significant non-functional elements exist.

Include the chunk_id in your response JSON object. Your response must be a valid JSON object following EXACTLY this structure:

{
  "chunk_id": "%s",
  "summary": "string",
  "data_model": "string",
  "interfaces": "string",
  "business_logic": "string",
  "dependencies": "string",
  "configuration": "string",
  "infrastructure": "string",
  "non_functional": "string"
}

All string fields should contain detailed markdown-formatted text. For fields with no applicable content, use null instead of an empty string. Do NOT include any content outside this JSON structure.`, encoded, chunk.ChunkID), nil
}

func fromJSON(m map[string]any) *analysis.CodeAnalysisChunk {
	return &analysis.CodeAnalysisChunk{
		ChunkID:        stringField(m, "chunk_id"),
		Summary:        stringField(m, "summary"),
		DataModel:      nullableStringField(m, "data_model"),
		Interfaces:     nullableStringField(m, "interfaces"),
		BusinessLogic:  nullableStringField(m, "business_logic"),
		Dependencies:   nullableStringField(m, "dependencies"),
		Configuration:  nullableStringField(m, "configuration"),
		Infrastructure: nullableStringField(m, "infrastructure"),
		NonFunctional:  nullableStringField(m, "non_functional"),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func nullableStringField(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// contentDigest bounds the forensic log line to a fixed size instead of
// dumping the whole chunk content.
func contentDigest(content string) string {
	const maxDigestLen = 500
	if len(content) <= maxDigestLen {
		return content
	}
	return content[:maxDigestLen] + fmt.Sprintf("... (%d bytes total)", len(content))
}
