// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later
package aggregator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

type echoProvider struct{ text string }

func (e *echoProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: e.text}, nil
}

func (e *echoProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: e.text}}, nil
}

func (e *echoProvider) Name() string { return "echo" }

func (e *echoProvider) Models(ctx context.Context) ([]string, error) { return nil, nil }

func strPtr(s string) *string { return &s }

func TestRun_AllTopicsEmptyProducesSentinels(t *testing.T) {
	a := New(&echoProvider{text: "should never be called"}, "fake-model", nil)
	chunks := []analysis.CodeAnalysisChunk{{ChunkID: "c1", Summary: "nothing notable"}}

	sections, err := a.Run(context.Background(), "https://example.com/repo.git", []string{"go"}, chunks)
	require.NoError(t, err)

	assert.Equal(t, "No data model information was found in the analyzed code.", sections.DataModel)
	assert.Equal(t, "No non-functional information was found in the analyzed code.", sections.NonFunctional)
	assert.True(t, sections.Populated[analysis.TopicDataModel])
	assert.True(t, sections.Populated[analysis.TopicNonFunctional])
}

func TestRun_PopulatedTopicInvokesLLM(t *testing.T) {
	a := New(&echoProvider{text: "## Business Logic\n\nOrders are validated before checkout."}, "fake-model", nil)
	chunks := []analysis.CodeAnalysisChunk{
		{ChunkID: "c1", BusinessLogic: strPtr("Validates orders before checkout.")},
	}

	sections, err := a.Run(context.Background(), "https://example.com/repo.git", []string{"go"}, chunks)
	require.NoError(t, err)
	assert.Contains(t, sections.BusinessLogic, "Orders are validated")
	assert.True(t, sections.Populated[analysis.TopicBusinessLogic])
	assert.Equal(t, "No data model information was found in the analyzed code.", sections.DataModel)
}
