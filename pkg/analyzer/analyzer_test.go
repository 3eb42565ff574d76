// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later
package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/engineerr"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

// fakeProvider returns a fixed chat response, letting tests exercise the
// analyzer's prompt-building and response-repair logic without a network
// call or llm.MockProvider (whose canned "[mock]" text isn't valid JSON).
type fakeProvider struct {
	responseJSON string
}

func (f *fakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: f.responseJSON}, nil
}

func (f *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: f.responseJSON}}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Models(ctx context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func TestAnalyze_ParsesResponse(t *testing.T) {
	provider := &fakeProvider{responseJSON: `{
		"chunk_id": "chunk_0",
		"summary": "Handles user signup.",
		"data_model": "## User\n- id\n- email",
		"interfaces": null,
		"business_logic": "Validates email uniqueness.",
		"dependencies": "net/http",
		"configuration": null,
		"infrastructure": null,
		"non_functional": null
	}`}

	a := New(provider, "fake-model", nil)
	result, err := a.Analyze(context.Background(), analysis.CodeChunk{
		ChunkID:     "chunk_0",
		Description: "signup",
		Files:       []string{"signup.go"},
		Content:     "package signup",
	})
	require.NoError(t, err)
	assert.Equal(t, "chunk_0", result.ChunkID)
	assert.Equal(t, "Handles user signup.", result.Summary)
	require.NotNil(t, result.DataModel)
	assert.Contains(t, *result.DataModel, "User")
	assert.Nil(t, result.Interfaces)
}

func TestAnalyze_RejectsOversizedChunkContent(t *testing.T) {
	t.Setenv("ANALYZER_CHUNK_SOFT_LIMIT_BYTES", "10")

	provider := &fakeProvider{responseJSON: `{"chunk_id": "chunk_0", "summary": "unused"}`}
	a := New(provider, "fake-model", nil)

	_, err := a.Analyze(context.Background(), analysis.CodeChunk{
		ChunkID: "chunk_0",
		Content: "this content is well over ten bytes long",
	})

	var ee *engineerr.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, engineerr.KindContextTooLarge, ee.Kind)
}

func TestAnalyze_RepairsMismatchedChunkID(t *testing.T) {
	provider := &fakeProvider{responseJSON: `{"chunk_id": "wrong_id", "summary": "does things"}`}

	a := New(provider, "fake-model", nil)
	result, err := a.Analyze(context.Background(), analysis.CodeChunk{ChunkID: "chunk_7"})
	require.NoError(t, err)
	assert.Equal(t, "chunk_7", result.ChunkID)
}

func TestContentDigest_BoundsLength(t *testing.T) {
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}
	digest := contentDigest(string(long))
	assert.Less(t, len(digest), 600)
	assert.Contains(t, digest, "10000 bytes total")
}
