// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package workflow

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// echoProvider answers every Chat call with the same raw text, which is
// enough to exercise aggregator and product-requirements nodes without a
// JSON schema attached.
type echoProvider struct{ text string }

func (p echoProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: p.text, Done: true}, nil
}

func (p echoProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: p.text}, Done: true}, nil
}

func (p echoProvider) Name() string { return "echo" }

func (p echoProvider) Models(ctx context.Context) ([]string, error) { return []string{"echo-model"}, nil }

// TestRun_ResumesFromCheckpoint seeds a checkpoint at analyze_chunks so Run
// skips acquire_repo and extract_and_chunk entirely (the nodes that would
// otherwise require a real git clone) and drives the remaining report,
// consolidate, and product_requirements nodes to completion.
func TestRun_ResumesFromCheckpoint(t *testing.T) {
	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)

	fragment := "a fragment"
	seeded := analysis.AnalysisState{
		RepoURL:       "https://example.com/repo.git",
		FileStructure: "repo/\n  main.go\n",
		LanguagesUsed: []string{"go"},
		AnalyzedCodeChunks: []analysis.CodeAnalysisChunk{
			{ChunkID: "chunk_1", Summary: "does a thing", DataModel: &fragment, NonFunctional: &fragment},
		},
	}
	require.NoError(t, store.Put(context.Background(), "thread-1", string(NodeAnalyzeChunks), seeded))

	engine := New(store, echoProvider{text: "report body"}, "test-model", 0, discardLogger())

	state, err := engine.Run(context.Background(), "thread-1", seeded.RepoURL)
	require.NoError(t, err)

	assert.Equal(t, "report body", state.ReportSections.DataModel)
	assert.Equal(t, "report body", state.ReportSections.NonFunctional)
	assert.True(t, state.ReportSections.Populated[analysis.TopicDataModel])
	assert.NotEmpty(t, state.ConsolidatedReport)
	assert.Contains(t, state.ProductRequirements, "# Product Requirements Document")

	step, _, found, err := store.Latest(context.Background(), "thread-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, string(NodeEnd), step)
}

// TestRun_SkipsCompletedNodesOnRerun confirms that calling Run a second
// time against an already-finished thread is a cheap no-op: every node's
// done predicate is already true, so no new checkpoint is written besides
// the final "end" marker.
func TestRun_SkipsCompletedNodesOnRerun(t *testing.T) {
	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)

	finished := analysis.AnalysisState{
		RepoURL:             "https://example.com/repo.git",
		FileStructure:       "repo/\n  main.go\n",
		LanguagesUsed:       []string{"go"},
		AnalyzedCodeChunks:  []analysis.CodeAnalysisChunk{{ChunkID: "chunk_1"}},
		ConsolidatedReport:  "# Code Analysis Report\n",
		ProductRequirements: "# Product Requirements Document\n\ndone",
	}
	finished.ReportSections.Set(analysis.TopicDataModel, "x")
	finished.ReportSections.Set(analysis.TopicInterfaces, "x")
	finished.ReportSections.Set(analysis.TopicBusinessLogic, "x")
	finished.ReportSections.Set(analysis.TopicDependencies, "x")
	finished.ReportSections.Set(analysis.TopicConfiguration, "x")
	finished.ReportSections.Set(analysis.TopicInfrastructure, "x")
	finished.ReportSections.Set(analysis.TopicNonFunctional, "x")

	require.NoError(t, store.Put(context.Background(), "thread-2", string(NodeEnd), finished))

	engine := New(store, echoProvider{text: "should not be called"}, "test-model", 0, discardLogger())

	state, err := engine.Run(context.Background(), "thread-2", finished.RepoURL)
	require.NoError(t, err)
	assert.Equal(t, finished.ProductRequirements, state.ProductRequirements)
	assert.Equal(t, "x", state.ReportSections.DataModel)
}

func TestNodeIndex_FindsEveryDeclaredNode(t *testing.T) {
	for _, id := range nodeOrder {
		assert.GreaterOrEqual(t, nodeIndex(id), 0)
	}
	assert.Equal(t, -1, nodeIndex(NodeID("not_a_real_node")))
}
