// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later
package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
)

func TestFileStore_LatestOnEmptyThread(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, found, err := store.Latest(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_PutThenLatest(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "thread-1", "acquire_repo", analysis.AnalysisState{RepoURL: "https://example.com/repo.git"}))
	require.NoError(t, store.Put(ctx, "thread-1", "extract_and_chunk", analysis.AnalysisState{
		RepoURL:       "https://example.com/repo.git",
		LanguagesUsed: []string{"go"},
	}))

	step, state, found, err := store.Latest(ctx, "thread-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "extract_and_chunk", step)
	assert.Equal(t, []string{"go"}, state.LanguagesUsed)
}

func TestFileStore_SeparatesThreads(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "thread-a", "acquire_repo", analysis.AnalysisState{RepoURL: "a"}))
	require.NoError(t, store.Put(ctx, "thread-b", "acquire_repo", analysis.AnalysisState{RepoURL: "b"}))

	_, stateA, _, err := store.Latest(ctx, "thread-a")
	require.NoError(t, err)
	assert.Equal(t, "a", stateA.RepoURL)

	_, stateB, _, err := store.Latest(ctx, "thread-b")
	require.NoError(t, err)
	assert.Equal(t, "b", stateB.RepoURL)
}
