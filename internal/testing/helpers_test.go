// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

func TestNewScriptedProvider_CyclesThroughResponses(t *testing.T) {
	provider := NewScriptedProvider("first", "second")

	resp1, err := provider.Chat(context.Background(), llm.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp1.Message.Content)

	resp2, err := provider.Chat(context.Background(), llm.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp2.Message.Content)

	resp3, err := provider.Chat(context.Background(), llm.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp3.Message.Content, "should cycle back to the start")
}

func TestNewScriptedProvider_DefaultsToEmptyResponse(t *testing.T) {
	provider := NewScriptedProvider()

	resp, err := provider.Chat(context.Background(), llm.ChatRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Message.Content)
}

func TestNewFailingProvider_AlwaysFails(t *testing.T) {
	sentinel := errors.New("provider unavailable")
	provider := NewFailingProvider(sentinel)

	_, err := provider.Chat(context.Background(), llm.ChatRequest{})
	assert.ErrorIs(t, err, sentinel)
}

func TestNewTempStore_IsEmptyAndIsolatedPerTest(t *testing.T) {
	store := NewTempStore(t)

	_, _, found, err := store.Latest(context.Background(), "any-thread")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSampleCodeChunk_HasStableID(t *testing.T) {
	chunk := SampleCodeChunk("chunk_1")
	assert.Equal(t, "chunk_1", chunk.ChunkID)
	assert.NotEmpty(t, chunk.Content)
	assert.Contains(t, chunk.Files, "main.go")
}

func TestSampleAnalysisChunk_PopulatesEveryTopic(t *testing.T) {
	chunk := SampleAnalysisChunk("chunk_1")

	require.NotNil(t, chunk.DataModel)
	require.NotNil(t, chunk.Interfaces)
	require.NotNil(t, chunk.BusinessLogic)
	require.NotNil(t, chunk.Dependencies)
	require.NotNil(t, chunk.Configuration)
	require.NotNil(t, chunk.Infrastructure)
	require.NotNil(t, chunk.NonFunctional)
}

func TestSampleAnalysisState_BuildsMatchingChunkPairs(t *testing.T) {
	state := SampleAnalysisState("https://example.com/repo.git", 3)

	require.Len(t, state.IngestedRepoChunks, 3)
	require.Len(t, state.AnalyzedCodeChunks, 3)
	assert.Equal(t, state.IngestedRepoChunks[0].ChunkID, state.AnalyzedCodeChunks[0].ChunkID)
	assert.Equal(t, []string{"go"}, state.LanguagesUsed)
}
