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
	"fmt"
	"sync"
	"testing"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

// NewScriptedProvider returns an llm.Provider whose Chat calls pop one
// response off responses in order, cycling back to the start once
// exhausted. Useful where a stage issues several LLM calls and each one
// needs a different canned reply.
//
// Example:
//
//	provider := testing.NewScriptedProvider(`{"summary": "does a thing"}`)
//	a := analyzer.New(provider, "test-model", discardLogger())
func NewScriptedProvider(responses ...string) *llm.MockProvider {
	if len(responses) == 0 {
		responses = []string{""}
	}
	var mu sync.Mutex
	next := 0

	return &llm.MockProvider{
		ChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			mu.Lock()
			text := responses[next%len(responses)]
			next++
			mu.Unlock()
			return &llm.ChatResponse{
				Message: llm.Message{Role: "assistant", Content: text},
				Model:   "scripted-model",
				Done:    true,
			}, nil
		},
	}
}

// NewFailingProvider returns an llm.Provider whose Chat call always fails
// with err, for exercising a stage's error-propagation path.
func NewFailingProvider(err error) *llm.MockProvider {
	return &llm.MockProvider{
		ChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, err
		},
	}
}

// NewTempStore builds a checkpoint.FileStore rooted in a t.TempDir, torn
// down automatically with the test.
func NewTempStore(t *testing.T) checkpoint.Store {
	t.Helper()
	store, err := checkpoint.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("testing.NewTempStore: %v", err)
	}
	return store
}

// SampleCodeChunk returns a minimal, valid CodeChunk for id, usable
// wherever a test needs a chunk to hand to the analyzer without caring
// about its content.
func SampleCodeChunk(id string) analysis.CodeChunk {
	return analysis.CodeChunk{
		ChunkID:     id,
		Description: fmt.Sprintf("chunk %s", id),
		Files:       []string{"main.go"},
		Content:     "package main\n\nfunc main() {}\n",
	}
}

// SampleAnalysisChunk returns a CodeAnalysisChunk for id with every topic
// field populated, so an aggregator test exercises all seven report
// sections without hand-building pointers at each call site.
func SampleAnalysisChunk(id string) analysis.CodeAnalysisChunk {
	str := func(s string) *string { return &s }
	return analysis.CodeAnalysisChunk{
		ChunkID:        id,
		Summary:        fmt.Sprintf("summary for %s", id),
		DataModel:      str("data model notes for " + id),
		Interfaces:     str("interface notes for " + id),
		BusinessLogic:  str("business logic notes for " + id),
		Dependencies:   str("dependency notes for " + id),
		Configuration:  str("configuration notes for " + id),
		Infrastructure: str("infrastructure notes for " + id),
		NonFunctional:  str("non-functional notes for " + id),
	}
}

// SampleAnalysisState returns an AnalysisState seeded with n sample chunks
// and their corresponding analyses, for tests that need a state past the
// chunking stage without running the pipeline up to that point.
func SampleAnalysisState(repoURL string, n int) analysis.AnalysisState {
	state := analysis.AnalysisState{
		RepoURL:       repoURL,
		FileStructure: "main.go\n",
		LanguagesUsed: []string{"go"},
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("chunk_%d", i+1)
		state.IngestedRepoChunks = append(state.IngestedRepoChunks, SampleCodeChunk(id))
		state.AnalyzedCodeChunks = append(state.AnalyzedCodeChunks, SampleAnalysisChunk(id))
	}
	return state
}
