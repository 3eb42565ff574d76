// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chunker groups a repository's files into feature-sized chunks by
// asking an LLM to plan the grouping from a simplified view of the code
// structure, then expands each chunk's file list (which may contain glob
// patterns) and concatenates file content.
package chunker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/tokencount"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/engineerr"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/ingestion"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

const (
	maxSimplifiedFiles = 300
	simplifiedTokenCap = 180000
	planningTokenLimit = 190000 // hard ceiling; above this even filtered structure can't fit
)

// Chunker plans and materializes code chunks for a loaded repository.
type Chunker struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// New builds a Chunker bound to the given LLM provider.
func New(provider llm.Provider, model string, logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{provider: provider, model: model, logger: logger}
}

// simplifiedFile mirrors the per-file entry shape sent to the planning
// prompt: names only, no full source.
type simplifiedFile struct {
	Functions []simplifiedDecl `json:"functions,omitempty"`
	Classes   []simplifiedDecl `json:"classes,omitempty"`
	Comments  []string         `json:"comments,omitempty"`
}

type simplifiedDecl struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Class string `json:"class,omitempty"`
}

// buildSimplifiedStructure reproduces create_simplified_structure: sorted
// paths, capped at maxSimplifiedFiles files or simplifiedTokenCap estimated
// tokens, optionally dropping comment text to shave size.
func buildSimplifiedStructure(records []*ingestion.StructuralRecord, filterComments bool, logger *slog.Logger) (map[string]simplifiedFile, int) {
	sorted := make([]*ingestion.StructuralRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	out := make(map[string]simplifiedFile)
	fileCount := 0
	estimatedTokens := 0

	for _, rec := range sorted {
		if fileCount >= maxSimplifiedFiles || estimatedTokens >= simplifiedTokenCap {
			logger.Info("chunker.simplify.limit_reached", "files", fileCount, "estimated_tokens", estimatedTokens)
			break
		}

		fileTokens := len(rec.Path) * 2
		for _, fn := range rec.Functions {
			fileTokens += len(fn.Name) + len(fn.Signature)
		}
		for _, cl := range rec.Classes {
			fileTokens += len(cl.Name) + len(cl.Signature)
		}
		var commentTexts []string
		if !filterComments {
			for _, c := range rec.Comments {
				fileTokens += len(c.Text)
			}
		}

		if estimatedTokens+fileTokens >= simplifiedTokenCap {
			logger.Info("chunker.simplify.token_limit_reached", "files", fileCount, "estimated_tokens", estimatedTokens)
			break
		}

		sf := simplifiedFile{}
		for _, fn := range rec.Functions {
			sf.Functions = append(sf.Functions, simplifiedDecl{Name: fn.Name, Type: fn.Kind})
		}
		for _, cl := range rec.Classes {
			sf.Classes = append(sf.Classes, simplifiedDecl{Name: cl.Name})
		}
		if !filterComments {
			for _, c := range rec.Comments {
				commentTexts = append(commentTexts, c.Text)
			}
			sf.Comments = commentTexts
		}

		out[rec.Path] = sf
		fileCount++
		estimatedTokens += fileTokens
	}

	return out, fileCount
}

const planningSystemPrompt = "You are a meticulous code organization expert who ensures complete coverage when analyzing codebases. Your specialty is identifying logical structures in code repositories and ensuring no files are overlooked. Always verify completeness before providing your analysis and return only valid JSON in your responses, with no additional text."

func buildPlanningPrompt(directoryStructure string, simplified map[string]simplifiedFile) (string, error) {
	// encoding/json sorts map[string]T keys alphabetically, matching the
	// original's sort_keys=True.
	body, err := json.MarshalIndent(simplified, "", "  ")
	if err != nil {
		return "", fmt.Errorf("chunker: marshal simplified structure: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Feature-Based Codebase Chunking for Requirements Analysis\n\n")
	b.WriteString("Analyze the codebase and chunk it according to product features and functionality. ")
	b.WriteString("The goal is to create logical, feature-based groups that represent complete product capabilities, regardless of the technical architecture.\n\n")
	b.WriteString("## Chunking Guidelines:\n\n")
	b.WriteString("1. Feature-First Approach: group all related files for a distinct product feature, including models, views, controllers, tests, and configuration.\n")
	b.WriteString("2. Complete Feature Representation: each chunk should contain data models, business logic, interface components, API endpoints, utilities, and tests for that feature.\n")
	b.WriteString("3. Cross-Cutting Concerns: create separate chunks for authentication, core infrastructure, database abstractions, shared UI, common utilities, and build/config systems.\n")
	b.WriteString("4. Naming Clarity: name each chunk for what it does from a user perspective.\n")
	b.WriteString("5. Include configuration files such as .env.example, .gitignore, docker-compose.yml.\n")
	b.WriteString("6. Completeness Check: every file in the directory structure must appear in at least one chunk.\n\n")
	b.WriteString("Directory Structure:\n")
	b.WriteString(directoryStructure)
	b.WriteString("\n\nCode Elements by File:\n")
	b.Write(body)
	b.WriteString("\n\nReturn the chunks in the following JSON format:\n\n")
	b.WriteString("```json\n{\n  \"chunks\": [\n    {\n      \"chunk_id\": \"unique_id\",\n      \"description\": \"Description of the feature/functionality/purpose\",\n      \"files\": [\"file_path1\", \"file_path2\"]\n    }\n  ]\n}\n```\n")
	return b.String(), nil
}

// planChunk is the raw shape of one element of the LLM's "chunks" array.
type planChunk struct {
	ChunkID     string   `json:"chunk_id"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
}

var planSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"chunks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"chunk_id":    map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"files": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []any{"chunk_id", "files"},
			},
		},
	},
	"required": []any{"chunks"},
}

// Plan produces the chunk boundaries for a repository: which feature each
// chunk represents and which files belong to it (patterns not yet
// expanded). It falls back to a comment-stripped structure when the
// planning prompt is too large, and fails hard if even that doesn't fit.
func (c *Chunker) Plan(ctx context.Context, directoryStructure string, records []*ingestion.StructuralRecord) ([]planChunk, error) {
	simplified, fileCount := buildSimplifiedStructure(records, false, c.logger)
	prompt, err := buildPlanningPrompt(directoryStructure, simplified)
	if err != nil {
		return nil, err
	}

	if tokencount.Count(prompt) > simplifiedTokenCap {
		c.logger.Warn("chunker.plan.structure_too_large_retrying_filtered", "files", fileCount)
		simplified, fileCount = buildSimplifiedStructure(records, true, c.logger)
		prompt, err = buildPlanningPrompt(directoryStructure, simplified)
		if err != nil {
			return nil, err
		}
	}

	if n := tokencount.Count(prompt); n > planningTokenLimit {
		return nil, engineerr.ContextTooLarge(
			fmt.Sprintf("chunker: planning prompt (%d tokens, %d files) exceeds model context window", n, fileCount),
			"planning prompt")
	}

	resp, err := llm.Invoke(ctx, c.provider, llm.InvokeRequest{
		System:      planningSystemPrompt,
		User:        prompt,
		Model:       c.model,
		Schema:      planSchema,
		MaxTokens:   8192,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("chunker: planning call failed: %w", err)
	}

	rawChunks, _ := resp.JSON["chunks"].([]any)
	chunks := make([]planChunk, 0, len(rawChunks))
	for _, raw := range rawChunks {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		pc := planChunk{
			ChunkID:     stringField(m, "chunk_id"),
			Description: stringField(m, "description"),
		}
		if rawFiles, ok := m["files"].([]any); ok {
			for _, f := range rawFiles {
				if s, ok := f.(string); ok {
					pc.Files = append(pc.Files, s)
				}
			}
		}
		chunks = append(chunks, pc)
	}

	c.logger.Info("chunker.plan.complete", "chunk_count", len(chunks))
	return chunks, nil
}

// Materialize expands each planned chunk's file patterns against the
// repository root and concatenates the referenced file content.
func (c *Chunker) Materialize(repoRoot string, chunks []planChunk) ([]analysis.CodeChunk, error) {
	out := make([]analysis.CodeChunk, 0, len(chunks))
	for i, pc := range chunks {
		chunkID := pc.ChunkID
		if chunkID == "" {
			chunkID = fmt.Sprintf("chunk_%d", i)
		}
		description := pc.Description
		if description == "" {
			description = fmt.Sprintf("Auto-generated chunk %d", i)
		}

		expanded := ingestion.ExpandGlobs(repoRoot, pc.Files, c.logger)

		var content strings.Builder
		for _, relPath := range expanded {
			data, err := os.ReadFile(filepath.Join(repoRoot, relPath))
			if err != nil {
				c.logger.Warn("chunker.materialize.read_failed", "file", relPath, "err", err)
				continue
			}
			content.WriteString(fmt.Sprintf("\n\n--- %s ---\n", relPath))
			content.Write(data)
		}

		c.logger.Debug("chunker.materialize.chunk", "chunk_id", chunkID, "files", len(expanded))
		out = append(out, analysis.CodeChunk{
			ChunkID:     chunkID,
			Description: description,
			Files:       expanded,
			Content:     content.String(),
		})
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
