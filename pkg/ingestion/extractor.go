// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package ingestion

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// Declaration is one function or class/type-level construct found in a
// source file.
type Declaration struct {
	Name       string
	Kind       string // "function" or "class"
	Signature  string
	StartLine  int
	EndLine    int
	DocComment string // adjacent doc comment text, if any
}

// Comment is one comment found in a source file, independent of whether it
// was associated with a declaration as a doc comment.
type Comment struct {
	Text      string
	StartLine int
	Kind      string // "line", "block", or "doc"
}

// StructuralRecord is the structural extraction result for a single file:
// its functions, classes, imports, and comments. This intentionally omits
// any call-graph information — the pipeline only needs declarations and
// commentary to build per-chunk analysis prompts, not cross-reference
// resolution.
type StructuralRecord struct {
	Path      string
	Language  string
	Functions []Declaration
	Classes   []Declaration
	Imports   []string
	Comments  []Comment
	Truncated bool
}

// StructuralExtractor parses files into StructuralRecords. Go, TypeScript,
// JavaScript, Python, C#, and Java use github.com/smacker/go-tree-sitter
// grammars; every other language (including Scala, which has no smacker
// grammar) uses a regex-based simplified extractor.
type StructuralExtractor struct {
	logger          *slog.Logger
	maxCodeTextSize int64
	truncatedCount  int64
}

// NewStructuralExtractor creates an extractor with no code-text size cap
// (SetMaxCodeTextSize enables truncation).
func NewStructuralExtractor(logger *slog.Logger) *StructuralExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuralExtractor{logger: logger}
}

// SetMaxCodeTextSize sets the maximum number of bytes read from a file
// before truncation. Zero (the default) disables truncation.
func (e *StructuralExtractor) SetMaxCodeTextSize(size int64) {
	e.maxCodeTextSize = size
}

// GetTruncatedCount returns how many files have been truncated so far.
func (e *StructuralExtractor) GetTruncatedCount() int {
	return int(atomic.LoadInt64(&e.truncatedCount))
}

// ResetTruncatedCount resets the truncation counter to zero.
func (e *StructuralExtractor) ResetTruncatedCount() {
	atomic.StoreInt64(&e.truncatedCount, 0)
}

// ExtractFile reads and structurally parses one file. Parse errors never
// fail the call: a syntax error yields a StructuralRecord with no
// functions or classes rather than stopping the repository-wide walk,
// matching the "OnError=ReturnEmpty" extraction state machine.
func (e *StructuralExtractor) ExtractFile(fi FileInfo) (*StructuralRecord, error) {
	content, err := os.ReadFile(fi.FullPath)
	if err != nil {
		return nil, err
	}

	truncated := false
	if e.maxCodeTextSize > 0 && int64(len(content)) > e.maxCodeTextSize {
		content = content[:e.maxCodeTextSize]
		truncated = true
		atomic.AddInt64(&e.truncatedCount, 1)
	}

	record := &StructuralRecord{
		Path:      fi.Path,
		Language:  fi.Language,
		Truncated: truncated,
	}

	if languagesWithGrammars[fi.Language] {
		if err := extractTreeSitter(fi.Language, content, record); err != nil {
			e.logger.Warn("extractor.treesitter.failed", "path", fi.Path, "language", fi.Language, "err", err)
			return record, nil
		}
		return record, nil
	}

	extractSimplified(fi.Language, content, record)
	return record, nil
}
