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
	"regexp"
	"strings"
)

// simplifiedLanguage gives the regex-based fallback extractor one import
// pattern and a set of (pattern, kind) declaration patterns for a language
// it recognizes by name (see simplifiedLanguages). Scala has no smacker
// grammar, so this is its only extraction path; other unrecognized languages
// fall through to comment-only extraction via genericLineCommentPrefixes (imports/declarations are left
// empty rather than guessed at).
type simplifiedLanguage struct {
	importPattern *regexp.Regexp
	declPatterns  []declPattern
	lineComment   string
	blockComment  [2]string
}

type declPattern struct {
	re   *regexp.Regexp
	kind string
}

var simplifiedLanguages = map[string]simplifiedLanguage{
	"scala": {
		importPattern: regexp.MustCompile(`(?m)^\s*import\s+([^\n;]+)`),
		declPatterns: []declPattern{
			{regexp.MustCompile(`(?m)^\s*(?:case\s+)?class\s+(\w+)`), "class"},
			{regexp.MustCompile(`(?m)^\s*object\s+(\w+)`), "class"},
			{regexp.MustCompile(`(?m)^\s*trait\s+(\w+)`), "class"},
			{regexp.MustCompile(`(?m)^\s*def\s+(\w+)`), "function"},
		},
		lineComment:  "//",
		blockComment: [2]string{"/*", "*/"},
	},
}

// genericLineCommentPrefixes covers languages with no dedicated
// simplifiedLanguage entry: line comments are still extracted so that
// every source file contributes something to the chunker's prompts, even
// without declaration-level structure.
var genericLineCommentPrefixes = []string{"//", "#"}

// extractSimplified fills record's Functions, Classes, Imports, and
// Comments using regex matching rather than an AST, for languages with no
// tree-sitter grammar wired in (§4.2).
func extractSimplified(language string, content []byte, record *StructuralRecord) {
	text := string(content)

	cfg, ok := simplifiedLanguages[language]
	if !ok {
		record.Comments = genericComments(text)
		return
	}

	if m := cfg.importPattern.FindAllStringSubmatch(text, -1); m != nil {
		for _, match := range m {
			record.Imports = append(record.Imports, strings.TrimSpace(match[1]))
		}
	}

	for _, dp := range cfg.declPatterns {
		for _, match := range dp.re.FindAllStringSubmatchIndex(text, -1) {
			name := text[match[2]:match[3]]
			startLine := lineNumberAt(text, match[0])
			decl := Declaration{
				Name:      name,
				Kind:      dp.kind,
				Signature: strings.TrimSpace(lineAt(text, startLine)),
				StartLine: startLine,
				EndLine:   startLine,
			}
			if dp.kind == "function" {
				record.Functions = append(record.Functions, decl)
			} else {
				record.Classes = append(record.Classes, decl)
			}
		}
	}

	record.Comments = simplifiedComments(text, cfg.lineComment, cfg.blockComment)
}

func genericComments(text string) []Comment {
	var comments []Comment
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range genericLineCommentPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				comments = append(comments, Comment{Text: trimmed, StartLine: i + 1, Kind: "line"})
				break
			}
		}
	}
	return comments
}

func simplifiedComments(text, lineComment string, blockComment [2]string) []Comment {
	var comments []Comment
	lines := strings.Split(text, "\n")
	inBlock := false
	blockStart := 0
	var blockLines []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			blockLines = append(blockLines, line)
			if strings.Contains(line, blockComment[1]) {
				comments = append(comments, Comment{
					Text:      strings.Join(blockLines, "\n"),
					StartLine: blockStart + 1,
					Kind:      "block",
				})
				inBlock = false
				blockLines = nil
			}
		case strings.HasPrefix(trimmed, blockComment[0]):
			if strings.Contains(trimmed, blockComment[1]) {
				comments = append(comments, Comment{Text: trimmed, StartLine: i + 1, Kind: "block"})
				break
			}
			inBlock = true
			blockStart = i
			blockLines = []string{line}
		case strings.HasPrefix(trimmed, lineComment):
			comments = append(comments, Comment{Text: trimmed, StartLine: i + 1, Kind: "line"})
		}
	}
	return comments
}

func lineNumberAt(text string, byteOffset int) int {
	return strings.Count(text[:byteOffset], "\n") + 1
}

func lineAt(text string, lineNo int) string {
	lines := strings.Split(text, "\n")
	if lineNo-1 < len(lines) {
		return lines[lineNo-1]
	}
	return ""
}
