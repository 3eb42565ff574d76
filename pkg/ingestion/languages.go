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
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"path/filepath"
	"strings"
)

// languageByExtension is the fixed extension-to-language table. Extensions
// not present here are treated as "no language" and excluded from
// LanguagesUsed but not from the repository walk itself.
var languageByExtension = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".cs":    "csharp",
	".scala": "scala",
	".rb":    "ruby",
	".php":   "php",
	".rs":    "rust",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".c":     "c",
	".h":     "c",
	".swift": "swift",
	".kt":    "kotlin",
}

// detectLanguageFromPath detects the programming language of a file from
// its extension.
func detectLanguageFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return languageByExtension[ext]
}

// languagesWithGrammars are the languages C2 can structurally parse with a
// go-tree-sitter grammar; every other detected language falls back to the
// simplified regex extractor.
var languagesWithGrammars = map[string]bool{
	"go":         true,
	"javascript": true,
	"typescript": true,
	"python":     true,
	"csharp":     true,
	"java":       true,
}
