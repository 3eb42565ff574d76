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
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GenerateFileStructure renders a directory tree of repoPath using the
// same glyphs and ordering as the reference implementation: directories
// sorted and listed before files at each level, "├── " for all but the
// last entry, "└── " for the last, directories suffixed with "/".
func GenerateFileStructure(repoPath string) string {
	var output []string
	addDirectoryContents(repoPath, "", &output)
	return strings.Join(output, "\n")
}

func addDirectoryContents(path, indent string, output *[]string) {
	dirs, files := directoryContents(path)
	sort.Strings(dirs)
	sort.Strings(files)

	addSubdirectories(path, dirs, files, indent, output)
	addFiles(files, indent, output)
}

func directoryContents(path string) (dirs, files []string) {
	entries, err := os.ReadDir(path)
	if err != nil {
		// Matches the reference implementation's permission-error
		// tolerance: an unreadable directory simply contributes nothing.
		return nil, nil
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	return dirs, files
}

func addSubdirectories(path string, dirs, files []string, indent string, output *[]string) {
	const prefix = "│   "
	for i, name := range dirs {
		isLast := i == len(dirs)-1 && len(files) == 0
		marker := "├── "
		if isLast {
			marker = "└── "
		}
		*output = append(*output, indent+marker+name+"/")

		newIndent := indent + prefix
		if isLast {
			newIndent = indent + "    "
		}
		addDirectoryContents(filepath.Join(path, name), newIndent, output)
	}
}

func addFiles(files []string, indent string, output *[]string) {
	for i, name := range files {
		marker := "├── "
		if i == len(files)-1 {
			marker = "└── "
		}
		*output = append(*output, indent+marker+name)
	}
}

// DetectLanguages walks repoPath and returns the set of languages detected
// from file extensions, sorted for deterministic output.
func DetectLanguages(repoPath string) []string {
	seen := make(map[string]bool)

	_ = filepath.WalkDir(repoPath, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if lang := detectLanguageFromPath(p); lang != "" {
			seen[lang] = true
		}
		return nil
	})

	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
