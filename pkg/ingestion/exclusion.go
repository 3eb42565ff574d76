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
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultExcludeFiles are exact basenames excluded regardless of directory.
var DefaultExcludeFiles = []string{
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"poetry.lock", "Pipfile.lock", "requirements.txt.sha256",
	"gradle-wrapper.jar", "maven-wrapper.jar",
	"packages.lock.json", "project.assets.json", "project.nuget.cache",
	"Podfile.lock", "Gemfile.lock",
	"yarn-error.log", "npm-debug.log",
}

// DefaultExcludeDirs are directory names excluded at any depth. Entries
// keep the trailing slash so they read the same as the upstream Python
// exclusion config they're grounded on.
var DefaultExcludeDirs = []string{
	".git/", "__pycache__/", "node_modules/", "venv/", ".venv/",
	"dist/", "build/", ".idea/", ".vscode/",
}

// DefaultExcludeWildcards are glob patterns for build artifacts.
var DefaultExcludeWildcards = []string{
	"*.pyc", "*.pyo", "*.pyd", "*.so", "*.dll", "*.exe",
	"*.out", "*.bin", "*.o", "*.a", "*.class",
}

// DefaultExcludePatterns is the combined always-excluded list. It is not
// merged with .gitignore: ExclusionManager compiles the repository's
// .gitignore separately and checks it alongside these patterns.
func DefaultExcludePatterns() []string {
	all := make([]string, 0, len(DefaultExcludeFiles)+len(DefaultExcludeDirs)+len(DefaultExcludeWildcards))
	all = append(all, DefaultExcludeFiles...)
	all = append(all, DefaultExcludeDirs...)
	all = append(all, DefaultExcludeWildcards...)
	return all
}

// ExclusionManager decides whether a repository-relative path should be
// skipped during the walk. It combines the fixed always-excluded lists,
// the hidden-path rule, and (if present) the repository's own .gitignore,
// parsed with github.com/sabhiram/go-gitignore rather than a hand-rolled
// matcher.
type ExclusionManager struct {
	patterns  []string
	gitignore *gitignore.GitIgnore
}

// NewExclusionManager builds an ExclusionManager for repoPath, loading
// repoPath/.gitignore if it exists.
func NewExclusionManager(repoPath string, basePatterns []string) *ExclusionManager {
	em := &ExclusionManager{patterns: basePatterns}

	gitignorePath := filepath.Join(repoPath, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		if gi, err := gitignore.CompileIgnoreFile(gitignorePath); err == nil {
			em.gitignore = gi
		}
	}
	return em
}

// ShouldExclude reports whether the repo-relative path (using forward
// slashes) should be excluded from analysis.
func (em *ExclusionManager) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	if em.gitignore != nil && em.gitignore.MatchesPath(relPath) {
		return true
	}

	if isHiddenPath(relPath) {
		return true
	}

	parts := strings.Split(relPath, "/")
	basename := parts[len(parts)-1]

	for _, pattern := range em.patterns {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			if matchesDirectoryComponent(parts, dirPattern) {
				return true
			}
			continue
		}
		if matchesGlob(relPath, pattern) || matchesGlobBasename(basename, pattern) {
			return true
		}
	}
	return false
}

// isHiddenPath reports whether any path component (other than "." or "..")
// starts with a dot.
func isHiddenPath(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// matchesDirectoryComponent reports whether any path component equals
// dirPattern.
func matchesDirectoryComponent(parts []string, dirPattern string) bool {
	for _, part := range parts {
		if part == dirPattern {
			return true
		}
	}
	return false
}

// matchesGlobBasename matches a wildcard pattern against just the
// basename, for patterns like "*.pyc" that should match regardless of
// directory.
func matchesGlobBasename(basename, pattern string) bool {
	ok, err := filepath.Match(pattern, basename)
	return err == nil && ok
}
