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
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
)

// MatchGlob reports whether relPath (forward-slash separated, relative to
// a repository root) matches pattern. Supports *, **, ?, and [...]
// character classes.
func MatchGlob(relPath, pattern string) bool {
	return matchesGlob(relPath, pattern)
}

// ExpandGlobs expands each entry in patterns (a repo-relative path, which
// may contain glob wildcards) into the sorted, deduplicated list of
// matching repo-relative file paths.
//
// filepath.Glob cannot be used here: its "*"/"**" never cross a path
// separator, so a pattern like "**/*.py" only matches one directory level
// deep. Instead this walks the repository tree once, applying the same
// exclusion rules LoadRepository does, and selects every remaining file
// whose path satisfies MatchGlob against the pattern. Patterns that match
// nothing are logged and otherwise skipped, matching the chunker's
// tolerant behavior: an unmatched pattern is a warning, not a failure.
func ExpandGlobs(repoRoot string, patterns []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if len(patterns) == 0 {
		return nil
	}

	em := NewExclusionManager(repoRoot, DefaultExcludePatterns())

	var candidates []string
	err := filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == repoRoot {
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if em.ShouldExclude(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		logger.Warn("ingestion.glob.walk_failed", "root", repoRoot, "err", err)
		return nil
	}

	seen := make(map[string]bool)
	var expanded []string

	for _, pattern := range patterns {
		matchedAny := false
		for _, rel := range candidates {
			if !MatchGlob(rel, pattern) {
				continue
			}
			matchedAny = true
			if !seen[rel] {
				seen[rel] = true
				expanded = append(expanded, rel)
			}
		}
		if !matchedAny {
			logger.Warn("ingestion.glob.no_match", "pattern", pattern)
		}
	}

	sort.Strings(expanded)
	return expanded
}
