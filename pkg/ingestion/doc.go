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

// Package ingestion acquires a repository (C1) and structurally extracts
// its source files (C2).
//
// RepoLoader clones a remote git URL (shallow, with branch fallback) or
// reads an already-checked-out local path, applying the fixed exclusion
// rules plus any repository .gitignore. StructuralExtractor then walks the
// loaded files through a per-language parser — tree-sitter grammars where
// available, a regex fallback otherwise — producing one StructuralRecord
// per file.
//
// Example:
//
//	loader := ingestion.NewRepoLoader(logger)
//	defer loader.Close()
//	result, err := loader.LoadRepository(
//	    ingestion.RepoSource{Type: "git_url", Value: "https://github.com/example/repo.git"},
//	    nil, 1<<20,
//	)
package ingestion
