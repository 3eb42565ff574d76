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

// Package testing provides test helpers shared across the pipeline's
// package tests: a scripted llm.Provider that answers Chat calls from a
// fixed queue of responses, a temp-directory checkpoint.Store, and
// constructors for the small CodeChunk/CodeAnalysisChunk fixtures most
// pipeline stage tests need.
//
// # Quick Start
//
//	func TestMyStage(t *testing.T) {
//	    provider := testing.NewScriptedProvider(`{"chunk_id": "chunk_1", "summary": "does a thing"}`)
//	    store := testing.NewTempStore(t)
//	    chunk := testing.SampleCodeChunk("chunk_1")
//	    // exercise the stage under test against provider/store/chunk
//	}
package testing
