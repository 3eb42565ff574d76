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

// Package contract provides validation constants and utilities applied at
// the boundaries of the pipeline: a chunk's content size before it's
// handed to the analyzer, and a thread_id path parameter before it's used
// as a checkpoint store key.
//
// # Chunk Size Limits
//
//	result := contract.ValidateChunkContent(chunk.Content)
//	if !result.OK {
//	    return nil, engineerr.ContextTooLarge(result.Message, chunk.ChunkID)
//	}
//
// # Configuration via Environment
//
// The soft limit can be adjusted via the ANALYZER_CHUNK_SOFT_LIMIT_BYTES
// environment variable:
//
//	export ANALYZER_CHUNK_SOFT_LIMIT_BYTES=33554432  # 32 MiB
//
// If the environment variable is not set or invalid, the default limit of
// 64 MiB (DefaultSoftLimitBytes) is used.
package contract
