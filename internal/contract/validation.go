// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultSoftLimitBytes is the baseline soft limit on a single code
	// chunk's concatenated content, applied before the chunk is handed to
	// the analyzer.
	DefaultSoftLimitBytes = 64 << 20 // 64 MiB

	// ThreadIDMaxBytes is the maximum accepted length for a thread_id path
	// parameter.
	ThreadIDMaxBytes = 128
)

// SoftLimitBytes returns the effective soft limit for a chunk's content.
// Controlled via env ANALYZER_CHUNK_SOFT_LIMIT_BYTES; falls back to
// DefaultSoftLimitBytes.
func SoftLimitBytes() int {
	if v := os.Getenv("ANALYZER_CHUNK_SOFT_LIMIT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateChunkContent checks a materialized chunk's content against the
// soft size limit. This guards against a single feature chunk swallowing
// most of a large repository and blowing the model's context window long
// before tokencount gets a chance to measure it precisely.
func ValidateChunkContent(content string) *ValidationResult {
	if len(content) > SoftLimitBytes() {
		return &ValidationResult{
			OK:      false,
			Message: "chunk content exceeds soft limit",
		}
	}
	return &ValidationResult{OK: true}
}

// ValidateThreadID checks a thread_id path parameter's length, rejecting
// anything long enough to suggest it isn't a real identifier.
func ValidateThreadID(threadID string) *ValidationResult {
	if threadID == "" {
		return &ValidationResult{OK: false, Message: "thread_id is required"}
	}
	if len(threadID) > ThreadIDMaxBytes {
		return &ValidationResult{OK: false, Message: "thread_id exceeds maximum length"}
	}
	return &ValidationResult{OK: true}
}
