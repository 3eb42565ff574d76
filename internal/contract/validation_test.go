// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftLimitBytes_DefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, DefaultSoftLimitBytes, SoftLimitBytes())
}

func TestSoftLimitBytes_HonorsEnvOverride(t *testing.T) {
	t.Setenv("ANALYZER_CHUNK_SOFT_LIMIT_BYTES", "1024")
	assert.Equal(t, 1024, SoftLimitBytes())
}

func TestSoftLimitBytes_IgnoresInvalidOverride(t *testing.T) {
	t.Setenv("ANALYZER_CHUNK_SOFT_LIMIT_BYTES", "not-a-number")
	assert.Equal(t, DefaultSoftLimitBytes, SoftLimitBytes())
}

func TestValidateChunkContent_AcceptsContentUnderLimit(t *testing.T) {
	result := ValidateChunkContent("small chunk")
	assert.True(t, result.OK)
}

func TestValidateChunkContent_RejectsContentOverLimit(t *testing.T) {
	t.Setenv("ANALYZER_CHUNK_SOFT_LIMIT_BYTES", "10")
	result := ValidateChunkContent(strings.Repeat("x", 11))
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "exceeds soft limit")
}

func TestValidateThreadID_RejectsEmpty(t *testing.T) {
	result := ValidateThreadID("")
	assert.False(t, result.OK)
}

func TestValidateThreadID_RejectsOverlong(t *testing.T) {
	result := ValidateThreadID(strings.Repeat("a", ThreadIDMaxBytes+1))
	assert.False(t, result.OK)
}

func TestValidateThreadID_AcceptsNormalID(t *testing.T) {
	result := ValidateThreadID("thread-abc-123")
	assert.True(t, result.OK)
}
