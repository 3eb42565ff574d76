// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package tokencount centralizes token counting behind one encoding so that
// every budget comparison in the pipeline (chunker structure limit, chunker
// prompt threshold, analyzer forensic threshold) measures tokens the same
// way.
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
)

// encoding lazily initializes the cl100k_base encoding exactly once for the
// process lifetime.
func encoding() (*tiktoken.Tiktoken, error) {
	once.Do(func() {
		enc, initErr = tiktoken.GetEncoding("cl100k_base")
	})
	return enc, initErr
}

// Count returns the number of cl100k_base tokens in s. If the encoder fails
// to initialize (should not happen with the bundled encoding data), it
// falls back to a conservative byte/4 estimate rather than panicking — the
// pipeline degrades to an approximation instead of failing outright.
func Count(s string) int {
	e, err := encoding()
	if err != nil || e == nil {
		return len(s) / 4
	}
	return len(e.Encode(s, nil, nil))
}

// Estimate applies a cheap token heuristic used by the chunker's planning
// prompt: roughly twice the path length plus the length of any
// signature/comment text supplied by the caller. This avoids invoking the
// tokenizer per candidate file, which would be too slow for large repos.
func Estimate(pathLen int, extra ...string) int {
	total := pathLen * 2
	for _, s := range extra {
		total += len(s)
	}
	return total
}
