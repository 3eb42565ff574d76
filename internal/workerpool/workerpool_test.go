// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProcessesEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64

	err := Run(context.Background(), 2, items, func(_ context.Context, n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(15), sum)
}

func TestRun_DefaultsSizeToNumCPUWhenUnspecified(t *testing.T) {
	items := []int{1, 2, 3}
	var count int64

	err := Run(context.Background(), 0, items, func(_ context.Context, _ int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRun_ReturnsFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	items := []int{1, 2, 3}

	err := Run(context.Background(), 1, items, func(_ context.Context, n int) error {
		if n == 2 {
			return sentinel
		}
		return nil
	})

	assert.ErrorIs(t, err, sentinel)
}

func TestRun_CancelsRemainingWorkOnError(t *testing.T) {
	sentinel := errors.New("boom")
	items := make([]int, 100)
	var started, canceled int64

	err := Run(context.Background(), 1, items, func(ctx context.Context, _ int) error {
		atomic.AddInt64(&started, 1)
		if atomic.LoadInt64(&started) == 1 {
			return sentinel
		}
		if ctx.Err() != nil {
			atomic.AddInt64(&canceled, 1)
		}
		return ctx.Err()
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, int64(99), atomic.LoadInt64(&canceled))
}
