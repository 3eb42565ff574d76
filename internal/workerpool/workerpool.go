// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package workerpool bounds CPU-bound fan-out (structural extraction across
// a repository's files) to runtime.NumCPU() goroutines so that parsing work
// never starves other threads' progress at their suspension points.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run dispatches fn(items[i]) for every index, bounded to Size (or
// runtime.NumCPU() if size <= 0) concurrent goroutines. It returns the
// first non-nil error encountered, after canceling the group's context so
// in-flight work can stop early.
func Run[T any](ctx context.Context, size int, items []T, fn func(context.Context, T) error) error {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if size < 1 {
		size = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(size)

	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
