// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package retry implements the exponential backoff helper shared by the
// repository acquirer's clone attempts and the LLM client's transport
// retries.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes an exponential backoff schedule.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// Default is 3 attempts, 1s base delay, doubling each attempt.
var Default = Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}

// Permanent wraps an error to signal that Do should stop retrying
// immediately, even if attempts remain.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Stop marks err as non-retryable.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

// Do runs fn up to p.MaxAttempts times, sleeping with exponential backoff
// between attempts. It returns immediately on success, on a Permanent
// error, or when ctx is canceled. The last attempt's error is returned
// unwrapped if every attempt is exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = Default.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = Default.BaseDelay
	}
	if p.Multiplier <= 0 {
		p.Multiplier = Default.Multiplier
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return lastErr
}
