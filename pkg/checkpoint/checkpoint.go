// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package checkpoint persists the workflow engine's progress so a crashed
// or restarted run can resume a thread instead of starting over. Every
// committed record is keyed by (thread_id, sequence); Latest returns the
// highest sequence committed for a thread.
package checkpoint

import (
	"context"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
)

// Store is the checkpoint backing contract. Implementations must make Put
// durable before returning (no partial/torn writes visible to a concurrent
// Latest call).
type Store interface {
	Put(ctx context.Context, threadID, stepName string, state analysis.AnalysisState) error
	Latest(ctx context.Context, threadID string) (stepName string, state analysis.AnalysisState, found bool, err error)
}
