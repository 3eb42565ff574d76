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

// Package httpapi exposes the engine over HTTP: one route to start a run,
// three to read back whatever the latest checkpoint holds, and a /metrics
// route for Prometheus scraping. It is illustrative wiring of an
// out-of-scope collaborator (pkg/workflow.Engine, pkg/checkpoint.Store),
// kept deliberately thin — every handler does nothing but decode,
// delegate, and encode.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/contract"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/output"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/engineerr"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/workflow"
)

// API wires pkg/workflow.Engine and pkg/checkpoint.Store behind the
// pipeline's HTTP routes.
type API struct {
	engine *workflow.Engine
	store  checkpoint.Store
	logger *slog.Logger
}

// New builds an API. engine runs each submitted thread on its own
// goroutine; store answers every read.
func New(engine *workflow.Engine, store checkpoint.Store, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{engine: engine, store: store, logger: logger}
}

// Router builds the chi mux: middleware and routes are set up here, and each
// route is bound directly to one of the handler methods below.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1/code-analysis", func(r chi.Router) {
		r.Post("/", a.startAnalysis)
		r.Get("/{threadID}", a.getState)
		r.Get("/{threadID}/consolidated-report", a.getConsolidatedReport)
		r.Get("/{threadID}/product-requirements-report", a.getProductRequirements)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

type startRequest struct {
	RepoURL string `json:"repo_url"`
}

type startResponse struct {
	ThreadID string `json:"thread_id"`
}

// startAnalysis schedules the workflow on a background goroutine and
// returns immediately; the caller polls getState for progress.
func (a *API) startAnalysis(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, engineerr.InvalidInput("malformed request body", err.Error(), err))
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		writeError(w, engineerr.InvalidInput("repo_url is required", "request body omitted repo_url", nil))
		return
	}

	threadID := uuid.New().String()

	go func() {
		ctx := context.Background()
		if _, err := a.engine.Run(ctx, threadID, req.RepoURL); err != nil {
			a.logger.Error("httpapi.run.failed", "thread_id", threadID, "err", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = output.JSONCompactTo(w, startResponse{ThreadID: threadID})
}

// getState returns the latest committed AnalysisState, whatever stage the
// pipeline has reached — clients infer progress from which fields are
// populated, per the documented "no dedicated status field" contract.
func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadState(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = output.JSONCompactTo(w, state)
}

// getConsolidatedReport returns the markdown consolidated report for
// threadID, or 404 if the thread itself doesn't exist. A thread that
// exists but hasn't reached the consolidate node yet returns 200 with an
// empty body, consistent with getState's "no status field" contract.
func (a *API) getConsolidatedReport(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadState(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(state.ConsolidatedReport))
}

// getProductRequirements returns the markdown product requirements
// document for threadID, or 404 if the thread itself doesn't exist.
func (a *API) getProductRequirements(w http.ResponseWriter, r *http.Request) {
	state, ok := a.loadState(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(state.ProductRequirements))
}

// loadState validates the threadID path parameter and loads its latest
// checkpoint, writing the appropriate error response itself and
// returning ok=false when the caller should stop.
func (a *API) loadState(w http.ResponseWriter, r *http.Request) (analysis.AnalysisState, bool) {
	threadID := chi.URLParam(r, "threadID")
	if result := contract.ValidateThreadID(threadID); !result.OK {
		writeError(w, engineerr.InvalidInput(result.Message, threadID, nil))
		return analysis.AnalysisState{}, false
	}

	_, state, found, err := a.store.Latest(r.Context(), threadID)
	if err != nil {
		writeError(w, engineerr.Internal("failed to load checkpoint", err.Error(), err))
		return analysis.AnalysisState{}, false
	}
	if !found {
		http.NotFound(w, r)
		return analysis.AnalysisState{}, false
	}

	return state, true
}

// writeError maps an engineerr.Kind to an HTTP status code: invalid input
// is the caller's fault (400), everything else is the server's (5xx).
func writeError(w http.ResponseWriter, err error) {
	var ee *engineerr.EngineError
	if !errors.As(err, &ee) {
		ee = engineerr.Internal("unexpected error", err.Error(), err)
	}

	status := http.StatusInternalServerError
	switch ee.Kind {
	case engineerr.KindInvalidInput:
		status = http.StatusBadRequest
	case engineerr.KindTimeout:
		status = http.StatusGatewayTimeout
	case engineerr.KindTransient:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = output.JSONCompactTo(w, ee.ToJSON())
}
