// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/workflow"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestAPI(t *testing.T) (*API, checkpoint.Store) {
	t.Helper()
	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)
	engine := workflow.New(store, nil, "test-model", 0, discardLogger())
	return New(engine, store, discardLogger()), store
}

func TestStartAnalysis_RejectsMissingRepoURL(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/code-analysis", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartAnalysis_AcceptsValidRequest(t *testing.T) {
	api, _ := newTestAPI(t)
	body := `{"repo_url": "https://example.com/repo.git"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/code-analysis", strings.NewReader(body))
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "thread_id")
}

func TestGetState_UnknownThreadReturns404(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/code-analysis/does-not-exist", nil)
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetState_ReturnsLatestCheckpoint(t *testing.T) {
	api, store := newTestAPI(t)
	require.NoError(t, store.Put(context.Background(), "thread-1", "acquire_repo", analysis.AnalysisState{
		RepoURL:       "https://example.com/repo.git",
		LanguagesUsed: []string{"go"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/code-analysis/thread-1", nil)
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://example.com/repo.git")
}

func TestGetConsolidatedReport_ReturnsMarkdownBody(t *testing.T) {
	api, store := newTestAPI(t)
	require.NoError(t, store.Put(context.Background(), "thread-2", "consolidate", analysis.AnalysisState{
		RepoURL:            "https://example.com/repo.git",
		ConsolidatedReport: "# Code Analysis Report\n",
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/code-analysis/thread-2/consolidated-report", nil)
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Code Analysis Report\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
}

func TestMetrics_ServesPrometheusExposition(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetProductRequirements_UnknownThreadReturns404(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/code-analysis/nope/product-requirements-report", nil)
	rec := httptest.NewRecorder()

	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
