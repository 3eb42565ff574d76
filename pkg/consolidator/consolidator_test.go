// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later
package consolidator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

func TestTransformReportSection_RenumbersHeadings(t *testing.T) {
	in := "# Data Model Report\n\nSome intro text.\n\n## Entities\n\n- User\n\n### Fields\n\n- id\n"
	out := transformReportSection(in, 3)

	assert.Contains(t, out, "## 3. Data Model Report")
	assert.Contains(t, out, "### 3.1. Entities")
	assert.Contains(t, out, "#### Fields")
	assert.Contains(t, out, "Some intro text.")
}

func TestTransformReportSection_ResetsSubheadingCountPerH1(t *testing.T) {
	in := "# First\n## A\n## B\n# Second\n## C\n"
	out := transformReportSection(in, 1)

	assert.Contains(t, out, "### 1.1. A")
	assert.Contains(t, out, "### 1.2. B")
	assert.Contains(t, out, "### 1.1. C") // resets after the second H1
}

func TestConsolidate_SkipsEmptySectionsAndNumbersInOrder(t *testing.T) {
	sections := analysis.ReportSections{
		DataModel:     "# Data Model Report\n\nDetails.",
		BusinessLogic: "# Business Logic Report\n\nDetails.",
	}

	report := Consolidate("https://example.com/repo.git", []string{"go"}, sections)

	assert.Contains(t, report, "# Code Analysis Report")
	assert.Contains(t, report, "**Repository URL:** https://example.com/repo.git")
	assert.Contains(t, report, "## 1. Data Model Report")
	assert.Contains(t, report, "## 2. Business Logic Report")
}

func TestConsolidate_TreatsNoInformationSentinelAsUnpopulated(t *testing.T) {
	sections := analysis.ReportSections{
		DataModel:      analysis.NoInformationSentinel("data model"),
		Interfaces:     analysis.NoInformationSentinel("interfaces"),
		BusinessLogic:  analysis.NoInformationSentinel("business logic"),
		Dependencies:   analysis.NoInformationSentinel("dependencies"),
		Configuration:  analysis.NoInformationSentinel("configuration"),
		Infrastructure: analysis.NoInformationSentinel("infrastructure"),
		NonFunctional:  analysis.NoInformationSentinel("non-functional"),
	}

	report := Consolidate("https://example.com/repo.git", []string{"go"}, sections)

	assert.Contains(t, report, "# Code Analysis Report")
	assert.Contains(t, report, "**Repository URL:** https://example.com/repo.git")
	assert.NotContains(t, report, "## 1.")
	assert.NotContains(t, report, "information was found")
}

type fixedProvider struct{ text string }

func (f *fixedProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: f.text}, nil
}

func (f *fixedProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: f.text}}, nil
}

func (f *fixedProvider) Name() string { return "fixed" }

func (f *fixedProvider) Models(ctx context.Context) ([]string, error) { return nil, nil }

func TestGenerateProductRequirements_EmptyReportReturnsSentinel(t *testing.T) {
	g := NewGenerator(&fixedProvider{text: "should not be called"}, "fake-model", nil)
	out, err := g.GenerateProductRequirements(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, sentinelNoConsolidatedReport, out)
}

func TestGenerateProductRequirements_WrapsLLMOutput(t *testing.T) {
	g := NewGenerator(&fixedProvider{text: "## Feature 1\n\nStory details."}, "fake-model", nil)
	out, err := g.GenerateProductRequirements(context.Background(), "# Code Analysis Report\n\nSome content.")
	require.NoError(t, err)
	assert.Contains(t, out, "# Product Requirements Document")
	assert.Contains(t, out, "Story details.")
}
