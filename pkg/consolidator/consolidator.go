// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package consolidator merges the seven report sections into a single
// numbered markdown document, then drives a further LLM call to turn that
// document into a product requirements document.
package consolidator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

// sectionOrder fixes the order sections appear in the consolidated report,
// matching the field order of analysis.ReportSections.
var sectionOrder = []string{
	analysis.TopicDataModel,
	analysis.TopicInterfaces,
	analysis.TopicBusinessLogic,
	analysis.TopicDependencies,
	analysis.TopicConfiguration,
	analysis.TopicInfrastructure,
	analysis.TopicNonFunctional,
}

var headingPattern = regexp.MustCompile(`^(#+)\s+(.*)$`)

// Consolidate renumbers each populated report section's headings and
// concatenates them under a fixed repository-information header.
func Consolidate(repoURL string, languages []string, sections analysis.ReportSections) string {
	values := map[string]string{
		analysis.TopicDataModel:      sections.DataModel,
		analysis.TopicInterfaces:     sections.Interfaces,
		analysis.TopicBusinessLogic:  sections.BusinessLogic,
		analysis.TopicDependencies:   sections.Dependencies,
		analysis.TopicConfiguration:  sections.Configuration,
		analysis.TopicInfrastructure: sections.Infrastructure,
		analysis.TopicNonFunctional:  sections.NonFunctional,
	}

	var parts []string
	sectionNumber := 0
	for _, topic := range sectionOrder {
		content := values[topic]
		if content == "" || analysis.IsNoInformationSentinel(content) {
			continue
		}
		sectionNumber++
		parts = append(parts, transformReportSection(content, sectionNumber))
	}

	header := fmt.Sprintf("# Code Analysis Report\n\n## Repository Information\n- **Repository URL:** %s\n- **Languages Used:** %s\n\n", repoURL, strings.Join(languages, ", "))
	return header + strings.Join(parts, "\n\n")
}

// transformReportSection renumbers headings within a single report section:
// H1 becomes "## N. Heading", H2 becomes "### N.M. Heading", and anything
// deeper is pushed one level down with no numbering added. Non-heading
// lines pass through unchanged.
func transformReportSection(content string, sectionNumber int) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	subheadingCount := 0

	for _, line := range lines {
		match := headingPattern.FindStringSubmatch(line)
		if match == nil {
			out = append(out, line)
			continue
		}

		level := len(match[1])
		text := match[2]

		switch level {
		case 1:
			out = append(out, fmt.Sprintf("## %d. %s", sectionNumber, text))
			subheadingCount = 0
		case 2:
			subheadingCount++
			out = append(out, fmt.Sprintf("### %d.%d. %s", sectionNumber, subheadingCount, text))
		default:
			out = append(out, strings.Repeat("#", level+1)+" "+text)
		}
	}

	return strings.Join(out, "\n")
}

const sentinelNoConsolidatedReport = "No consolidated report available to generate product requirements."

const productRequirementsSystemPrompt = "You are a senior product manager that excels at creating detailed product requirements\nbased on code analysis reports. Your task is to create a comprehensive product requirements document\nthat breaks down functionality by feature and provides detailed user stories."

const productRequirementsUserPromptTemplate = `ANALYSIS PHASE:

Read each of the following report, analyse them.

CONSOLIDATED REPORT:
%s

IMPLEMENTATION PHASE:

Create a detailed product requirements document that breaks down the functionality by feature. The end result should be a list of features, with both frontend and backend user stories detailed for the given feature. You will have to interweave the relevant API endpoints with the frontend features to create a fully realized feature. The stories should be discrete and detailed. There may be multiple stories per feature. The end result should be a hybrid of very good user stories, with the details found in a PRD. Please number the features and the stories so they can be easily referred to later.

Each story format should be in the following format:
- Story title
- Designate each story as a frontend or backend API story (it should be one or the other, not both)
- Story written in As a, I want, so that story format
- Design / UX consideration (if applicable)
- Testable acceptance criteria in Given, When, Then BDD format
- Detailed Architecture Design Notes
- Include any other detail or relevant notes that would help an AI-powered coding tool understand and correctly implement the features.
- Include any information about stories that are dependencies, such as backend stories that are needed to complete a frontend story, for example.
- Include any information about related stories for context.

You should also give any overarching context in the feature description.

At the top of the document include the detail of the data model for reference, including any erd diagrams.

Do NOT include any summary, timelines, or non-functional requirements, unless they are relevant to the specific feature implementations.
Do NOT add any functionality that isn't in the above requirements, only add the functionality already defined.

Include a short 'Context' part at the top of the document that details the purpose and background information that is relevant to the project overall.`

// Generator produces the product requirements document from a
// consolidated report via an LLM call.
type Generator struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// NewGenerator builds a product requirements Generator bound to the given
// LLM provider.
func NewGenerator(provider llm.Provider, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, model: model, logger: logger}
}

// GenerateProductRequirements turns a consolidated report into a product
// requirements document, or returns the fixed sentinel if the report is
// empty.
func (g *Generator) GenerateProductRequirements(ctx context.Context, consolidatedReport string) (string, error) {
	if strings.TrimSpace(consolidatedReport) == "" {
		g.logger.Warn("consolidator.prd.no_consolidated_report")
		return sentinelNoConsolidatedReport, nil
	}

	userPrompt := fmt.Sprintf(productRequirementsUserPromptTemplate, consolidatedReport)

	resp, err := llm.Invoke(ctx, g.provider, llm.InvokeRequest{
		System:      productRequirementsSystemPrompt,
		User:        userPrompt,
		Model:       g.model,
		MaxTokens:   8192,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("consolidator: product requirements call failed: %w", err)
	}

	g.logger.Info("consolidator.prd.complete")
	return "# Product Requirements Document\n\n" + resp.RawText, nil
}
