// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package aggregator rolls per-chunk analysis fragments up into one
// markdown report section per topic: data model, interfaces, business
// logic, dependencies, configuration, infrastructure, and non-functional
// aspects. Each topic is independent and run in a fixed order.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

// topic describes one of the seven fixed report sections: how to pull its
// fragment out of a CodeAnalysisChunk, and the prompt pair used to roll
// the fragments into a single section.
type topic struct {
	key          string
	label        string // used in the empty-topic sentinel
	systemPrompt string
	userPrompt   string // %s hole for the <context> block
	extract      func(*analysis.CodeAnalysisChunk) *string
}

var topics = []topic{
	{
		key:          analysis.TopicDataModel,
		label:        "data model",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the data model aspects of the codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the data model aspects of the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Data Model Report" and should include the following sections:
   - Logical data models and entities
   - Mermaid ERD diagram as a string (wrapped in triple backticks with "mermaid" tag)
   - Detailed breakdown of each model's fields, types, and relationships
   - Data flow and transformations
   - Data validation and integrity checks

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.DataModel },
	},
	{
		key:          analysis.TopicInterfaces,
		label:        "interfaces",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the interfaces exposed by a codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the interfaces exposed by the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Interfaces Report" and should include the following sections:
- User interfaces (UI)
- API endpoints with request/response formats
- Batch processing interfaces
- Event-driven interfaces (e.g., message queues)
- Any other interfaces exposed by the code

Ensure to only include external interfaces and exclude any internal interface details.

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.Interfaces },
	},
	{
		key:          analysis.TopicBusinessLogic,
		label:        "business logic",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the business logic aspects of the codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the business logic aspects of the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Business Logic Report" and should include the following sections:
   - Core business rules and domain logic
   - Business process flows
   - Business rules
   - Separation of concerns between business logic and other layers
   - Domain-driven design patterns

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.BusinessLogic },
	},
	{
		key:          analysis.TopicDependencies,
		label:        "dependencies",
		systemPrompt: "You are a senior software developer analyzing a code repository.\nYour task is to create a detailed, insightful report on the dependencies of the codebase.\n\nFocus on:\n- External libraries and frameworks used\n- Version management and compatibility\n- Security implications of dependencies\n- Dependency injection patterns\n- Module/package dependencies within the codebase\n- Potential dependency issues (circular dependencies, outdated versions)\n- Build and package management\n\nFormat your report with clear sections, bullet points, and examples where helpful.\nBe specific, factual, and professional.",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the dependencies of the codebase.

%s

Provide a complete, standalone report section focusing only on dependencies, libraries, and external integrations.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.Dependencies },
	},
	{
		key:          analysis.TopicConfiguration,
		label:        "configuration",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the configuration aspects of the codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the configuration aspects of the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Configuration Report" and should include the following sections:
- Configuration files (e.g., YAML, JSON)
- Configuration variables with defaults and valid options
- Environment variables and config files
- Secrets management and sensitive data handling

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.Configuration },
	},
	{
		key:          analysis.TopicInfrastructure,
		label:        "infrastructure",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the infrastructure aspects of the codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the infrastructure aspects of the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Infrastructure Report" and should include the following sections:
- Deployment configuration and infrastructure as code (IaC)
- Deployment and environment setup
- Cloud services integration
- Containerization and orchestration
- CI/CD pipeline setup

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.Infrastructure },
	},
	{
		key:          analysis.TopicNonFunctional,
		label:        "non-functional",
		systemPrompt: "You are a senior software developer analyzing a code repository. Your task is to create a detailed report on the non-functional aspects of the codebase. Format your report in markdown format with clear sections",
		userPrompt: `Based on the following code analysis information, create a comprehensive report on the non-functional aspects of the codebase.
The <context> block contains code from multiple code chunks, and you should generate a single report as defined below.

<context>
%s
</context>

Your report should be titled "Non-Functional Aspects Report" and should include the following sections:
- Performance and reliability aspects
- Security considerations and potential vulnerabilities
- Volume and load considerations
- Significant error handling and recovery mechanisms
- Logging, monitoring, and alerting
- Compliance considerations
- Data and privacy considerations
- Testing strategies and code coverage

Ensure there are no duplicates or redundancy in the single report.`,
		extract: func(c *analysis.CodeAnalysisChunk) *string { return c.NonFunctional },
	},
}

// Aggregator rolls per-chunk analysis fragments into the seven fixed
// report sections.
type Aggregator struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// New builds an Aggregator bound to the given LLM provider.
func New(provider llm.Provider, model string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{provider: provider, model: model, logger: logger}
}

// Run executes all seven aggregators in fixed order and returns the
// populated ReportSections.
func (a *Aggregator) Run(ctx context.Context, repoURL string, languages []string, chunks []analysis.CodeAnalysisChunk) (analysis.ReportSections, error) {
	sections := analysis.ReportSections{Populated: make(map[string]bool)}

	for _, t := range topics {
		report, err := a.RunTopic(ctx, t.key, repoURL, languages, chunks)
		if err != nil {
			return sections, err
		}
		sections.Set(t.key, report)
		a.logger.Info("aggregator.section.complete", "topic", t.key)
	}

	return sections, nil
}

// RunTopic runs a single aggregator by topic key (one of the
// analysis.Topic* constants), letting callers that checkpoint each report
// section independently run one topic at a time instead of the full batch.
func (a *Aggregator) RunTopic(ctx context.Context, topicKey, repoURL string, languages []string, chunks []analysis.CodeAnalysisChunk) (string, error) {
	for _, t := range topics {
		if t.key == topicKey {
			report, err := a.runOne(ctx, t, repoURL, languages, chunks)
			if err != nil {
				return "", fmt.Errorf("aggregator: %s: %w", t.key, err)
			}
			return report, nil
		}
	}
	return "", fmt.Errorf("aggregator: unknown topic %q", topicKey)
}

func (a *Aggregator) runOne(ctx context.Context, t topic, repoURL string, languages []string, chunks []analysis.CodeAnalysisChunk) (string, error) {
	var blocks []string
	for _, chunk := range chunks {
		fragment := t.extract(&chunk)
		if fragment == nil || strings.TrimSpace(*fragment) == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Chunk %s:\n%s", chunk.ChunkID, *fragment))
	}

	joined := strings.Join(blocks, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return analysis.NoInformationSentinel(t.label), nil
	}

	contextBlock := fmt.Sprintf("Repository URL: %s\nLanguages used: %s\n\nCode chunks:\n%s", repoURL, strings.Join(languages, ", "), joined)
	userPrompt := fmt.Sprintf(t.userPrompt, contextBlock)

	resp, err := llm.Invoke(ctx, a.provider, llm.InvokeRequest{
		System:      t.systemPrompt,
		User:        userPrompt,
		Model:       a.model,
		MaxTokens:   8192,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	return resp.RawText, nil
}
