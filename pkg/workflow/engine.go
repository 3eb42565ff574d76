// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/metrics"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/workerpool"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/aggregator"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analyzer"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/chunker"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/consolidator"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/ingestion"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
)

const defaultMaxFileSize = 1 << 20 // 1 MiB per file

// Engine wires the C1-C6 pipeline stages together behind the fixed node
// sequence in workflow.go, resuming from a checkpoint.Store.
type Engine struct {
	store    checkpoint.Store
	provider llm.Provider
	model    string
	logger   *slog.Logger
	timeout  time.Duration

	extractor  *ingestion.StructuralExtractor
	chunkerS   *chunker.Chunker
	analyzerS  *analyzer.Analyzer
	aggregateS *aggregator.Aggregator
	prdGen     *consolidator.Generator

	threadLocksMu sync.Mutex
	threadLocks   map[string]*sync.Mutex
}

type nodeDef struct {
	fn   NodeFunc
	done nodeDone
}

// New builds an Engine. timeout <= 0 defaults to 2 hours, matching
// Config.WorkflowTimeout's default.
func New(store checkpoint.Store, provider llm.Provider, model string, timeout time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Hour
	}

	e := &Engine{
		store:       store,
		provider:    provider,
		model:       model,
		logger:      logger,
		timeout:     timeout,
		extractor:   ingestion.NewStructuralExtractor(logger),
		chunkerS:    chunker.New(provider, model, logger),
		analyzerS:   analyzer.New(provider, model, logger),
		aggregateS:  aggregator.New(provider, model, logger),
		prdGen:      consolidator.NewGenerator(provider, model, logger),
		threadLocks: make(map[string]*sync.Mutex),
	}
	return e
}

func (e *Engine) lockFor(threadID string) *sync.Mutex {
	e.threadLocksMu.Lock()
	defer e.threadLocksMu.Unlock()
	l, ok := e.threadLocks[threadID]
	if !ok {
		l = &sync.Mutex{}
		e.threadLocks[threadID] = l
	}
	return l
}

// Run drives threadID through every pipeline node in order, resuming from
// whatever checkpoint already exists. Concurrent calls for the same
// threadID are serialized; calls for different threadIDs proceed
// independently.
func (e *Engine) Run(ctx context.Context, threadID, repoURL string) (state analysis.AnalysisState, err error) {
	lock := e.lockFor(threadID)
	lock.Lock()
	defer lock.Unlock()

	metrics.RecordRunStart()
	defer func() { metrics.RecordRunResult(err) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	repoLoader := ingestion.NewRepoLoader(e.logger)
	defer func() {
		if err := repoLoader.Close(); err != nil {
			e.logger.Warn("workflow.repo_loader.close_failed", "thread_id", threadID, "err", err)
		}
	}()
	nodes := e.buildNodes(repoLoader)

	lastStepName, state, found, err := e.store.Latest(ctx, threadID)
	if err != nil {
		return state, fmt.Errorf("workflow: load checkpoint for thread %s: %w", threadID, err)
	}
	if !found {
		state = analysis.AnalysisState{RepoURL: repoURL}
	}

	lastIndex := -1
	if found {
		lastIndex = nodeIndex(NodeID(lastStepName))
	}

	for i, id := range nodeOrder {
		if id == NodeEnd {
			break
		}
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("workflow: thread %s timed out before node %s: %w", threadID, id, err)
		}

		def := nodes[id]
		if i <= lastIndex || def.done(state) {
			e.logger.Debug("workflow.node.skip_already_done", "thread_id", threadID, "node", id)
			continue
		}

		e.logger.Info("workflow.node.start", "thread_id", threadID, "node", id)
		metrics.RecordNodeStart(string(id))
		nodeStarted := time.Now()
		newState, nodeErr := def.fn(ctx, state)
		metrics.RecordNodeResult(string(id), nodeStarted, nodeErr)
		if nodeErr != nil {
			return state, fmt.Errorf("workflow: node %s failed for thread %s: %w", id, threadID, nodeErr)
		}
		state = newState

		if err := e.store.Put(ctx, threadID, string(id), state); err != nil {
			return state, fmt.Errorf("workflow: commit checkpoint for node %s, thread %s: %w", id, threadID, err)
		}
		e.logger.Info("workflow.node.complete", "thread_id", threadID, "node", id)
	}

	if err := e.store.Put(ctx, threadID, string(NodeEnd), state); err != nil {
		return state, fmt.Errorf("workflow: commit final checkpoint for thread %s: %w", threadID, err)
	}

	return state, nil
}

func (e *Engine) buildNodes(repoLoader *ingestion.RepoLoader) map[NodeID]nodeDef {
	return map[NodeID]nodeDef{
		NodeAcquireRepo: {
			fn:   e.acquireRepo(repoLoader),
			done: func(s analysis.AnalysisState) bool { return s.FileStructure != "" },
		},
		NodeExtractAndChunk: {
			fn:   e.extractAndChunk(repoLoader),
			done: func(s analysis.AnalysisState) bool { return len(s.IngestedRepoChunks) > 0 },
		},
		NodeAnalyzeChunks: {
			fn:   e.analyzeChunks,
			done: func(s analysis.AnalysisState) bool { return len(s.AnalyzedCodeChunks) > 0 },
		},
		NodeReportDataModel:      e.reportNode(analysis.TopicDataModel),
		NodeReportInterfaces:     e.reportNode(analysis.TopicInterfaces),
		NodeReportBusinessLogic:  e.reportNode(analysis.TopicBusinessLogic),
		NodeReportDependencies:   e.reportNode(analysis.TopicDependencies),
		NodeReportConfiguration:  e.reportNode(analysis.TopicConfiguration),
		NodeReportInfrastructure: e.reportNode(analysis.TopicInfrastructure),
		NodeReportNonFunctional:  e.reportNode(analysis.TopicNonFunctional),
		NodeConsolidate: {
			fn:   e.consolidate,
			done: func(s analysis.AnalysisState) bool { return s.ConsolidatedReport != "" },
		},
		NodeProductRequirements: {
			fn:   e.productRequirements,
			done: func(s analysis.AnalysisState) bool { return s.ProductRequirements != "" },
		},
	}
}

// acquireRepo returns a NodeFunc bound to repoLoader, which is scoped to a
// single Run invocation so concurrent threads never share (and never
// prematurely tear down) each other's clones.
func (e *Engine) acquireRepo(repoLoader *ingestion.RepoLoader) NodeFunc {
	return func(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
		result, err := repoLoader.LoadRepository(ingestion.RepoSource{Type: "git_url", Value: state.RepoURL}, nil, defaultMaxFileSize)
		if err != nil {
			return state, fmt.Errorf("acquire_repo: %w", err)
		}

		state.FileStructure = ingestion.GenerateFileStructure(result.RootPath)
		state.LanguagesUsed = ingestion.DetectLanguages(result.RootPath)
		return state, nil
	}
}

func (e *Engine) extractAndChunk(repoLoader *ingestion.RepoLoader) NodeFunc {
	return func(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
		result, err := repoLoader.LoadRepository(ingestion.RepoSource{Type: "git_url", Value: state.RepoURL}, nil, defaultMaxFileSize)
		if err != nil {
			return state, fmt.Errorf("extract_and_chunk: reload repo: %w", err)
		}

		records := make([]*ingestion.StructuralRecord, len(result.Files))
		err = workerpool.Run(ctx, 0, indices(len(result.Files)), func(_ context.Context, i int) error {
			record, err := e.extractor.ExtractFile(result.Files[i])
			if err != nil {
				return fmt.Errorf("extract %s: %w", result.Files[i].Path, err)
			}
			records[i] = record
			return nil
		})
		if err != nil {
			return state, fmt.Errorf("extract_and_chunk: %w", err)
		}

		plan, err := e.chunkerS.Plan(ctx, state.FileStructure, records)
		if err != nil {
			return state, fmt.Errorf("extract_and_chunk: plan chunks: %w", err)
		}

		chunks, err := e.chunkerS.Materialize(result.RootPath, plan)
		if err != nil {
			return state, fmt.Errorf("extract_and_chunk: materialize chunks: %w", err)
		}

		state.IngestedRepoChunks = chunks
		return state, nil
	}
}

// indices returns [0, n), the fan-out domain workerpool.Run dispatches
// over when the work itself (slice writes by position) doesn't need the
// item value, only its index.
func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (e *Engine) analyzeChunks(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
	analyzed := make([]analysis.CodeAnalysisChunk, 0, len(state.IngestedRepoChunks))
	for _, chunk := range state.IngestedRepoChunks {
		result, err := e.analyzerS.Analyze(ctx, chunk)
		if err != nil {
			return state, fmt.Errorf("analyze_chunks: %w", err)
		}
		analyzed = append(analyzed, *result)
	}
	state.AnalyzedCodeChunks = analyzed
	return state, nil
}

// reportNode builds the nodeDef for a single topic aggregator. All seven
// topics share the same execution shape: aggregate once, write the single
// resulting section, mark it populated.
func (e *Engine) reportNode(topic string) nodeDef {
	return nodeDef{
		fn: func(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
			report, err := e.aggregateS.RunTopic(ctx, topic, state.RepoURL, state.LanguagesUsed, state.AnalyzedCodeChunks)
			if err != nil {
				return state, fmt.Errorf("report_%s: %w", topic, err)
			}
			state.ReportSections.Set(topic, report)
			return state, nil
		},
		done: func(s analysis.AnalysisState) bool { return s.ReportSections.Populated[topic] },
	}
}

func (e *Engine) consolidate(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
	state.ConsolidatedReport = consolidator.Consolidate(state.RepoURL, state.LanguagesUsed, state.ReportSections)
	return state, nil
}

func (e *Engine) productRequirements(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error) {
	prd, err := e.prdGen.GenerateProductRequirements(ctx, state.ConsolidatedReport)
	if err != nil {
		return state, fmt.Errorf("product_requirements: %w", err)
	}
	state.ProductRequirements = prd
	return state, nil
}
