// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workflow drives a repository through the analysis pipeline as a
// fixed linear sequence of nodes, committing a checkpoint after each node
// so a crashed or restarted run resumes from the last completed node
// instead of starting over.
package workflow

import (
	"context"

	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/analysis"
)

// NodeID names one step of the pipeline. The zero value is not a valid
// node; use the constants below.
type NodeID string

const (
	NodeAcquireRepo          NodeID = "acquire_repo"
	NodeExtractAndChunk      NodeID = "extract_and_chunk"
	NodeAnalyzeChunks        NodeID = "analyze_chunks"
	NodeReportDataModel      NodeID = "report_data_model"
	NodeReportInterfaces     NodeID = "report_interfaces"
	NodeReportBusinessLogic  NodeID = "report_business_logic"
	NodeReportDependencies   NodeID = "report_dependencies"
	NodeReportConfiguration  NodeID = "report_configuration"
	NodeReportInfrastructure NodeID = "report_infrastructure"
	NodeReportNonFunctional  NodeID = "report_non_functional"
	NodeConsolidate          NodeID = "consolidate"
	NodeProductRequirements  NodeID = "product_requirements"
	NodeEnd                  NodeID = "end"
)

// nodeOrder is the fixed linear sequence nodes execute in.
var nodeOrder = []NodeID{
	NodeAcquireRepo,
	NodeExtractAndChunk,
	NodeAnalyzeChunks,
	NodeReportDataModel,
	NodeReportInterfaces,
	NodeReportBusinessLogic,
	NodeReportDependencies,
	NodeReportConfiguration,
	NodeReportInfrastructure,
	NodeReportNonFunctional,
	NodeConsolidate,
	NodeProductRequirements,
	NodeEnd,
}

func nodeIndex(id NodeID) int {
	for i, n := range nodeOrder {
		if n == id {
			return i
		}
	}
	return -1
}

// NodeFunc executes one pipeline step: given the state as of the previous
// node, it returns the new state (never mutating its argument) or an
// error. Node functions must be safe to re-run: the engine may re-execute
// a node whose checkpoint commit never landed.
type NodeFunc func(ctx context.Context, state analysis.AnalysisState) (analysis.AnalysisState, error)

// nodeDone reports whether state already reflects this node having run,
// inspecting the field(s) the node is responsible for populating.
type nodeDone func(state analysis.AnalysisState) bool
