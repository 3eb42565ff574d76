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

// Package analysis holds the shared data model passed between every stage
// of the analysis pipeline: the repository thread, the chunks produced by
// the chunker, the per-chunk analyses, the aggregated report sections, and
// the checkpointed state record that ties them together.
package analysis

import (
	"strings"
	"time"
)

// Thread identifies one analysis run against one repository.
type Thread struct {
	ThreadID string `json:"thread_id"`
	RepoURL  string `json:"repo_url"`
}

// CodeChunk is one unit of work handed to the analyzer: a named subset of
// the repository's files concatenated into a single content blob.
type CodeChunk struct {
	ChunkID     string   `json:"chunk_id"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Content     string   `json:"content"`
}

// CodeAnalysisChunk is the per-chunk analysis result. Topic fields are
// pointers so that "the analyzer found nothing to say about this topic" is
// distinguishable from "the analyzer said this topic is empty" — the former
// is the common case and must never be confused with a populated-but-blank
// string.
type CodeAnalysisChunk struct {
	ChunkID        string  `json:"chunk_id"`
	Summary        string  `json:"summary"`
	DataModel      *string `json:"data_model,omitempty"`
	Interfaces     *string `json:"interfaces,omitempty"`
	BusinessLogic  *string `json:"business_logic,omitempty"`
	Dependencies   *string `json:"dependencies,omitempty"`
	Configuration  *string `json:"configuration,omitempty"`
	Infrastructure *string `json:"infrastructure,omitempty"`
	NonFunctional  *string `json:"non_functional,omitempty"`
}

// ReportSections holds the aggregated, topic-organized report. Populated
// records which fields an aggregator actually wrote to, independent of
// whether the written value happens to be the "no information found"
// sentinel — a populated field is never a silently empty string.
type ReportSections struct {
	DataModel      string          `json:"data_model"`
	Interfaces     string          `json:"interfaces"`
	BusinessLogic  string          `json:"business_logic"`
	Dependencies   string          `json:"dependencies"`
	Configuration  string          `json:"configuration"`
	Infrastructure string          `json:"infrastructure"`
	NonFunctional  string          `json:"non_functional"`
	Populated      map[string]bool `json:"populated,omitempty"`
}

// Set writes an aggregator's output into the field named by topic and
// marks it populated. Panics on an unrecognized topic, since that can
// only happen from a programming error in an aggregator.
func (r *ReportSections) Set(topic, value string) {
	switch topic {
	case TopicDataModel:
		r.DataModel = value
	case TopicInterfaces:
		r.Interfaces = value
	case TopicBusinessLogic:
		r.BusinessLogic = value
	case TopicDependencies:
		r.Dependencies = value
	case TopicConfiguration:
		r.Configuration = value
	case TopicInfrastructure:
		r.Infrastructure = value
	case TopicNonFunctional:
		r.NonFunctional = value
	default:
		panic("analysis: unknown report topic " + topic)
	}
	if r.Populated == nil {
		r.Populated = make(map[string]bool)
	}
	r.Populated[topic] = true
}

// Topic names used as keys into ReportSections.Populated and as labels in
// aggregator log lines. Keep in sync with the field order above.
const (
	TopicDataModel      = "data_model"
	TopicInterfaces     = "interfaces"
	TopicBusinessLogic  = "business_logic"
	TopicDependencies   = "dependencies"
	TopicConfiguration  = "configuration"
	TopicInfrastructure = "infrastructure"
	TopicNonFunctional  = "non_functional"
)

const noInformationSuffix = " information was found in the analyzed code."

// NoInformationSentinel is the fixed text an aggregator writes for a topic
// no chunk contributed anything to. label is the topic's human-readable
// name (e.g. "data model").
func NoInformationSentinel(label string) string {
	return "No " + label + noInformationSuffix
}

// IsNoInformationSentinel reports whether content is a NoInformationSentinel
// value for some label. A consolidated report should treat a
// sentinel-valued section the same as an empty one: the topic was run but
// nothing was found, so it contributes no section to the final report.
func IsNoInformationSentinel(content string) bool {
	return strings.HasPrefix(content, "No ") && strings.HasSuffix(content, noInformationSuffix)
}

// AnalysisState is the single record threaded through every workflow node.
// Nodes take it by value and return a new value; only the engine assigns
// the result back onto the thread's canonical state (see pkg/workflow).
type AnalysisState struct {
	RepoURL             string              `json:"repo_url"`
	FileStructure       string              `json:"file_structure,omitempty"`
	LanguagesUsed       []string            `json:"languages_used,omitempty"`
	IngestedRepoChunks  []CodeChunk         `json:"ingested_repo_chunks,omitempty"`
	AnalyzedCodeChunks  []CodeAnalysisChunk `json:"analyzed_code_chunks,omitempty"`
	ReportSections      ReportSections      `json:"report_sections"`
	ConsolidatedReport  string              `json:"consolidated_report,omitempty"`
	ProductRequirements string              `json:"product_requirements,omitempty"`
}

// Checkpoint is one committed, resumable snapshot of a thread's state.
type Checkpoint struct {
	ThreadID  string        `json:"thread_id"`
	Sequence  uint64        `json:"sequence"`
	StepName  string        `json:"step_name"`
	State     AnalysisState `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
}
