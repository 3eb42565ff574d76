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
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the Prometheus metrics for the workflow engine.
//
// Every node in the pipeline reports its own duration and outcome through
// RecordNodeStart and RecordNodeResult, and each run through RecordRunStart
// and RecordRunResult; the HTTP API exposes the registry at /metrics via
// promhttp.Handler for scraping.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsWorkflow struct {
	once sync.Once

	nodeStarted   *prometheus.CounterVec
	nodeCompleted *prometheus.CounterVec
	nodeFailed    *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec

	runsStarted  prometheus.Counter
	runsFailed   prometheus.Counter
	runsComplete prometheus.Counter
}

var workflowMetrics metricsWorkflow

func (m *metricsWorkflow) init() {
	m.once.Do(func() {
		m.nodeStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_node_started_total",
			Help: "Pipeline nodes started, by node",
		}, []string{"node"})
		m.nodeCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_node_completed_total",
			Help: "Pipeline nodes completed successfully, by node",
		}, []string{"node"})
		m.nodeFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_node_failed_total",
			Help: "Pipeline nodes that returned an error, by node",
		}, []string{"node"})
		m.nodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_node_duration_seconds",
			Help:    "Time spent executing a pipeline node, by node",
			Buckets: prometheus.DefBuckets,
		}, []string{"node"})

		m.runsStarted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_runs_started_total",
			Help: "Engine.Run invocations started",
		})
		m.runsFailed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_runs_failed_total",
			Help: "Engine.Run invocations that returned an error",
		})
		m.runsComplete = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_runs_completed_total",
			Help: "Engine.Run invocations that reached the end node",
		})

		prometheus.MustRegister(
			m.nodeStarted, m.nodeCompleted, m.nodeFailed, m.nodeDuration,
			m.runsStarted, m.runsFailed, m.runsComplete,
		)
	})
}

// RecordNodeStart marks node as started, incrementing its started counter.
func RecordNodeStart(node string) {
	workflowMetrics.init()
	workflowMetrics.nodeStarted.WithLabelValues(node).Inc()
}

// RecordNodeResult records a node's outcome and wall-clock duration since
// it started.
func RecordNodeResult(node string, started time.Time, err error) {
	workflowMetrics.init()
	workflowMetrics.nodeDuration.WithLabelValues(node).Observe(time.Since(started).Seconds())
	if err != nil {
		workflowMetrics.nodeFailed.WithLabelValues(node).Inc()
		return
	}
	workflowMetrics.nodeCompleted.WithLabelValues(node).Inc()
}

// RecordRunStart marks the start of an Engine.Run invocation.
func RecordRunStart() {
	workflowMetrics.init()
	workflowMetrics.runsStarted.Inc()
}

// RecordRunResult records whether an Engine.Run invocation finished
// cleanly or returned an error.
func RecordRunResult(err error) {
	workflowMetrics.init()
	if err != nil {
		workflowMetrics.runsFailed.Inc()
		return
	}
	workflowMetrics.runsComplete.Inc()
}
