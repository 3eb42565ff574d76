package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordNodeStart_IncrementsStartedCounter(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.nodeStarted.WithLabelValues("acquire_repo"))

	RecordNodeStart("acquire_repo")

	after := testutil.ToFloat64(workflowMetrics.nodeStarted.WithLabelValues("acquire_repo"))
	assert.Equal(t, before+1, after)
}

func TestRecordNodeResult_Success_IncrementsCompleted(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.nodeCompleted.WithLabelValues("analyze_chunks"))

	RecordNodeResult("analyze_chunks", time.Now().Add(-10*time.Millisecond), nil)

	after := testutil.ToFloat64(workflowMetrics.nodeCompleted.WithLabelValues("analyze_chunks"))
	assert.Equal(t, before+1, after)
}

func TestRecordNodeResult_Failure_IncrementsFailed(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.nodeFailed.WithLabelValues("consolidate"))

	RecordNodeResult("consolidate", time.Now(), errors.New("boom"))

	after := testutil.ToFloat64(workflowMetrics.nodeFailed.WithLabelValues("consolidate"))
	assert.Equal(t, before+1, after)
}

func TestRecordRunStart_IncrementsRunsStarted(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.runsStarted)

	RecordRunStart()

	after := testutil.ToFloat64(workflowMetrics.runsStarted)
	assert.Equal(t, before+1, after)
}

func TestRecordRunResult_Complete_IncrementsRunsCompleted(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.runsComplete)

	RecordRunResult(nil)

	after := testutil.ToFloat64(workflowMetrics.runsComplete)
	assert.Equal(t, before+1, after)
}

func TestRecordRunResult_Failure_IncrementsRunsFailed(t *testing.T) {
	workflowMetrics.init()
	before := testutil.ToFloat64(workflowMetrics.runsFailed)

	RecordRunResult(errors.New("boom"))

	after := testutil.ToFloat64(workflowMetrics.runsFailed)
	assert.Equal(t, before+1, after)
}
