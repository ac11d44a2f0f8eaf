package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelsmith/internal/jobs"
	"reelsmith/internal/workflow"
)

var (
	_ workflow.Recorder = (*Recorder)(nil)
	_ jobs.Recorder     = (*Recorder)(nil)
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.StageCompleted("idea_generation", 2*time.Second)
	r.StageFailed("script_generation")
	r.StageFailed("script_generation")
	r.ArtifactSettled("images", "ready")
	r.ArtifactSettled("images", "error")
	r.ArtifactSettled("images", "ready")
	r.PersistFailed()
	r.ObservePoll(jobs.OutcomeRunning)
	r.ObservePoll(jobs.OutcomeSucceeded)

	assert.Equal(t, 1, testutil.CollectAndCount(r.stageDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("script_generation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.artifactsTotal.WithLabelValues("images", "ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.artifactsTotal.WithLabelValues("images", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.persistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.videoPolls.WithLabelValues(jobs.OutcomeSucceeded)))
}

func TestRecordersAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.PersistFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.persistFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.persistFailures))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.StageFailed("keyword_analysis")

	path := filepath.Join(t.TempDir(), "nested", "reelsmith.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `reelsmith_stage_failures_total{stage="keyword_analysis"} 1`)
}
