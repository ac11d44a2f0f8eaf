// Package metrics records workflow and video polling activity in a Prometheus
// registry and exports it in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reelsmith"

// Recorder implements workflow.Recorder and jobs.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration   *prometheus.HistogramVec
	stageFailures   *prometheus.CounterVec
	artifactsTotal  *prometheus.CounterVec
	persistFailures prometheus.Counter
	videoPolls      *prometheus.CounterVec
}

// New builds a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of successful stage actions in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"stage"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Total number of failed stage actions",
			},
			[]string{"stage"},
		),
		artifactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_settled_total",
				Help:      "Total number of settled artifact generations",
			},
			[]string{"store", "status"}, // status: ready, error
		),
		persistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_failures_total",
				Help:      "Total number of failed snapshot writes",
			},
		),
		videoPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "video_polls_total",
				Help:      "Total number of video job status checks by outcome",
			},
			[]string{"outcome"},
		),
	}
	r.registry.MustRegister(r.stageDuration, r.stageFailures, r.artifactsTotal, r.persistFailures, r.videoPolls)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) StageCompleted(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (r *Recorder) StageFailed(stage string) {
	r.stageFailures.WithLabelValues(stage).Inc()
}

func (r *Recorder) ArtifactSettled(store, status string) {
	r.artifactsTotal.WithLabelValues(store, status).Inc()
}

func (r *Recorder) PersistFailed() {
	r.persistFailures.Inc()
}

func (r *Recorder) ObservePoll(outcome string) {
	r.videoPolls.WithLabelValues(outcome).Inc()
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
