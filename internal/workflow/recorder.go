package workflow

import "time"

// Recorder receives engine events for metrics.
type Recorder interface {
	StageCompleted(stage string, elapsed time.Duration)
	StageFailed(stage string)
	ArtifactSettled(store, status string)
	PersistFailed()
}

type nopRecorder struct{}

func (nopRecorder) StageCompleted(string, time.Duration) {}
func (nopRecorder) StageFailed(string) {}
func (nopRecorder) ArtifactSettled(string, string) {}
func (nopRecorder) PersistFailed() {}
