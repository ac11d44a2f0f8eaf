package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("job tracker closed")

const defaultInterval = 10 * time.Second

// Poll outcomes reported to a Recorder.
const (
	OutcomeRunning   = "running"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeError     = "error"
	OutcomeExhausted = "exhausted"
)

// Recorder receives one observation per status check.
type Recorder interface {
	ObservePoll(outcome string)
}

// Options configures a Tracker.
type Options struct {
	// Interval between status checks. Defaults to 10s.
	Interval time.Duration
	// MaxPolls bounds the number of status checks; 0 means unbounded.
	MaxPolls int
	// Timeout bounds the wall-clock time from acceptance; 0 means unbounded.
	Timeout  time.Duration
	Clock    Clock
	Logger   *slog.Logger
	Recorder Recorder
	// OnChange is called after every state change, outside the tracker lock.
	OnChange func(key string, job Job)
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker owns the job map and its pollers.
type Tracker struct {
	video capability.VideoGenerator
	opts  Options

	mu     sync.Mutex
	jobs   map[string]Job
	runs   map[string]*run
	closed bool
}

// NewTracker constructs a tracker polling video.
func NewTracker(video capability.VideoGenerator, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	opts.Logger = logging.NewComponentLogger(opts.Logger, "jobs")
	return &Tracker{
		video: video,
		opts:  opts,
		jobs:  make(map[string]Job),
		runs:  make(map[string]*run),
	}
}

// Start begins a fresh job for key, cancelling any poller the key already had.
// The job is marked polling before the start call is made; the call itself and
// every status check run on a background goroutine.
func (t *Tracker) Start(ctx context.Context, key, prompt string) error {
	if t.video == nil {
		return services.Wrap(services.ErrConfiguration, "video", "start", "no video generator configured", nil)
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{cancel: cancel, done: make(chan struct{})}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		cancel()
		return ErrClosed
	}
	previous := t.runs[key]
	t.runs[key] = r
	t.jobs[key] = Job{Status: StatusPolling}
	t.mu.Unlock()
	t.notify(key, Job{Status: StatusPolling})

	go func() {
		defer close(r.done)
		if previous != nil {
			previous.cancel()
			<-previous.done
		}
		t.drive(runCtx, key, prompt, r)
	}()
	return nil
}

func (t *Tracker) drive(ctx context.Context, key, prompt string, r *run) {
	logger := logging.WithContext(services.WithArtifactKey(ctx, key), t.opts.Logger)
	if ctx.Err() != nil {
		return
	}

	remoteID, err := t.video.StartVideoJob(ctx, prompt)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Warn("video job rejected",
			logging.String(logging.FieldEventType, "video_start_failed"),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Error(err),
		)
		t.settle(key, r, Job{Status: StatusFailed, Error: "start failed: " + err.Error()})
		return
	}
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		t.settle(key, r, Job{Status: StatusFailed, Error: "start failed: no job id returned"})
		return
	}
	if !t.update(key, r, Job{Status: StatusPolling, RemoteID: remoteID}) {
		return
	}
	logger = logger.With(logging.JobID(remoteID))
	logger.Info("video job accepted", logging.String(logging.FieldEventType, "video_started"))

	var deadline time.Time
	if t.opts.Timeout > 0 {
		deadline = t.opts.Clock.Now().Add(t.opts.Timeout)
	}
	polls := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.opts.Clock.After(t.opts.Interval):
		}

		status, err := t.video.PollVideoJob(ctx, remoteID)
		if ctx.Err() != nil {
			return
		}
		polls++

		job := Job{Status: StatusPolling, RemoteID: remoteID}
		outcome := OutcomeRunning
		switch {
		case err != nil:
			outcome = OutcomeError
			job.Status = StatusFailed
			job.Error = "status check failed: " + err.Error()
		case status.State == capability.VideoSucceeded && strings.TrimSpace(status.Result) != "":
			outcome = OutcomeSucceeded
			job.Status = StatusSucceeded
			job.Result = strings.TrimSpace(status.Result)
		case status.State == capability.VideoSucceeded:
			outcome = OutcomeFailed
			job.Status = StatusFailed
			job.Error = "job finished without a result"
		case status.State == capability.VideoFailed:
			outcome = OutcomeFailed
			job.Status = StatusFailed
			job.Error = firstNonEmpty(status.Error, "video generation failed")
		case t.opts.MaxPolls > 0 && polls >= t.opts.MaxPolls:
			outcome = OutcomeExhausted
			job.Status = StatusFailed
			job.Error = fmt.Sprintf("still running after %d status checks; giving up", polls)
		case !deadline.IsZero() && !t.opts.Clock.Now().Before(deadline):
			outcome = OutcomeExhausted
			job.Status = StatusFailed
			job.Error = fmt.Sprintf("still running after %s; giving up", t.opts.Timeout)
		}
		if t.opts.Recorder != nil {
			t.opts.Recorder.ObservePoll(outcome)
		}

		if !job.Status.Terminal() {
			logger.Debug("video job still running", logging.Int("polls", polls))
			continue
		}
		if job.Status == StatusSucceeded {
			logger.Info("video job succeeded", logging.String(logging.FieldEventType, "video_succeeded"), logging.Int("polls", polls))
		} else {
			logger.Warn("video job failed",
				logging.String(logging.FieldEventType, "video_failed"),
				logging.String(logging.FieldErrorHint, "start the job again to retry"),
				logging.String("reason", job.Error),
				logging.Int("polls", polls),
			)
		}
		t.settle(key, r, job)
		return
	}
}

// update writes job if r still owns key.
func (t *Tracker) update(key string, r *run, job Job) bool {
	t.mu.Lock()
	if t.runs[key] != r {
		t.mu.Unlock()
		return false
	}
	t.jobs[key] = job
	t.mu.Unlock()
	t.notify(key, job)
	return true
}

// settle writes a terminal job and releases the key's run.
func (t *Tracker) settle(key string, r *run, job Job) {
	t.mu.Lock()
	if t.runs[key] != r {
		t.mu.Unlock()
		return
	}
	delete(t.runs, key)
	t.jobs[key] = job
	t.mu.Unlock()
	t.notify(key, job)
}

// Cancel stops polling key and records it as failed. Keys that are not
// polling are left alone.
func (t *Tracker) Cancel(key string) {
	t.mu.Lock()
	r := t.runs[key]
	delete(t.runs, key)
	var job Job
	if r != nil {
		job = t.jobs[key]
		job.Status = StatusFailed
		job.Result = ""
		job.Error = "canceled"
		t.jobs[key] = job
	}
	t.mu.Unlock()
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
	t.notify(key, job)
}

// Wait blocks until key is no longer polling or ctx ends.
func (t *Tracker) Wait(ctx context.Context, key string) (Job, error) {
	for {
		t.mu.Lock()
		r := t.runs[key]
		job, ok := t.jobs[key]
		t.mu.Unlock()
		if !ok {
			job.Status = StatusIdle
		}
		if r == nil {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-r.done:
		}
	}
}

// Get returns the job for key. Keys never started report StatusIdle and false.
func (t *Tracker) Get(key string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[key]
	if !ok {
		return Job{Status: StatusIdle}, false
	}
	return job, true
}

// Active returns the number of keys with a live poller.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runs)
}

// Keys returns the tracked keys in lexical order.
func (t *Tracker) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.jobs))
}

// Snapshot copies the job map.
func (t *Tracker) Snapshot() map[string]Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.jobs)
}

// Restore stops all pollers and replaces the job map. Jobs that were polling
// are recorded as failed since nothing will drive them.
func (t *Tracker) Restore(jobs map[string]Job) {
	t.stopAll()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = make(map[string]Job, len(jobs))
	for key, job := range jobs {
		t.jobs[key] = job.Orphaned()
	}
}

// Reset stops every poller, waits for them to exit, then clears all jobs.
func (t *Tracker) Reset() {
	t.stopAll()
	t.mu.Lock()
	clear(t.jobs)
	t.mu.Unlock()
}

// Close stops every poller and rejects further starts. Jobs left polling
// keep that status in memory.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.stopAll()
}

func (t *Tracker) stopAll() {
	t.mu.Lock()
	runs := t.runs
	t.runs = make(map[string]*run)
	t.mu.Unlock()
	for _, r := range runs {
		r.cancel()
	}
	for _, r := range runs {
		<-r.done
	}
}

func (t *Tracker) notify(key string, job Job) {
	if t.opts.OnChange != nil {
		t.opts.OnChange(key, job)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
