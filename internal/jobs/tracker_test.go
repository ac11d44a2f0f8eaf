package jobs_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/jobs"
	"reelsmith/internal/testsupport"
)

const interval = 10 * time.Second

func newTracker(video capability.VideoGenerator, clock jobs.Clock, mutate ...func(*jobs.Options)) *jobs.Tracker {
	opts := jobs.Options{Interval: interval, Clock: clock}
	for _, fn := range mutate {
		fn(&opts)
	}
	return jobs.NewTracker(video, opts)
}

func waitJob(t *testing.T, tr *jobs.Tracker, key string) jobs.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := tr.Wait(ctx, key)
	if err != nil {
		t.Fatalf("Wait(%q): %v", key, err)
	}
	return job
}

func tick(t *testing.T, clock *testsupport.ManualClock) {
	t.Helper()
	clock.WaitForTimer(t)
	clock.Tick(interval)
}

func TestStartPollsUntilSucceeded(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	video.Script(
		capability.VideoStatus{State: capability.VideoRunning},
		capability.VideoStatus{State: capability.VideoSucceeded, Result: "https://cdn/x.mp4"},
	)
	tr := newTracker(video, clock)
	defer tr.Close()

	if err := tr.Start(context.Background(), "scene-1", "a cat on a table"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job, _ := tr.Get("scene-1"); job.Status != jobs.StatusPolling {
		t.Fatalf("expected optimistic polling, got %+v", job)
	}

	tick(t, clock)
	tick(t, clock)

	job := waitJob(t, tr, "scene-1")
	if job.Status != jobs.StatusSucceeded || job.Result != "https://cdn/x.mp4" || job.RemoteID != "job-1" {
		t.Fatalf("unexpected job %+v", job)
	}
	if video.Polls() != 2 {
		t.Fatalf("expected 2 polls, got %d", video.Polls())
	}
	clock.Tick(interval)
	if clock.Pending() != 0 || video.Polls() != 2 {
		t.Fatalf("polling continued after success: pending=%d polls=%d", clock.Pending(), video.Polls())
	}
	if tr.Active() != 0 {
		t.Fatalf("expected no active pollers, got %d", tr.Active())
	}
}

func TestRemoteFailureAndCheckErrorsFailTheJob(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*testsupport.FakeVideo)
		wantErr string
	}{
		{
			name: "remote failure",
			setup: func(v *testsupport.FakeVideo) {
				v.Script(capability.VideoStatus{State: capability.VideoFailed, Error: "content policy"})
			},
			wantErr: "content policy",
		},
		{
			name:    "check error",
			setup:   func(v *testsupport.FakeVideo) { v.PollErr = errors.New("connection reset") },
			wantErr: "status check failed: connection reset",
		},
		{
			name: "success without result",
			setup: func(v *testsupport.FakeVideo) {
				v.Script(capability.VideoStatus{State: capability.VideoSucceeded})
			},
			wantErr: "without a result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testsupport.NewManualClock()
			video := &testsupport.FakeVideo{}
			tt.setup(video)
			tr := newTracker(video, clock)
			defer tr.Close()

			if err := tr.Start(context.Background(), "k", "p"); err != nil {
				t.Fatalf("Start: %v", err)
			}
			tick(t, clock)
			job := waitJob(t, tr, "k")
			if job.Status != jobs.StatusFailed || !strings.Contains(job.Error, tt.wantErr) {
				t.Fatalf("unexpected job %+v", job)
			}
			if video.Polls() != 1 {
				t.Fatalf("expected exactly one poll, got %d", video.Polls())
			}
		})
	}
}

func TestStartRejectionFailsImmediately(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{StartErr: errors.New("quota exhausted")}
	tr := newTracker(video, clock)
	defer tr.Close()

	if err := tr.Start(context.Background(), "k", "p"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	job := waitJob(t, tr, "k")
	if job.Status != jobs.StatusFailed || job.Error != "start failed: quota exhausted" {
		t.Fatalf("unexpected job %+v", job)
	}
	if video.Polls() != 0 || clock.Pending() != 0 {
		t.Fatal("rejected job must not poll")
	}
}

func TestRestartWhilePollingReplacesPoller(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	tr := newTracker(video, clock)
	defer tr.Close()

	if err := tr.Start(context.Background(), "k", "first"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.WaitForTimer(t)

	video.Script(capability.VideoStatus{State: capability.VideoSucceeded, Result: "second.mp4"})
	if err := tr.Start(context.Background(), "k", "second"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	clock.WaitForTimer(t)
	if tr.Active() != 1 {
		t.Fatalf("expected a single poller, got %d", tr.Active())
	}
	clock.Tick(interval)

	job := waitJob(t, tr, "k")
	if job.Status != jobs.StatusSucceeded || job.RemoteID != "job-2" || job.Result != "second.mp4" {
		t.Fatalf("unexpected job %+v", job)
	}
	if video.Polls() != 1 {
		t.Fatalf("superseded poller kept polling: %d polls", video.Polls())
	}
}

func TestRestartFromTerminalDiscardsResult(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	video.Script(capability.VideoStatus{State: capability.VideoFailed, Error: "nope"})
	tr := newTracker(video, clock)
	defer tr.Close()

	_ = tr.Start(context.Background(), "k", "p")
	tick(t, clock)
	if job := waitJob(t, tr, "k"); job.Status != jobs.StatusFailed {
		t.Fatalf("expected failure first, got %+v", job)
	}

	_ = tr.Start(context.Background(), "k", "p")
	if job, _ := tr.Get("k"); job.Status != jobs.StatusPolling || job.Error != "" {
		t.Fatalf("restart should re-enter polling cleanly, got %+v", job)
	}
}

func TestMaxPollsBoundsPolling(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	tr := newTracker(video, clock, func(o *jobs.Options) { o.MaxPolls = 2 })
	defer tr.Close()

	_ = tr.Start(context.Background(), "k", "p")
	tick(t, clock)
	tick(t, clock)

	job := waitJob(t, tr, "k")
	if job.Status != jobs.StatusFailed || !strings.Contains(job.Error, "2 status checks") {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestTimeoutBoundsPolling(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	tr := newTracker(video, clock, func(o *jobs.Options) { o.Timeout = 25 * time.Second })
	defer tr.Close()

	_ = tr.Start(context.Background(), "k", "p")
	tick(t, clock)
	tick(t, clock)
	if job, _ := tr.Get("k"); job.Status != jobs.StatusPolling {
		t.Fatalf("expected still polling before the deadline, got %+v", job)
	}
	tick(t, clock)

	job := waitJob(t, tr, "k")
	if job.Status != jobs.StatusFailed || !strings.Contains(job.Error, "25s") {
		t.Fatalf("unexpected job %+v", job)
	}
	if video.Polls() != 3 {
		t.Fatalf("expected 3 polls, got %d", video.Polls())
	}
}

func TestResetStopsPollingBeforeClearing(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	tr := newTracker(video, clock)

	for _, key := range []string{"a", "b"} {
		if err := tr.Start(context.Background(), key, key); err != nil {
			t.Fatalf("Start(%s): %v", key, err)
		}
		clock.WaitForTimer(t)
	}
	tr.Reset()

	if tr.Active() != 0 {
		t.Fatalf("expected pollers stopped, got %d", tr.Active())
	}
	if len(tr.Snapshot()) != 0 {
		t.Fatalf("expected empty job map, got %v", tr.Snapshot())
	}
	clock.Tick(interval)
	time.Sleep(10 * time.Millisecond)
	if video.Polls() != 0 {
		t.Fatalf("zombie poll after reset: %d", video.Polls())
	}
	if _, ok := tr.Get("a"); ok {
		t.Fatal("reset key was resurrected")
	}
}

func TestCloseRejectsNewStarts(t *testing.T) {
	clock := testsupport.NewManualClock()
	tr := newTracker(&testsupport.FakeVideo{}, clock)
	_ = tr.Start(context.Background(), "k", "p")
	clock.WaitForTimer(t)
	tr.Close()

	if job, _ := tr.Get("k"); job.Status != jobs.StatusPolling {
		t.Fatalf("close should abandon jobs as polling, got %+v", job)
	}
	if err := tr.Start(context.Background(), "k", "p"); !errors.Is(err, jobs.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCancelMarksFailed(t *testing.T) {
	clock := testsupport.NewManualClock()
	tr := newTracker(&testsupport.FakeVideo{}, clock)
	defer tr.Close()
	_ = tr.Start(context.Background(), "k", "p")
	clock.WaitForTimer(t)

	tr.Cancel("k")
	job, _ := tr.Get("k")
	if job.Status != jobs.StatusFailed || job.Error != "canceled" {
		t.Fatalf("unexpected job %+v", job)
	}
	tr.Cancel("missing")
}

func TestRestoreOrphansPollingJobs(t *testing.T) {
	tr := newTracker(&testsupport.FakeVideo{}, testsupport.NewManualClock())
	defer tr.Close()
	tr.Restore(map[string]jobs.Job{
		"live": {RemoteID: "r1", Status: jobs.StatusPolling},
		"done": {RemoteID: "r2", Status: jobs.StatusSucceeded, Result: "x"},
	})
	live, _ := tr.Get("live")
	if live.Status != jobs.StatusFailed || live.Error != jobs.OrphanedMessage || live.RemoteID != "r1" {
		t.Fatalf("unexpected restored job %+v", live)
	}
	if done, _ := tr.Get("done"); done.Status != jobs.StatusSucceeded {
		t.Fatalf("terminal job changed on restore: %+v", done)
	}
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObservePoll(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestObserversSeeTransitions(t *testing.T) {
	clock := testsupport.NewManualClock()
	video := &testsupport.FakeVideo{}
	video.Script(
		capability.VideoStatus{State: capability.VideoRunning},
		capability.VideoStatus{State: capability.VideoSucceeded, Result: "r"},
	)
	recorder := &outcomeRecorder{}
	var mu sync.Mutex
	var statuses []jobs.Status
	tr := newTracker(video, clock, func(o *jobs.Options) {
		o.Recorder = recorder
		o.OnChange = func(_ string, job jobs.Job) {
			mu.Lock()
			defer mu.Unlock()
			statuses = append(statuses, job.Status)
		}
	})
	defer tr.Close()

	_ = tr.Start(context.Background(), "k", "p")
	tick(t, clock)
	tick(t, clock)
	waitJob(t, tr, "k")

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != 3 || statuses[2] != jobs.StatusSucceeded {
		t.Fatalf("unexpected change sequence %v", statuses)
	}
	if len(recorder.outcomes) != 2 || recorder.outcomes[0] != jobs.OutcomeRunning || recorder.outcomes[1] != jobs.OutcomeSucceeded {
		t.Fatalf("unexpected outcomes %v", recorder.outcomes)
	}
}

func TestStartWithoutGenerator(t *testing.T) {
	tr := jobs.NewTracker(nil, jobs.Options{})
	if err := tr.Start(context.Background(), "k", "p"); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestUntrackedKeysAreIdle(t *testing.T) {
	tr := newTracker(&testsupport.FakeVideo{}, testsupport.NewManualClock())
	defer tr.Close()

	job, ok := tr.Get("never-started")
	if ok || job.Status != jobs.StatusIdle {
		t.Fatalf("Get = %+v, %v; want idle and false", job, ok)
	}
	job, err := tr.Wait(context.Background(), "never-started")
	if err != nil || job.Status != jobs.StatusIdle {
		t.Fatalf("Wait = %+v, %v; want idle", job, err)
	}
}
