package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
	"reelsmith/internal/services"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/workflow"
)

func TestScenesWithSameVisualShareImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)

	entry, err := h.engine.GenerateImage(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !entry.Ready() {
		t.Fatalf("expected ready entry, got %+v", entry)
	}
	shared, ok := h.engine.Image(2)
	if !ok || shared.Payload != entry.Payload {
		t.Fatalf("scene 2 should see scene 1's image, got %+v", shared)
	}
	if _, ok := h.engine.Image(3); ok {
		t.Fatal("scene 3 has a different visual and should have no image yet")
	}
}

func TestGenerateAllImagesOncePerKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)
	if err := h.engine.SetPromptLanguage(ctx, content.LanguageEnglish); err != nil {
		t.Fatalf("SetPromptLanguage: %v", err)
	}

	if err := h.engine.GenerateAllImages(ctx); err != nil {
		t.Fatalf("GenerateAllImages: %v", err)
	}
	prompts := h.images.Prompts()
	if len(prompts) != 2 {
		t.Fatalf("expected one request per distinct visual, got %v", prompts)
	}
	for n := 1; n <= 3; n++ {
		if entry, ok := h.engine.Image(n); !ok || !entry.Ready() {
			t.Fatalf("scene %d image not ready: %+v", n, entry)
		}
	}
}

func TestImagePromptFollowsLanguage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)

	if _, err := h.engine.GenerateImage(ctx, 3); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if err := h.engine.SetPromptLanguage(ctx, content.LanguageEnglish); err != nil {
		t.Fatalf("SetPromptLanguage: %v", err)
	}
	if _, err := h.engine.GenerateImage(ctx, 3); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	prompts := h.images.Prompts()
	if len(prompts) != 2 || prompts[0] != "hoàng hôn" || prompts[1] != "a sunset over the sea" {
		t.Fatalf("unexpected prompts %v", prompts)
	}
	entry, _ := h.engine.Image(3)
	if !strings.HasSuffix(entry.Payload, "|"+workflow.DefaultSelections().ImageStyle) {
		t.Fatalf("style not passed through: %q", entry.Payload)
	}
}

func TestImageFailureIsPerItem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)
	h.images.Err = errors.New("content policy")

	entry, err := h.engine.GenerateImage(ctx, 1)
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if entry.IsLoading || entry.Error != "content policy" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	state := h.engine.State()
	if state.Error != "" || state.Current != workflow.StageScriptReview {
		t.Fatalf("artifact failure leaked into workflow state: %+v", state)
	}

	if err := h.engine.GenerateAllImages(ctx); err == nil || !strings.Contains(err.Error(), "scene 3") {
		t.Fatalf("expected joined per-scene errors, got %v", err)
	}
}

func TestNewerImageAttemptWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)
	gate := make(chan struct{})
	h.images.Gate = gate

	first := make(chan error, 1)
	go func() {
		_, err := h.engine.GenerateImage(ctx, 1)
		first <- err
	}()
	waitFor(t, func() bool { return len(h.images.Prompts()) == 1 })

	h.images.Gate = nil
	if err := h.engine.SetPromptLanguage(ctx, content.LanguageEnglish); err != nil {
		t.Fatalf("SetPromptLanguage: %v", err)
	}
	if _, err := h.engine.GenerateImage(ctx, 2); err != nil {
		t.Fatalf("second GenerateImage: %v", err)
	}

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first GenerateImage: %v", err)
	}
	entry, _ := h.engine.Image(1)
	if !strings.Contains(entry.Payload, "a cat on a table") {
		t.Fatalf("late result of the older attempt overwrote the newer one: %q", entry.Payload)
	}
}

func TestResetStopsBulkGeneration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)

	engine := workflow.New(capability.Set{Text: h.text, Images: h.images}, workflow.Options{
		Persister: h.store,
		FanOut:    1,
	})
	t.Cleanup(engine.Close)
	if !engine.Restore(ctx) {
		t.Fatal("expected the structured project to restore")
	}
	h.images.Gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- engine.GenerateAllImages(ctx) }()
	waitFor(t, func() bool { return len(h.images.Prompts()) == 1 })

	engine.Reset(ctx)

	if err := <-done; !errors.Is(err, workflow.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if prompts := h.images.Prompts(); len(prompts) != 1 {
		t.Fatalf("queued scene ran after reset: %v", prompts)
	}
	if snap := engine.Snapshot(); len(snap.Images) != 0 {
		t.Fatalf("images survived reset: %+v", snap.Images)
	}
	if _, ok := h.store.Load(ctx); ok {
		t.Fatal("reset project was written back to the store")
	}
	if _, err := engine.GenerateImage(ctx, 1); !errors.Is(err, workflow.ErrPrerequisite) {
		t.Fatalf("expected ErrPrerequisite on the empty project, got %v", err)
	}
}

func TestThumbnails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.engine.GenerateThumbnail(ctx, 0); !errors.Is(err, workflow.ErrPrerequisite) {
		t.Fatalf("expected ErrPrerequisite before the kit exists, got %v", err)
	}
	h.toScenes(t)
	if err := h.engine.GeneratePublishingKit(ctx); err != nil {
		t.Fatalf("GeneratePublishingKit: %v", err)
	}
	entry, err := h.engine.GenerateThumbnail(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateThumbnail: %v", err)
	}
	want := "data:image/png;base64,calm sea at dusk|" + workflow.DefaultSelections().ThumbnailStyle
	if entry.Payload != want {
		t.Fatalf("payload = %q, want %q", entry.Payload, want)
	}
	if got, ok := h.engine.Thumbnail(1); !ok || got.Payload != want {
		t.Fatalf("Thumbnail lookup = %+v", got)
	}
	if _, ok := h.engine.Thumbnail(0); ok {
		t.Fatal("thumbnail 0 was never generated")
	}
}

func TestVoicesArePerEngine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)

	if err := h.engine.SynthesizeAll(ctx, content.EngineVbee); err != nil {
		t.Fatalf("SynthesizeAll: %v", err)
	}
	if h.vbee.Calls() != 3 || h.google.Calls() != 0 {
		t.Fatalf("calls vbee=%d google=%d", h.vbee.Calls(), h.google.Calls())
	}
	entry, ok := h.engine.Voice(content.EngineVbee, 2)
	voice := workflow.DefaultSelections().VbeeVoice
	if !ok || !strings.HasPrefix(entry.Payload, "vbee://"+voice+"/") {
		t.Fatalf("unexpected vbee entry %+v", entry)
	}
	if _, ok := h.engine.Voice(content.EngineGoogle, 2); ok {
		t.Fatal("google store should be empty")
	}

	entry, err := h.engine.Synthesize(ctx, content.EngineGoogle, 1)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(entry.Payload, "google://") {
		t.Fatalf("unexpected google entry %+v", entry)
	}
}

func TestMissingCapabilities(t *testing.T) {
	engine := workflow.New(capability.Set{Text: &testsupport.FakeText{}}, workflow.Options{})
	t.Cleanup(engine.Close)
	ctx := context.Background()
	engine.SetTopic(ctx, "cats")
	for _, step := range []func(context.Context) error{
		engine.GenerateIdeas,
		func(ctx context.Context) error { return engine.SelectIdea(ctx, 0) },
		engine.AnalyzeKeywords,
		engine.GenerateScript,
		engine.StructureScript,
	} {
		if err := step(ctx); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if _, err := engine.GenerateImage(ctx, 1); !errors.Is(err, workflow.ErrUnavailable) {
		t.Fatalf("image: expected ErrUnavailable, got %v", err)
	}
	if _, err := engine.Synthesize(ctx, content.EngineVbee, 1); !errors.Is(err, workflow.ErrUnavailable) {
		t.Fatalf("voice: expected ErrUnavailable, got %v", err)
	}
	if _, err := engine.StartVideo(ctx, 1); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("video: expected ErrConfiguration, got %v", err)
	}
	if engine.State().Error != "" {
		t.Fatal("missing capabilities should not set the global error")
	}
}

func TestVideoJobThroughEngine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)
	h.video.Script(capability.VideoStatus{State: capability.VideoSucceeded, Result: "https://cdn/cat.mp4"})

	key, err := h.engine.StartVideo(ctx, 1)
	if err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	if key != "a cat on a table" {
		t.Fatalf("unexpected key %q", key)
	}
	if job, _ := h.engine.Video(2); job.Status != jobs.StatusPolling {
		t.Fatalf("scene 2 should share the polling job, got %+v", job)
	}
	h.clock.WaitForTimer(t)
	h.clock.Tick(pollInterval)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	job, err := h.engine.WaitVideo(waitCtx, 1)
	if err != nil {
		t.Fatalf("WaitVideo: %v", err)
	}
	if job.Status != jobs.StatusSucceeded || job.Result != "https://cdn/cat.mp4" {
		t.Fatalf("unexpected job %+v", job)
	}

	waitFor(t, func() bool {
		snap, ok := h.store.Load(ctx)
		return ok && snap.Videos[key].Status == jobs.StatusSucceeded
	})
}

func TestCancelVideo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.toScenes(t)
	if _, err := h.engine.StartVideo(ctx, 3); err != nil {
		t.Fatalf("StartVideo: %v", err)
	}
	h.clock.WaitForTimer(t)
	if err := h.engine.CancelVideo(3); err != nil {
		t.Fatalf("CancelVideo: %v", err)
	}
	job, _ := h.engine.Video(3)
	if job.Status != jobs.StatusFailed || h.engine.ActiveVideos() != 0 {
		t.Fatalf("cancel did not stop the job: %+v", job)
	}
	if err := h.engine.CancelVideo(9); !errors.Is(err, workflow.ErrPrerequisite) {
		t.Fatalf("expected ErrPrerequisite for unknown scene, got %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
