package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"reelsmith/internal/artifact"
	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// generate runs one artifact attempt for the project of epoch. The returned
// entry is whatever the store holds for the key once the call finishes, which
// may belong to a newer attempt. Once the project is reset the attempt is
// never begun, or its result is dropped, and ErrSuperseded is returned.
func (e *Engine) generate(ctx context.Context, epoch uint64, store *artifact.Store, key, operation string, call func(context.Context) (string, error)) (artifact.Entry, error) {
	ctx = services.WithArtifactKey(ctx, key)
	logger := logging.WithContext(ctx, e.logger).With(logging.String("store", store.Name()))

	e.resetMu.RLock()
	if !e.sameEpoch(epoch) {
		e.resetMu.RUnlock()
		return artifact.Entry{}, ErrSuperseded
	}
	attempt := store.Begin(key)
	e.resetMu.RUnlock()

	payload, err := call(ctx)
	if !e.sameEpoch(epoch) {
		logger.Info("artifact result discarded after reset", logging.String(logging.FieldEventType, "artifact_superseded"))
		return artifact.Entry{}, ErrSuperseded
	}
	if err != nil {
		wrapped := services.Wrap(services.ErrGeneration, store.Name(), operation, "", err)
		if attempt.Fail(failureText(err)) {
			logging.WarnWithContext(logger, "artifact generation failed", "artifact_failed",
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "the item can be generated again"),
				logging.Error(err),
			)
		}
		entry, _ := store.Get(key)
		return entry, wrapped
	}
	if !attempt.Complete(payload) {
		logger.Debug("artifact result superseded")
	}
	entry, _ := store.Get(key)
	return entry, nil
}

func failureText(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return err.Error()
}

// GenerateImage renders the image for scene n. Scenes sharing a visual
// description share the result.
func (e *Engine) GenerateImage(ctx context.Context, n int) (artifact.Entry, error) {
	ctx, epoch, done := e.scope(ctx)
	defer done()
	scene, err := e.sceneByNumber(n)
	if err != nil {
		return artifact.Entry{}, err
	}
	return e.generateSceneImage(ctx, epoch, scene, e.State().Selections)
}

func (e *Engine) generateSceneImage(ctx context.Context, epoch uint64, scene content.Scene, sel Selections) (artifact.Entry, error) {
	key := scene.VisualKey()
	if key == "" {
		return artifact.Entry{}, prerequisite("scene %d has no visual description", scene.Number)
	}
	if e.caps.Images == nil {
		return artifact.Entry{}, fmt.Errorf("%w: image generator", ErrUnavailable)
	}
	prompt := scene.VisualPrompt(sel.PromptLanguage)
	return e.generate(ctx, epoch, e.images, key, "generate_image", func(ctx context.Context) (string, error) {
		return e.caps.Images.GenerateImage(ctx, prompt, sel.ImageStyle)
	})
}

// GenerateAllImages renders one image per distinct visual key with bounded
// parallelism. Per-item failures are recorded in the store and joined into
// the returned error.
func (e *Engine) GenerateAllImages(ctx context.Context) error {
	ctx, epoch, done := e.scope(ctx)
	defer done()
	state := e.State()
	if len(state.Scenes) == 0 {
		return prerequisite("no scenes")
	}
	seen := make(map[string]bool, len(state.Scenes))
	var unique []content.Scene
	for _, scene := range state.Scenes {
		key := scene.VisualKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, scene)
	}
	return e.fanOutScenes(ctx, epoch, unique, func(ctx context.Context, scene content.Scene) error {
		_, err := e.generateSceneImage(ctx, epoch, scene, state.Selections)
		return err
	})
}

// Image returns the image entry for scene n.
func (e *Engine) Image(n int) (artifact.Entry, bool) {
	scene, ok := content.FindScene(e.State().Scenes, n)
	if !ok {
		return artifact.Entry{}, false
	}
	return e.images.Get(scene.VisualKey())
}

// GenerateThumbnail renders publishing-kit thumbnail concept i.
func (e *Engine) GenerateThumbnail(ctx context.Context, i int) (artifact.Entry, error) {
	ctx, epoch, done := e.scope(ctx)
	defer done()
	state := e.State()
	if state.Kit == nil || i < 0 || i >= len(state.Kit.ThumbnailConcepts) {
		return artifact.Entry{}, prerequisite("thumbnail concept %d does not exist", i+1)
	}
	prompt := state.Kit.ThumbnailConcepts[i].Prompt
	key := content.CanonicalKey(prompt)
	if key == "" {
		return artifact.Entry{}, prerequisite("thumbnail concept %d has no prompt", i+1)
	}
	if e.caps.Images == nil {
		return artifact.Entry{}, fmt.Errorf("%w: image generator", ErrUnavailable)
	}
	style := state.Selections.ThumbnailStyle
	return e.generate(ctx, epoch, e.thumbnails, key, "generate_thumbnail", func(ctx context.Context) (string, error) {
		return e.caps.Images.GenerateImage(ctx, prompt, style)
	})
}

// Thumbnail returns the entry for thumbnail concept i.
func (e *Engine) Thumbnail(i int) (artifact.Entry, bool) {
	state := e.State()
	if state.Kit == nil || i < 0 || i >= len(state.Kit.ThumbnailConcepts) {
		return artifact.Entry{}, false
	}
	return e.thumbnails.Get(content.CanonicalKey(state.Kit.ThumbnailConcepts[i].Prompt))
}

// Synthesize voices the dialogue of scene n with engine and its selected voice.
func (e *Engine) Synthesize(ctx context.Context, engine content.Engine, n int) (artifact.Entry, error) {
	ctx, epoch, done := e.scope(ctx)
	defer done()
	scene, err := e.sceneByNumber(n)
	if err != nil {
		return artifact.Entry{}, err
	}
	return e.synthesizeScene(ctx, epoch, engine, scene, e.State().Selections.Voice(engine))
}

func (e *Engine) synthesizeScene(ctx context.Context, epoch uint64, engine content.Engine, scene content.Scene, voice string) (artifact.Entry, error) {
	store, ok := e.voices[engine]
	if !ok {
		return artifact.Entry{}, fmt.Errorf("unknown speech engine %q", engine)
	}
	if strings.TrimSpace(scene.Dialogue) == "" {
		return artifact.Entry{}, prerequisite("scene %d has no dialogue", scene.Number)
	}
	synth := e.caps.Speech[engine]
	if synth == nil {
		return artifact.Entry{}, fmt.Errorf("%w: %s speech", ErrUnavailable, engine)
	}
	return e.generate(ctx, epoch, store, scene.VoiceKey(), "synthesize", func(ctx context.Context) (string, error) {
		return synth.Synthesize(ctx, scene.Dialogue, voice)
	})
}

// SynthesizeAll voices every scene with dialogue using engine.
func (e *Engine) SynthesizeAll(ctx context.Context, engine content.Engine) error {
	ctx, epoch, done := e.scope(ctx)
	defer done()
	state := e.State()
	var scenes []content.Scene
	for _, scene := range state.Scenes {
		if strings.TrimSpace(scene.Dialogue) != "" {
			scenes = append(scenes, scene)
		}
	}
	if len(scenes) == 0 {
		return prerequisite("no scenes with dialogue")
	}
	voice := state.Selections.Voice(engine)
	return e.fanOutScenes(ctx, epoch, scenes, func(ctx context.Context, scene content.Scene) error {
		_, err := e.synthesizeScene(ctx, epoch, engine, scene, voice)
		return err
	})
}

// Voice returns the audio entry for scene n and engine.
func (e *Engine) Voice(engine content.Engine, n int) (artifact.Entry, bool) {
	store, ok := e.voices[engine]
	if !ok {
		return artifact.Entry{}, false
	}
	return store.Get(content.SceneKey(n))
}

// fanOutScenes runs fn for every scene, at most fanOut at a time. It does not
// stop at the first failure. Scenes still queued when the project of epoch is
// reset are skipped and the run reports ErrSuperseded.
func (e *Engine) fanOutScenes(ctx context.Context, epoch uint64, scenes []content.Scene, fn func(context.Context, content.Scene) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(e.fanOut)
	for _, scene := range scenes {
		g.Go(func() error {
			if !e.sameEpoch(epoch) {
				return nil
			}
			if err := fn(ctx, scene); err != nil {
				if errors.Is(err, ErrSuperseded) {
					return nil
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("scene %d: %w", scene.Number, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if !e.sameEpoch(epoch) {
		return ErrSuperseded
	}
	return errors.Join(errs...)
}

// StartVideo starts a video job for scene n. Scenes sharing a visual
// description share the job.
func (e *Engine) StartVideo(ctx context.Context, n int) (string, error) {
	scene, err := e.sceneByNumber(n)
	if err != nil {
		return "", err
	}
	key := scene.VisualKey()
	if key == "" {
		return "", prerequisite("scene %d has no visual description", n)
	}
	prompt := scene.VisualPrompt(content.LanguageEnglish)
	if err := e.videos.Start(ctx, key, prompt); err != nil {
		return "", err
	}
	return key, nil
}

// WaitVideo blocks until the job for scene n stops polling or ctx ends.
func (e *Engine) WaitVideo(ctx context.Context, n int) (jobs.Job, error) {
	scene, err := e.sceneByNumber(n)
	if err != nil {
		return jobs.Job{}, err
	}
	return e.videos.Wait(ctx, scene.VisualKey())
}

// CancelVideo stops polling for scene n and records the job as failed.
func (e *Engine) CancelVideo(n int) error {
	scene, err := e.sceneByNumber(n)
	if err != nil {
		return err
	}
	e.videos.Cancel(scene.VisualKey())
	return nil
}

// Video returns the job for scene n.
func (e *Engine) Video(n int) (jobs.Job, bool) {
	scene, ok := content.FindScene(e.State().Scenes, n)
	if !ok {
		return jobs.Job{Status: jobs.StatusIdle}, false
	}
	return e.videos.Get(scene.VisualKey())
}

// ActiveVideos returns the number of jobs still polling.
func (e *Engine) ActiveVideos() int {
	return e.videos.Active()
}
