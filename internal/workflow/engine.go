package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"reelsmith/internal/artifact"
	"reelsmith/internal/capability"
	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
	"reelsmith/internal/logging"
)

// Artifact store names.
const (
	StoreImages     = "images"
	StoreThumbnails = "thumbnails"
)

// VoiceStore returns the artifact store name for engine.
func VoiceStore(engine content.Engine) string {
	return "voice_" + string(engine)
}

const defaultFanOut = 3

// Options configures an Engine.
type Options struct {
	Defaults  Selections
	Logger    *slog.Logger
	Persister Persister
	Recorder  Recorder
	// FanOut bounds parallel generations in the bulk helpers.
	FanOut int
	// Jobs configures the video tracker. Logger and OnChange are set by the engine.
	Jobs jobs.Options
}

// Engine owns a project and drives it through the stages.
type Engine struct {
	caps      capability.Set
	defaults  Selections
	logger    *slog.Logger
	persister Persister
	recorder  Recorder
	fanOut    int

	images     *artifact.Store
	thumbnails *artifact.Store
	voices     map[content.Engine]*artifact.Store
	videos     *jobs.Tracker

	mu    sync.Mutex
	state State
	// epoch changes on every reset so in-flight stage calls can tell their
	// result belongs to a project that no longer exists.
	epoch uint64
	// lifetime ends on reset; artifact calls run under it.
	lifetime    context.Context
	endLifetime context.CancelFunc

	// resetMu is held for writing while Reset clears the stores and for
	// reading while an artifact attempt checks the epoch and begins.
	resetMu sync.RWMutex

	persistMu sync.Mutex
}

// New constructs an engine with an empty project. Call Restore to load the
// persisted one.
func New(caps capability.Set, opts Options) *Engine {
	defaults := opts.Defaults.withDefaults(DefaultSelections())
	e := &Engine{
		caps:      caps,
		defaults:  defaults,
		logger:    logging.NewComponentLogger(opts.Logger, "workflow"),
		persister: opts.Persister,
		recorder:  opts.Recorder,
		fanOut:    opts.FanOut,
		state:     NewState(defaults),
	}
	e.lifetime, e.endLifetime = context.WithCancel(context.Background())
	if e.persister == nil {
		e.persister = nopPersister{}
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	if e.fanOut <= 0 {
		e.fanOut = defaultFanOut
	}

	observer := artifact.WithObserver(e.artifactChanged)
	e.images = artifact.New(StoreImages, observer)
	e.thumbnails = artifact.New(StoreThumbnails, observer)
	e.voices = make(map[content.Engine]*artifact.Store, len(content.Engines))
	for _, engine := range content.Engines {
		e.voices[engine] = artifact.New(VoiceStore(engine), observer)
	}

	jobOpts := opts.Jobs
	jobOpts.Logger = opts.Logger
	jobOpts.OnChange = func(string, jobs.Job) { e.persist(context.Background()) }
	e.videos = jobs.NewTracker(caps.Video, jobOpts)
	return e
}

// Restore replaces the in-memory project with the persisted snapshot, if any.
func (e *Engine) Restore(ctx context.Context) bool {
	snap, ok := e.persister.Load(ctx)
	if !ok {
		return false
	}
	snap = snap.Settled()

	e.mu.Lock()
	e.state = snap.State.sanitize(e.defaults)
	e.mu.Unlock()

	e.images.Restore(snap.Images)
	e.thumbnails.Restore(snap.Thumbnails)
	for engine, store := range e.voices {
		store.Restore(snap.Voices[engine])
	}
	e.videos.Restore(snap.Videos)

	state := e.State()
	e.logger.Info("project restored",
		logging.String(logging.FieldEventType, "project_restored"),
		logging.Stage(state.Current.String()),
		logging.Int("images", e.images.Len()),
		logging.Int("videos", len(snap.Videos)),
	)
	return true
}

// Close stops video polling and cancels artifact calls in flight. Jobs still
// polling are abandoned and will be reported failed on the next restore.
func (e *Engine) Close() {
	e.videos.Close()
	e.mu.Lock()
	e.endLifetime()
	e.mu.Unlock()
}

// scope captures the current epoch and derives a context that also ends when
// the project is reset.
func (e *Engine) scope(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	e.mu.Lock()
	epoch, lifetime := e.epoch, e.lifetime
	e.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(lifetime, cancel)
	return ctx, epoch, func() {
		stop()
		cancel()
	}
}

func (e *Engine) sameEpoch(epoch uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epoch == epoch
}

// State returns a copy of the aggregate.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Snapshot captures the aggregate and every fan-out map.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		State:      e.State(),
		Images:     e.images.Snapshot(),
		Thumbnails: e.thumbnails.Snapshot(),
		Voices:     make(map[content.Engine]map[string]artifact.Entry, len(e.voices)),
		Videos:     e.videos.Snapshot(),
	}
	for engine, store := range e.voices {
		snap.Voices[engine] = store.Snapshot()
	}
	return snap
}

// Advance stores output under stage, marks the stage completed, and moves to
// its successor.
func (e *Engine) Advance(ctx context.Context, stage Stage, output Output) error {
	if !stage.Valid() || output == nil || !output.accepts(stage) {
		return fmt.Errorf("%w: %T for %s", ErrOutputMismatch, output, stage)
	}
	e.mu.Lock()
	e.advanceLocked(stage, output)
	e.mu.Unlock()
	e.persist(ctx)
	return nil
}

func (e *Engine) advanceLocked(stage Stage, output Output) {
	output.apply(&e.state)
	e.state.markCompleted(stage)
	e.state.Current = stage.Next()
}

// NavigateBackTo moves to an earlier stage and clears the global error.
// Targets at or after the current stage are ignored. No output is discarded.
func (e *Engine) NavigateBackTo(ctx context.Context, stage Stage) bool {
	e.mu.Lock()
	if !stage.Valid() || stage >= e.state.Current {
		e.mu.Unlock()
		return false
	}
	from := e.state.Current
	e.state.Current = stage
	e.state.Error = ""
	e.mu.Unlock()

	e.logger.Info("navigated back",
		logging.String(logging.FieldEventType, "navigate_back"),
		logging.String("from", from.String()),
		logging.String("to", stage.String()),
	)
	e.persist(ctx)
	return true
}

// DismissError clears the global error.
func (e *Engine) DismissError(ctx context.Context) {
	e.mu.Lock()
	changed := e.state.Error != ""
	e.state.Error = ""
	e.mu.Unlock()
	if changed {
		e.persist(ctx)
	}
}

// Reset stops all video polling, clears every output, artifact, and job, and
// purges the durable snapshot.
func (e *Engine) Reset(ctx context.Context) {
	e.resetMu.Lock()
	e.mu.Lock()
	e.epoch++
	e.endLifetime()
	e.lifetime, e.endLifetime = context.WithCancel(context.Background())
	e.mu.Unlock()

	e.videos.Reset()
	e.images.Clear()
	e.thumbnails.Clear()
	for _, store := range e.voices {
		store.Clear()
	}

	e.persistMu.Lock()
	e.mu.Lock()
	e.state = NewState(e.defaults)
	e.mu.Unlock()
	err := e.persister.Purge(ctx)
	e.persistMu.Unlock()
	e.resetMu.Unlock()

	if err != nil {
		e.recorder.PersistFailed()
		logging.WarnWithContext(e.logger, "snapshot purge failed", "persist_failed",
			logging.String(logging.FieldImpact, "the old project may reappear on next start"),
			logging.Error(err),
		)
		return
	}
	e.logger.Info("project reset", logging.String(logging.FieldEventType, "project_reset"))
}

// persist saves the current snapshot. Failures are logged and counted only.
func (e *Engine) persist(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	if err := e.persister.Save(ctx, e.Snapshot()); err != nil {
		e.recorder.PersistFailed()
		logging.WarnWithContext(e.logger, "snapshot save failed", "persist_failed",
			logging.String(logging.FieldImpact, "in-memory project is the only copy"),
			logging.String(logging.FieldErrorHint, "check the state directory or redis connection"),
			logging.Error(err),
		)
	}
}

func (e *Engine) artifactChanged(store, _ string, entry artifact.Entry) {
	if !entry.IsLoading {
		e.recorder.ArtifactSettled(store, entry.Status())
	}
	e.persist(context.Background())
}

// updateSelections applies fn under the lock and persists.
func (e *Engine) updateSelections(ctx context.Context, fn func(*Selections)) {
	e.mu.Lock()
	fn(&e.state.Selections)
	e.mu.Unlock()
	e.persist(ctx)
}

// SetTopic sets the ideation topic.
func (e *Engine) SetTopic(ctx context.Context, topic string) {
	e.updateSelections(ctx, func(s *Selections) { s.Topic = strings.TrimSpace(topic) })
}

// SetPlatform sets the target platform.
func (e *Engine) SetPlatform(ctx context.Context, platform string) {
	e.updateSelections(ctx, func(s *Selections) { s.Platform = fallback(platform, e.defaults.Platform) })
}

// SetFormat sets the video format description.
func (e *Engine) SetFormat(ctx context.Context, format string) {
	e.updateSelections(ctx, func(s *Selections) { s.Format = fallback(format, e.defaults.Format) })
}

// SetImageStyle sets the style passed with every scene image prompt.
func (e *Engine) SetImageStyle(ctx context.Context, style string) {
	e.updateSelections(ctx, func(s *Selections) { s.ImageStyle = fallback(style, e.defaults.ImageStyle) })
}

// SetScriptLength sets the requested script length.
func (e *Engine) SetScriptLength(ctx context.Context, length content.ScriptLength) error {
	if !length.Valid() {
		return fmt.Errorf("unknown script length %q", length)
	}
	e.updateSelections(ctx, func(s *Selections) { s.ScriptLength = length })
	return nil
}

// SetPromptLanguage chooses which visual description is sent for images.
func (e *Engine) SetPromptLanguage(ctx context.Context, lang content.PromptLanguage) error {
	if !lang.Valid() {
		return fmt.Errorf("unknown prompt language %q", lang)
	}
	e.updateSelections(ctx, func(s *Selections) { s.PromptLanguage = lang })
	return nil
}

// SetVoice selects a catalogued voice for engine.
func (e *Engine) SetVoice(ctx context.Context, engine content.Engine, voice string) error {
	if _, ok := content.LookupVoice(engine, voice); !ok {
		return fmt.Errorf("voice %q is not available for %s", voice, engine)
	}
	e.updateSelections(ctx, func(s *Selections) {
		if engine == content.EngineGoogle {
			s.GoogleVoice = voice
		} else {
			s.VbeeVoice = voice
		}
	})
	return nil
}

func fallback(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
