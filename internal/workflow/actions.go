package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/capability"
	"reelsmith/internal/content"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// stageFunc performs the capability call for a stage. It runs without the
// engine lock.
type stageFunc func(ctx context.Context) (Output, error)

// runStage executes call for stage. Success advances the workflow and clears
// the global error; failure records a global error and leaves the stage and
// its previous outputs untouched.
func (e *Engine) runStage(ctx context.Context, stage Stage, operation, failure string, call stageFunc) error {
	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()

	ctx = services.WithRequestID(services.WithStage(ctx, stage.String()), uuid.NewString())
	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("stage call started", logging.String("operation", operation))
	started := time.Now()

	output, err := call(ctx)
	elapsed := time.Since(started)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		logger.Info("stage result discarded after reset", logging.String(logging.FieldEventType, "stage_superseded"))
		return ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.mu.Unlock()
			return err
		}
		if !errors.Is(err, services.ErrGeneration) {
			err = services.Wrap(services.ErrGeneration, stage.String(), operation, "", err)
		}
		e.state.Error = failure
		e.mu.Unlock()

		e.recorder.StageFailed(stage.String())
		details := services.Details(err)
		logging.ErrorWithContext(logger, "stage failed", "stage_failed",
			logging.String("operation", operation),
			logging.String("error_kind", details.Kind),
			logging.String(logging.FieldErrorHint, details.Hint),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
		e.persist(ctx)
		return err
	}
	e.advanceLocked(stage, output)
	e.state.Error = ""
	next := e.state.Current
	e.mu.Unlock()

	e.recorder.StageCompleted(stage.String(), elapsed)
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_completed"),
		logging.String("next", next.String()),
		logging.Duration("elapsed", elapsed),
	)
	e.persist(ctx)
	return nil
}

func (e *Engine) text() (capability.TextGenerator, error) {
	if e.caps.Text == nil {
		return nil, fmt.Errorf("%w: text generator", ErrUnavailable)
	}
	return e.caps.Text, nil
}

func prerequisite(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPrerequisite}, args...)...)
}

// GenerateIdeas asks for content ideas about the selected topic.
func (e *Engine) GenerateIdeas(ctx context.Context) error {
	state := e.State()
	topic := strings.TrimSpace(state.Selections.Topic)
	if topic == "" {
		return prerequisite("a topic is required")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	req := capability.IdeaRequest{Topic: topic, Platform: state.Selections.Platform, Format: state.Selections.Format}
	return e.runStage(ctx, StageIdeation, "generate_ideas", "Failed to generate ideas. Please try again.",
		func(ctx context.Context) (Output, error) {
			ideas, err := text.GenerateIdeas(ctx, req)
			if err != nil {
				return nil, err
			}
			if len(ideas) == 0 {
				return nil, services.Wrap(services.ErrValidation, StageIdeation.String(), "generate_ideas", "no ideas returned", nil)
			}
			return IdeasOutput{Ideas: ideas}, nil
		})
}

// SelectIdea chooses ideas[index] and outlines it.
func (e *Engine) SelectIdea(ctx context.Context, index int) error {
	state := e.State()
	if index < 0 || index >= len(state.Ideas) {
		return prerequisite("idea %d does not exist", index+1)
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	idea := state.Ideas[index]
	return e.runStage(ctx, StageIdeaSelection, "generate_outline", "Failed to create an outline. Please try again.",
		func(ctx context.Context) (Output, error) {
			outline, err := text.GenerateOutline(ctx, idea)
			if err != nil {
				return nil, err
			}
			return SelectionOutput{Idea: idea, Outline: outline}, nil
		})
}

// AnalyzeKeywords runs SEO analysis for the selected idea.
func (e *Engine) AnalyzeKeywords(ctx context.Context) error {
	state := e.State()
	if state.SelectedIdea == nil {
		return prerequisite("no idea selected")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	idea := *state.SelectedIdea
	return e.runStage(ctx, StageOutlining, "analyze_keywords", "Failed to analyze keywords. Please try again.",
		func(ctx context.Context) (Output, error) {
			analysis, err := text.AnalyzeKeywords(ctx, idea)
			if err != nil {
				return nil, err
			}
			return KeywordsOutput{Analysis: analysis}, nil
		})
}

// GenerateScript writes the full script from the idea, outline, and keywords.
func (e *Engine) GenerateScript(ctx context.Context) error {
	state := e.State()
	if state.SelectedIdea == nil || state.Outline == nil || state.Keywords == nil {
		return prerequisite("script needs a selected idea, an outline, and a keyword analysis")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	req := capability.ScriptRequest{
		Idea:     *state.SelectedIdea,
		Analysis: *state.Keywords,
		Outline:  *state.Outline,
		Length:   state.Selections.ScriptLength,
	}
	return e.runStage(ctx, StageKeywordAnalysis, "write_script", "Failed to generate the script. Please try again.",
		func(ctx context.Context) (Output, error) {
			script, err := text.WriteScript(ctx, req)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(script) == "" {
				return nil, services.Wrap(services.ErrValidation, StageKeywordAnalysis.String(), "write_script", "empty script returned", nil)
			}
			return ScriptOutput{Script: script}, nil
		})
}

// StructureScript splits the script into numbered scenes.
func (e *Engine) StructureScript(ctx context.Context) error {
	state := e.State()
	if strings.TrimSpace(state.Script) == "" {
		return prerequisite("no script to structure")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	script := state.Script
	return e.runStage(ctx, StageScripting, "structure_script", "Failed to structure the script into scenes. Please try again.",
		func(ctx context.Context) (Output, error) {
			scenes, err := text.StructureScript(ctx, script)
			if err != nil {
				return nil, err
			}
			if len(scenes) == 0 {
				return nil, services.Wrap(services.ErrValidation, StageScripting.String(), "structure_script", "no scenes returned", nil)
			}
			return ScenesOutput{Scenes: scenes}, nil
		})
}

// GenerateMusicPrompts derives background music prompts from scene sound notes.
func (e *Engine) GenerateMusicPrompts(ctx context.Context) error {
	state := e.State()
	if len(state.Scenes) == 0 {
		return prerequisite("no scenes")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	scenes := state.Scenes
	return e.runStage(ctx, StageScriptReview, "music_prompts", "Failed to generate music prompts. Please try again.",
		func(ctx context.Context) (Output, error) {
			prompts, err := text.GenerateMusicPrompts(ctx, scenes)
			if err != nil {
				return nil, err
			}
			return MusicOutput{Prompts: prompts}, nil
		})
}

// ContinueToImages leaves the music stage.
func (e *Engine) ContinueToImages(ctx context.Context) error {
	if !e.State().HasCompleted(StageScriptReview) {
		return prerequisite("music prompts have not been generated")
	}
	return e.Advance(ctx, StageMusicGeneration, Proceed{})
}

// ContinueToVoiceover leaves the image stage. Images need not be complete.
func (e *Engine) ContinueToVoiceover(ctx context.Context) error {
	if !e.State().HasCompleted(StageMusicGeneration) {
		return prerequisite("the image stage has not been reached")
	}
	return e.Advance(ctx, StageImageGeneration, Proceed{})
}

// GeneratePublishingKit produces titles, description, tags, and thumbnail concepts.
func (e *Engine) GeneratePublishingKit(ctx context.Context) error {
	state := e.State()
	if state.SelectedIdea == nil || strings.TrimSpace(state.Script) == "" {
		return prerequisite("publishing kit needs a selected idea and a script")
	}
	text, err := e.text()
	if err != nil {
		return err
	}
	idea, script := *state.SelectedIdea, state.Script
	return e.runStage(ctx, StageVoiceover, "publishing_kit", "Failed to generate the publishing kit. Please try again.",
		func(ctx context.Context) (Output, error) {
			kit, err := text.GeneratePublishingKit(ctx, idea, script)
			if err != nil {
				return nil, err
			}
			return PublishingOutput{Kit: kit}, nil
		})
}

// sceneByNumber finds scene n in the current script.
func (e *Engine) sceneByNumber(n int) (content.Scene, error) {
	scene, ok := content.FindScene(e.State().Scenes, n)
	if !ok {
		return content.Scene{}, prerequisite("scene %d does not exist", n)
	}
	return scene, nil
}
