// Package capability declares the generative collaborators the workflow
// engine calls. Concrete adapters live under internal/services; tests use the
// fakes in internal/testsupport.
package capability

import (
	"context"

	"reelsmith/internal/content"
)

// IdeaRequest carries the ideation inputs.
type IdeaRequest struct {
	Topic    string
	Platform string
	Format   string
}

// ScriptRequest carries the scripting inputs.
type ScriptRequest struct {
	Idea     content.Idea
	Analysis content.KeywordAnalysis
	Outline  content.Outline
	Length   content.ScriptLength
}

type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, req IdeaRequest) ([]content.Idea, error)
}

type OutlineGenerator interface {
	GenerateOutline(ctx context.Context, idea content.Idea) (content.Outline, error)
}

type KeywordAnalyzer interface {
	AnalyzeKeywords(ctx context.Context, idea content.Idea) (content.KeywordAnalysis, error)
}

type ScriptWriter interface {
	WriteScript(ctx context.Context, req ScriptRequest) (string, error)
}

type ScriptStructurer interface {
	StructureScript(ctx context.Context, script string) ([]content.Scene, error)
}

// MusicPromptGenerator returns an empty list when no scene has a sound suggestion.
type MusicPromptGenerator interface {
	GenerateMusicPrompts(ctx context.Context, scenes []content.Scene) ([]content.MusicPrompt, error)
}

type PublishingKitGenerator interface {
	GeneratePublishingKit(ctx context.Context, idea content.Idea, script string) (content.PublishingKit, error)
}

// TextGenerator is the set of text stages usually served by one language model.
type TextGenerator interface {
	IdeaGenerator
	OutlineGenerator
	KeywordAnalyzer
	ScriptWriter
	ScriptStructurer
	MusicPromptGenerator
	PublishingKitGenerator
}

// ImageGenerator renders prompt in style and returns a data URL or hosted URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style string) (string, error)
}

// SpeechSynthesizer renders text with voice and returns a playable audio reference.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (string, error)
}

// VideoState is the remote view of a video job.
type VideoState string

const (
	VideoRunning   VideoState = "running"
	VideoSucceeded VideoState = "succeeded"
	VideoFailed    VideoState = "failed"
)

// VideoStatus is one poll result.
type VideoStatus struct {
	State  VideoState
	Result string
	Error  string
}

// VideoGenerator is the two-call long-running video capability.
type VideoGenerator interface {
	StartVideoJob(ctx context.Context, prompt string) (string, error)
	PollVideoJob(ctx context.Context, jobID string) (VideoStatus, error)
}

// Set groups the collaborators handed to the engine. Nil members disable the
// corresponding actions.
type Set struct {
	Text   TextGenerator
	Images ImageGenerator
	Speech map[content.Engine]SpeechSynthesizer
	Video  VideoGenerator
}
