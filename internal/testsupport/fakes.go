package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"reelsmith/internal/capability"
	"reelsmith/internal/content"
)

// FakeText is a scripted capability.TextGenerator. Each field left nil falls
// back to a small canned response.
type FakeText struct {
	mu    sync.Mutex
	calls map[string]int

	Ideas      func(capability.IdeaRequest) ([]content.Idea, error)
	Outline    func(content.Idea) (content.Outline, error)
	Keywords   func(content.Idea) (content.KeywordAnalysis, error)
	Script     func(capability.ScriptRequest) (string, error)
	Structure  func(string) ([]content.Scene, error)
	Music      func([]content.Scene) ([]content.MusicPrompt, error)
	Publishing func(content.Idea, string) (content.PublishingKit, error)
}

// Calls returns how many times the named method ran.
func (f *FakeText) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeText) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

func (f *FakeText) GenerateIdeas(_ context.Context, req capability.IdeaRequest) ([]content.Idea, error) {
	f.record("GenerateIdeas")
	if f.Ideas != nil {
		return f.Ideas(req)
	}
	return SampleIdeas(req.Topic), nil
}

func (f *FakeText) GenerateOutline(_ context.Context, idea content.Idea) (content.Outline, error) {
	f.record("GenerateOutline")
	if f.Outline != nil {
		return f.Outline(idea)
	}
	return SampleOutline(), nil
}

func (f *FakeText) AnalyzeKeywords(_ context.Context, idea content.Idea) (content.KeywordAnalysis, error) {
	f.record("AnalyzeKeywords")
	if f.Keywords != nil {
		return f.Keywords(idea)
	}
	return SampleKeywords(), nil
}

func (f *FakeText) WriteScript(_ context.Context, req capability.ScriptRequest) (string, error) {
	f.record("WriteScript")
	if f.Script != nil {
		return f.Script(req)
	}
	return "Scene one dialogue.\n\nScene two dialogue.", nil
}

func (f *FakeText) StructureScript(_ context.Context, script string) ([]content.Scene, error) {
	f.record("StructureScript")
	if f.Structure != nil {
		return f.Structure(script)
	}
	return SampleScenes(), nil
}

func (f *FakeText) GenerateMusicPrompts(_ context.Context, scenes []content.Scene) ([]content.MusicPrompt, error) {
	f.record("GenerateMusicPrompts")
	if f.Music != nil {
		return f.Music(scenes)
	}
	var prompts []content.MusicPrompt
	for _, scene := range scenes {
		if strings.TrimSpace(scene.Sound) != "" {
			prompts = append(prompts, content.MusicPrompt{Scene: scene.Number, Prompt: "music for " + scene.Sound})
		}
	}
	return prompts, nil
}

func (f *FakeText) GeneratePublishingKit(_ context.Context, idea content.Idea, script string) (content.PublishingKit, error) {
	f.record("GeneratePublishingKit")
	if f.Publishing != nil {
		return f.Publishing(idea, script)
	}
	return SampleKit(idea.Title), nil
}

// SampleIdeas returns three ideas mentioning topic.
func SampleIdeas(topic string) []content.Idea {
	ideas := make([]content.Idea, 3)
	for i := range ideas {
		ideas[i] = content.Idea{
			Title:            fmt.Sprintf("%s idea %d", topic, i+1),
			Description:      "description",
			TargetAudience:   "audience",
			ValueProposition: "value",
		}
	}
	return ideas
}

// SampleOutline returns a two-point outline.
func SampleOutline() content.Outline {
	return content.Outline{
		Hook:         "hook",
		Introduction: "intro",
		MainPoints:   []content.OutlinePoint{{Title: "one", Description: "first"}, {Title: "two", Description: "second"}},
		CTA:          "subscribe",
		Outro:        "bye",
	}
}

// SampleKeywords returns a minimal analysis.
func SampleKeywords() content.KeywordAnalysis {
	return content.KeywordAnalysis{
		PrimaryKeywords:   []string{"primary"},
		SecondaryKeywords: []string{"secondary"},
		SearchIntent:      "informational",
		SEOTitle:          "SEO title",
		TrendAnalysis:     "rising",
	}
}

// SampleScenes returns three scenes; the first two share a visual description.
func SampleScenes() []content.Scene {
	return []content.Scene{
		{Number: 1, Dialogue: "hello", VisualVI: "con mèo trên bàn", VisualEN: "a cat on a table", Sound: "soft piano"},
		{Number: 2, Dialogue: "again", VisualVI: "một con mèo trên bàn", VisualEN: "a cat on a table", Sound: ""},
		{Number: 3, Dialogue: "bye", VisualVI: "hoàng hôn", VisualEN: "a sunset over the sea", Sound: "waves"},
	}
}

// SampleKit returns a kit with two thumbnail concepts.
func SampleKit(title string) content.PublishingKit {
	return content.PublishingKit{
		Metadata: content.Metadata{Titles: []string{title}, Description: "desc", Tags: []string{"tag"}},
		ThumbnailConcepts: []content.ThumbnailConcept{
			{Concept: "bold", Prompt: "bold text over a cat"},
			{Concept: "calm", Prompt: "calm sea at dusk"},
		},
	}
}

// FakeImages is a scripted capability.ImageGenerator.
type FakeImages struct {
	mu      sync.Mutex
	prompts []string
	Err     error
	// Gate, when set, blocks each call until a value is received or ctx ends.
	Gate chan struct{}
}

func (f *FakeImages) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	err := f.Err
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + prompt + "|" + style, nil
}

// Prompts returns the prompts received so far.
func (f *FakeImages) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// FakeSpeech is a scripted capability.SpeechSynthesizer.
type FakeSpeech struct {
	mu    sync.Mutex
	calls int
	Name  string
	Err   error
}

func (f *FakeSpeech) Synthesize(_ context.Context, text, voice string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return "", f.Err
	}
	return fmt.Sprintf("%s://%s/%d", f.Name, voice, len(text)), nil
}

// Calls returns the number of synthesis requests.
func (f *FakeSpeech) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeVideo is a scripted capability.VideoGenerator. Polls consume the
// scripted statuses in order and report running once they run out.
type FakeVideo struct {
	mu       sync.Mutex
	prompts  []string
	script   []capability.VideoStatus
	polls    int
	StartErr error
	PollErr  error
}

// Script appends statuses to be returned by subsequent polls.
func (f *FakeVideo) Script(statuses ...capability.VideoStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, statuses...)
}

func (f *FakeVideo) StartVideoJob(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.prompts = append(f.prompts, prompt)
	if f.StartErr != nil {
		return "", f.StartErr
	}
	return fmt.Sprintf("job-%d", len(f.prompts)), nil
}

func (f *FakeVideo) PollVideoJob(ctx context.Context, _ string) (capability.VideoStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return capability.VideoStatus{}, err
	}
	f.polls++
	if f.PollErr != nil {
		return capability.VideoStatus{}, f.PollErr
	}
	if len(f.script) == 0 {
		return capability.VideoStatus{State: capability.VideoRunning}, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next, nil
}

// Starts returns the number of start calls.
func (f *FakeVideo) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Polls returns the number of status checks.
func (f *FakeVideo) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}
