package workflow

import (
	"slices"

	"reelsmith/internal/content"
)

// Selections are the cross-cutting user choices that feed several stages.
type Selections struct {
	Topic          string                 `json:"topic"`
	Platform       string                 `json:"platform"`
	Format         string                 `json:"format"`
	ScriptLength   content.ScriptLength   `json:"scriptLength"`
	ImageStyle     string                 `json:"imageStyle"`
	ThumbnailStyle string                 `json:"thumbnailStyle"`
	PromptLanguage content.PromptLanguage `json:"promptLanguage"`
	VbeeVoice      string                 `json:"vbeeVoice"`
	GoogleVoice    string                 `json:"googleVoice"`
}

// DefaultSelections mirrors the built-in configuration defaults.
func DefaultSelections() Selections {
	return Selections{
		Platform:       "YouTube",
		Format:         "Long-form video (over 1 minute)",
		ScriptLength:   content.LengthMedium,
		ImageStyle:     "Cinematic, photorealistic",
		ThumbnailStyle: "Vibrant, eye-catching, high-contrast",
		PromptLanguage: content.LanguageVietnamese,
		VbeeVoice:      content.DefaultVoice(content.EngineVbee),
		GoogleVoice:    content.DefaultVoice(content.EngineGoogle),
	}
}

// withDefaults fills blank fields from d. The topic is never defaulted.
func (s Selections) withDefaults(d Selections) Selections {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Platform, d.Platform)
	fill(&s.Format, d.Format)
	fill(&s.ImageStyle, d.ImageStyle)
	fill(&s.ThumbnailStyle, d.ThumbnailStyle)
	fill(&s.VbeeVoice, d.VbeeVoice)
	fill(&s.GoogleVoice, d.GoogleVoice)
	if !s.ScriptLength.Valid() {
		s.ScriptLength = d.ScriptLength
	}
	if !s.PromptLanguage.Valid() {
		s.PromptLanguage = d.PromptLanguage
	}
	return s
}

// Voice returns the selected voice for engine.
func (s Selections) Voice(engine content.Engine) string {
	if engine == content.EngineGoogle {
		return s.GoogleVoice
	}
	return s.VbeeVoice
}

// State is the project aggregate.
type State struct {
	Current   Stage   `json:"currentStage"`
	Completed []Stage `json:"completedStages,omitempty"`

	Ideas        []content.Idea           `json:"ideas,omitempty"`
	SelectedIdea *content.Idea            `json:"selectedIdea,omitempty"`
	Outline      *content.Outline         `json:"outline,omitempty"`
	Keywords     *content.KeywordAnalysis `json:"keywordAnalysis,omitempty"`
	Script       string                   `json:"script,omitempty"`
	Scenes       []content.Scene          `json:"scenes,omitempty"`
	MusicPrompts []content.MusicPrompt    `json:"musicPrompts,omitempty"`
	Kit          *content.PublishingKit   `json:"publishingKit,omitempty"`

	Selections Selections `json:"selections"`
	Error      string     `json:"error,omitempty"`
}

// NewState returns an empty project at the first stage.
func NewState(defaults Selections) State {
	return State{Current: StageIdeation, Selections: defaults}
}

// HasCompleted reports whether stage has produced output at least once.
func (s State) HasCompleted(stage Stage) bool {
	return slices.Contains(s.Completed, stage)
}

func (s *State) markCompleted(stage Stage) {
	if s.HasCompleted(stage) {
		return
	}
	s.Completed = append(s.Completed, stage)
	slices.Sort(s.Completed)
}

// Clone returns a deep copy so callers can read it without the engine lock.
func (s State) Clone() State {
	out := s
	out.Completed = slices.Clone(s.Completed)
	out.Ideas = slices.Clone(s.Ideas)
	out.Scenes = slices.Clone(s.Scenes)
	out.MusicPrompts = slices.Clone(s.MusicPrompts)
	if s.SelectedIdea != nil {
		idea := *s.SelectedIdea
		out.SelectedIdea = &idea
	}
	if s.Outline != nil {
		outline := *s.Outline
		outline.MainPoints = slices.Clone(outline.MainPoints)
		out.Outline = &outline
	}
	if s.Keywords != nil {
		kw := *s.Keywords
		kw.PrimaryKeywords = slices.Clone(kw.PrimaryKeywords)
		kw.SecondaryKeywords = slices.Clone(kw.SecondaryKeywords)
		out.Keywords = &kw
	}
	if s.Kit != nil {
		kit := *s.Kit
		kit.Metadata.Titles = slices.Clone(kit.Metadata.Titles)
		kit.Metadata.Tags = slices.Clone(kit.Metadata.Tags)
		kit.ThumbnailConcepts = slices.Clone(kit.ThumbnailConcepts)
		out.Kit = &kit
	}
	return out
}

// sanitize repairs a restored state so it satisfies the aggregate invariants.
func (s State) sanitize(defaults Selections) State {
	if !s.Current.Valid() {
		s.Current = StageIdeation
	}
	completed := s.Completed[:0:0]
	for _, stage := range s.Completed {
		if stage.Valid() && !slices.Contains(completed, stage) {
			completed = append(completed, stage)
		}
	}
	slices.Sort(completed)
	s.Completed = completed
	s.Selections = s.Selections.withDefaults(defaults)
	return s
}
