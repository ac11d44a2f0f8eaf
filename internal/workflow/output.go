package workflow

import "reelsmith/internal/content"

// Output is a stage result accepted by Advance.
type Output interface {
	accepts(stage Stage) bool
	apply(state *State)
}

// IdeasOutput completes Ideation.
type IdeasOutput struct{ Ideas []content.Idea }

// SelectionOutput completes IdeaSelection with the chosen idea and its outline.
type SelectionOutput struct {
	Idea    content.Idea
	Outline content.Outline
}

// KeywordsOutput completes Outlining.
type KeywordsOutput struct{ Analysis content.KeywordAnalysis }

// ScriptOutput completes KeywordAnalysis.
type ScriptOutput struct{ Script string }

// ScenesOutput completes Scripting.
type ScenesOutput struct{ Scenes []content.Scene }

// MusicOutput completes ScriptReview.
type MusicOutput struct{ Prompts []content.MusicPrompt }

// Proceed completes MusicGeneration and ImageGeneration, which produce no
// stage-level output of their own.
type Proceed struct{}

// PublishingOutput completes Voiceover.
type PublishingOutput struct{ Kit content.PublishingKit }

func (IdeasOutput) accepts(s Stage) bool { return s == StageIdeation }
func (SelectionOutput) accepts(s Stage) bool { return s == StageIdeaSelection }
func (KeywordsOutput) accepts(s Stage) bool { return s == StageOutlining }
func (ScriptOutput) accepts(s Stage) bool { return s == StageKeywordAnalysis }
func (ScenesOutput) accepts(s Stage) bool { return s == StageScripting }
func (MusicOutput) accepts(s Stage) bool { return s == StageScriptReview }
func (Proceed) accepts(s Stage) bool { return s == StageMusicGeneration || s == StageImageGeneration }
func (PublishingOutput) accepts(s Stage) bool { return s == StageVoiceover }

func (o IdeasOutput) apply(s *State) { s.Ideas = o.Ideas }

func (o SelectionOutput) apply(s *State) {
	idea, outline := o.Idea, o.Outline
	s.SelectedIdea = &idea
	s.Outline = &outline
}

func (o KeywordsOutput) apply(s *State) {
	analysis := o.Analysis
	s.Keywords = &analysis
}

func (o ScriptOutput) apply(s *State) { s.Script = o.Script }

func (o ScenesOutput) apply(s *State) { s.Scenes = content.NumberScenes(o.Scenes) }

func (o MusicOutput) apply(s *State) { s.MusicPrompts = o.Prompts }

func (Proceed) apply(*State) {}

func (o PublishingOutput) apply(s *State) {
	kit := o.Kit
	s.Kit = &kit
}
