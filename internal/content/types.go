package content

import "strings"

// Idea is one candidate video concept returned by ideation.
type Idea struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	TargetAudience   string `json:"targetAudience"`
	ValueProposition string `json:"valueProposition"`
}

// OutlinePoint is one body section of an outline.
type OutlinePoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Outline is the skeleton of the script built for the selected idea.
type Outline struct {
	Hook         string         `json:"hook"`
	Introduction string         `json:"introduction"`
	MainPoints   []OutlinePoint `json:"mainPoints"`
	CTA          string         `json:"cta"`
	Outro        string         `json:"outro"`
}

// KeywordAnalysis is the SEO pass over the selected idea.
type KeywordAnalysis struct {
	PrimaryKeywords   []string `json:"primaryKeywords"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	SearchIntent      string   `json:"searchIntent"`
	SEOTitle          string   `json:"seoTitle"`
	TrendAnalysis     string   `json:"trendAnalysis"`
}

// Scene is one structured unit of the reviewed script.
type Scene struct {
	Number   int    `json:"scene"`
	Dialogue string `json:"dialogue"`
	VisualVI string `json:"visualSuggestionVI"`
	VisualEN string `json:"visualSuggestionEN"`
	Sound    string `json:"soundSuggestion"`
}

// VisualKey returns the canonical visual description used to join a scene
// to its image artifact and video job.
func (s Scene) VisualKey() string {
	return CanonicalKey(s.VisualEN)
}

// VisualPrompt returns the description sent to the image generator for lang.
// The localized text falls back to the canonical one when it is blank.
func (s Scene) VisualPrompt(lang PromptLanguage) string {
	if lang == LanguageVietnamese && strings.TrimSpace(s.VisualVI) != "" {
		return strings.TrimSpace(s.VisualVI)
	}
	return strings.TrimSpace(s.VisualEN)
}

// VoiceKey returns the artifact key for a scene's voiceover track.
func (s Scene) VoiceKey() string {
	return SceneKey(s.Number)
}

// MusicPrompt is a background music description for one scene.
type MusicPrompt struct {
	Scene  int    `json:"scene"`
	Prompt string `json:"prompt"`
}

// Metadata is the upload metadata block of a publishing kit.
type Metadata struct {
	Titles      []string `json:"titles"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ThumbnailConcept is one proposed thumbnail with its image prompt.
type ThumbnailConcept struct {
	Concept string `json:"concept"`
	Prompt  string `json:"prompt"`
}

// PublishingKit bundles upload metadata and thumbnail concepts.
type PublishingKit struct {
	Metadata          Metadata           `json:"metadata"`
	ThumbnailConcepts []ThumbnailConcept `json:"thumbnailConcepts"`
}

// ScriptLength is the requested script duration bucket.
type ScriptLength string

const (
	LengthShort  ScriptLength = "short"
	LengthMedium ScriptLength = "medium"
	LengthLong   ScriptLength = "long"
)

// Valid reports whether l is a known bucket.
func (l ScriptLength) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	default:
		return false
	}
}

// PromptLanguage selects which visual description is sent to image generation.
type PromptLanguage string

const (
	LanguageVietnamese PromptLanguage = "vi"
	LanguageEnglish    PromptLanguage = "en"
)

// Valid reports whether l is a supported prompt language.
func (l PromptLanguage) Valid() bool {
	return l == LanguageVietnamese || l == LanguageEnglish
}

// NumberScenes rewrites scene ordinals to be contiguous from 1 in slice order.
// The input is not modified.
func NumberScenes(scenes []Scene) []Scene {
	out := make([]Scene, len(scenes))
	for i, scene := range scenes {
		scene.Number = i + 1
		out[i] = scene
	}
	return out
}

// FindScene returns the scene with ordinal n.
func FindScene(scenes []Scene, n int) (Scene, bool) {
	for _, scene := range scenes {
		if scene.Number == n {
			return scene, true
		}
	}
	return Scene{}, false
}

// HasSound reports whether any scene carries a sound suggestion.
func HasSound(scenes []Scene) bool {
	for _, scene := range scenes {
		if strings.TrimSpace(scene.Sound) != "" {
			return true
		}
	}
	return false
}
