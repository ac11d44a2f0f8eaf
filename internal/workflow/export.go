package workflow

import (
	"context"
	"fmt"
	"strings"
)

const incompleteExport = "Cannot export the project: some content is missing."

// ExportProject renders the whole project as Markdown. It needs a selected
// idea, a script, scenes, and a publishing kit; otherwise the global error is
// set and ErrIncomplete returned. A successful export clears the global error.
func (e *Engine) ExportProject(ctx context.Context) (string, error) {
	state := e.State()
	if state.SelectedIdea == nil || strings.TrimSpace(state.Script) == "" || len(state.Scenes) == 0 || state.Kit == nil {
		e.mu.Lock()
		e.state.Error = incompleteExport
		e.mu.Unlock()
		e.persist(ctx)
		return "", ErrIncomplete
	}

	var b strings.Builder
	idea := state.SelectedIdea
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", idea.Title, idea.Description)
	fmt.Fprintf(&b, "- Platform: %s\n- Format: %s\n", state.Selections.Platform, state.Selections.Format)
	if idea.TargetAudience != "" {
		fmt.Fprintf(&b, "- Audience: %s\n", idea.TargetAudience)
	}
	if idea.ValueProposition != "" {
		fmt.Fprintf(&b, "- Value: %s\n", idea.ValueProposition)
	}

	if o := state.Outline; o != nil {
		b.WriteString("\n## Outline\n\n")
		fmt.Fprintf(&b, "**Hook:** %s\n\n**Introduction:** %s\n\n", o.Hook, o.Introduction)
		for i, point := range o.MainPoints {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, point.Title, point.Description)
		}
		fmt.Fprintf(&b, "\n**Call to action:** %s\n\n**Outro:** %s\n", o.CTA, o.Outro)
	}

	if k := state.Keywords; k != nil {
		b.WriteString("\n## Keywords\n\n")
		fmt.Fprintf(&b, "- SEO title: %s\n", k.SEOTitle)
		fmt.Fprintf(&b, "- Primary: %s\n", strings.Join(k.PrimaryKeywords, ", "))
		fmt.Fprintf(&b, "- Secondary: %s\n", strings.Join(k.SecondaryKeywords, ", "))
		fmt.Fprintf(&b, "- Search intent: %s\n", k.SearchIntent)
		if k.TrendAnalysis != "" {
			fmt.Fprintf(&b, "- Trends: %s\n", k.TrendAnalysis)
		}
	}

	b.WriteString("\n## Script\n\n")
	b.WriteString(strings.TrimSpace(state.Script))
	b.WriteString("\n\n## Scenes\n")
	for _, scene := range state.Scenes {
		fmt.Fprintf(&b, "\n### Scene %d\n\n", scene.Number)
		fmt.Fprintf(&b, "**Dialogue:** %s\n\n", scene.Dialogue)
		fmt.Fprintf(&b, "**Visual:** %s\n", scene.VisualEN)
		if scene.VisualVI != "" {
			fmt.Fprintf(&b, "\n**Visual (vi):** %s\n", scene.VisualVI)
		}
		if scene.Sound != "" {
			fmt.Fprintf(&b, "\n**Sound:** %s\n", scene.Sound)
		}
	}

	if len(state.MusicPrompts) > 0 {
		b.WriteString("\n## Music\n\n")
		for _, prompt := range state.MusicPrompts {
			fmt.Fprintf(&b, "- Scene %d: %s\n", prompt.Scene, prompt.Prompt)
		}
	}

	kit := state.Kit
	b.WriteString("\n## Publishing\n\n### Titles\n\n")
	for _, title := range kit.Metadata.Titles {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	fmt.Fprintf(&b, "\n### Description\n\n%s\n", strings.TrimSpace(kit.Metadata.Description))
	if len(kit.Metadata.Tags) > 0 {
		fmt.Fprintf(&b, "\n### Tags\n\n%s\n", strings.Join(kit.Metadata.Tags, ", "))
	}
	if len(kit.ThumbnailConcepts) > 0 {
		b.WriteString("\n### Thumbnails\n\n")
		for i, concept := range kit.ThumbnailConcepts {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, concept.Concept, concept.Prompt)
		}
	}

	e.mu.Lock()
	cleared := e.state.Error != ""
	e.state.Error = ""
	e.mu.Unlock()
	if cleared {
		e.persist(ctx)
	}
	return b.String(), nil
}
