package llm

import (
	"fmt"
	"strings"

	"reelsmith/internal/content"
)

const systemPrompt = `You are a senior video producer and scriptwriter for Vietnamese creators.
Write all audience-facing text in Vietnamese unless a field says otherwise.
When asked for JSON, reply with a single JSON object and nothing else.`

var lengthGuidance = map[content.ScriptLength]string{
	content.LengthShort:  "about 60 seconds of narration (roughly 150 words)",
	content.LengthMedium: "about 3 to 5 minutes of narration (roughly 600 words)",
	content.LengthLong:   "about 8 to 10 minutes of narration (roughly 1400 words)",
}

func ideasPrompt(topic, platform, format string) string {
	return fmt.Sprintf(`Propose 5 distinct video ideas about %q for %s (%s).
Return {"ideas": [{"title", "description", "targetAudience", "valueProposition"}]}.`,
		topic, platform, format)
}

func outlinePrompt(idea content.Idea) string {
	return fmt.Sprintf(`Build a script outline for this video.
Title: %s
Description: %s
Audience: %s
Return {"hook", "introduction", "mainPoints": [{"title", "description"}], "cta", "outro"}.`,
		idea.Title, idea.Description, idea.TargetAudience)
}

func keywordsPrompt(idea content.Idea) string {
	return fmt.Sprintf(`Do an SEO keyword analysis for a video titled %q (%s).
Return {"primaryKeywords": [..], "secondaryKeywords": [..], "searchIntent", "seoTitle", "trendAnalysis"}.`,
		idea.Title, idea.Description)
}

func scriptPrompt(idea content.Idea, analysis content.KeywordAnalysis, outline content.Outline, length content.ScriptLength) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the full narration script for %q.\n", idea.Title)
	fmt.Fprintf(&b, "Length: %s.\n", lengthGuidance[length])
	fmt.Fprintf(&b, "Work these keywords in naturally: %s.\n", strings.Join(append(analysis.PrimaryKeywords, analysis.SecondaryKeywords...), ", "))
	fmt.Fprintf(&b, "Follow this outline.\nHook: %s\nIntroduction: %s\n", outline.Hook, outline.Introduction)
	for i, point := range outline.MainPoints {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, point.Title, point.Description)
	}
	fmt.Fprintf(&b, "Call to action: %s\nOutro: %s\n", outline.CTA, outline.Outro)
	b.WriteString("Return plain text only, no headings and no stage directions.")
	return b.String()
}

func structurePrompt(script string) string {
	return `Split this script into scenes. For each scene give the spoken dialogue, a visual
description in Vietnamese (visualSuggestionVI) and in English (visualSuggestionEN, used as an image
prompt, concrete and without on-screen text) and an optional sound suggestion.
Return {"scenes": [{"scene", "dialogue", "visualSuggestionVI", "visualSuggestionEN", "soundSuggestion"}]}.

Script:
` + script
}

func musicPrompt(scenes []content.Scene) string {
	var b strings.Builder
	b.WriteString("Write a background music prompt in English for each scene that has a sound suggestion.\n")
	for _, scene := range scenes {
		if strings.TrimSpace(scene.Sound) == "" {
			continue
		}
		fmt.Fprintf(&b, "Scene %d: %s\n", scene.Number, scene.Sound)
	}
	b.WriteString(`Return {"prompts": [{"scene", "prompt"}]}.`)
	return b.String()
}

func kitPrompt(idea content.Idea, script string) string {
	return fmt.Sprintf(`Prepare the publishing kit for the video %q.
Give 3 title options, a description with timestamps placeholder and hashtags, 15 tags, and 3 thumbnail
concepts each with an English image prompt.
Return {"metadata": {"titles": [..], "description", "tags": [..]}, "thumbnailConcepts": [{"concept", "prompt"}]}.

Script:
%s`, idea.Title, script)
}
