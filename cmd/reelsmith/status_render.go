package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"reelsmith/internal/artifact"
	"reelsmith/internal/content"
	"reelsmith/internal/workflow"
)

func renderStatus(out io.Writer, snap workflow.Snapshot) {
	state := snap.State
	fmt.Fprintf(out, "Stage: %s (%d/%d)\n", state.Current, int(state.Current), len(workflow.Stages()))
	if state.Error != "" {
		fmt.Fprintf(out, "Error: %s (run `reelsmith dismiss` to clear)\n", state.Error)
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(workflow.Stages()))
	for _, stage := range workflow.Stages() {
		marker := ""
		switch {
		case stage == state.Current:
			marker = "current"
		case state.HasCompleted(stage):
			marker = "done"
		}
		rows = append(rows, []string{strconv.Itoa(int(stage)), stage.String(), marker})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Stage", "State"}, rows, []columnAlignment{alignRight}))

	sel := state.Selections
	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, [][]string{
		{"topic", valueOrDash(sel.Topic)},
		{"platform", sel.Platform},
		{"format", sel.Format},
		{"length", string(sel.ScriptLength)},
		{"style", sel.ImageStyle},
		{"lang", string(sel.PromptLanguage)},
		{"vbee voice", sel.VbeeVoice},
		{"google voice", sel.GoogleVoice},
	}, nil))

	if state.SelectedIdea != nil {
		fmt.Fprintf(out, "Idea: %s\n", state.SelectedIdea.Title)
	} else if len(state.Ideas) > 0 {
		renderIdeas(out, state.Ideas)
	}
	if len(state.Scenes) > 0 {
		renderScenes(out, snap)
	}
}

func renderIdeas(out io.Writer, ideas []content.Idea) {
	rows := make([][]string, 0, len(ideas))
	for i, idea := range ideas {
		rows = append(rows, []string{strconv.Itoa(i + 1), idea.Title, idea.TargetAudience})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Idea", "Audience"}, rows, []columnAlignment{alignRight}))
}

// renderScenes shows each scene with the state of its image, voices, and video.
func renderScenes(out io.Writer, snap workflow.Snapshot) {
	rows := make([][]string, 0, len(snap.State.Scenes))
	for _, scene := range snap.State.Scenes {
		key := scene.VisualKey()
		video := "idle"
		if job, ok := snap.Videos[key]; ok {
			video = string(job.Status)
		}
		rows = append(rows, []string{
			strconv.Itoa(scene.Number),
			truncate(scene.VisualEN, 48),
			colorStatus(out, entryStatus(snap.Images, key)),
			colorStatus(out, entryStatus(snap.Voices[content.EngineVbee], scene.VoiceKey())),
			colorStatus(out, entryStatus(snap.Voices[content.EngineGoogle], scene.VoiceKey())),
			colorStatus(out, video),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Scene", "Visual", "Image", "Vbee", "Google", "Video"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func entryStatus(entries map[string]artifact.Entry, key string) string {
	entry, ok := entries[key]
	if !ok {
		return "idle"
	}
	return entry.Status()
}

// describeEntry is the one-line result of a single generation.
func describeEntry(label string, entry artifact.Entry) string {
	switch {
	case entry.Error != "":
		return fmt.Sprintf("%s failed: %s", label, entry.Error)
	case entry.Payload != "":
		return fmt.Sprintf("%s ready: %s", label, truncate(entry.Payload, 96))
	default:
		return fmt.Sprintf("%s: %s", label, entry.Status())
	}
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
