package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is one step of the production pipeline. Values are ordered.
type Stage int

const (
	StageIdeation Stage = iota + 1
	StageIdeaSelection
	StageOutlining
	StageKeywordAnalysis
	StageScripting
	StageScriptReview
	StageMusicGeneration
	StageImageGeneration
	StageVoiceover
	StagePublishing
)

var stageNames = map[Stage]string{
	StageIdeation:        "Ideation",
	StageIdeaSelection:   "IdeaSelection",
	StageOutlining:       "Outlining",
	StageKeywordAnalysis: "KeywordAnalysis",
	StageScripting:       "Scripting",
	StageScriptReview:    "ScriptReview",
	StageMusicGeneration: "MusicGeneration",
	StageImageGeneration: "ImageGeneration",
	StageVoiceover:       "Voiceover",
	StagePublishing:      "Publishing",
}

// Stages lists every stage in order.
func Stages() []Stage {
	out := make([]Stage, 0, len(stageNames))
	for s := StageIdeation; s <= StagePublishing; s++ {
		out = append(out, s)
	}
	return out
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Stage(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is one of the ten stages.
func (s Stage) Valid() bool {
	return s >= StageIdeation && s <= StagePublishing
}

// Next returns the successor of s. Publishing is terminal and returns itself.
func (s Stage) Next() Stage {
	if s >= StagePublishing {
		return StagePublishing
	}
	return s + 1
}

// ParseStage accepts a stage name (case-insensitive) or its 1-based number.
func ParseStage(value string) (Stage, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if s := Stage(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("stage %d out of range 1-%d", n, StagePublishing)
	}
	for s, name := range stageNames {
		if strings.EqualFold(name, value) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", value)
}
