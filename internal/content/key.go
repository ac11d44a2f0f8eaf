package content

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalKey normalizes free-form prompt text into the exact-match key used
// by artifact stores and the job tracker: NFC normalization, trimmed, and
// internal whitespace runs collapsed to one space. Case is preserved.
func CanonicalKey(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// SceneKey returns the artifact key for per-scene items that are not keyed by
// prompt text, such as voiceover tracks.
func SceneKey(n int) string {
	return "scene-" + strconv.Itoa(n)
}
