package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reelsmith/internal/services/httpapi"
)

// DecodeJSON decodes model output into target. Code fences and prose around
// the outermost object or array are tolerated.
func DecodeJSON(content string, target any) error {
	payload, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("%w (payload snippet: %s)", err, httpapi.Snippet(payload))
	}
	return nil
}

// ExtractJSON returns the JSON document embedded in content.
func ExtractJSON(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.New("empty payload")
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	candidate := stripCodeFence(trimmed)
	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(candidate, pair[0])
		end := strings.LastIndex(candidate, pair[1])
		if start >= 0 && end > start {
			if inner := candidate[start : end+1]; json.Valid([]byte(inner)) {
				return inner, nil
			}
		}
	}
	return "", fmt.Errorf("no JSON document found (payload snippet: %s)", httpapi.Snippet(trimmed))
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	body := strings.TrimLeft(content[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
