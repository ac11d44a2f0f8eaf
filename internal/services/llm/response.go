package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

type chatResponse struct {
	Choices []struct {
		Message chatResponseMessage `json:"message"`
		// Some providers send the streaming shape even when stream=false.
		Delta        chatResponseMessage `json:"delta"`
		Text         string              `json:"text"`
		FinishReason string              `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatResponseMessage struct {
	Content   string `json:"content"`
	Refusal   string `json:"refusal"`
	ToolCalls []struct {
		Function struct {
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

func (m chatResponseMessage) toolArguments() string {
	for _, call := range m.ToolCalls {
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			return args
		}
	}
	return ""
}

// parseCompletion extracts the first non-empty content from body. An empty
// completion is reported as transient so the transport retries it.
func parseCompletion(op string, body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", op, "decode response: "+httpapi.Snippet(string(body)), err)
	}
	if resp.Error != nil {
		return "", services.Wrap(services.ErrExternalTool, "llm", op, "api error: "+strings.TrimSpace(resp.Error.Message), nil)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrTransient, "llm", op, "empty choices", nil)
	}
	var finish, refusal string
	for _, choice := range resp.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		if refusal == "" {
			refusal = firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal)
		}
		content := firstNonEmpty(
			choice.Message.Content,
			choice.Delta.Content,
			choice.Text,
			choice.Message.toolArguments(),
			choice.Delta.toolArguments(),
		)
		if content != "" {
			return content, nil
		}
	}
	detail := fmt.Sprintf("empty content (finish_reason=%q, refusal=%q)", finish, refusal)
	return "", services.Wrap(services.ErrTransient, "llm", op, detail, nil)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
