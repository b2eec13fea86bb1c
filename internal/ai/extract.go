package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Models frequently wrap JSON answers in a markdown code fence even when told
// not to. A fenced block is unwrapped to its body; unfenced text passes
// through untouched.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9]*[ \t]*\n(.*?)\n?```$")

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if match := fenceRe.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1])
	}
	return trimmed
}

// parseStringArray enforces the "array of exactly strings" contract shared by
// the name and keyword variants.
func parseStringArray(raw string) ([]string, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.New("model output is not a JSON array")
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("model output element %d is not a string", i)
		}
		out = append(out, str)
	}
	return out, nil
}

// parseArticle checks that the payload is a JSON object and decodes the known
// fields. Field contents are deliberately not validated further.
func parseArticle(raw string) (*Article, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	var article Article
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	return &article, nil
}
