// Package formatting provides parsing helpers for model responses and
// human-readable value types such as byte sizes.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed indicates content could not be parsed as JSON, directly
// or out of a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var fenceRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse unmarshals model output into T. Models often wrap JSON in prose
// or a markdown fence, so a failed direct parse falls back to extracting
// the first fenced block.
func Parse[T any](content string) (T, error) {
	var out T
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return out, nil
	}

	if fenced, ok := extractFenced(content); ok {
		if err := json.Unmarshal([]byte(fenced), &out); err == nil {
			return out, nil
		}
	}

	return out, fmt.Errorf("%w: %s", ErrParseFailed, content)
}

func extractFenced(content string) (string, bool) {
	m := fenceRegex.FindStringSubmatch(content)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
