// Package llm implements the psychometric Generator and Analyzer on top of a
// text-generation service.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	genai "psychometric-workers/internal/common/http"
)

// Completer returns the model's raw text for a prompt.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ Completer = (*genai.Client)(nil)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// stripFences returns the body of the first markdown code fence, or the
// trimmed input when there is none.
func stripFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// decodeObject parses model output into a JSON object, repairing trailing
// commas, single quotes and truncation when plain decoding fails.
func decodeObject(raw string) (map[string]interface{}, bool, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, false, errors.New("empty model output")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(body), &doc); err == nil {
		return doc, false, nil
	}

	repaired, err := jsonrepair.JSONRepair(body)
	if err != nil {
		return nil, false, fmt.Errorf("unrepairable JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, true, fmt.Errorf("model output is not a JSON object: %w", err)
	}
	return doc, true, nil
}

// remarshal converts a decoded document into a typed value.
func remarshal(doc map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func snippet(s string) string {
	const max = 300
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
