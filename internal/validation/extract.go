package validation

import (
	"encoding/json"
	"strings"
)

// Extract returns the JSON object contained in text. The whole text is tried
// first; if it is not valid JSON, the span from the first '{' to the last '}'
// is parsed instead.
func Extract(text string) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, &ExtractionError{Reason: "top-level JSON value is not an object"}
		}
		return obj, nil
	}

	candidate, ok := largestBraceSpan(text)
	if !ok {
		return nil, &ExtractionError{Reason: "no JSON object found in response"}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, &ExtractionError{Reason: "embedded JSON object is malformed", Err: err}
	}
	return obj, nil
}

func largestBraceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
