package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = codeFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences like \N (caption newline).
// \N becomes \\N so JSON can parse it and the literal \N survives.
func fixInvalidEscapes(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			out.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			out.WriteByte('\\')
		default:
			out.WriteString("\\\\")
		}
		out.WriteByte(next)
		i++
	}
	return out.String()
}

// extractResults finds the first JSON value in text that decodes to a
// non-empty result list, either bare or under a wrapper key.
func extractResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

var wrapperKeys = []string{"results", "translations", "data", "items"}

func tryExtractResults(raw json.RawMessage) ([]Result, bool) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err == nil && validateResults(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if field, ok := wrapper[key]; ok {
			var fieldResults []Result
			if err := json.Unmarshal(field, &fieldResults); err == nil && validateResults(fieldResults) {
				return fieldResults, true
			}
		}
	}
	for _, field := range wrapper {
		var fieldResults []Result
		if err := json.Unmarshal(field, &fieldResults); err == nil && validateResults(fieldResults) {
			return fieldResults, true
		}
	}
	return nil, false
}

// a result list counts when at least one entry carries text
func validateResults(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
