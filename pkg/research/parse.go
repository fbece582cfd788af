package research

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripCodeFence removes markdown code block wrappers from an LLM response.
// Models often wrap output in ```json ... ``` even when told not to.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the opening fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " [{") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// trimToList cuts any prose the model emitted before the opening bracket.
func trimToList(text string) string {
	if idx := strings.Index(text, "["); idx > 0 {
		return text[idx:]
	}
	return text
}

// ParseQueryList parses an LLM response into a list of search query strings.
// The raw response is normalized (fence markers stripped, leading prose
// dropped) and then must be a JSON array of strings. Anything else is an
// error carrying the offending text; there is no silent fallback because an
// empty query list means "could not plan the search", not "nothing to do".
func ParseQueryList(raw string) ([]string, error) {
	cleaned := trimToList(stripCodeFence(raw))
	var queries []string
	if err := json.Unmarshal([]byte(cleaned), &queries); err != nil {
		return nil, fmt.Errorf("response is not a JSON list of queries: %w (raw: %q)", err, raw)
	}
	return queries, nil
}

// ParseScenarioList parses an LLM response into scenario records. The
// response must be a JSON array of objects with string "reasoning" and
// "scenario" fields; an empty array is valid (the document implied no
// scenarios). Records missing either field are rejected rather than passed
// through half-empty.
func ParseScenarioList(raw string) ([]Scenario, error) {
	cleaned := trimToList(stripCodeFence(raw))
	var scenarios []Scenario
	if err := json.Unmarshal([]byte(cleaned), &scenarios); err != nil {
		return nil, fmt.Errorf("response is not a JSON list of scenarios: %w (raw: %q)", err, raw)
	}
	for i, s := range scenarios {
		if strings.TrimSpace(s.Scenario) == "" {
			return nil, fmt.Errorf("scenario %d has an empty scenario field (raw: %q)", i, raw)
		}
	}
	return scenarios, nil
}

// ParseBool derives the grader's boolean from free text: true only when the
// trimmed, case-folded response begins with the literal token "true".
// Malformed or empty responses grade the document as not relevant.
func ParseBool(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "true")
}
