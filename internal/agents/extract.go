package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the first well-formed JSON object or array in raw,
// tolerating code fences and prose around it.
func ExtractJSON(raw string) (string, error) {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoJSON
	}

	if (text[0] == '{' || text[0] == '[') && json.Valid([]byte(text)) {
		return text, nil
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		end := matchingClose(text, i)
		if end < 0 {
			continue
		}
		candidate := text[i : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrNoJSON
}

// matchingClose finds the bracket closing the one at start, skipping
// brackets inside strings. It returns -1 when unbalanced.
func matchingClose(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeJSON(raw string, v any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
