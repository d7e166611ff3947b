package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	trailingJSONRe = regexp.MustCompile(`(?m)(\[[\s\S]*?\]|\{[\s\S]*?\})\s*$`)
)

// ExtractJSON pulls a JSON document out of model text. It tries the whole
// text first, then a ```json fenced block, then an array or object that ends a line.
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil && json.Valid([]byte(m[1])) {
		return json.RawMessage(m[1]), nil
	}
	if m := trailingJSONRe.FindStringSubmatch(text); m != nil && json.Valid([]byte(m[1])) {
		return json.RawMessage(m[1]), nil
	}
	return nil, fmt.Errorf("%w: failed to parse text as JSON and no fallback match found", ErrMalformedResponse)
}
