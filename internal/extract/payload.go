package extract

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/huynhduongtien171003/amis-demo/internal/common"
)

// Payload locates and decodes a single JSON object embedded in raw model
// output. The surrounding text may contain prose, markdown fences, or
// multiple braces; nested braces inside string values are safe because the
// real JSON decoder performs the parse after the first-/last-brace heuristic
// picks the candidate substring.
//
// Returns common.ErrNoPayload when no well-formed object can be decoded.
// An empty object "{}" is a valid payload and decodes to an empty map.
func Payload(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, common.ErrNoPayload
	}

	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		// Malformed candidate substring (e.g. commentary between braces).
		// Fail fast rather than re-scan defensively.
		return nil, common.ErrNoPayload
	}
	if _, err := dec.Token(); err != io.EOF {
		// Trailing content inside the brace span means the candidate was
		// not a single object.
		return nil, common.ErrNoPayload
	}
	return m, nil
}

// stripFences drops the first and last lines of a leading markdown code
// fence (```json ... ```) when there are more than two lines; otherwise the
// text is returned unchanged.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= 2 {
		return text
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
