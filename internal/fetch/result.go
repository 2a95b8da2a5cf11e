package fetch

import (
	"encoding/json"
	"strings"
)

// ResultMarker separates human-readable progress output from the machine
// payload. Everything after the marker is scanned for a trailing JSON object.
const ResultMarker = "—— RESULT ——"

// ExtractResult returns the JSON payload embedded in collaborator output, or
// false when the output does not (yet) contain a complete result. The payload
// is the region from the first opening brace after the marker through the last
// closing brace, which must be followed only by whitespace. Output without a
// marker is scanned whole, so marker-less collaborator builds still work as
// long as their output ends with the JSON object.
func ExtractResult(output string) ([]byte, bool) {
	tail := output
	if idx := strings.Index(output, ResultMarker); idx >= 0 {
		tail = output[idx+len(ResultMarker):]
	}

	open := strings.Index(tail, "{")
	if open < 0 {
		return nil, false
	}
	end := strings.LastIndex(tail, "}")
	if end < open {
		return nil, false
	}
	if strings.TrimSpace(tail[end+1:]) != "" {
		return nil, false
	}
	payload := []byte(tail[open : end+1])
	if !json.Valid(payload) {
		return nil, false
	}
	return payload, true
}
