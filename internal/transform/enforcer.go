package transform

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/ipcctiled/transform-api/internal/profile"
)

// fencePattern matches a reply wrapped in one markdown code block: ```json {...} ```
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z]*[ \\t]*\\n?(.*?)\\s*```$")

var errNotObject = errors.New("reply is not a JSON object")

// stripFence removes a single surrounding markdown code fence. Nothing else is altered.
func stripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(trimmed); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// parseFields decodes the reply into its top-level keys
func parseFields(raw string) (profile.Fields, error) {
	text := stripFence(raw)
	if !strings.HasPrefix(text, "{") {
		return nil, errNotObject
	}

	var fields profile.Fields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}

// Enforce parses a raw completion and checks it against the profile. It returns the
// profile's response body; missing keys are never guessed or repaired.
func Enforce(raw string, p profile.Profile, policy profile.RangePolicy) (any, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, NewMalformedOutputError(raw, err)
	}

	res, err := p.Decode(fields, policy)
	if err != nil {
		return nil, NewMalformedOutputError(raw, err)
	}

	return p.Response(res), nil
}
