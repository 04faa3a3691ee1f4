// Package extract recovers a JSON value from free-form model output.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Status reports how an extraction ended.
type Status int

const (
	// NotFound means the text held nothing that looked like JSON.
	NotFound Status = iota
	// Malformed means an opening brace was present but no parse succeeded.
	Malformed
	// Found means Value holds a decoded JSON value.
	Found
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "not_found"
	}
}

// Result is the outcome of Extract.
type Result struct {
	Status Status
	// Value is the decoded JSON (map[string]any, []any, string, float64,
	// bool or nil). Only meaningful when Status is Found.
	Value any
	// Err is the last parse error seen, if any.
	Err error
}

// OK reports whether a value was recovered.
func (r Result) OK() bool {
	return r.Status == Found
}

// Object returns the value as a JSON object, if it is one.
func (r Result) Object() (map[string]any, bool) {
	if !r.OK() {
		return nil, false
	}
	m, ok := r.Value.(map[string]any)
	return m, ok
}

// ws matches Unicode space separators and \v as well as ASCII whitespace.
const ws = `[\s\v\p{Z}\x{FEFF}]*`

var (
	leadingFence  = regexp.MustCompile("(?i)^" + ws + "```(?:json)?" + ws)
	trailingFence = regexp.MustCompile("(?i)" + ws + "```" + ws + "$")
)

// StripFences removes one leading code fence (optionally tagged json) and one
// trailing fence, then trims surrounding whitespace.
func StripFences(text string) string {
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimFunc(text, isSpace)
}

// Extract locates and decodes the first balanced JSON object in text.
//
// Only the first balanced {...} region is tried. If it does not parse, the
// scan is abandoned and the whole cleaned text is parsed instead; later
// objects in the text are never considered. A quote preceded by a backslash
// never toggles string mode, so a string ending in an escaped backslash
// desynchronises the scanner.
func Extract(text string) Result {
	if text == "" {
		return Result{Status: NotFound}
	}

	text = StripFences(text)

	start := strings.IndexByte(text, '{')
	if start == -1 {
		v, err := decode(text)
		if err != nil {
			return Result{Status: NotFound, Err: err}
		}
		return Result{Status: Found, Value: v}
	}

	// Delimiters are all ASCII, so scanning bytes is safe for UTF-8 input.
	depth := 0
	inString := false
	var prev byte
	for i := start; i < len(text); i++ {
		ch := text[i]
		if ch == '"' && prev != '\\' {
			inString = !inString
		}
		if !inString {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				v, err := decode(text[start : i+1])
				if err == nil {
					return Result{Status: Found, Value: v}
				}
				break
			}
		}
		prev = ch
	}

	v, err := decode(text)
	if err != nil {
		return Result{Status: Malformed, Err: fmt.Errorf("parsing JSON: %w", err)}
	}
	return Result{Status: Found, Value: v}
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF'
}

func decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
