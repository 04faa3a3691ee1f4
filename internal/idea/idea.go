// Package idea holds the project idea model and the rules for turning a
// parsed model response into one.
package idea

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Defaults used when the model leaves a field out.
const (
	DefaultTitle       = "Project Idea"
	DefaultDescription = "No description provided."
)

// DefaultTags returns the tags used when the model gives none.
func DefaultTags() []string {
	return []string{"Innovation", "Technology"}
}

// RawPreviewLimit caps how much of an unparseable response is shown.
const RawPreviewLimit = 2000

// Idea is a single generated project idea.
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// FromParsed normalises an extracted JSON value into an Idea. A top-level
// object with a truthy "idea" field is unwrapped; anything else is treated as
// the idea itself. Missing or falsy fields take the defaults.
func FromParsed(v any) Idea {
	body := v
	if m, ok := v.(map[string]any); ok && Truthy(m["idea"]) {
		body = m["idea"]
	}

	fields, _ := body.(map[string]any)

	out := Idea{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Tags:        DefaultTags(),
	}
	if t := fields["title"]; Truthy(t) {
		out.Title = text(t)
	}
	if d := fields["description"]; Truthy(d) {
		out.Description = text(d)
	}
	if tags, ok := fields["tags"].([]any); ok {
		out.Tags = make([]string, 0, len(tags))
		for _, tag := range tags {
			out.Tags = append(out.Tags, text(tag))
		}
	}
	return out
}

// Truthy follows JavaScript truthiness for decoded JSON values: null, false,
// 0 and "" are falsy, everything else (including empty arrays and objects)
// is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// RawPreview truncates an unparseable response for display.
func RawPreview(raw string) string {
	if utf8.RuneCountInString(raw) <= RawPreviewLimit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:RawPreviewLimit])
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
