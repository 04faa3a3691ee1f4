package popup

import (
	"fmt"
	"io"
	"strings"

	"github.com/syedkumailraza2/buildboard/internal/idea"
)

// InvalidHeading introduces raw output that could not be parsed.
const InvalidHeading = "AI returned invalid JSON — see raw output below:"

// TextDisplay writes results to a terminal.
type TextDisplay struct {
	w       io.Writer
	loading bool
}

// NewTextDisplay creates a display writing to w.
func NewTextDisplay(w io.Writer) *TextDisplay {
	return &TextDisplay{w: w}
}

func (t *TextDisplay) ShowLoading(on bool) {
	if on && !t.loading {
		fmt.Fprintln(t.w, "Generating idea...")
	}
	t.loading = on
}

// Loading reports whether the indicator is currently shown.
func (t *TextDisplay) Loading() bool {
	return t.loading
}

func (t *TextDisplay) ShowIdea(i idea.Idea) {
	fmt.Fprintf(t.w, "\n%s\n%s\n\n%s\n", i.Title, strings.Repeat("=", len([]rune(i.Title))), i.Description)
	if len(i.Tags) > 0 {
		fmt.Fprintf(t.w, "\nTags: %s\n", strings.Join(i.Tags, ", "))
	}
}

func (t *TextDisplay) ShowInvalid(raw string) {
	fmt.Fprintf(t.w, "\n%s\n\n%s\n", InvalidHeading, idea.RawPreview(raw))
}

func (t *TextDisplay) ShowError(err error) {
	fmt.Fprintf(t.w, "\nError: %v\n", err)
}

// Capture records what was displayed, for callers that render later.
type Capture struct {
	Loading bool
	// LoadingShown is set once the indicator has been switched on.
	LoadingShown bool

	Idea    *idea.Idea
	Invalid bool
	Raw     string
	Err     error
}

func (c *Capture) ShowLoading(on bool) {
	c.Loading = on
	if on {
		c.LoadingShown = true
	}
}

func (c *Capture) ShowIdea(i idea.Idea) {
	c.Idea = &i
}

func (c *Capture) ShowInvalid(raw string) {
	c.Invalid = true
	c.Raw = idea.RawPreview(raw)
}

func (c *Capture) ShowError(err error) {
	c.Err = err
}
