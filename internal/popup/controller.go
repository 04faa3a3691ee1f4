// Package popup runs the request, parse and present flow behind the idea
// popup. Display elements are passed in explicitly so the same controller
// drives the terminal, the web page and the MCP tools.
package popup

import (
	"context"
	"log"
	"strings"

	"github.com/syedkumailraza2/buildboard/internal/database"
	"github.com/syedkumailraza2/buildboard/internal/extract"
	"github.com/syedkumailraza2/buildboard/internal/idea"
	"github.com/syedkumailraza2/buildboard/internal/prompt"
	"github.com/syedkumailraza2/buildboard/internal/relay"
)

// Source turns a prompt into a relay payload.
type Source interface {
	Fetch(ctx context.Context, prompt string) (relay.Payload, error)
}

// Recorder stores finished generations.
type Recorder interface {
	InsertIdea(rec database.Record) (string, error)
}

// Display is the set of UI sinks the controller writes to.
type Display interface {
	ShowLoading(on bool)
	ShowIdea(i idea.Idea)
	ShowInvalid(raw string)
	ShowError(err error)
}

// Kind says which result a Generate call displayed.
type Kind int

const (
	KindError Kind = iota
	KindInvalid
	KindIdea
)

func (k Kind) String() string {
	switch k {
	case KindIdea:
		return "idea"
	case KindInvalid:
		return "invalid"
	default:
		return "error"
	}
}

// Outcome describes what a Generate call displayed.
type Outcome struct {
	Kind       Kind
	Difficulty string
	Idea       idea.Idea
	// Raw is the relay text, set for ideas and invalid responses.
	Raw string
	// Extraction is the extractor's verdict; zero when the payload carried
	// an object already or the request failed.
	Extraction extract.Status
	Err        error
	// RecordID is the history ID when the outcome was recorded.
	RecordID string
}

// Controller wires a Source and an optional Recorder.
type Controller struct {
	source   Source
	recorder Recorder
}

// NewController creates a controller. recorder may be nil.
func NewController(source Source, recorder Recorder) *Controller {
	return &Controller{source: source, recorder: recorder}
}

// Generate asks for one idea at the given difficulty and shows the result on
// d. The loading indicator is always cleared before Generate returns.
// Repeated calls are independent; nothing guards overlapping requests.
func (c *Controller) Generate(ctx context.Context, difficulty string, d Display) Outcome {
	difficulty = strings.TrimSpace(difficulty)
	if difficulty == "" {
		difficulty = prompt.DefaultDifficulty
	}
	out := Outcome{Difficulty: difficulty}

	d.ShowLoading(true)
	defer d.ShowLoading(false)

	payload, err := c.source.Fetch(ctx, prompt.Build(difficulty))
	if err != nil {
		out.Kind = KindError
		out.Err = err
		d.ShowError(err)
		return out
	}
	out.Raw = payload.Text

	parsed := payload.Value
	if parsed == nil {
		r := extract.Extract(payload.Text)
		out.Extraction = r.Status
		if r.OK() {
			parsed = r.Value
		} else if r.Err != nil {
			log.Printf("Could not extract JSON (%s): %v", r.Status, r.Err)
		}
	}

	if !idea.Truthy(parsed) {
		out.Kind = KindInvalid
		d.ShowInvalid(payload.Text)
		c.record(&out)
		return out
	}

	out.Kind = KindIdea
	out.Idea = idea.FromParsed(parsed)
	d.ShowIdea(out.Idea)
	c.record(&out)
	return out
}

func (c *Controller) record(out *Outcome) {
	if c.recorder == nil {
		return
	}
	rec := database.Record{
		Difficulty: out.Difficulty,
		RawText:    out.Raw,
		Status:     database.StatusInvalid,
	}
	if out.Kind == KindIdea {
		rec.Status = database.StatusParsed
		rec.Title = out.Idea.Title
		rec.Description = out.Idea.Description
		rec.Tags = out.Idea.Tags
	}
	id, err := c.recorder.InsertIdea(rec)
	if err != nil {
		log.Printf("Error recording idea: %v", err)
		return
	}
	out.RecordID = id
}
