package prompt

import (
	"strings"
	"testing"

	"github.com/syedkumailraza2/buildboard/internal/extract"
)

func TestBuildDeterministic(t *testing.T) {
	a := Build("hard")
	b := Build("hard")
	if a != b {
		t.Error("expected identical prompts for the same difficulty")
	}
}

func TestBuildInterpolatesDifficulty(t *testing.T) {
	p := Build("hard")
	if !strings.Contains(p, "difficulty level: hard.") {
		t.Errorf("expected difficulty in prompt, got %q", p)
	}
	if Build("hard") == Build("easy") {
		t.Error("expected different prompts for different difficulties")
	}
}

func TestBuildVerbatim(t *testing.T) {
	p := Build("100% <b>insane</b>")
	if !strings.Contains(p, "difficulty level: 100% <b>insane</b>.") {
		t.Errorf("expected difficulty interpolated verbatim, got %q", p)
	}
}

func TestBuildDefault(t *testing.T) {
	if Build("") != Build(DefaultDifficulty) {
		t.Error("expected empty difficulty to default to easy")
	}
}

func TestBuildExampleIsValidJSON(t *testing.T) {
	r := extract.Extract(Build("medium"))
	if !r.OK() {
		t.Fatalf("expected embedded example to extract, got %s", r.Status)
	}
	obj, _ := r.Object()
	idea, ok := obj["idea"].(map[string]any)
	if !ok {
		t.Fatal("expected idea object in example")
	}
	if idea["title"] != "AI-powered Fitness Coach" {
		t.Errorf("unexpected example title %v", idea["title"])
	}
}
