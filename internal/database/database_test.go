package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndGetIdea(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertIdea(Record{
		Difficulty:  "hard",
		Status:      StatusParsed,
		Title:       "Distributed Cache",
		Description: "Build a cache.",
		Tags:        []string{"Go", "Systems"},
		RawText:     `{"idea":{}}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a UUID id, got %q", id)
	}

	rec, err := db.GetIdea(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.Title != "Distributed Cache" || rec.Difficulty != "hard" {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(rec.Tags) != 2 || rec.Tags[1] != "Systems" {
		t.Errorf("unexpected tags %v", rec.Tags)
	}
	if rec.CreatedAt == nil {
		t.Error("expected created_at to be set")
	}
}

func TestInsertInvalidIdea(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertIdea(Record{Difficulty: "easy", Status: StatusInvalid, RawText: "not json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := db.GetIdea(id)
	if rec.Status != StatusInvalid {
		t.Errorf("expected invalid status, got %q", rec.Status)
	}
	if rec.Tags != nil {
		t.Errorf("expected nil tags, got %v", rec.Tags)
	}
	if rec.RawText != "not json" {
		t.Errorf("expected raw text kept, got %q", rec.RawText)
	}
}

func TestInsertRejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertIdea(Record{Difficulty: "easy", Status: "weird", RawText: "x"}); err == nil {
		t.Error("expected CHECK constraint error")
	}
}

func TestGetIdeaMissing(t *testing.T) {
	db := openTestDB(t)
	rec, err := db.GetIdea("does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Error("expected nil for missing record")
	}
}

func TestGetRecentIdeas(t *testing.T) {
	db := openTestDB(t)
	for _, title := range []string{"first", "second", "third"} {
		if _, err := db.InsertIdea(Record{Difficulty: "easy", Title: title, RawText: title}); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}

	recs, err := db.GetRecentIdeas(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Title != "third" || recs[1].Title != "second" {
		t.Errorf("expected newest first, got %q, %q", recs[0].Title, recs[1].Title)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertIdea(Record{Difficulty: "easy", RawText: "a"})
	db.InsertIdea(Record{Difficulty: "easy", RawText: "b"})
	db.InsertIdea(Record{Difficulty: "hard", Status: StatusInvalid, RawText: "c"})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalIdeas != 3 || stats.ParsedIdeas != 2 || stats.InvalidIdeas != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.ByDifficulty["easy"] != 2 || stats.ByDifficulty["hard"] != 1 {
		t.Errorf("unexpected difficulty counts %v", stats.ByDifficulty)
	}
}
