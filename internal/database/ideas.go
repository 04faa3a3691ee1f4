package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// InsertIdea stores a record and returns its ID. A new UUID is assigned when
// rec.ID is empty.
func (db *DB) InsertIdea(rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = StatusParsed
	}

	var tags *string
	if rec.Tags != nil {
		data, err := json.Marshal(rec.Tags)
		if err != nil {
			return "", fmt.Errorf("marshaling tags: %w", err)
		}
		s := string(data)
		tags = &s
	}

	_, err := db.conn.Exec(
		`INSERT INTO ideas (id, difficulty, status, title, description, tags, raw_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Difficulty, rec.Status, rec.Title, rec.Description, tags, rec.RawText,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

const ideaColumns = "id, difficulty, status, title, description, tags, raw_text, created_at"

// GetIdea returns a record by ID, or nil if it does not exist.
func (db *DB) GetIdea(id string) (*Record, error) {
	row := db.conn.QueryRow("SELECT "+ideaColumns+" FROM ideas WHERE id = ?", id)

	rec, err := scanIdea(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// GetRecentIdeas returns up to limit records, newest first.
func (db *DB) GetRecentIdeas(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(
		"SELECT "+ideaColumns+" FROM ideas ORDER BY created_at DESC, rowid DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByDifficulty: make(map[string]int)}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM ideas", &s.TotalIdeas},
		{"SELECT COUNT(*) FROM ideas WHERE status = 'parsed'", &s.ParsedIdeas},
		{"SELECT COUNT(*) FROM ideas WHERE status = 'invalid'", &s.InvalidIdeas},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	rows, err := db.conn.Query("SELECT difficulty, COUNT(*) FROM ideas GROUP BY difficulty")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var difficulty string
		var n int
		if err := rows.Scan(&difficulty, &n); err != nil {
			return nil, err
		}
		s.ByDifficulty[difficulty] = n
	}
	return s, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdea(row scanner) (*Record, error) {
	var rec Record
	var title, description, tags sql.NullString
	if err := row.Scan(&rec.ID, &rec.Difficulty, &rec.Status, &title, &description,
		&tags, &rec.RawText, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Title = title.String
	rec.Description = description.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
