package database

// Record statuses.
const (
	StatusParsed  = "parsed"
	StatusInvalid = "invalid"
)

// Record is one stored generation: either a parsed idea or the raw text of a
// response that could not be parsed.
type Record struct {
	ID          string
	Difficulty  string
	Status      string
	Title       string
	Description string
	Tags        []string
	RawText     string
	CreatedAt   *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalIdeas   int
	ParsedIdeas  int
	InvalidIdeas int
	ByDifficulty map[string]int
}
