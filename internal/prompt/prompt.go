// Package prompt builds the instruction sent to the generative model.
package prompt

import "fmt"

// DefaultDifficulty is used when no difficulty is given.
const DefaultDifficulty = "easy"

const ideaPrompt = `You are BuildBoard — an AI that gives a single project idea based on difficulty level: %s.
Return the response ONLY in JSON format:

{
  "idea": {
    "title": "AI-powered Fitness Coach",
    "description": "Create a virtual fitness coach app that analyzes user's movements using their phone camera and provides real-time feedback to improve form and prevent injuries.",
    "tags": ["AI", "Health", "Mobile App", "Beginner Friendly"]
  }
}`

// Build returns the project-idea prompt for a difficulty level. The value is
// interpolated verbatim; an empty difficulty becomes DefaultDifficulty.
func Build(difficulty string) string {
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	return fmt.Sprintf(ideaPrompt, difficulty)
}
