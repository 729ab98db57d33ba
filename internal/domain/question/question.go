package question

import (
	"fmt"
	"strings"
)

// MaxTextLength is the maximum question text size in bytes.
const MaxTextLength = 4096

// Question is the domain input for indexing: one generated math question.
type Question struct {
	ID         string // optional; generated when empty
	Text       string
	Answer     int
	Operation  string // e.g. "addition"
	Difficulty string // label such as "grade_3" or "easy"
}

// Validate checks the fields the index relies on.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Text) > MaxTextLength {
		return fmt.Errorf("question text too long (max %d bytes)", MaxTextLength)
	}
	if len(q.ID) > 256 {
		return fmt.Errorf("question ID too long (max 256)")
	}
	return nil
}
