package question

import (
	"regexp"
	"time"
)

// Fixed classification of every generated question.
const (
	CategoryArithmetic          = "arithmetic"
	CurriculumStrandNumberSense = "number_and_operations"
)

// DefaultGrade is used when the difficulty label carries no grade.
const DefaultGrade = "3"

// DefaultDifficultyScore is used for difficulty labels missing from the table.
const DefaultDifficultyScore = 0.3

var gradeRegex = regexp.MustCompile(`grade_(\d+)`)

var difficultyScores = map[string]float64{
	"grade_1": 0.1,
	"grade_2": 0.2,
	"grade_3": 0.3,
	"grade_4": 0.4,
	"grade_5": 0.5,
	"grade_6": 0.6,
	"grade_7": 0.7,
	"grade_8": 0.8,
	"easy":    0.25,
	"medium":  0.5,
	"hard":    0.75,
}

// Metadata is the filterable description stored next to each question vector.
type Metadata struct {
	Grade               string
	Topic               string
	Operation           string
	Difficulty          string
	DifficultyScore     float64 // [0,1]
	Category            string
	CurriculumStrand    string
	GenerationTimestamp time.Time
}

// DeriveMetadata builds Metadata from a question; now stamps GenerationTimestamp.
func DeriveMetadata(q *Question, now time.Time) Metadata {
	return Metadata{
		Grade:               ParseGrade(q.Difficulty),
		Topic:               q.Operation,
		Operation:           q.Operation,
		Difficulty:          q.Difficulty,
		DifficultyScore:     DifficultyScore(q.Difficulty),
		Category:            CategoryArithmetic,
		CurriculumStrand:    CurriculumStrandNumberSense,
		GenerationTimestamp: now.UTC(),
	}
}

// ParseGrade extracts N from a "grade_N" label, DefaultGrade otherwise.
func ParseGrade(label string) string {
	m := gradeRegex.FindStringSubmatch(label)
	if m == nil {
		return DefaultGrade
	}
	return m[1]
}

// DifficultyScore maps a difficulty label to [0,1].
func DifficultyScore(label string) float64 {
	if s, ok := difficultyScores[label]; ok {
		return s
	}
	return DefaultDifficultyScore
}
