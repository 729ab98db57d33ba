package question

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_:.-]+$`)

// Document is a question ready to be written to the index (immutable value object).
type Document struct {
	id        string
	text      string
	answer    int
	embedding []float32
	metadata  Metadata
}

// NewDocument validates and creates a Document.
func NewDocument(id, text string, answer int, embedding []float32, md Metadata) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID %q has invalid characters", id)
	}
	if text == "" {
		return Document{}, fmt.Errorf("question text is required")
	}
	if len(embedding) == 0 {
		return Document{}, fmt.Errorf("embedding is required")
	}
	return Document{id: id, text: text, answer: answer, embedding: embedding, metadata: md}, nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the raw question text.
func (d *Document) Text() string { return d.text }

// Answer returns the integer answer.
func (d *Document) Answer() int { return d.answer }

// Embedding returns the question vector.
func (d *Document) Embedding() []float32 { return d.embedding }

// Metadata returns the filterable metadata.
func (d *Document) Metadata() Metadata { return d.metadata }
