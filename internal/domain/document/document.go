package document

import (
	"fmt"
	"strings"
	"time"
)

// MaxIDLen is the maximum document identifier length.
const MaxIDLen = 256

// sentinelAnswers are placeholder values meaning "no real answer supplied".
// They are treated identically to an empty answer wherever answer content
// drives embedding or display logic.
var sentinelAnswers = map[string]bool{
	"":           true,
	"unanswered": true,
	"N/A":        true,
}

// Document is a QA-pair record (immutable value object).
type Document struct {
	id           string
	question     string
	answer       string
	category     string
	source       string
	vector       []float32
	createdAt    time.Time
	lastModified time.Time
}

// New validates and creates a Document. The identifier is required and
// immutable once created; question and answer may be empty.
func New(id, question, answer, category, source string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLen {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLen)
	}
	return Document{
		id:       id,
		question: question,
		answer:   answer,
		category: category,
		source:   source,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, question, answer, category, source string,
	vector []float32, createdAt, lastModified time.Time,
) Document {
	return Document{
		id: id, question: question, answer: answer,
		category: category, source: source, vector: vector,
		createdAt: createdAt, lastModified: lastModified,
	}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Question returns the question text.
func (d Document) Question() string { return d.question }

// Answer returns the raw answer text, sentinel values included.
func (d Document) Answer() string { return d.answer }

// Category returns the category, empty if unset.
func (d Document) Category() string { return d.category }

// Source returns the source, empty if unset.
func (d Document) Source() string { return d.source }

// Vector returns the embedding vector, nil if the document has none.
func (d Document) Vector() []float32 { return d.vector }

// CreatedAt returns the creation timestamp (informational only).
func (d Document) CreatedAt() time.Time { return d.createdAt }

// LastModified returns the last modification timestamp (informational only).
func (d Document) LastModified() time.Time { return d.lastModified }

// HasVector reports whether the document can participate in similarity search.
func (d Document) HasVector() bool { return len(d.vector) > 0 }

// HasAnswer reports whether the answer is real, i.e. not a sentinel value.
func (d Document) HasAnswer() bool { return !IsSentinelAnswer(d.answer) }

// WithVector returns a copy with the given vector set.
func (d Document) WithVector(v []float32) Document {
	c := d
	c.vector = v
	return c
}

// SetVector sets the vector in place (mutation).
func (d *Document) SetVector(v []float32) { d.vector = v }

// EmbeddingText returns the text the embedding vector is generated from:
// question and answer combined, or the question alone when the answer is
// a sentinel value.
func (d Document) EmbeddingText() string {
	if d.question != "" && d.HasAnswer() {
		return d.question + " " + d.answer
	}
	return d.question
}

// IsSentinelAnswer reports whether the value means "no answer supplied".
func IsSentinelAnswer(answer string) bool {
	return sentinelAnswers[strings.TrimSpace(answer)]
}

// IsSentinelQuestion reports whether the question text is a placeholder
// ("" or "N/A") rather than real content. Unlike answers, "unanswered"
// is a legitimate question word and is not treated as a sentinel.
func IsSentinelQuestion(question string) bool {
	q := strings.TrimSpace(question)
	return q == "" || q == "N/A"
}
