// Package patch describes partial document updates.
package patch

import "fmt"

// Patch is a partial document update. Nil fields are unchanged.
type Patch struct {
	question *string
	answer   *string
	category *string
	source   *string
}

// New validates and creates a Patch. At least one field must be provided.
func New(question, answer, category, source *string) (Patch, error) {
	if question == nil && answer == nil && category == nil && source == nil {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	return Patch{question: question, answer: answer, category: category, source: source}, nil
}

// Question returns the new question, or nil if unchanged.
func (p Patch) Question() *string { return p.question }

// Answer returns the new answer, or nil if unchanged.
func (p Patch) Answer() *string { return p.answer }

// Category returns the new category, or nil if unchanged.
func (p Patch) Category() *string { return p.category }

// Source returns the new source, or nil if unchanged.
func (p Patch) Source() *string { return p.source }

// TouchesEmbedding reports whether the patch changes the text the
// embedding vector is derived from.
func (p Patch) TouchesEmbedding() bool { return p.question != nil || p.answer != nil }
