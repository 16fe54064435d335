// Package group holds duplicate group summaries.
package group

import "github.com/corpora-lab/qadex/internal/domain/search/result"

// Group is one cluster of likely-duplicate documents: a primary document
// and the similar documents it claimed. Membership never overlaps another
// group within one scan.
type Group struct {
	primaryID       string
	primaryQuestion string
	duplicates      []result.Similar
}

// New creates a duplicate group.
func New(primaryID, primaryQuestion string, duplicates []result.Similar) Group {
	return Group{primaryID: primaryID, primaryQuestion: primaryQuestion, duplicates: duplicates}
}

// PrimaryID returns the identifier of the document that seeded the group.
func (g *Group) PrimaryID() string { return g.primaryID }

// PrimaryQuestion returns the primary document's question text.
func (g *Group) PrimaryQuestion() string { return g.primaryQuestion }

// Duplicates returns the similar documents, ordered by descending similarity.
func (g *Group) Duplicates() []result.Similar { return g.duplicates }

// Count returns the group cardinality, primary included.
func (g *Group) Count() int { return len(g.duplicates) + 1 }
