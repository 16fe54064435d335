package db

import (
	"errors"
	"fmt"

	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       filter.Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN searches
// Score carries the native similarity (1 − cosine distance, clamped to [0,1]).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// IndexDefinition describes the FT index over QA hashes: tag fields for
// equality filtering plus one HNSW vector field.
type IndexDefinition struct {
	Name   string
	Prefix string
	Tags   []string
	Vector VectorField
}

// VectorField describes the HNSW vector index field.
type VectorField struct {
	Name        string
	Dim         int
	M           int
	EFConstruct int
}

// Validate checks the definition is complete.
func (d *IndexDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("index name is required")
	}
	if d.Prefix == "" {
		return errors.New("index prefix is required")
	}
	if d.Vector.Name == "" {
		return errors.New("vector field name is required")
	}
	if d.Vector.Dim <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", d.Vector.Dim)
	}
	return nil
}
