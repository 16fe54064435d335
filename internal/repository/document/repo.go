// Package document persists QA documents as Redis hashes covered by a
// RediSearch index.
package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/corpora-lab/qadex/internal/db"
	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/document/patch"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index string, flt filter.Filter, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, flt filter.Filter) (int, error)
	TagValues(ctx context.Context, index, field string) ([]string, error)
}

// listFields are the hash fields fetched for list and search views.
// The vector blob is deliberately excluded.
var listFields = []string{
	fieldID, fieldQuestion, fieldAnswer, fieldCategory, fieldSource,
	fieldCreatedAt, fieldLastModified,
}

// sampleFields are the hash fields fetched for duplicate scans: just
// enough to identify a document and compare its vector.
var sampleFields = []string{fieldID, fieldQuestion, fieldVector}

// Repo stores QA documents in hashes under the qa key prefix.
type Repo struct {
	store       store
	hnswM       int
	hnswEFConst int
}

func New(s store) *Repo {
	return &Repo{store: s}
}

// WithHNSW sets the HNSW graph parameters used when the index is created.
func (r *Repo) WithHNSW(m, efConstruct int) *Repo {
	r.hnswM = m
	r.hnswEFConst = efConstruct
	return r
}

// EnsureIndex creates the FT index over QA hashes if it does not exist.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	def := &db.IndexDefinition{
		Name:   IndexName,
		Prefix: keyPrefix,
		Tags:   []string{fieldID, fieldCategory, fieldSource},
		Vector: db.VectorField{
			Name:        fieldVector,
			Dim:         dim,
			M:           r.hnswM,
			EFConstruct: r.hnswEFConst,
		},
	}
	err := r.store.CreateIndex(ctx, def)
	if errors.Is(err, db.ErrIndexExists) {
		return nil
	}
	return mapErr(err)
}

// Save writes the full document hash, stamping last_modified and, for
// new documents, created_at.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	fields := buildHashFields(doc)
	now := time.Now().UTC().Format(time.RFC3339)
	if fields[fieldCreatedAt] == "" {
		fields[fieldCreatedAt] = now
	}
	fields[fieldLastModified] = now
	return mapErr(r.store.HSet(ctx, docKey(doc.ID()), fields))
}

// Get fetches a single document with its vector.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domdoc.Document{}, mapErr(err)
	}
	return parseHashFields(id, m), nil
}

// Find lists documents matching the filter, without vectors. A limit of 0
// falls back to a single page of 100.
func (r *Repo) Find(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	res, err := r.store.SearchList(ctx, IndexName, flt, 0, limit, listFields)
	if err != nil {
		return nil, mapErr(err)
	}
	docs := make([]domdoc.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		docs = append(docs, parseHashFields(idFromKey(e.Key), e.Fields))
	}
	return docs, nil
}

// Sample lists up to limit documents with only id, question and vector,
// for full-corpus scans.
func (r *Repo) Sample(ctx context.Context, flt filter.Filter, limit int) ([]domdoc.Document, error) {
	res, err := r.store.SearchList(ctx, IndexName, flt, 0, limit, sampleFields)
	if err != nil {
		return nil, mapErr(err)
	}
	docs := make([]domdoc.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		docs = append(docs, parseHashFields(idFromKey(e.Key), e.Fields))
	}
	return docs, nil
}

// Update applies a partial patch. newVector, when non-nil, replaces the
// stored embedding in the same write.
func (r *Repo) Update(ctx context.Context, id string, p patch.Patch, newVector []float32) error {
	key := docKey(id)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return mapErr(err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	fields := make(map[string]string, 6)
	if q := p.Question(); q != nil {
		fields[fieldQuestion] = *q
	}
	if a := p.Answer(); a != nil {
		fields[fieldAnswer] = *a
	}
	if c := p.Category(); c != nil {
		fields[fieldCategory] = *c
	}
	if s := p.Source(); s != nil {
		fields[fieldSource] = *s
	}
	if newVector != nil {
		fields[fieldVector] = vectorToBytes(newVector)
	}
	fields[fieldLastModified] = time.Now().UTC().Format(time.RFC3339)
	return mapErr(r.store.HSet(ctx, key, fields))
}

// Delete removes a document. Returns false when no such document existed.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Del(ctx, docKey(id))
	return ok, mapErr(err)
}

// Count returns the number of documents matching the filter.
func (r *Repo) Count(ctx context.Context, flt filter.Filter) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, flt)
	return n, mapErr(err)
}

// Categories returns all distinct non-empty category values.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, fieldCategory)
}

// Sources returns all distinct non-empty source values.
func (r *Repo) Sources(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, fieldSource)
}

func (r *Repo) distinct(ctx context.Context, field string) ([]string, error) {
	vals, err := r.store.TagValues(ctx, IndexName, field)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func idFromKey(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

// mapErr translates storage errors into domain errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrKeyNotFound):
		return domain.ErrNotFound
	case errors.Is(err, db.ErrUnavailable):
		return domain.ErrNotConnected
	default:
		return err
	}
}
