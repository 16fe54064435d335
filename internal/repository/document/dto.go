package document

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/corpora-lab/qadex/internal/domain"
	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
)

// Hash field names. The id is duplicated into a TAG field so KNN searches
// can exclude a document from its own results.
const (
	fieldID           = "id"
	fieldQuestion     = "question"
	fieldAnswer       = "answer"
	fieldCategory     = "category"
	fieldSource       = "source"
	fieldVector       = "vector"
	fieldCreatedAt    = "created_at"
	fieldLastModified = "last_modified"
)

// IndexName is the FT index over QA hashes.
var IndexName = domain.KeyPrefix + "qa:idx"

// keyPrefix namespaces QA hashes.
var keyPrefix = domain.KeyPrefix + "qa:"

func docKey(id string) string {
	return keyPrefix + id
}

// buildHashFields converts a domain Document into a flat map for HSET.
func buildHashFields(doc *domdoc.Document) map[string]string {
	m := map[string]string{
		fieldID:       doc.ID(),
		fieldQuestion: doc.Question(),
		fieldAnswer:   doc.Answer(),
		fieldCategory: doc.Category(),
		fieldSource:   doc.Source(),
	}
	if doc.HasVector() {
		m[fieldVector] = vectorToBytes(doc.Vector())
	}
	if !doc.CreatedAt().IsZero() {
		m[fieldCreatedAt] = doc.CreatedAt().UTC().Format(time.RFC3339)
	}
	if !doc.LastModified().IsZero() {
		m[fieldLastModified] = doc.LastModified().UTC().Format(time.RFC3339)
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(
		id,
		m[fieldQuestion],
		m[fieldAnswer],
		m[fieldCategory],
		m[fieldSource],
		bytesToVector(m[fieldVector]),
		parseTime(m[fieldCreatedAt]),
		parseTime(m[fieldLastModified]),
	)
}

// ParseSearchEntry converts a search hit (hash key plus flat fields)
// into a domain Document. Shared with the search repository so both
// read the same hash layout.
func ParseSearchEntry(key string, fields map[string]string) domdoc.Document {
	return parseHashFields(idFromKey(key), fields)
}

// parseTime tolerates missing or malformed timestamps: they are
// informational only.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	if s == "" {
		return nil
	}
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
