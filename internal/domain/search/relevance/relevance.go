// Package relevance scores keyword matches against QA documents.
// Scoring is a pure function of the document text: occurrence count,
// position of the first match, and an exact-token bonus, weighted per
// field and clamped to [0,100].
package relevance

import (
	"strings"

	"github.com/corpora-lab/qadex/internal/domain/document"
)

// Field names a searchable document field.
type Field string

// Searchable fields.
const (
	FieldQuestion Field = "question"
	FieldAnswer   Field = "answer"
	FieldCategory Field = "category"
	FieldSource   Field = "source"
)

// MaxScore is the upper bound of a relevance score.
const MaxScore = 100.0

const (
	occurrenceUnit  = 10.0
	occurrenceCap   = 50.0
	positionMax     = 20.0
	exactTokenBonus = 15.0
)

// Question matches are worth more than answer matches; category and
// source matches are weak signals.
var fieldWeights = map[Field]float64{
	FieldQuestion: 2.0,
	FieldAnswer:   1.0,
	FieldCategory: 0.5,
	FieldSource:   0.3,
}

// DefaultFields returns the field set searched when the caller names none.
func DefaultFields() []Field {
	return []Field{FieldQuestion, FieldAnswer}
}

// Known reports whether f is a searchable field.
func Known(f Field) bool {
	_, ok := fieldWeights[f]
	return ok
}

// Matches reports whether the keyword occurs as a substring in at least
// one of the requested fields. This is the binary gate applied before
// scoring: a document failing it must not appear in results at all.
func Matches(doc *document.Document, keyword string, fields []Field, caseSensitive bool) bool {
	needle := fold(keyword, caseSensitive)
	for _, f := range fields {
		text := fieldText(doc, f)
		if text == "" {
			continue
		}
		if strings.Contains(fold(text, caseSensitive), needle) {
			return true
		}
	}
	return false
}

// Score computes the relevance of a document for a keyword over the
// requested fields. The result is in [0, MaxScore]; documents that fail
// the Matches gate score 0.
func Score(doc *document.Document, keyword string, fields []Field, caseSensitive bool) float64 {
	needle := fold(keyword, caseSensitive)

	var total float64
	for _, f := range fields {
		text := fieldText(doc, f)
		if text == "" {
			continue
		}
		hay := fold(text, caseSensitive)

		occurrences := strings.Count(hay, needle)
		if occurrences == 0 {
			continue
		}

		occurrenceScore := min(float64(occurrences)*occurrenceUnit, occurrenceCap)

		first := strings.Index(hay, needle)
		positionScore := max(0, positionMax-float64(first)/float64(len(hay))*positionMax)

		var bonus float64
		for _, token := range strings.Fields(hay) {
			if token == needle {
				bonus = exactTokenBonus
				break
			}
		}

		total += (occurrenceScore + positionScore + bonus) * fieldWeights[f]
	}

	return min(total, MaxScore)
}

func fieldText(doc *document.Document, f Field) string {
	switch f {
	case FieldQuestion:
		return doc.Question()
	case FieldAnswer:
		return doc.Answer()
	case FieldCategory:
		return doc.Category()
	case FieldSource:
		return doc.Source()
	default:
		return ""
	}
}

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}
