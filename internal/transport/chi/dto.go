package chi

import (
	"time"

	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/group"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// documentResponse is the wire form of a document. The vector is never
// exposed over HTTP.
type documentResponse struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	Category     string `json:"category,omitempty"`
	Source       string `json:"source,omitempty"`
	HasVector    bool   `json:"has_vector"`
	CreatedAt    string `json:"created_at,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

type keywordResultItem struct {
	Document  documentResponse `json:"document"`
	Relevance float64          `json:"relevance"`
}

type keywordResultList struct {
	Items []keywordResultItem `json:"items"`
	Total int                 `json:"total"`
}

type similarResultItem struct {
	Document           documentResponse `json:"document"`
	Similarity         float64          `json:"similarity"`
	QuestionSimilarity *float64         `json:"question_similarity,omitempty"`
	AnswerSimilarity   *float64         `json:"answer_similarity,omitempty"`
}

type similarResultList struct {
	Items []similarResultItem `json:"items"`
	Total int                 `json:"total"`
}

type comparisonResponse struct {
	First           documentResponse `json:"first"`
	Second          documentResponse `json:"second"`
	Similarity      float64          `json:"similarity"`
	LikelyDuplicate bool             `json:"likely_duplicate"`
}

type duplicateGroupItem struct {
	PrimaryID       string              `json:"primary_id"`
	PrimaryQuestion string              `json:"primary_question"`
	Duplicates      []similarResultItem `json:"duplicates"`
	Count           int                 `json:"count"`
}

type duplicateGroupList struct {
	Groups []duplicateGroupItem `json:"groups"`
	Total  int                  `json:"total"`
}

type statsResponse struct {
	DocumentCount int  `json:"document_count"`
	Capped        bool `json:"capped"`
}

// patchRequest is the PATCH /v1/documents/{id} body. Absent fields are
// left untouched.
type patchRequest struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Category *string `json:"category"`
	Source   *string `json:"source"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToWire(doc *domdoc.Document) documentResponse {
	resp := documentResponse{
		ID:        doc.ID(),
		Question:  doc.Question(),
		Answer:    doc.Answer(),
		Category:  doc.Category(),
		Source:    doc.Source(),
		HasVector: doc.HasVector(),
	}
	if !doc.CreatedAt().IsZero() {
		resp.CreatedAt = doc.CreatedAt().UTC().Format(time.RFC3339)
	}
	if !doc.LastModified().IsZero() {
		resp.LastModified = doc.LastModified().UTC().Format(time.RFC3339)
	}
	return resp
}

func keywordResultToWire(r *result.Result) keywordResultItem {
	doc := r.Document()
	return keywordResultItem{
		Document:  documentToWire(&doc),
		Relevance: r.Relevance(),
	}
}

func similarResultToWire(r *result.Similar) similarResultItem {
	doc := r.Document()
	item := similarResultItem{
		Document:   documentToWire(&doc),
		Similarity: r.Similarity(),
	}
	if r.HasSubScores() {
		q, a := r.QuestionSimilarity(), r.AnswerSimilarity()
		item.Similarity = r.OverallSimilarity()
		item.QuestionSimilarity = &q
		item.AnswerSimilarity = &a
	}
	return item
}

func similarResultsToWire(rs []result.Similar) []similarResultItem {
	items := make([]similarResultItem, len(rs))
	for i := range rs {
		items[i] = similarResultToWire(&rs[i])
	}
	return items
}

func groupToWire(g *group.Group) duplicateGroupItem {
	return duplicateGroupItem{
		PrimaryID:       g.PrimaryID(),
		PrimaryQuestion: g.PrimaryQuestion(),
		Duplicates:      similarResultsToWire(g.Duplicates()),
		Count:           g.Count(),
	}
}
