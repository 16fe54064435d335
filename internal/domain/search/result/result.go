// Package result holds scored search hits.
package result

import "github.com/corpora-lab/qadex/internal/domain/document"

// Result is a keyword search hit: a document with its relevance score.
type Result struct {
	doc       document.Document
	relevance float64
}

// New creates a keyword search result.
func New(doc document.Document, relevance float64) Result {
	return Result{doc: doc, relevance: relevance}
}

// Document returns the matched document.
func (r *Result) Document() document.Document { return r.doc }

// Relevance returns the relevance score in [0,100].
func (r *Result) Relevance() float64 { return r.relevance }

// Similar is a vector similarity hit. The similarity score is the
// store-native value; question/answer/overall sub-scores are attached
// only by the text-driven search path.
type Similar struct {
	doc          document.Document
	similarity   float64
	questionSim  float64
	answerSim    float64
	overallSim   float64
	hasSubScores bool
}

// NewSimilar creates a similarity hit carrying the store-native score.
func NewSimilar(doc document.Document, similarity float64) Similar {
	return Similar{doc: doc, similarity: similarity}
}

// WithSubScores returns a copy with question/answer/overall sub-scores attached.
func (s *Similar) WithSubScores(question, answer, overall float64) Similar {
	c := *s
	c.questionSim = question
	c.answerSim = answer
	c.overallSim = overall
	c.hasSubScores = true
	return c
}

// Document returns the matched document.
func (s *Similar) Document() document.Document { return s.doc }

// Similarity returns the store-native similarity in [0,1].
func (s *Similar) Similarity() float64 { return s.similarity }

// QuestionSimilarity returns the recomputed question sub-similarity.
func (s *Similar) QuestionSimilarity() float64 { return s.questionSim }

// AnswerSimilarity returns the recomputed answer sub-similarity, 0.0 for
// sentinel answers.
func (s *Similar) AnswerSimilarity() float64 { return s.answerSim }

// OverallSimilarity returns the overall score used for final ordering.
func (s *Similar) OverallSimilarity() float64 { return s.overallSim }

// HasSubScores reports whether sub-scores were attached.
func (s *Similar) HasSubScores() bool { return s.hasSubScores }

// Comparison is the outcome of comparing two specific documents.
type Comparison struct {
	first           document.Document
	second          document.Document
	similarity      float64
	likelyDuplicate bool
}

// NewComparison creates a pairwise comparison result.
func NewComparison(first, second document.Document, similarity float64, likelyDuplicate bool) Comparison {
	return Comparison{first: first, second: second, similarity: similarity, likelyDuplicate: likelyDuplicate}
}

// First returns the query document.
func (c *Comparison) First() document.Document { return c.first }

// Second returns the compared document.
func (c *Comparison) Second() document.Document { return c.second }

// Similarity returns the similarity score, 0.0 when the second document
// fell outside the comparison window.
func (c *Comparison) Similarity() float64 { return c.similarity }

// IsLikelyDuplicate reports whether the pair crossed the duplicate threshold.
func (c *Comparison) IsLikelyDuplicate() bool { return c.likelyDuplicate }
