// Package index implements the Okapi BM25 lexical index over normalized recipe tokens.
package index

import (
	"fmt"
	"math"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Params holds the BM25 constants. They are fixed when the index is built.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns k1=1.5, b=0.75.
func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.K1 < 0 {
		return fmt.Errorf("k1 must be non-negative, got %g", p.K1)
	}
	if p.B < 0 || p.B > 1 {
		return fmt.Errorf("b must be between 0 and 1, got %g", p.B)
	}
	return nil
}

type posting struct {
	doc int
	tf  int
}

// BM25 is an immutable inverted index. Safe for concurrent reads.
type BM25 struct {
	params   Params
	docLens  []int
	avgdl    float64
	postings map[string][]posting
	idf      map[string]float64
}

// Build indexes docs, where docs[i] is the token sequence of document i.
// Empty documents are kept and never score.
func Build(docs [][]string, p Params) (*BM25, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bm25 params: %w", err)
	}

	x := &BM25{
		params:   p,
		docLens:  make([]int, len(docs)),
		postings: make(map[string][]posting),
		idf:      make(map[string]float64),
	}

	var total int
	for i, tokens := range docs {
		x.docLens[i] = len(tokens)
		total += len(tokens)

		tf := make(map[string]int, len(tokens))
		order := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if tf[t] == 0 {
				order = append(order, t)
			}
			tf[t]++
		}
		// postings stay sorted by doc because documents are visited in order
		for _, t := range order {
			x.postings[t] = append(x.postings[t], posting{doc: i, tf: tf[t]})
		}
	}

	if len(docs) > 0 {
		x.avgdl = float64(total) / float64(len(docs))
	}

	n := float64(len(docs))
	for term, list := range x.postings {
		df := float64(len(list))
		x.idf[term] = math.Log((n-df+0.5)/(df+0.5) + 1)
	}

	return x, nil
}

// Len returns the number of indexed documents.
func (x *BM25) Len() int { return len(x.docLens) }

// Vocabulary returns the number of distinct terms.
func (x *BM25) Vocabulary() int { return len(x.postings) }

// AvgDocLength returns the mean document length in tokens.
func (x *BM25) AvgDocLength() float64 { return x.avgdl }

// Params returns the build-time parameters.
func (x *BM25) Params() Params { return x.params }

// DocFreq returns the number of documents containing term.
func (x *BM25) DocFreq(term string) int { return len(x.postings[term]) }

// DocLen returns the token count of document doc.
func (x *BM25) DocLen(doc int) int { return x.docLens[doc] }

// IDF returns the inverse document frequency of term, 0 if unknown.
func (x *BM25) IDF(term string) float64 { return x.idf[term] }

// Scores returns the raw BM25 score of every document for the query.
// Repeated query tokens count once. Unknown tokens contribute nothing.
func (x *BM25) Scores(query []string) []float64 {
	scores := make([]float64, len(x.docLens))
	if len(scores) == 0 {
		return scores
	}

	seen := make(map[string]struct{}, len(query))
	for _, term := range query {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		idf := x.idf[term]
		for _, p := range x.postings[term] {
			scores[p.doc] += idf * x.termWeight(p.tf, x.docLens[p.doc])
		}
	}
	return scores
}

// Score computes the BM25 score of a single document by scanning its postings.
func (x *BM25) Score(query []string, doc int) float64 {
	if doc < 0 || doc >= len(x.docLens) {
		return 0
	}

	var score float64
	seen := make(map[string]struct{}, len(query))
	for _, term := range query {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		for _, p := range x.postings[term] {
			if p.doc == doc {
				score += x.idf[term] * x.termWeight(p.tf, x.docLens[doc])
				break
			}
		}
	}
	return score
}

// termWeight is the saturated term-frequency factor.
func (x *BM25) termWeight(tf, docLen int) float64 {
	f := float64(tf)
	norm := 1.0
	if x.avgdl > 0 {
		norm = 1 - x.params.B + x.params.B*float64(docLen)/x.avgdl
	}
	return f * (x.params.K1 + 1) / (f + x.params.K1*norm)
}
