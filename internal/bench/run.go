package bench

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Punctuator restores a single text. *punct.Restorer implements it.
type Punctuator interface {
	Punctuate(ctx context.Context, text string) (string, error)
}

// DocumentResult is the evaluation of one document.
type DocumentResult struct {
	ID        string
	Predicted string
	Report    Report
}

// EvaluateCorpus restores every document and returns the per-document
// results and the combined report. Documents longer than cfg.Window words
// are restored chunk by chunk and scored as a whole.
func EvaluateCorpus(ctx context.Context, p Punctuator, docs []*Document, cfg Config) ([]DocumentResult, Report, error) {
	results := make([]DocumentResult, 0, len(docs))
	reports := make([]Report, 0, len(docs))

	for _, doc := range docs {
		chunks := doc.Chunks(cfg.Window)
		parts := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			out, err := p.Punctuate(ctx, chunk)
			if err != nil {
				return nil, Report{}, fmt.Errorf("restoring %s: %w", doc.ID, err)
			}
			parts = append(parts, out)
		}
		predicted := strings.Join(parts, " ")

		r, err := EvaluateText(doc.Text, predicted, cfg)
		if err != nil {
			return nil, Report{}, fmt.Errorf("evaluating %s: %w", doc.ID, err)
		}

		results = append(results, DocumentResult{ID: doc.ID, Predicted: predicted, Report: r})
		reports = append(reports, r)
	}

	return results, Combine(reports, cfg), nil
}

// ModelResult holds the corpus report for one model.
type ModelResult struct {
	Model  string
	Report Report
}

// Rank sorts results by boundary weighted score, best first. Ties are
// broken by comma F1.
func Rank(results []ModelResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Report, results[j].Report
		if a.Boundaries.WeightedScore != b.Boundaries.WeightedScore {
			return a.Boundaries.WeightedScore > b.Boundaries.WeightedScore
		}
		return a.Commas.F1 > b.Commas.F1
	})
}
