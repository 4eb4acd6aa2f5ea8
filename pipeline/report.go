package pipeline

import (
	"sort"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// Report accounts for every candidate chunk and every document in a run.
// Nothing is dropped without an entry here: chunks are either accepted or
// counted under a rejection reason; documents either complete or appear in
// Failures.
type Report struct {
	Documents  int                       `json:"documents"`
	Candidates int                       `json:"candidates"`
	Accepted   int                       `json:"accepted"`
	Rejected   int                       `json:"rejected"`
	Reasons    map[string]int            `json:"reasons"`
	ByDocument map[string]map[string]int `json:"by_document"`
	Failures   []document.Failure        `json:"failures,omitempty"`
	Scores     ScoreSummary              `json:"score_summary"`
}

// ScoreSummary aggregates accepted-chunk scores for workflow comparison.
type ScoreSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Reasons:    map[string]int{},
		ByDocument: map[string]map[string]int{},
	}
}

func (r *Report) recordRejection(documentID, reason string) {
	r.Rejected++
	r.Reasons[reason]++
	perDoc := r.ByDocument[documentID]
	if perDoc == nil {
		perDoc = map[string]int{}
		r.ByDocument[documentID] = perDoc
	}
	perDoc[reason]++
}

func (r *Report) recordScore(score float64) {
	s := &r.Scores
	if s.Count == 0 || score < s.Min {
		s.Min = score
	}
	if s.Count == 0 || score > s.Max {
		s.Max = score
	}
	s.Avg = (s.Avg*float64(s.Count) + score) / float64(s.Count+1)
	s.Count++
}

// RecordFailure adds a document-level failure entry; used by the pipeline for
// empty documents and by the corpus boundary for unreadable ones.
func (r *Report) RecordFailure(failure document.Failure) {
	r.Documents++
	r.Failures = append(r.Failures, failure)
}

// ReasonCounts returns the rejection reasons sorted by descending count, for
// stable presentation.
func (r *Report) ReasonCounts() []ReasonCount {
	out := make([]ReasonCount, 0, len(r.Reasons))
	for reason, count := range r.Reasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// ReasonCount pairs a rejection reason with its occurrence count.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}
