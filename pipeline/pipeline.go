// Package pipeline orchestrates segmentation, scoring and filtering across a
// document corpus, producing the accepted chunk sequence and the rejection
// report handed to the embedding stage.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/chunking"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/quality"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/tokenizer"
)

// Config holds the full configuration surface of the chunking core.
type Config struct {
	TargetLength int
	Overlap      int
	Lookback     int // 0 selects the segmenter default
	Weights      quality.Weights
	Thresholds   quality.Thresholds
	Concurrency  int // 0 selects GOMAXPROCS
	Tokens       tokenizer.Counter
}

// Pipeline runs the per-document segment → score → filter pass over a corpus.
// Documents are processed concurrently; results are merged in input order so
// output is deterministic regardless of concurrency.
type Pipeline struct {
	segmenter   *chunking.Segmenter
	scorer      *quality.Scorer
	thresholds  quality.Thresholds
	concurrency int
	tokens      tokenizer.Counter
}

// Result is the terminal output of a corpus run.
type Result struct {
	Accepted []document.Accepted
	Report   *Report
}

// New validates the whole configuration up front; no document is touched when
// any parameter is invalid.
func New(cfg Config) (*Pipeline, error) {
	var opts []chunking.Option
	if cfg.Lookback > 0 {
		opts = append(opts, chunking.WithLookback(cfg.Lookback))
	}
	segmenter, err := chunking.NewSegmenter(cfg.TargetLength, cfg.Overlap, opts...)
	if err != nil {
		return nil, err
	}
	scorer, err := quality.NewScorer(cfg.TargetLength, cfg.Weights)
	if err != nil {
		return nil, err
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("pipeline: concurrency %d must not be negative", cfg.Concurrency)
	}
	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		segmenter:   segmenter,
		scorer:      scorer,
		thresholds:  cfg.Thresholds,
		concurrency: concurrency,
		tokens:      cfg.Tokens,
	}, nil
}

type documentResult struct {
	accepted  []document.Scored
	rejected  []string // rejection reasons, in chunk sequence order
	failure   *document.Failure
	candidate int
}

// Run processes documents in input order. A failing document is recorded and
// skipped; it never aborts the corpus run. The only returned error is context
// cancellation.
func (p *Pipeline) Run(ctx context.Context, docs []document.Document) (*Result, error) {
	results := make([]documentResult, len(docs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for i := range docs {
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = p.processDocument(&docs[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	report := NewReport()
	result := &Result{Report: report}
	for i := range docs {
		doc := &docs[i]
		res := &results[i]
		if res.failure != nil {
			report.RecordFailure(*res.failure)
			continue
		}
		report.Documents++
		report.Candidates += res.candidate
		for _, reason := range res.rejected {
			report.recordRejection(doc.ID, reason)
		}
		for _, sc := range res.accepted {
			accepted := document.Accepted{
				Scored:  sc,
				ChunkID: document.ChunkID(sc.DocumentID, sc.Seq),
				Ordinal: len(result.Accepted),
			}
			if p.tokens != nil {
				accepted.Tokens = p.tokens.Count(sc.Text)
			}
			report.Accepted++
			report.recordScore(sc.Score)
			result.Accepted = append(result.Accepted, accepted)
		}
	}
	return result, nil
}

// processDocument runs the full pass for one document. It has no shared state
// with other documents; the per-document filter owns the dedup window.
func (p *Pipeline) processDocument(doc *document.Document) documentResult {
	if doc.Empty() {
		return documentResult{failure: &document.Failure{
			DocumentID: doc.ID,
			Kind:       document.FailureEmpty,
		}}
	}
	// thresholds were validated in New; a per-document filter cannot fail here
	filter, _ := quality.NewFilter(p.thresholds)
	var res documentResult
	for _, candidate := range p.segmenter.Segment(doc) {
		res.candidate++
		scoredChunk := p.scorer.Score(candidate)
		if ok, reason := filter.Admit(scoredChunk); !ok {
			res.rejected = append(res.rejected, reason)
			continue
		}
		res.accepted = append(res.accepted, scoredChunk)
	}
	return res
}
