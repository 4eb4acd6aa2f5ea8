// Package service exposes reusable operations for chunking a news corpus
// and exporting the run artifacts.
package service

import (
	"context"
	"fmt"

	"github.com/viant/afs"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/corpus"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/pipeline"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/quality"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/store"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/tokenizer"
)

// Option configures the Service.
type Option func(*Service)

// WithFS sets the file service used for corpus reads and artifact writes.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithCatalog sets an existing catalog, overriding the DSN in the config.
func WithCatalog(catalog *store.Catalog) Option {
	return func(s *Service) { s.catalog = catalog }
}

// Service exposes chunking runs and catalog queries.
type Service struct {
	fs      afs.Service
	catalog *store.Catalog
}

// New creates a new Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	return s
}

// ChunkRequest defines a single corpus chunking run.
type ChunkRequest struct {
	Config Config
	// Logf receives run progress lines; nil disables logging.
	Logf func(format string, args ...any)
	// Progress is called after each phase with processed/total documents.
	Progress func(phase string, done, total int)
}

// ChunkResponse carries the run outcome.
type ChunkResponse struct {
	Accepted []document.Accepted
	Report   *pipeline.Report
	RunID    int64
}

// Chunk loads the corpus, runs the segment, score and filter pass, and
// writes every artifact the config names.
func (s *Service) Chunk(ctx context.Context, req ChunkRequest) (*ChunkResponse, error) {
	cfg := req.Config
	if cfg.Corpus.Location == "" {
		return nil, fmt.Errorf("service: corpus location required")
	}

	run, err := pipeline.New(pipeline.Config{
		TargetLength: cfg.Chunking.TargetLength,
		Overlap:      cfg.Chunking.Overlap,
		Lookback:     cfg.Chunking.Lookback,
		Weights:      cfg.Quality.Weights,
		Thresholds:   cfg.Quality.Thresholds,
		Concurrency:  cfg.Concurrency,
		Tokens:       tokenizer.New(cfg.Tokenizer.Encoding),
	})
	if err != nil {
		return nil, err
	}

	var matcherOpts []corpus.MatcherOption
	if len(cfg.Corpus.Include) > 0 {
		matcherOpts = append(matcherOpts, corpus.WithInclusions(cfg.Corpus.Include...))
	}
	if len(cfg.Corpus.Exclude) > 0 {
		matcherOpts = append(matcherOpts, corpus.WithExclusions(cfg.Corpus.Exclude...))
	}
	if cfg.Corpus.MaxSizeBytes > 0 {
		matcherOpts = append(matcherOpts, corpus.WithMaxSizeBytes(cfg.Corpus.MaxSizeBytes))
	}
	loader := corpus.NewLoader(corpus.WithFS(s.fs), corpus.WithMatcher(corpus.NewMatcher(matcherOpts...)))

	docs, loadFailures, err := loader.Load(ctx, cfg.Corpus.Location)
	if err != nil {
		return nil, err
	}
	if req.Logf != nil {
		req.Logf("corpus loaded location=%s documents=%d unreadable=%d", cfg.Corpus.Location, len(docs), len(loadFailures))
	}
	if req.Progress != nil {
		req.Progress("load", len(docs), len(docs)+len(loadFailures))
	}

	result, err := run.Run(ctx, docs)
	if err != nil {
		return nil, err
	}
	for _, failure := range loadFailures {
		result.Report.RecordFailure(failure)
	}
	if req.Logf != nil {
		report := result.Report
		req.Logf("chunking done documents=%d candidates=%d accepted=%d rejected=%d avg_score=%.3f",
			report.Documents, report.Candidates, report.Accepted, report.Rejected, report.Scores.Avg)
		for _, entry := range report.ReasonCounts() {
			req.Logf("rejections reason=%s count=%d", entry.Reason, entry.Count)
		}
	}
	if req.Progress != nil {
		req.Progress("chunk", result.Report.Documents, result.Report.Documents)
	}

	response := &ChunkResponse{Accepted: result.Accepted, Report: result.Report}
	if err := s.export(ctx, cfg, response, req.Logf); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Service) export(ctx context.Context, cfg Config, response *ChunkResponse, logf func(string, ...any)) error {
	if cfg.Output.Chunks != "" {
		if err := store.WriteChunksJSONL(ctx, s.fs, cfg.Output.Chunks, response.Accepted); err != nil {
			return err
		}
		if logf != nil {
			logf("wrote chunks url=%s count=%d", cfg.Output.Chunks, len(response.Accepted))
		}
	}
	if cfg.Output.Report != "" {
		if err := store.WriteReportJSON(ctx, s.fs, cfg.Output.Report, response.Report); err != nil {
			return err
		}
	}
	if cfg.Output.ReportCSV != "" {
		if err := store.WriteReportCSV(ctx, s.fs, cfg.Output.ReportCSV, response.Report); err != nil {
			return err
		}
	}
	if cfg.Output.ReportXLSX != "" {
		if err := store.WriteReportXLSX(ctx, s.fs, cfg.Output.ReportXLSX, response.Report); err != nil {
			return err
		}
	}
	if cfg.Output.Snapshot != "" {
		if err := store.SaveSnapshot(ctx, s.fs, cfg.Output.Snapshot, response.Accepted); err != nil {
			return err
		}
	}

	catalog := s.catalog
	if catalog == nil && cfg.Output.CatalogDSN != "" {
		opened, err := store.OpenCatalog(cfg.Output.CatalogDSN)
		if err != nil {
			return err
		}
		defer opened.Close()
		catalog = opened
	}
	if catalog != nil {
		runID, err := catalog.SaveRun(ctx, cfg.Corpus.Location, response.Report, response.Accepted)
		if err != nil {
			return err
		}
		response.RunID = runID
		if logf != nil {
			logf("cataloged run id=%d", runID)
		}
	}
	return nil
}

// ScoreRequest scores a single piece of text without touching storage, used
// by the inspect command to explain filter decisions.
type ScoreRequest struct {
	Text         string
	TargetLength int
	Weights      quality.Weights
}

// Score computes the quality breakdown for one text span.
func (s *Service) Score(req ScoreRequest) (document.Scored, error) {
	targetLength := req.TargetLength
	if targetLength == 0 {
		targetLength = DefaultConfig().Chunking.TargetLength
	}
	scorer, err := quality.NewScorer(targetLength, req.Weights)
	if err != nil {
		return document.Scored{}, err
	}
	candidate := document.Candidate{Text: req.Text, End: len(req.Text)}
	return scorer.Score(candidate), nil
}
