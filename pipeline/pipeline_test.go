package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/quality"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/tokenizer"
)

func testConfig() Config {
	return Config{
		TargetLength: 200,
		Overlap:      40,
		Thresholds:   quality.Thresholds{MinScore: 0.4, MinLength: 30, MaxNoiseRatio: 0.6, DedupWindow: 2},
		Concurrency:  4,
		Tokens:       tokenizer.Words(),
	}
}

func corpusDocs(n int) []document.Document {
	docs := make([]document.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, document.Document{
			ID: fmt.Sprintf("doc_%02d.md", i),
			Text: strings.Repeat(fmt.Sprintf("La edición %d informó sobre el puerto de Guayaquil y sus exportaciones. ", i), 12) +
				"\n\n" + strings.Repeat("El editorial analizó la política monetaria del banco central. ", 10),
		})
	}
	return docs
}

func TestNew_Validation(t *testing.T) {
	t.Run("ShouldRejectInvalidSegmentation", func(t *testing.T) {
		cfg := testConfig()
		cfg.Overlap = cfg.TargetLength
		_, err := New(cfg)
		require.Error(t, err)
	})
	t.Run("ShouldRejectInvalidThresholds", func(t *testing.T) {
		cfg := testConfig()
		cfg.Thresholds.MinScore = 7
		_, err := New(cfg)
		require.Error(t, err)
	})
	t.Run("ShouldRejectNegativeConcurrency", func(t *testing.T) {
		cfg := testConfig()
		cfg.Concurrency = -1
		_, err := New(cfg)
		require.Error(t, err)
	})
}

func TestRun_Deterministic(t *testing.T) {
	docs := corpusDocs(8)
	p, err := New(testConfig())
	require.NoError(t, err)

	first, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.NotEmpty(t, first.Accepted)

	for i := 0; i < 3; i++ {
		again, err := p.Run(context.Background(), docs)
		require.NoError(t, err)
		assert.Equal(t, first.Accepted, again.Accepted, "accepted chunks must be byte-identical across runs")
		assert.Equal(t, first.Report, again.Report, "rejection reports must be identical across runs")
	}

	sequential := testConfig()
	sequential.Concurrency = 1
	sp, err := New(sequential)
	require.NoError(t, err)
	serial, err := sp.Run(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, first.Accepted, serial.Accepted, "concurrency must not change output order or content")
}

func TestRun_IdentifiersAndOrdering(t *testing.T) {
	docs := corpusDocs(4)
	p, err := New(testConfig())
	require.NoError(t, err)
	result, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.NotEmpty(t, result.Accepted)

	lastDoc := -1
	lastSeq := -1
	for i, chunk := range result.Accepted {
		assert.Equal(t, document.ChunkID(chunk.DocumentID, chunk.Seq), chunk.ChunkID)
		assert.Equal(t, i, chunk.Ordinal)
		docIdx := -1
		for j := range docs {
			if docs[j].ID == chunk.DocumentID {
				docIdx = j
			}
		}
		require.GreaterOrEqual(t, docIdx, 0)
		if docIdx != lastDoc {
			assert.Greater(t, docIdx, lastDoc, "chunks ordered by document input order")
			lastDoc, lastSeq = docIdx, -1
		}
		assert.Greater(t, chunk.Seq, lastSeq, "sequence indices strictly increase within a document")
		lastSeq = chunk.Seq
		assert.Greater(t, chunk.Tokens, 0)
	}
}

func TestRun_EmptyDocumentRecordedAsFailure(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	result, err := p.Run(context.Background(), []document.Document{{ID: "vacío.md", Text: "   \n "}})
	require.NoError(t, err)

	assert.Empty(t, result.Accepted)
	assert.Zero(t, result.Report.Candidates)
	assert.Zero(t, result.Report.Rejected)
	require.Len(t, result.Report.Failures, 1)
	assert.Equal(t, "vacío.md", result.Report.Failures[0].DocumentID)
	assert.Equal(t, document.FailureEmpty, result.Report.Failures[0].Kind)
}

func TestRun_BadDocumentDoesNotAbortCorpus(t *testing.T) {
	docs := corpusDocs(14)
	docs = append(docs[:7], append([]document.Document{{ID: "ilegible.md", Text: ""}}, docs[7:]...)...)

	p, err := New(testConfig())
	require.NoError(t, err)
	result, err := p.Run(context.Background(), docs)
	require.NoError(t, err)

	perDoc := map[string]int{}
	for _, chunk := range result.Accepted {
		perDoc[chunk.DocumentID]++
	}
	assert.Len(t, perDoc, 14, "all readable documents must produce chunks")
	assert.NotContains(t, perDoc, "ilegible.md")
	require.Len(t, result.Report.Failures, 1)
	assert.Equal(t, "ilegible.md", result.Report.Failures[0].DocumentID)
	assert.Equal(t, 15, result.Report.Documents)
}

func TestRun_EveryCandidateAccountedFor(t *testing.T) {
	docs := corpusDocs(5)
	// inject a noisy document that produces rejections
	docs = append(docs, document.Document{
		ID:   "ruido.md",
		Text: strings.Repeat("@@@@ #### |||| ", 40),
	})
	p, err := New(testConfig())
	require.NoError(t, err)
	result, err := p.Run(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, result.Report.Candidates, result.Report.Accepted+result.Report.Rejected,
		"every candidate is either accepted or rejected with a reason")
	assert.Positive(t, result.Report.Rejected)
	assert.NotEmpty(t, result.Report.ByDocument["ruido.md"])
	total := 0
	for _, counts := range result.Report.ByDocument {
		for _, n := range counts {
			total += n
		}
	}
	assert.Equal(t, result.Report.Rejected, total)
}

func TestRun_Cancellation(t *testing.T) {
	p, err := New(testConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, corpusDocs(50))
	require.Error(t, err)
}

func TestReport_ReasonCounts(t *testing.T) {
	report := NewReport()
	report.recordRejection("a.md", quality.ReasonMinScore)
	report.recordRejection("a.md", quality.ReasonMinScore)
	report.recordRejection("b.md", quality.ReasonDuplicate)

	counts := report.ReasonCounts()
	require.Len(t, counts, 2)
	assert.Equal(t, ReasonCount{Reason: quality.ReasonMinScore, Count: 2}, counts[0])
	assert.Equal(t, ReasonCount{Reason: quality.ReasonDuplicate, Count: 1}, counts[1])
}
