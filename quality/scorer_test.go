package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

func candidate(text string) document.Candidate {
	return document.Candidate{DocumentID: "doc", Seq: 0, Start: 0, End: len(text), Text: text}
}

func TestNewScorer_Validation(t *testing.T) {
	_, err := NewScorer(0, DefaultWeights())
	require.Error(t, err)
	_, err = NewScorer(500, Weights{LengthAdequacy: -1, Noise: 1, Coherence: 1, Vocabulary: 1})
	require.Error(t, err)
	_, err = NewScorer(500, Weights{})
	require.NoError(t, err, "zero-value weights fall back to defaults")
}

func TestScore_ProseOutscoresNoise(t *testing.T) {
	scorer, err := NewScorer(200, DefaultWeights())
	require.NoError(t, err)

	prose := scorer.Score(candidate(
		"El congreso aprobó ayer la reforma tributaria tras un extenso debate. " +
			"Los legisladores de la oposición anunciaron que presentarán observaciones al texto final."))
	garbage := scorer.Score(candidate("@@@@@@@@@@ ###### |||||| ------ @@@@@@@@@@"))

	assert.Greater(t, prose.Score, garbage.Score)
	assert.Greater(t, prose.Score, 0.55, "clean prose should clear the default admission threshold")
	assert.Less(t, garbage.Score, 0.3)
	assert.Greater(t, garbage.Signals.NoiseRatio, 0.5)
	assert.Less(t, prose.Signals.NoiseRatio, 0.1)
}

func TestScore_SignalRanges(t *testing.T) {
	scorer, err := NewScorer(500, DefaultWeights())
	require.NoError(t, err)
	samples := []string{
		"",
		"   ",
		"a",
		strings.Repeat("palabra ", 100),
		"Tel: 2524011 Fax: 2524012\nTel: 2524013\nTel: 2524014\nTel: 2524015\nTel: 2524016\nTel: 2524017",
		string([]byte{0xff, 0xfe, 0x41}),
	}
	for _, sample := range samples {
		sc := scorer.Score(candidate(sample))
		assert.GreaterOrEqual(t, sc.Score, 0.0)
		assert.LessOrEqual(t, sc.Score, 1.0)
		for _, v := range []float64{sc.Signals.LengthAdequacy, sc.Signals.NoiseRatio, sc.Signals.Coherence, sc.Signals.Vocabulary} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	scorer, err := NewScorer(500, DefaultWeights())
	require.NoError(t, err)
	c := candidate("La sequía afectó los cultivos de arroz en la cuenca baja del Guayas durante el primer trimestre.")
	first := scorer.Score(c)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, scorer.Score(c))
	}
}

func TestScore_ShortChunksPenalized(t *testing.T) {
	scorer, err := NewScorer(500, DefaultWeights())
	require.NoError(t, err)
	stub := scorer.Score(candidate("fin."))
	full := scorer.Score(candidate(strings.Repeat("La nota informó sobre el acuerdo comercial firmado en Quito. ", 8)))
	assert.Less(t, stub.Signals.LengthAdequacy, 0.05)
	assert.Greater(t, full.Signals.LengthAdequacy, 0.9)
	assert.Less(t, stub.Score, full.Score)
}

func TestScore_TabularLayoutPenalized(t *testing.T) {
	scorer, err := NewScorer(200, DefaultWeights())
	require.NoError(t, err)
	table := scorer.Score(candidate(
		"IBM 101.5\nAT&T 33.2\nExxon 58.1\nMobil 71.9\nTexaco 60.4\nShell 49.8\nChevron 72.3"))
	prose := scorer.Score(candidate(
		"Las acciones petroleras cerraron al alza en la bolsa de Nueva York, impulsadas por el repunte del crudo."))
	assert.Less(t, table.Signals.Coherence, prose.Signals.Coherence)
}
