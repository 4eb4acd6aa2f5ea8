package document

import (
	"fmt"

	"github.com/viant/bintly"
)

// Candidate represents a contiguous span of a document's text produced by
// segmentation. Offsets are half-open byte positions into Document.Text,
// always cut on rune boundaries, so Text == Document.Text[Start:End].
type Candidate struct {
	DocumentID string `json:"document_id"`
	Seq        int    `json:"chunk_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
}

// Signals is the per-signal breakdown behind a quality score. Each value is
// normalized to [0,1]; NoiseRatio keeps its raw direction (higher is worse)
// so admission thresholds can act on it directly.
type Signals struct {
	LengthAdequacy float64 `json:"length_adequacy"`
	NoiseRatio     float64 `json:"noise_ratio"`
	Coherence      float64 `json:"coherence"`
	Vocabulary     float64 `json:"vocabulary"`
}

// Scored is a candidate with its combined quality score and signal breakdown.
type Scored struct {
	Candidate
	Score   float64 `json:"quality_score"`
	Signals Signals `json:"signals"`
}

// Accepted is the terminal artifact of the chunking core: a scored chunk that
// passed admission, with a deterministic identifier and corpus-level ordering.
type Accepted struct {
	Scored
	ChunkID string `json:"chunk_id"`
	Ordinal int    `json:"ordinal"`
	Tokens  int    `json:"tokens,omitempty"`
}

// ChunkID derives the deterministic chunk identifier for a document position.
// Re-running the pipeline on unchanged input yields identical identifiers.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s#%d", documentID, seq)
}

// EncodeBinary encodes the chunk into a binary stream.
func (a *Accepted) EncodeBinary(stream *bintly.Writer) error {
	stream.String(a.ChunkID)
	stream.String(a.DocumentID)
	stream.Int(a.Seq)
	stream.Int(a.Start)
	stream.Int(a.End)
	stream.Int(a.Ordinal)
	stream.Int(a.Tokens)
	stream.Float64(a.Score)
	stream.Float64(a.Signals.LengthAdequacy)
	stream.Float64(a.Signals.NoiseRatio)
	stream.Float64(a.Signals.Coherence)
	stream.Float64(a.Signals.Vocabulary)
	stream.String(a.Text)
	return nil
}

// DecodeBinary decodes the chunk from a binary stream.
func (a *Accepted) DecodeBinary(stream *bintly.Reader) error {
	stream.String(&a.ChunkID)
	stream.String(&a.DocumentID)
	stream.Int(&a.Seq)
	stream.Int(&a.Start)
	stream.Int(&a.End)
	stream.Int(&a.Ordinal)
	stream.Int(&a.Tokens)
	stream.Float64(&a.Score)
	stream.Float64(&a.Signals.LengthAdequacy)
	stream.Float64(&a.Signals.NoiseRatio)
	stream.Float64(&a.Signals.Coherence)
	stream.Float64(&a.Signals.Vocabulary)
	stream.String(&a.Text)
	return nil
}
