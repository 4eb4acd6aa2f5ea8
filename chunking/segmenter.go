// Package chunking splits cleaned article text into ordered, overlapping
// candidate chunks with stable byte offsets.
package chunking

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

const (
	// DefaultTargetLength mirrors the corpus default of ~500 unit chunks.
	DefaultTargetLength = 500
	// DefaultOverlap mirrors the corpus default of 80 units of trailing context.
	DefaultOverlap = 80
)

// Segmenter walks document text left to right emitting candidate chunks of up
// to targetLength bytes, advancing by targetLength-overlap, preferring to end
// each chunk at a semantic boundary found within the lookback window.
type Segmenter struct {
	targetLength int
	overlap      int
	lookback     int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLookback overrides the boundary lookback window.
func WithLookback(lookback int) Option {
	return func(s *Segmenter) { s.lookback = lookback }
}

// NewSegmenter validates parameters and builds a segmenter. Overlap must be
// smaller than target length, otherwise segmentation would never advance.
func NewSegmenter(targetLength, overlap int, opts ...Option) (*Segmenter, error) {
	if targetLength <= 0 {
		return nil, fmt.Errorf("chunking: target length must be positive, got %d", targetLength)
	}
	if overlap < 0 || overlap >= targetLength {
		return nil, fmt.Errorf("chunking: overlap %d must be in [0, target length %d)", overlap, targetLength)
	}
	s := &Segmenter{
		targetLength: targetLength,
		overlap:      overlap,
		lookback:     targetLength / 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lookback < 0 || s.lookback >= targetLength {
		s.lookback = targetLength / 2
	}
	return s, nil
}

// Segment produces the ordered candidate chunks for a document. It is a pure
// function of the document and the segmenter parameters: identical input
// always yields identical offsets. Empty documents yield no chunks; documents
// shorter than the target length yield exactly one chunk spanning the text.
func (s *Segmenter) Segment(doc *document.Document) []document.Candidate {
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}
	boundaries := sortedBoundaries(doc.Boundaries, len(text))
	var chunks []document.Candidate
	start := 0
	for seq := 0; start < len(text); seq++ {
		hardEnd := start + s.targetLength
		if hardEnd >= len(text) {
			chunks = append(chunks, s.candidate(doc.ID, seq, start, len(text), text))
			break
		}
		end := s.cutPoint(text, start, hardEnd, boundaries)
		chunks = append(chunks, s.candidate(doc.ID, seq, start, end, text))
		next := alignForward(text, end-s.overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func (s *Segmenter) candidate(docID string, seq, start, end int, text string) document.Candidate {
	return document.Candidate{
		DocumentID: docID,
		Seq:        seq,
		Start:      start,
		End:        end,
		Text:       text[start:end],
	}
}

// cutPoint picks the chunk end within (start, hardEnd]. Structural breaks and
// paragraph breaks win over sentence ends; with no boundary in the lookback
// window the hard cutoff applies, adjusted back to a rune start.
func (s *Segmenter) cutPoint(text string, start, hardEnd int, boundaries []int) int {
	floor := hardEnd - s.lookback
	if floor <= start {
		floor = start + 1
	}
	if cut := lastStructuralBreak(boundaries, floor, hardEnd); cut > start {
		return cut
	}
	if cut := lastParagraphBreak(text, floor, hardEnd); cut > start {
		return cut
	}
	if cut := lastSentenceEnd(text, floor, hardEnd); cut > start {
		return cut
	}
	end := alignBack(text, hardEnd)
	if end <= start {
		// target length shorter than the rune at the cut; take the whole rune
		// so the chunk is never empty and the walk always advances
		end = alignForward(text, start+1)
	}
	return end
}

func sortedBoundaries(offsets []int, limit int) []int {
	if len(offsets) == 0 {
		return nil
	}
	out := make([]int, 0, len(offsets))
	for _, off := range offsets {
		if off > 0 && off < limit {
			out = append(out, off)
		}
	}
	sort.Ints(out)
	return out
}

// lastStructuralBreak returns the greatest parser-supplied break in [floor, hardEnd].
func lastStructuralBreak(boundaries []int, floor, hardEnd int) int {
	idx := sort.SearchInts(boundaries, hardEnd+1) - 1
	if idx < 0 {
		return 0
	}
	if off := boundaries[idx]; off >= floor {
		return off
	}
	return 0
}

// lastParagraphBreak returns the position just after the rightmost blank-line
// break whose trailing newline falls within [floor, hardEnd].
func lastParagraphBreak(text string, floor, hardEnd int) int {
	window := text[floor:hardEnd]
	idx := strings.LastIndex(window, "\n\n")
	if idx < 0 {
		return 0
	}
	cut := floor + idx + 2
	for cut < hardEnd && text[cut] == '\n' {
		cut++
	}
	return cut
}

// lastSentenceEnd returns the position just after the rightmost sentence
// terminator followed by whitespace within [floor, hardEnd].
func lastSentenceEnd(text string, floor, hardEnd int) int {
	for i := hardEnd - 1; i >= floor; i-- {
		if !isSentenceEnd(text[i-1]) {
			continue
		}
		if c := text[i]; c == ' ' || c == '\n' || c == '\t' {
			return i
		}
	}
	return 0
}

func isSentenceEnd(c byte) bool {
	switch c {
	case '.', '!', '?':
		return true
	}
	return false
}

// alignBack moves an offset left onto a rune start.
func alignBack(text string, off int) int {
	for off > 0 && !utf8.RuneStart(text[off]) {
		off--
	}
	return off
}

// alignForward moves an offset right onto a rune start.
func alignForward(text string, off int) int {
	if off < 0 {
		return 0
	}
	for off < len(text) && !utf8.RuneStart(text[off]) {
		off++
	}
	return off
}
