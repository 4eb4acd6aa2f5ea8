package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// Patterns typical of layout noise in OCR-ed newspaper pages: separator rows,
// phone listings, percentage and price tables.
var (
	separatorRunPattern = regexp.MustCompile(`[-_=]{5,}|[|]{3,}`)
	phonePattern        = regexp.MustCompile(`(?i)\b(Tel|Telf|PBX|Fax)\b`)
	moneyPattern        = regexp.MustCompile(`(?i)[$€]|USD|US\$`)
)

// Weights controls the contribution of each signal category to the combined
// score. Zero-value weights fall back to Defaults; weights are normalized by
// their sum, so only relative magnitudes matter.
type Weights struct {
	LengthAdequacy float64 `yaml:"length_adequacy" json:"length_adequacy"`
	Noise          float64 `yaml:"noise" json:"noise"`
	Coherence      float64 `yaml:"coherence" json:"coherence"`
	Vocabulary     float64 `yaml:"vocabulary" json:"vocabulary"`
}

// DefaultWeights reconstructs the emphasis of the original filtering pass:
// lexical noise dominates, vocabulary and structure follow, raw length least.
func DefaultWeights() Weights {
	return Weights{LengthAdequacy: 0.15, Noise: 0.35, Coherence: 0.2, Vocabulary: 0.3}
}

func (w Weights) sum() float64 {
	return w.LengthAdequacy + w.Noise + w.Coherence + w.Vocabulary
}

// Validate rejects weight sets that cannot be normalized.
func (w Weights) Validate() error {
	if w.LengthAdequacy < 0 || w.Noise < 0 || w.Coherence < 0 || w.Vocabulary < 0 {
		return fmt.Errorf("quality: weights must be non-negative, got %+v", w)
	}
	if w.sum() <= 0 {
		return fmt.Errorf("quality: weights must not all be zero")
	}
	return nil
}

// Scorer computes a deterministic quality score in [0,1] for candidate chunks.
// It is a pure function of the chunk text and the configured target length:
// no randomness, no IO.
type Scorer struct {
	weights      Weights
	targetLength int
}

// NewScorer builds a scorer for chunks produced with the given target length.
func NewScorer(targetLength int, weights Weights) (*Scorer, error) {
	if targetLength <= 0 {
		return nil, fmt.Errorf("quality: target length must be positive, got %d", targetLength)
	}
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights, targetLength: targetLength}, nil
}

// Score derives the signal breakdown and combined score for a candidate.
// A signal whose computation panics (malformed input) degrades to its worst
// value instead of aborting the chunk.
func (s *Scorer) Score(c document.Candidate) document.Scored {
	text := c.Text
	signals := document.Signals{
		LengthAdequacy: safeSignal(text, s.lengthAdequacy),
		NoiseRatio:     safeWorst(text, noiseRatio),
		Coherence:      safeSignal(text, coherence),
		Vocabulary:     safeSignal(text, vocabularyPlausibility),
	}
	w := s.weights
	combined := (w.LengthAdequacy*signals.LengthAdequacy +
		w.Noise*(1-signals.NoiseRatio) +
		w.Coherence*signals.Coherence +
		w.Vocabulary*signals.Vocabulary) / w.sum()
	return document.Scored{Candidate: c, Score: clamp01(combined), Signals: signals}
}

// safeSignal runs a higher-is-better signal, degrading to 0 on panic.
func safeSignal(text string, fn func(string) float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = 0
		}
	}()
	return clamp01(fn(text))
}

// safeWorst runs a higher-is-worse signal, degrading to 1 on panic.
func safeWorst(text string, fn func(string) float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = 1
		}
	}()
	return clamp01(fn(text))
}

// lengthAdequacy penalizes chunks far shorter than the target: boundary
// artifacts and whitespace stubs embed poorly.
func (s *Scorer) lengthAdequacy(text string) float64 {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n == 0 {
		return 0
	}
	return float64(n) / float64(s.targetLength)
}

// noiseRatio estimates the fraction of the chunk that is OCR garbage:
// non-letter, non-digit symbol runs, control characters, separator rows.
func noiseRatio(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 1
	}
	total, noisy := 0, 0
	for _, r := range trimmed {
		total++
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		case r == '.' || r == ',' || r == ';' || r == ':' || r == '¿' || r == '?' ||
			r == '¡' || r == '!' || r == '(' || r == ')' || r == '"' || r == '\'' || r == '-':
		case unicode.IsControl(r):
			noisy++
		default:
			noisy++
		}
	}
	ratio := float64(noisy) / float64(total)
	if separatorRunPattern.MatchString(trimmed) {
		ratio += 0.15
	}
	if run := longestRepeat(trimmed); run >= 5 {
		ratio += 0.1
	}
	return ratio
}

// coherence rewards prose-shaped text and penalizes layout artifacts: wrapped
// hyphenation, stacks of short lines (tables, listings), phone directories,
// digit-dense price columns.
func coherence(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	score := 0.5

	lines := nonEmptyLines(trimmed)
	if ratio, count := shortLineRatio(lines); count >= 6 && ratio > 0.55 {
		score -= (ratio - 0.55) * 1.2
	}
	if strings.Contains(trimmed, "-\n") {
		score -= 0.15
	}
	if phonePattern.MatchString(trimmed) {
		score -= 0.1
	}
	if d := digitRatio(trimmed); d > 0.18 {
		score -= (d - 0.18) * 1.8
	} else if d > 0.1 && moneyPattern.MatchString(trimmed) {
		score -= 0.06
	}
	if strings.ContainsRune(trimmed, '%') && digitRatio(trimmed) > 0.12 {
		score -= 0.08
	}
	if hasSentenceEnd(trimmed) {
		score += 0.3
	}
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "!") {
		score += 0.2
	}
	return score
}

// vocabularyPlausibility estimates the fraction of tokens that look like real
// words: letter runs of sane length containing a vowel.
func vocabularyPlausibility(text string) float64 {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0
	}
	plausible := 0
	for _, tok := range tokens {
		if wordLike(tok) {
			plausible++
		}
	}
	return float64(plausible) / float64(len(tokens))
}

func wordLike(token string) bool {
	token = strings.Trim(token, ".,;:()\"'¿?¡!-")
	n := utf8.RuneCountInString(token)
	if n == 0 || n > 24 {
		return false
	}
	hasVowel := false
	var prev rune
	repeat := 1
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
		switch unicode.ToLower(r) {
		case 'a', 'e', 'i', 'o', 'u', 'á', 'é', 'í', 'ó', 'ú', 'ü':
			hasVowel = true
		}
		if r == prev {
			repeat++
			if repeat >= 4 {
				return false
			}
		} else {
			repeat = 1
		}
		prev = r
	}
	return hasVowel || n == 1
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimSpace(ln))
		}
	}
	return lines
}

func shortLineRatio(lines []string) (float64, int) {
	if len(lines) == 0 {
		return 1, 0
	}
	short := 0
	for _, ln := range lines {
		if utf8.RuneCountInString(ln) <= 20 {
			short++
		}
	}
	return float64(short) / float64(len(lines)), len(lines)
}

func digitRatio(text string) float64 {
	total, digits := 0, 0
	for _, r := range text {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}

func hasSentenceEnd(text string) bool {
	return strings.ContainsAny(text, ".!?")
}

func longestRepeat(text string) int {
	var prev rune
	run, best := 0, 0
	for _, r := range text {
		if r == prev && !unicode.IsSpace(r) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = r
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
