package quality

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// Rejection reason codes, in rule evaluation order.
const (
	ReasonMinLength  = "min_length"
	ReasonNoiseRatio = "noise_ratio"
	ReasonMinScore   = "min_score"
	ReasonDuplicate  = "duplicate"
)

// Thresholds holds the admission configuration recognized by the filter.
type Thresholds struct {
	MinScore      float64 `yaml:"min_score" json:"min_score"`
	MinLength     int     `yaml:"min_length" json:"min_length"`
	MaxNoiseRatio float64 `yaml:"max_noise_ratio" json:"max_noise_ratio"`
	DedupWindow   int     `yaml:"dedup_window" json:"dedup_window"`
}

// DefaultThresholds carries the corpus defaults: 0.55 combined score, 80
// character minimum, generous noise ceiling, one-position duplicate window.
func DefaultThresholds() Thresholds {
	return Thresholds{MinScore: 0.55, MinLength: 80, MaxNoiseRatio: 0.6, DedupWindow: 1}
}

// Validate fails fast on thresholds outside their valid ranges; nothing is
// silently clamped.
func (t Thresholds) Validate() error {
	if t.MinScore < 0 || t.MinScore > 1 {
		return fmt.Errorf("quality: min_score %v outside [0,1]", t.MinScore)
	}
	if t.MaxNoiseRatio < 0 || t.MaxNoiseRatio > 1 {
		return fmt.Errorf("quality: max_noise_ratio %v outside [0,1]", t.MaxNoiseRatio)
	}
	if t.MinLength < 0 {
		return fmt.Errorf("quality: min_length %d must not be negative", t.MinLength)
	}
	if t.DedupWindow < 0 {
		return fmt.Errorf("quality: dedup_window %d must not be negative", t.DedupWindow)
	}
	return nil
}

// Filter applies the admission rules to scored chunks of a single document,
// in sequence order. Rules run in a fixed order and the first failure names
// the rejection reason: length, noise ratio, combined score, duplication.
type Filter struct {
	thresholds Thresholds
	recent     []uint64 // hashes of the most recently accepted chunks
}

// NewFilter validates thresholds and builds a per-document filter.
func NewFilter(thresholds Thresholds) (*Filter, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Filter{thresholds: thresholds}, nil
}

// Admit decides whether a scored chunk enters the corpus. The returned reason
// is empty on acceptance. Chunks must be offered in sequence order; duplicate
// detection depends on it.
func (f *Filter) Admit(sc document.Scored) (bool, string) {
	if utf8.RuneCountInString(strings.TrimSpace(sc.Text)) < f.thresholds.MinLength {
		return false, ReasonMinLength
	}
	if sc.Signals.NoiseRatio > f.thresholds.MaxNoiseRatio {
		return false, ReasonNoiseRatio
	}
	if sc.Score < f.thresholds.MinScore {
		return false, ReasonMinScore
	}
	if f.thresholds.DedupWindow > 0 {
		hash := ContentHash(sc.Text)
		for _, seen := range f.recent {
			if seen == hash {
				return false, ReasonDuplicate
			}
		}
		f.remember(hash)
	}
	return true, ""
}

func (f *Filter) remember(hash uint64) {
	if f.thresholds.DedupWindow <= 0 {
		return
	}
	f.recent = append(f.recent, hash)
	if len(f.recent) > f.thresholds.DedupWindow {
		f.recent = f.recent[1:]
	}
}
