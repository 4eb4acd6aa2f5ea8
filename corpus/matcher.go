package corpus

import (
	"path/filepath"
	"strings"
)

// Matcher handles file exclusion rules when walking a corpus location.
type Matcher struct {
	inclusions   []string
	exclusions   []string
	maxSizeBytes int64
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithInclusions restricts the walk to paths matching any of the patterns.
func WithInclusions(patterns ...string) MatcherOption {
	return func(m *Matcher) { m.inclusions = append(m.inclusions, patterns...) }
}

// WithExclusions skips paths matching any of the patterns.
func WithExclusions(patterns ...string) MatcherOption {
	return func(m *Matcher) { m.exclusions = append(m.exclusions, patterns...) }
}

// WithMaxSizeBytes skips files larger than the limit.
func WithMaxSizeBytes(limit int64) MatcherOption {
	return func(m *Matcher) { m.maxSizeBytes = limit }
}

// NewMatcher creates a matcher; with no options every supported file passes.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{exclusions: defaultExclusions()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsExcluded checks whether a corpus path should be skipped.
func (m *Matcher) IsExcluded(path string, size int64) bool {
	if m.maxSizeBytes > 0 && size > m.maxSizeBytes {
		return true
	}
	path = filepath.ToSlash(path)
	if len(m.inclusions) > 0 && !m.matchesAny(path, m.inclusions) {
		return true
	}
	return m.matchesAny(path, m.exclusions)
}

func (m *Matcher) matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.Contains(path, pattern) {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// defaultExclusions skips the artifacts an OCR workflow leaves next to the
// cleaned text: raw scans, parser checkpoints, editor leftovers.
func defaultExclusions() []string {
	return []string{
		"_raw/",
		"_checkpoints/",
		".DS_Store",
		"*.json",
		"*.log",
		"*.tmp",
		"*.bak",
	}
}
