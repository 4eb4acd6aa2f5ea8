// Package quality scores candidate chunks with deterministic heuristics and
// applies the ordered admission rules that decide which chunks reach the
// embedding stage.
package quality

import (
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// foldDiacritics strips combining marks so "cerró" and "cerro" normalize the
// same way; OCR output is inconsistent about accents.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize collapses whitespace and folds case and diacritics, producing the
// canonical form used for duplicate detection.
func Normalize(text string) string {
	folded, _, err := transform.String(foldDiacritics, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// ContentHash hashes the normalized text for near-duplicate comparison.
func ContentHash(text string) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0
	}
	_, _ = h.Write([]byte(Normalize(text)))
	return h.Sum64()
}
