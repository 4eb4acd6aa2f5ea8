// Package tokenizer provides token counting for chunk records. Counting is
// advisory metadata for the embedding stage; segmentation itself works on
// byte offsets.
package tokenizer

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used by the downstream embedding models.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens in a piece of text.
type Counter interface {
	Count(text string) int
	Name() string
}

// New returns a tiktoken-backed counter for the given encoding, falling back
// to word counting when the encoding cannot be loaded (offline environments).
func New(encoding string) Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return Words()
	}
	return &bpeCounter{name: encoding, enc: enc}
}

// Words returns the approximate counter used when no BPE encoding is present.
func Words() Counter {
	return wordCounter{}
}

type bpeCounter struct {
	name string
	enc  *tiktoken.Tiktoken
}

func (c *bpeCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *bpeCounter) Name() string { return c.name }

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (wordCounter) Name() string { return "words" }
