package document

import (
	"strings"
	"time"
)

// Document is one cleaned source article handed to the chunking core.
// It is immutable once constructed; the upstream extraction/cleaning
// collaborator owns the text until it is handed over.
type Document struct {
	ID          string // stable identifier, relative corpus path
	Text        string
	Boundaries  []int     // byte offsets of structural breaks supplied by the parser
	ArchiveDate time.Time // source archive date when derivable from the corpus layout
	Publication string    // publication identifier when derivable from the corpus layout
}

// Empty reports whether the document carries no usable text.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Failure kinds recorded at document level.
const (
	FailureEmpty      = "empty"
	FailureUnreadable = "unreadable"
)

// Failure records a document that could not enter the chunking pass.
// It is an accounting entry, not an error: the corpus run continues.
type Failure struct {
	DocumentID string `json:"document_id"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail,omitempty"`
}
