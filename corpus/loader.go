// Package corpus loads cleaned OCR documents from a filesystem location.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/chunking"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// archiveDatePattern matches the YYYY-MM-DD fragment the scan workflow puts
// in edition directory and file names.
var archiveDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// Loader walks a corpus location and turns readable files into documents.
type Loader struct {
	fs      afs.Service
	matcher *Matcher
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS overrides the file service, mostly for tests using mem:// locations.
func WithFS(fs afs.Service) LoaderOption {
	return func(l *Loader) { l.fs = fs }
}

// WithMatcher sets the file matcher.
func WithMatcher(matcher *Matcher) LoaderOption {
	return func(l *Loader) { l.matcher = matcher }
}

// NewLoader creates a loader backed by the abstract file system.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		l.fs = afs.New()
	}
	if l.matcher == nil {
		l.matcher = NewMatcher()
	}
	return l
}

// Load walks location recursively and returns one document per readable
// .txt, .md or .pdf file, plus a failure entry per file that could not be
// read. The returned documents are sorted by ID so downstream output does
// not depend on listing order.
func (l *Loader) Load(ctx context.Context, location string) ([]document.Document, []document.Failure, error) {
	// Normalize the incoming location for cross-platform AFS compatibility.
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		var err error
		norm, err = filepath.Abs(norm)
		if err != nil {
			return nil, nil, fmt.Errorf("corpus: failed to get absolute path for %s: %w", location, err)
		}
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}

	var docs []document.Document
	var failures []document.Failure
	if err := l.load(ctx, norm, norm, &docs, &failures); err != nil {
		return nil, nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	sort.Slice(failures, func(i, j int) bool { return failures[i].DocumentID < failures[j].DocumentID })
	return docs, failures, nil
}

func (l *Loader) load(ctx context.Context, base, location string, docs *[]document.Document, failures *[]document.Failure) error {
	objects, err := l.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("corpus: failed to list %s: %w", location, err)
	}
	for _, object := range objects {
		objectPath := url.Path(object.URL())
		if url.Equals(objectPath, location) && object.IsDir() {
			continue
		}
		name := object.Name()
		if object.IsDir() {
			if url.Equals(object.URL(), location) {
				continue
			}
			if err := l.load(ctx, base, url.Join(location, name), docs, failures); err != nil {
				return err
			}
			continue
		}
		if l.matcher.IsExcluded(objectPath, object.Size()) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".md" && ext != ".pdf" {
			continue
		}
		id := documentID(base, object)
		doc, err := l.loadFile(ctx, id, ext, object)
		if err != nil {
			*failures = append(*failures, document.Failure{
				DocumentID: id,
				Kind:       document.FailureUnreadable,
				Detail:     err.Error(),
			})
			continue
		}
		*docs = append(*docs, doc)
	}
	return nil
}

func (l *Loader) loadFile(ctx context.Context, id, ext string, object storage.Object) (document.Document, error) {
	data, err := l.fs.Download(ctx, object)
	if err != nil {
		return document.Document{}, fmt.Errorf("download failed: %w", err)
	}
	var text string
	switch ext {
	case ".pdf":
		text, err = extractPDFText(data)
		if err != nil {
			return document.Document{}, err
		}
	default:
		if !utf8.Valid(data) {
			return document.Document{}, fmt.Errorf("not valid UTF-8 text")
		}
		text = string(data)
	}
	doc := document.Document{
		ID:          id,
		Text:        text,
		ArchiveDate: archiveDate(id, object.ModTime()),
		Publication: publication(id),
	}
	if ext == ".md" {
		doc.Boundaries = chunking.MarkdownBoundaries(text)
	}
	return doc, nil
}

// extractPDFText pulls the plain text stream out of a PDF payload.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf open failed: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text extraction failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("pdf text read failed: %w", err)
	}
	return buf.String(), nil
}

// documentID is the path of the object relative to the corpus root.
func documentID(base string, object storage.Object) string {
	basePath := strings.TrimSuffix(url.Path(base), "/")
	objectPath := url.Path(object.URL())
	id := strings.TrimPrefix(objectPath, basePath)
	return strings.TrimPrefix(id, "/")
}

// publication is the first directory segment of the document ID, following
// the corpus layout <publication>/<edition>/<page>.txt.
func publication(id string) string {
	if idx := strings.IndexByte(id, '/'); idx > 0 {
		return id[:idx]
	}
	return ""
}

// archiveDate parses the edition date embedded in the document path,
// falling back to the file modification time.
func archiveDate(id string, modTime time.Time) time.Time {
	match := archiveDatePattern.FindString(id)
	if match == "" {
		return modTime
	}
	parsed, err := time.Parse("2006-01-02", match)
	if err != nil {
		return modTime
	}
	return parsed
}
