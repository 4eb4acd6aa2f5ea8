package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/bintly"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// SaveSnapshot uploads accepted chunks in the compact binary form used to
// resume or re-export a run without re-chunking the corpus.
func SaveSnapshot(ctx context.Context, fs afs.Service, URL string, chunks []document.Accepted) error {
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)

	writer.Int(len(chunks))
	for i := range chunks {
		if err := chunks[i].EncodeBinary(writer); err != nil {
			return fmt.Errorf("store: failed to encode chunk %s: %w", chunks[i].ChunkID, err)
		}
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(writer.Bytes())); err != nil {
		return fmt.Errorf("store: failed to upload %s: %w", URL, err)
	}
	return nil
}

// LoadSnapshot downloads and decodes a chunk snapshot.
func LoadSnapshot(ctx context.Context, fs afs.Service, URL string) ([]document.Accepted, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("store: failed to download %s: %w", URL, err)
	}
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	if err := reader.FromBytes(data); err != nil {
		return nil, fmt.Errorf("store: failed to read snapshot %s: %w", URL, err)
	}

	var count int
	reader.Int(&count)
	if count < 0 {
		return nil, fmt.Errorf("store: corrupted snapshot %s: negative chunk count", URL)
	}
	chunks := make([]document.Accepted, count)
	for i := range chunks {
		if err := chunks[i].DecodeBinary(reader); err != nil {
			return nil, fmt.Errorf("store: failed to decode chunk %d: %w", i, err)
		}
	}
	return chunks, nil
}
