// Package store persists chunking run artifacts: the chunk stream consumed
// by the embedding step, run reports, and a queryable sqlite catalog.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

// chunkRecord is one JSONL line of the chunk stream. Field names follow the
// format the embedding step already consumes.
type chunkRecord struct {
	ChunkID      string  `json:"chunk_id"`
	SourcePath   string  `json:"source_path"`
	ChunkIndex   int     `json:"chunk_index"`
	Ordinal      int     `json:"ordinal"`
	QualityScore float64 `json:"quality_score"`
	Tokens       int     `json:"tokens,omitempty"`
	Text         string  `json:"text"`
}

// WriteChunksJSONL uploads accepted chunks as one JSON object per line.
func WriteChunksJSONL(ctx context.Context, fs afs.Service, URL string, chunks []document.Accepted) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for i := range chunks {
		chunk := &chunks[i]
		record := chunkRecord{
			ChunkID:      chunk.ChunkID,
			SourcePath:   chunk.DocumentID,
			ChunkIndex:   chunk.Seq,
			Ordinal:      chunk.Ordinal,
			QualityScore: chunk.Score,
			Tokens:       chunk.Tokens,
			Text:         chunk.Text,
		}
		if err := encoder.Encode(&record); err != nil {
			return fmt.Errorf("store: failed to encode chunk %s: %w", chunk.ChunkID, err)
		}
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("store: failed to upload %s: %w", URL, err)
	}
	return nil
}
