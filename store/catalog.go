package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go sqlite driver

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/pipeline"
)

// Catalog is a sqlite-backed index of chunking runs and their accepted
// chunks, queryable by document.
type Catalog struct {
	db            *sql.DB
	openedLocally bool
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogDB sets an existing *sql.DB to use.
func WithCatalogDB(db *sql.DB) CatalogOption {
	return func(c *Catalog) { c.db = db }
}

// OpenCatalog opens or creates the catalog database and ensures the schema.
func OpenCatalog(dsn string, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}
	if c.db == nil {
		if dsn == "" {
			return nil, fmt.Errorf("store: catalog dsn required")
		}
		db, err := sql.Open("sqlite", ensurePragmas(dsn, true, 5000))
		if err != nil {
			return nil, fmt.Errorf("store: failed to open catalog %s: %w", dsn, err)
		}
		if isMemoryDSN(dsn) {
			// each pooled connection would see its own empty in-memory db
			db.SetMaxOpenConns(1)
		} else {
			db.SetMaxOpenConns(4)
			db.SetMaxIdleConns(4)
		}
		c.db = db
		c.openedLocally = true
	}
	if err := c.ensureSchema(context.Background()); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying DB if the Catalog opened it.
func (c *Catalog) Close() error {
	if c.openedLocally && c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB exposes the underlying sql.DB.
func (c *Catalog) DB() *sql.DB { return c.db }

func (c *Catalog) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS run (
            id           INTEGER PRIMARY KEY,
            location     TEXT NOT NULL,
            documents    INTEGER NOT NULL,
            candidates   INTEGER NOT NULL,
            accepted     INTEGER NOT NULL,
            rejected     INTEGER NOT NULL,
            score_min    REAL NOT NULL,
            score_max    REAL NOT NULL,
            score_avg    REAL NOT NULL,
            created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS chunk (
            run_id        INTEGER NOT NULL REFERENCES run(id),
            chunk_id      TEXT NOT NULL,
            document_id   TEXT NOT NULL,
            seq           INTEGER NOT NULL,
            ordinal       INTEGER NOT NULL,
            start_offset  INTEGER NOT NULL,
            end_offset    INTEGER NOT NULL,
            quality_score REAL NOT NULL,
            tokens        INTEGER NOT NULL,
            text          TEXT NOT NULL,
            PRIMARY KEY(run_id, chunk_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_document ON chunk(run_id, document_id, seq);`,
		`CREATE TABLE IF NOT EXISTS failure (
            run_id      INTEGER NOT NULL REFERENCES run(id),
            document_id TEXT NOT NULL,
            kind        TEXT NOT NULL,
            detail      TEXT
        );`,
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: failed to begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("store: failed to ensure schema: %w", err)
		}
	}
	return tx.Commit()
}

// SaveRun records a completed run with its accepted chunks and failures and
// returns the run id.
func (c *Catalog) SaveRun(ctx context.Context, location string, report *pipeline.Report, chunks []document.Accepted) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: failed to begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO run(location, documents, candidates, accepted, rejected, score_min, score_max, score_avg)
        VALUES(?,?,?,?,?,?,?,?)`,
		location, report.Documents, report.Candidates, report.Accepted, report.Rejected,
		report.Scores.Min, report.Scores.Max, report.Scores.Avg)
	if err != nil {
		return 0, fmt.Errorf("store: failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunk(run_id, chunk_id, document_id, seq, ordinal, start_offset, end_offset, quality_score, tokens, text)
        VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("store: failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()
	for i := range chunks {
		chunk := &chunks[i]
		if _, err := stmt.ExecContext(ctx, runID, chunk.ChunkID, chunk.DocumentID, chunk.Seq,
			chunk.Ordinal, chunk.Start, chunk.End, chunk.Score, chunk.Tokens, chunk.Text); err != nil {
			return 0, fmt.Errorf("store: failed to insert chunk %s: %w", chunk.ChunkID, err)
		}
	}

	for _, failure := range report.Failures {
		if _, err := tx.ExecContext(ctx, `INSERT INTO failure(run_id, document_id, kind, detail) VALUES(?,?,?,?)`,
			runID, failure.DocumentID, failure.Kind, failure.Detail); err != nil {
			return 0, fmt.Errorf("store: failed to insert failure for %s: %w", failure.DocumentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary is a catalog row describing a past run.
type RunSummary struct {
	ID        int64
	Location  string
	Documents int
	Accepted  int
	Rejected  int
	ScoreAvg  float64
	CreatedAt time.Time
}

// Runs lists recorded runs, newest first.
func (c *Catalog) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, location, documents, accepted, rejected, score_avg, created_at
        FROM run ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list runs: %w", err)
	}
	defer rows.Close()
	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Location, &r.Documents, &r.Accepted, &r.Rejected, &r.ScoreAvg, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DocumentChunks returns the accepted chunks of one document within a run,
// in segmentation order.
func (c *Catalog) DocumentChunks(ctx context.Context, runID int64, documentID string) ([]document.Accepted, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT chunk_id, document_id, seq, ordinal, start_offset, end_offset, quality_score, tokens, text
        FROM chunk WHERE run_id = ? AND document_id = ? ORDER BY seq`, runID, documentID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query chunks: %w", err)
	}
	defer rows.Close()
	var out []document.Accepted
	for rows.Next() {
		var chunk document.Accepted
		if err := rows.Scan(&chunk.ChunkID, &chunk.DocumentID, &chunk.Seq, &chunk.Ordinal,
			&chunk.Start, &chunk.End, &chunk.Score, &chunk.Tokens, &chunk.Text); err != nil {
			return nil, fmt.Errorf("store: failed to scan chunk: %w", err)
		}
		out = append(out, chunk)
	}
	return out, rows.Err()
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(strings.ToLower(dsn), "file::memory:")
}

// ensurePragmas appends sqlite pragmas to the DSN when missing. It is a
// no-op for in-memory databases.
func ensurePragmas(dsn string, wal bool, busyTimeoutMS int) string {
	if isMemoryDSN(dsn) {
		return dsn
	}
	lower := strings.ToLower(dsn)
	if wal && !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addPragma(dsn, "journal_mode(WAL)")
	}
	if busyTimeoutMS > 0 && !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addPragma(dsn, fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	}
	return dsn
}

func addPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}
