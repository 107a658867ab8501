package store

import (
	"hpoannotqc.org/hpoa/bigfile"
	"hpoannotqc.org/hpoa/logger"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
DROP TABLE IF EXISTS metadata;
DROP TABLE IF EXISTS annotation;

CREATE TABLE metadata (
	run_id TEXT NOT NULL,
	hpo_version TEXT NOT NULL,
	created_at TEXT NOT NULL,
	diseases INTEGER NOT NULL,
	annotations INTEGER NOT NULL
);

CREATE TABLE annotation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	database_id TEXT NOT NULL,
	disease_name TEXT NOT NULL,
	qualifier TEXT NOT NULL DEFAULT '',
	hpo_id TEXT NOT NULL,
	reference TEXT NOT NULL,
	evidence TEXT NOT NULL,
	onset TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL DEFAULT '',
	sex TEXT NOT NULL DEFAULT '',
	modifier TEXT NOT NULL DEFAULT '',
	aspect TEXT NOT NULL,
	biocuration TEXT NOT NULL
);

CREATE INDEX idx_annotation_database_id ON annotation(database_id);
CREATE INDEX idx_annotation_hpo_id ON annotation(hpo_id);
`

const insertRow = `INSERT INTO annotation (
	database_id, disease_name, qualifier, hpo_id, reference, evidence,
	onset, frequency, sex, modifier, aspect, biocuration
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Metadata describes the run an export belongs to.
type Metadata struct {
	RunID           string
	OntologyVersion string
	CreatedAt       time.Time
	Diseases        int
	Annotations     int
}

// SQLiteExporter writes big file rows into a SQLite database. Every export
// replaces the previous contents.
type SQLiteExporter struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteExporter(dbPath string) (*SQLiteExporter, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteExporter{db: db, dbPath: dbPath}, nil
}

func (e *SQLiteExporter) Export(ctx context.Context, meta Metadata, rows []bigfile.Row) (err error) {
	exportLogger := logger.NewLogger("SQLite Export")
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO metadata (run_id, hpo_version, created_at, diseases, annotations) VALUES (?, ?, ?, ?, ?)",
		meta.RunID, meta.OntologyVersion, meta.CreatedAt.UTC().Format(time.RFC3339), meta.Diseases, meta.Annotations,
	); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRow)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx,
			row.DatabaseID, row.DiseaseName, row.Qualifier, row.HPOID, row.Reference, row.Evidence,
			row.Onset, row.Frequency, row.Sex, row.Modifier, row.Aspect, row.Biocuration,
		); err != nil {
			return fmt.Errorf("insert %s %s: %w", row.DatabaseID, row.HPOID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	exportLogger.Info().Str("path", e.dbPath).Int("rows", len(rows)).Msg("Exported annotations")
	return nil
}

func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}
