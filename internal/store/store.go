// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists a ledger of conversion runs in SQLite. Every run
// records its archives and every archive its documents, so history listings
// can show what was converted, skipped, or failed and why. The ledger is
// advisory: writing to it must never fail a conversion.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// dbFile is the ledger filename under the output base directory.
const dbFile = "lakebook2md.db"

// DefaultPath returns the ledger location under the output base directory.
func DefaultPath(outputDir string) string {
	return filepath.Join(outputDir, dbFile)
}

// Store manages the conversion ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating the parent
// directory and the schema if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS archives (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			converted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			archive_id INTEGER NOT NULL REFERENCES archives(id),
			identity TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			output_path TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_run ON archives(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_archive ON documents(archive_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartRun inserts a run record and returns its ID.
func (s *Store) StartRun(input string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (input, started_at) VALUES (?, ?)`,
		input, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// ArchiveRecord is one archive outcome within a run.
type ArchiveRecord struct {
	Path      string
	Status    string
	Converted int
	Skipped   int
	Failed    int
	Error     string
}

// RecordArchive inserts an archive outcome and returns its row ID.
func (s *Store) RecordArchive(runID int64, rec ArchiveRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO archives (run_id, path, status, converted, skipped, failed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Path, rec.Status, rec.Converted, rec.Skipped, rec.Failed, rec.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("recording archive: %w", err)
	}
	return res.LastInsertId()
}

// DocumentRecord is one document outcome within an archive.
type DocumentRecord struct {
	Identity   string
	Title      string
	Status     string
	OutputPath string
	Error      string
}

// RecordDocument inserts a document outcome under the given archive row.
func (s *Store) RecordDocument(archiveID int64, rec DocumentRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (archive_id, identity, title, status, output_path, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		archiveID, rec.Identity, rec.Title, rec.Status, rec.OutputPath, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	return nil
}

// Run summarizes one conversion run for history listings.
type Run struct {
	ID        int64
	Input     string
	StartedAt time.Time
	Archives  int
	Converted int
	Failed    int
}

// RecentRuns returns the most recent runs, newest first, with document
// totals aggregated across their archives.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.input, r.started_at,
		        COUNT(a.id),
		        COALESCE(SUM(a.converted), 0),
		        COALESCE(SUM(a.failed), 0)
		 FROM runs r
		 LEFT JOIN archives a ON a.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Input, &started, &r.Archives, &r.Converted, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunArchives returns the archive outcomes of one run, in processing order.
func (s *Store) RunArchives(runID int64) ([]ArchiveRecord, error) {
	rows, err := s.db.Query(
		`SELECT path, status, converted, skipped, failed, error
		 FROM archives WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying archives: %w", err)
	}
	defer rows.Close()

	var archives []ArchiveRecord
	for rows.Next() {
		var a ArchiveRecord
		if err := rows.Scan(&a.Path, &a.Status, &a.Converted, &a.Skipped, &a.Failed, &a.Error); err != nil {
			return nil, fmt.Errorf("scanning archive: %w", err)
		}
		archives = append(archives, a)
	}
	return archives, rows.Err()
}
