// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists interaction snapshots in SQLite and serves
// filtered queries over them. Snapshots are ingested incrementally by file
// modification time, so refetching a dataset reindexes only what changed.
//
// See docs/ARCHITECTURE.md § Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/asumann/transcriptutorial/internal/interactions"
	"github.com/asumann/transcriptutorial/pkg/types"
)

const dbFile = "interactions.db"

// Store manages the interaction index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the interaction index at
// indexDir/interactions.db, creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			name TEXT PRIMARY KEY,
			source TEXT,
			fetched_at TEXT,
			organism INTEGER,
			license TEXT,
			records INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset TEXT NOT NULL REFERENCES datasets(name),
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			source_symbol TEXT,
			target_symbol TEXT,
			is_directed INTEGER,
			is_stimulation INTEGER,
			is_inhibition INTEGER,
			consensus_direction INTEGER,
			consensus_stimulation INTEGER,
			consensus_inhibition INTEGER,
			curation_effort INTEGER,
			sources TEXT,
			refs TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_dataset ON interactions(dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_source_symbol ON interactions(source_symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_target_symbol ON interactions(target_symbol)`,
		`CREATE TABLE IF NOT EXISTS fetch_status (
			dataset TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='interactions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE interactions_fts USING fts5(
				source_symbol, target_symbol, sources,
				content=interactions, content_rowid=rowid
			)`,
			`CREATE TRIGGER interactions_ai AFTER INSERT ON interactions BEGIN
				INSERT INTO interactions_fts(rowid, source_symbol, target_symbol, sources)
				VALUES (new.rowid, new.source_symbol, new.target_symbol, new.sources);
			END`,
			`CREATE TRIGGER interactions_ad AFTER DELETE ON interactions BEGIN
				INSERT INTO interactions_fts(interactions_fts, rowid, source_symbol, target_symbol, sources)
				VALUES('delete', old.rowid, old.source_symbol, old.target_symbol, old.sources);
			END`,
			`CREATE TRIGGER interactions_au AFTER UPDATE ON interactions BEGIN
				INSERT INTO interactions_fts(interactions_fts, rowid, source_symbol, target_symbol, sources)
				VALUES('delete', old.rowid, old.source_symbol, old.target_symbol, old.sources);
				INSERT INTO interactions_fts(rowid, source_symbol, target_symbol, sources)
				VALUES (new.rowid, new.source_symbol, new.target_symbol, new.sources);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of snapshots processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads snapshot tables from interactionsDir and populates the
// database. It detects new, changed, and unchanged snapshots by file
// modification time for incremental updates.
func (s *Store) Ingest(ctx context.Context, interactionsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(interactionsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading snapshot directory %s: %w", interactionsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsv") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		dataset := types.Dataset(strings.TrimSuffix(entry.Name(), ".tsv"))

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", dataset, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Skip snapshots unchanged since the last index run.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM fetch_status WHERE dataset = ?`, string(dataset),
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", dataset)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		records, tableStats, err := interactions.LoadSnapshot(interactionsDir, dataset)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", dataset, err)
			summary.Failed++
			continue
		}
		if tableStats.Dropped > 0 {
			fmt.Fprintf(w, "  warning: %s: %d malformed rows dropped\n", dataset, tableStats.Dropped)
		}

		meta, metaErr := interactions.LoadMeta(interactionsDir, dataset)
		if metaErr != nil {
			meta = nil
		}

		if err := s.ingestDataset(ctx, dataset, records, meta, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", dataset, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d records)\n", dataset, len(records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d records)\n", dataset, len(records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestDataset(ctx context.Context, dataset types.Dataset, records []types.Interaction, meta *interactions.SnapshotMeta, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old rows if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE dataset = ?`, string(dataset)); err != nil {
			return fmt.Errorf("deleting old rows: %w", err)
		}
	}

	// Upsert the dataset record.
	if meta != nil {
		fetchedAt := ""
		if !meta.FetchedAt.IsZero() {
			fetchedAt = meta.FetchedAt.Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO datasets (name, source, fetched_at, organism, license, records)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
				source=excluded.source, fetched_at=excluded.fetched_at,
				organism=excluded.organism, license=excluded.license,
				records=excluded.records`,
			string(dataset), meta.Source, fetchedAt, meta.Organism, meta.License, len(records),
		)
		if err != nil {
			return fmt.Errorf("upserting dataset: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO datasets (name, records) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET records=excluded.records`,
			string(dataset), len(records),
		)
		if err != nil {
			return fmt.Errorf("inserting dataset stub: %w", err)
		}
	}

	// Insert records in snapshot order; rowid preserves it for reads.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (dataset, source, target, source_symbol, target_symbol,
			is_directed, is_stimulation, is_inhibition,
			consensus_direction, consensus_stimulation, consensus_inhibition,
			curation_effort, sources, refs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		sourcesJSON, _ := json.Marshal(rec.Sources)
		refsJSON, _ := json.Marshal(rec.References)
		_, err := stmt.ExecContext(ctx,
			string(dataset), rec.Source, rec.Target, rec.SourceSymbol, rec.TargetSymbol,
			boolInt(rec.Directed), boolInt(rec.Stimulation), boolInt(rec.Inhibition),
			boolInt(rec.ConsensusDirection), boolInt(rec.ConsensusStimulation), boolInt(rec.ConsensusInhibition),
			rec.CurationEffort, string(sourcesJSON), string(refsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting %s -> %s: %w", rec.Source, rec.Target, err)
		}
	}

	// Update fetch status.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO fetch_status (dataset, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(dataset) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		string(dataset), modTime,
	)
	if err != nil {
		return fmt.Errorf("updating fetch status: %w", err)
	}

	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
