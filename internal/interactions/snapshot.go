// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interactions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// SnapshotMeta is the sidecar record written beside each snapshot table.
type SnapshotMeta struct {
	Dataset   types.Dataset `yaml:"dataset"`
	Source    string        `yaml:"source"`
	FetchedAt time.Time     `yaml:"fetched_at"`
	Organism  int           `yaml:"organism"`
	License   string        `yaml:"license,omitempty"`
	Records   int           `yaml:"records"`
	SizeBytes int64         `yaml:"size_bytes"`
	Path      string        `yaml:"path"`
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Snapshots  []*SnapshotMeta
}

// Total returns the total number of datasets processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any dataset failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// SnapshotDataset fetches one dataset table and writes it with a sidecar.
// If the table already exists on disk the fetch is skipped. The skipped
// return value indicates whether the download was skipped.
func SnapshotDataset(ctx context.Context, src Source, dataset types.Dataset, cfg types.FetchConfig, w io.Writer) (meta *SnapshotMeta, skipped bool, err error) {
	tablePath := filepath.Join(cfg.InteractionsDir, string(dataset)+".tsv")
	metaPath := filepath.Join(cfg.InteractionsDir, string(dataset)+".yaml")

	if _, err := os.Stat(tablePath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", dataset)
		m, readErr := LoadMeta(cfg.InteractionsDir, dataset)
		if readErr != nil {
			m = &SnapshotMeta{Dataset: dataset, Path: tablePath}
		}
		return m, true, nil
	}

	if err := os.MkdirAll(cfg.InteractionsDir, 0o755); err != nil {
		return nil, false, fmt.Errorf("creating directory %s: %w", cfg.InteractionsDir, err)
	}

	fmt.Fprintf(w, "fetching: %s (%s)\n", dataset, src.Name())

	body, err := src.Fetch(ctx, dataset, cfg)
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s: %w", dataset, err)
	}
	defer body.Close()

	size, records, err := saveTable(body, tablePath)
	if err != nil {
		return nil, false, fmt.Errorf("saving %s: %w", dataset, err)
	}

	meta = &SnapshotMeta{
		Dataset:   dataset,
		Source:    src.Name(),
		FetchedAt: time.Now().UTC(),
		Organism:  cfg.Organism,
		License:   cfg.License,
		Records:   records,
		SizeBytes: size,
		Path:      tablePath,
	}
	if err := writeSnapshotMeta(meta, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing sidecar for %s: %w", dataset, err)
	}
	return meta, false, nil
}

// FetchBatch snapshots multiple datasets, printing per-dataset status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive downloads.
func FetchBatch(ctx context.Context, src Source, datasets []types.Dataset, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, dataset := range datasets {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		meta, wasSkipped, err := SnapshotDataset(ctx, src, dataset, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", dataset, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Snapshots = append(result.Snapshots, meta)
	}
	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// LoadSnapshot parses the snapshot table for one dataset.
func LoadSnapshot(dir string, dataset types.Dataset) ([]types.Interaction, TableStats, error) {
	path := filepath.Join(dir, string(dataset)+".tsv")
	f, err := os.Open(path)
	if err != nil {
		return nil, TableStats{}, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	records, stats, err := ParseTable(f, dataset)
	if err != nil {
		return nil, stats, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return records, stats, nil
}

// saveTable streams a table to destPath via a temporary file, renaming on
// success, and counts data rows on the way through.
func saveTable(body io.Reader, destPath string) (size int64, records int, err error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	counter := &lineCounter{}
	size, copyErr := io.Copy(tmpFile, io.TeeReader(body, counter))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return size, counter.dataRows(), nil
}

// lineCounter counts newline-terminated lines flowing through a TeeReader.
type lineCounter struct {
	lines    int
	lastByte byte
	seen     bool
}

func (c *lineCounter) Write(p []byte) (int, error) {
	c.lines += bytes.Count(p, []byte{'\n'})
	if len(p) > 0 {
		c.lastByte = p[len(p)-1]
		c.seen = true
	}
	return len(p), nil
}

// dataRows returns the number of lines excluding the header, tolerating a
// missing trailing newline.
func (c *lineCounter) dataRows() int {
	n := c.lines
	if c.seen && c.lastByte != '\n' {
		n++
	}
	if n <= 1 {
		return 0
	}
	return n - 1
}

func writeSnapshotMeta(meta *SnapshotMeta, path string) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling sidecar: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadMeta reads the sidecar for one dataset snapshot.
func LoadMeta(dir string, dataset types.Dataset) (*SnapshotMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, string(dataset)+".yaml"))
	if err != nil {
		return nil, err
	}
	var meta SnapshotMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
