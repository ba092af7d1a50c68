// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interactions fetches curated interaction tables and decodes the
// tab-separated wire format they arrive in. Tables come from the OmniPath
// web service or from files fetched earlier; each dataset is snapshotted to
// disk with a YAML sidecar describing the fetch.
//
// See docs/ARCHITECTURE.md § Fetch.
package interactions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asumann/transcriptutorial/internal/httputil"
	"github.com/asumann/transcriptutorial/pkg/types"
)

// omnipathBase is the OmniPath web service root. Tests point this at a
// local server.
var omnipathBase = "https://omnipathdb.org"

// Source provides the raw interaction table for a dataset. Each source
// implements this interface per the Strategy pattern.
type Source interface {
	Name() string
	Fetch(ctx context.Context, dataset types.Dataset, cfg types.FetchConfig) (io.ReadCloser, error)
}

// WebSource fetches interaction tables from the OmniPath web service.
// Password unlocks restricted-license resources and may be empty.
type WebSource struct {
	Password string
}

// Name identifies the source in sidecar metadata and progress output.
func (s *WebSource) Name() string { return "omnipath-web" }

// Fetch requests one dataset as TSV with gene symbols and provenance
// columns included. Rate-limit and maintenance responses are retried with
// backoff; any other non-200 status is an error.
func (s *WebSource) Fetch(ctx context.Context, dataset types.Dataset, cfg types.FetchConfig) (io.ReadCloser, error) {
	u, err := url.Parse(omnipathBase + "/interactions")
	if err != nil {
		return nil, fmt.Errorf("parsing service URL: %w", err)
	}

	q := u.Query()
	q.Set("datasets", string(dataset))
	q.Set("format", "tsv")
	q.Set("genesymbols", "1")
	q.Set("fields", "sources,references,curation_effort")
	if cfg.Organism > 0 {
		q.Set("organisms", strconv.Itoa(cfg.Organism))
	}
	if cfg.License != "" {
		q.Set("license", cfg.License)
	}
	if s.Password != "" {
		q.Set("password", s.Password)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/tab-separated-values, text/plain")

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OmniPath request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("OmniPath returned HTTP %d for dataset %s", resp.StatusCode, dataset)
	}
	return resp.Body, nil
}

// FileSource reads interaction tables from a directory of <dataset>.tsv
// files, for offline runs and tests.
type FileSource struct {
	Dir string
}

// Name identifies the source in sidecar metadata and progress output.
func (s *FileSource) Name() string { return "file" }

// Fetch opens the table for one dataset.
func (s *FileSource) Fetch(_ context.Context, dataset types.Dataset, _ types.FetchConfig) (io.ReadCloser, error) {
	path := filepath.Join(s.Dir, string(dataset)+".tsv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// KnownDatasets lists the collections the fetch stage accepts, in the order
// they are fetched by default.
func KnownDatasets() []types.Dataset {
	return []types.Dataset{
		types.DatasetOmniPath,
		types.DatasetPathwayExtra,
		types.DatasetKinaseExtra,
		types.DatasetLigRecExtra,
		types.DatasetDorothea,
		types.DatasetTFTarget,
	}
}

// ParseDataset validates a dataset name from the command line.
func ParseDataset(name string) (types.Dataset, error) {
	for _, d := range KnownDatasets() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q", name)
}
