// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interactions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asumann/transcriptutorial/pkg/types"
)

const sampleWireTable = "source\ttarget\tsource_genesymbol\ttarget_genesymbol\t" +
	"consensus_direction\tconsensus_stimulation\tconsensus_inhibition\n" +
	"P00533\tP28482\tEGFR\tMAPK1\t1\t1\t0\n" +
	"P04637\tQ00987\tTP53\tMDM2\t1\t0\t1\n"

// newTestServer serves the sample table for /interactions requests and
// records the last query received.
func newTestServer(t *testing.T, lastQuery *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/interactions" {
			http.NotFound(w, r)
			return
		}
		if lastQuery != nil {
			*lastQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, sampleWireTable)
	}))
}

// overrideBase points the web source at the test server and returns a
// cleanup function that restores the original.
func overrideBase(tsURL string) func() {
	orig := omnipathBase
	omnipathBase = tsURL
	return func() { omnipathBase = orig }
}

func testFetchConfig(dir string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "transcriptutorial-test/0.1",
		},
		DownloadDelay:   0,
		InteractionsDir: dir,
		Organism:        9606,
	}
}

// --- WebSource ---

func TestWebSourceFetch(t *testing.T) {
	var query string
	ts := newTestServer(t, &query)
	defer ts.Close()
	restore := overrideBase(ts.URL)
	defer restore()

	src := &WebSource{}
	body, err := src.Fetch(context.Background(), types.DatasetOmniPath, testFetchConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(data) != sampleWireTable {
		t.Errorf("body = %q, want sample table", string(data))
	}

	for _, want := range []string{
		"datasets=omnipath",
		"format=tsv",
		"genesymbols=1",
		"organisms=9606",
		"fields=sources%2Creferences%2Ccuration_effort",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
	if strings.Contains(query, "password=") {
		t.Errorf("query %q should not carry a password", query)
	}
}

func TestWebSourceFetchWithPassword(t *testing.T) {
	var query string
	ts := newTestServer(t, &query)
	defer ts.Close()
	restore := overrideBase(ts.URL)
	defer restore()

	cfg := testFetchConfig(t.TempDir())
	cfg.License = "academic"
	src := &WebSource{Password: "s3cret"}

	body, err := src.Fetch(context.Background(), types.DatasetDorothea, cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	body.Close()

	for _, want := range []string{"datasets=dorothea", "license=academic", "password=s3cret"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestWebSourceFetchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such dataset", http.StatusBadRequest)
	}))
	defer ts.Close()
	restore := overrideBase(ts.URL)
	defer restore()

	src := &WebSource{}
	_, err := src.Fetch(context.Background(), types.Dataset("bogus"), testFetchConfig(t.TempDir()))
	if err == nil || !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("expected HTTP 400 error, got: %v", err)
	}
}

// --- FileSource ---

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnipath.tsv")
	if err := os.WriteFile(path, []byte(sampleWireTable), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Dir: dir}
	body, err := src.Fetch(context.Background(), types.DatasetOmniPath, types.FetchConfig{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != sampleWireTable {
		t.Errorf("body = %q, want sample table", string(data))
	}
}

func TestFileSourceFetchMissing(t *testing.T) {
	src := &FileSource{Dir: t.TempDir()}
	_, err := src.Fetch(context.Background(), types.DatasetOmniPath, types.FetchConfig{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// --- Datasets ---

func TestParseDataset(t *testing.T) {
	d, err := ParseDataset("kinaseextra")
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if d != types.DatasetKinaseExtra {
		t.Errorf("got %q", d)
	}

	if _, err := ParseDataset("nonsense"); err == nil {
		t.Error("expected error for unknown dataset")
	}
}

// --- Snapshots ---

func TestSnapshotDataset(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()
	restore := overrideBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testFetchConfig(dir)
	var buf bytes.Buffer

	meta, skipped, err := SnapshotDataset(context.Background(), &WebSource{}, types.DatasetOmniPath, cfg, &buf)
	if err != nil {
		t.Fatalf("SnapshotDataset: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if meta.Dataset != types.DatasetOmniPath {
		t.Errorf("meta.Dataset = %q", meta.Dataset)
	}
	if meta.Records != 2 {
		t.Errorf("meta.Records = %d, want 2", meta.Records)
	}
	if meta.Source != "omnipath-web" {
		t.Errorf("meta.Source = %q", meta.Source)
	}
	if meta.Organism != 9606 {
		t.Errorf("meta.Organism = %d", meta.Organism)
	}

	data, err := os.ReadFile(filepath.Join(dir, "omnipath.tsv"))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if string(data) != sampleWireTable {
		t.Errorf("snapshot content = %q", string(data))
	}

	if _, err := os.Stat(filepath.Join(dir, "omnipath.yaml")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	if !strings.Contains(buf.String(), "fetching:") {
		t.Error("output should contain 'fetching:'")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".fetch-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestSnapshotDatasetSkipExisting(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()
	restore := overrideBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testFetchConfig(dir)
	var buf bytes.Buffer

	if _, _, err := SnapshotDataset(context.Background(), &WebSource{}, types.DatasetOmniPath, cfg, &buf); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	meta, skipped, err := SnapshotDataset(context.Background(), &WebSource{}, types.DatasetOmniPath, cfg, &buf)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if !skipped {
		t.Error("expected skip for existing snapshot")
	}
	if meta.Records != 2 {
		t.Errorf("sidecar should be reread on skip, got %+v", meta)
	}
	if !strings.Contains(buf.String(), "skipped:") {
		t.Error("output should contain 'skipped:'")
	}
}

// --- Batch ---

// fakeSource returns canned tables per dataset and fails for datasets
// missing from the map.
type fakeSource struct {
	tables map[types.Dataset]string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, dataset types.Dataset, _ types.FetchConfig) (io.ReadCloser, error) {
	table, ok := f.tables[dataset]
	if !ok {
		return nil, errors.New("dataset unavailable")
	}
	return io.NopCloser(strings.NewReader(table)), nil
}

func TestFetchBatchContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := testFetchConfig(dir)
	src := &fakeSource{tables: map[types.Dataset]string{
		types.DatasetOmniPath: sampleWireTable,
		types.DatasetDorothea: sampleWireTable,
	}}

	var buf bytes.Buffer
	datasets := []types.Dataset{types.DatasetOmniPath, types.DatasetTFTarget, types.DatasetDorothea}
	result := FetchBatch(context.Background(), src, datasets, cfg, &buf)

	if result.Downloaded != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures() should be true")
	}
	if !strings.Contains(buf.String(), "failed:  tf_target") {
		t.Errorf("output should report the failed dataset:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Batch summary: 2 fetched, 0 skipped, 1 failed (total: 3)") {
		t.Errorf("output missing batch summary:\n%s", buf.String())
	}
}

// --- LoadSnapshot ---

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "omnipath.tsv"), []byte(sampleWireTable), 0o644); err != nil {
		t.Fatal(err)
	}

	records, stats, err := LoadSnapshot(dir, types.DatasetOmniPath)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if stats.Rows != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(records) != 2 || records[0].SourceSymbol != "EGFR" {
		t.Errorf("records = %+v", records)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, _, err := LoadSnapshot(t.TempDir(), types.DatasetOmniPath)
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}
