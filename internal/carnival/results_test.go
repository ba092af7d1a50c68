// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package carnival

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/asumann/transcriptutorial/pkg/types"
)

const sampleWeightedModel = "Node1\tSign\tNode2\tWeight\n" +
	"TNF\t1\tNFKB1\t100\n" +
	"NFKB1\t-1\tE2F4\t66.6667\n" +
	"NFKB1\t1\tSTAT1\t33.3333\n"

const sampleNodeAttributes = "Node\tZeroAct\tUpAct\tDownAct\tAvgAct\tNodeType\n" +
	"TNF\t0\t100\t0\t100\tS\n" +
	"NFKB1\t33.3333\t66.6667\t0\t33.3333\t\n" +
	"E2F4\t0\t0\t100\t-100\tT\n" +
	"STAT1\t66.6667\t33.3333\t0\t33.3333\tT\n"

func sampleResults() *Results {
	return &Results{
		Edges: []types.CarnivalEdge{
			{Source: "TNF", Sign: 1, Target: "NFKB1", Weight: 100},
			{Source: "NFKB1", Sign: -1, Target: "E2F4", Weight: 66.6667},
			{Source: "NFKB1", Sign: 1, Target: "STAT1", Weight: 33.3333},
		},
		Nodes: []types.NodeActivity{
			{Node: "TNF", UpAct: 100, AvgAct: 100, NodeType: types.NodeTypePerturbation},
			{Node: "NFKB1", ZeroAct: 33.3333, UpAct: 66.6667, AvgAct: 33.3333},
			{Node: "E2F4", DownAct: 100, AvgAct: -100, NodeType: types.NodeTypeMeasured},
			{Node: "STAT1", ZeroAct: 66.6667, UpAct: 33.3333, AvgAct: 33.3333, NodeType: types.NodeTypeMeasured},
		},
	}
}

// --- parsing ---

func TestReadWeightedNetwork(t *testing.T) {
	edges, err := ReadWeightedNetwork(strings.NewReader(sampleWeightedModel))
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	want := types.CarnivalEdge{Source: "TNF", Sign: 1, Target: "NFKB1", Weight: 100}
	if edges[0] != want {
		t.Errorf("edges[0] = %+v, want %+v", edges[0], want)
	}
	if edges[1].Sign != -1 || edges[1].Weight != 66.6667 {
		t.Errorf("edges[1] = %+v", edges[1])
	}
}

func TestReadWeightedNetworkErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "wrong header", input: "Source\tSign\tTarget\tWeight\nTNF\t1\tNFKB1\t100\n"},
		{name: "zero sign", input: "Node1\tSign\tNode2\tWeight\nTNF\t0\tNFKB1\t100\n"},
		{name: "out of range sign", input: "Node1\tSign\tNode2\tWeight\nTNF\t2\tNFKB1\t100\n"},
		{name: "text sign", input: "Node1\tSign\tNode2\tWeight\nTNF\tx\tNFKB1\t100\n"},
		{name: "bad weight", input: "Node1\tSign\tNode2\tWeight\nTNF\t1\tNFKB1\thigh\n"},
		{name: "short row", input: "Node1\tSign\tNode2\tWeight\nTNF\t1\tNFKB1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadWeightedNetwork(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadNodeAttributes(t *testing.T) {
	nodes, err := ReadNodeAttributes(strings.NewReader(sampleNodeAttributes))
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(nodes))
	}
	want := types.NodeActivity{Node: "TNF", UpAct: 100, AvgAct: 100, NodeType: "S"}
	if nodes[0] != want {
		t.Errorf("nodes[0] = %+v, want %+v", nodes[0], want)
	}
	if nodes[1].NodeType != types.NodeTypeIntermediate {
		t.Errorf("nodes[1].NodeType = %q, want intermediate", nodes[1].NodeType)
	}
	if nodes[2].AvgAct != -100 || nodes[2].NodeType != "T" {
		t.Errorf("nodes[2] = %+v", nodes[2])
	}
}

func TestReadNodeAttributesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "wrong header", input: "Gene\tZeroAct\tUpAct\tDownAct\tAvgAct\tNodeType\nTNF\t0\t100\t0\t100\tS\n"},
		{name: "bad float", input: "Node\tZeroAct\tUpAct\tDownAct\tAvgAct\tNodeType\nTNF\t0\thigh\t0\t100\tS\n"},
		{name: "unknown node type", input: "Node\tZeroAct\tUpAct\tDownAct\tAvgAct\tNodeType\nTNF\t0\t100\t0\t100\tX\n"},
		{name: "empty node", input: "Node\tZeroAct\tUpAct\tDownAct\tAvgAct\tNodeType\n\t0\t100\t0\t100\tS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadNodeAttributes(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadResults(t *testing.T) {
	jobDir := t.TempDir()
	resultsDir := filepath.Join(jobDir, resultsDirName)
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(resultsDir, weightedModelFile), []byte(sampleWeightedModel), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(resultsDir, nodeAttributesFile), []byte(sampleNodeAttributes), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := LoadResults(jobDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 3 {
		t.Errorf("got %d edges, want 3", len(res.Edges))
	}
	if len(res.Nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(res.Nodes))
	}
}

func TestLoadResultsMissing(t *testing.T) {
	if _, err := LoadResults(t.TempDir()); err == nil {
		t.Fatal("expected error for job without results")
	}
}

// --- filtering and summary ---

func TestFilterEdges(t *testing.T) {
	edges := sampleResults().Edges

	kept := FilterEdges(edges, 50)
	if len(kept) != 2 {
		t.Fatalf("got %d edges, want 2", len(kept))
	}
	if kept[0].Target != "NFKB1" || kept[1].Target != "E2F4" {
		t.Errorf("kept = %v, want input order preserved", kept)
	}

	if got := FilterEdges(edges, 0); len(got) != 3 {
		t.Errorf("min 0 kept %d edges, want all", len(got))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults(), 2)

	if s.Edges != 3 {
		t.Errorf("Edges = %d, want 3", s.Edges)
	}
	if s.Nodes != 4 {
		t.Errorf("Nodes = %d, want 4", s.Nodes)
	}
	if s.Perturbations != 1 || s.Measured != 2 || s.Intermediate != 1 {
		t.Errorf("node counts = %d/%d/%d, want 1/2/1",
			s.Perturbations, s.Measured, s.Intermediate)
	}

	if len(s.MostActive) != 2 {
		t.Fatalf("MostActive = %v, want 2 entries", s.MostActive)
	}
	if s.MostActive[0].Node != "TNF" || s.MostActive[0].AvgAct != 100 {
		t.Errorf("MostActive[0] = %+v", s.MostActive[0])
	}
	// NFKB1 and STAT1 tie at 33.3333; names break the tie.
	if s.MostActive[1].Node != "NFKB1" {
		t.Errorf("MostActive[1] = %+v, want NFKB1", s.MostActive[1])
	}

	if len(s.MostInhibited) != 1 {
		t.Fatalf("MostInhibited = %v, want 1 entry", s.MostInhibited)
	}
	if s.MostInhibited[0].Node != "E2F4" || s.MostInhibited[0].AvgAct != -100 {
		t.Errorf("MostInhibited[0] = %+v", s.MostInhibited[0])
	}
}

func TestSummarizeZeroTop(t *testing.T) {
	s := Summarize(sampleResults(), 0)
	if len(s.MostActive) != 0 || len(s.MostInhibited) != 0 {
		t.Errorf("top 0 produced rankings: %v / %v", s.MostActive, s.MostInhibited)
	}
}

func TestFormatTable(t *testing.T) {
	var buf strings.Builder
	FormatTable(Summarize(sampleResults(), 3), &buf)

	out := buf.String()
	for _, want := range []string{
		"Edges: 3",
		"Nodes: 4 (1 perturbation, 2 measured, 1 intermediate)",
		"Most active",
		"Most inhibited",
		"TNF",
		"E2F4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// --- export ---

func TestExportYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	if err := ExportYAML(sampleResults(), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Results
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Edges) != 3 || len(got.Nodes) != 4 {
		t.Errorf("round trip: %d edges, %d nodes", len(got.Edges), len(got.Nodes))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := ExportJSON(sampleResults(), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Results
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Edges) != 3 || len(got.Nodes) != 4 {
		t.Errorf("round trip: %d edges, %d nodes", len(got.Edges), len(got.Nodes))
	}
}
