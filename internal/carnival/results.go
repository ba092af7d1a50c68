// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package carnival

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/asumann/transcriptutorial/pkg/types"
)

const (
	weightedModelFile  = "weightedModel.tsv"
	nodeAttributesFile = "nodesAttributes.tsv"
)

var (
	weightedModelColumns = [4]string{"Node1", "Sign", "Node2", "Weight"}
	nodeAttributeColumns = [6]string{"Node", "ZeroAct", "UpAct", "DownAct", "AvgAct", "NodeType"}
)

// Results bundles the parsed outputs of one solver run.
type Results struct {
	Edges []types.CarnivalEdge `yaml:"edges" json:"edges"`
	Nodes []types.NodeActivity `yaml:"nodes" json:"nodes"`
}

// ReadWeightedNetwork parses the solver's consensus edge table. Weight is
// the percentage of pooled solutions containing the edge.
func ReadWeightedNetwork(r io.Reader) ([]types.CarnivalEdge, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 4

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty weighted network table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, want := range weightedModelColumns {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header %v, want %v", header, weightedModelColumns)
		}
	}

	var edges []types.CarnivalEdge
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		sign, err := strconv.Atoi(record[1])
		if err != nil || (sign != types.SignActivating && sign != types.SignInhibiting) {
			return nil, fmt.Errorf("line %d: sign %q must be 1 or -1", line, record[1])
		}
		weight, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing weight %q", line, record[3])
		}

		edges = append(edges, types.CarnivalEdge{
			Source: record[0],
			Sign:   sign,
			Target: record[2],
			Weight: weight,
		})
	}

	return edges, nil
}

// ReadNodeAttributes parses the solver's per-node activity table.
func ReadNodeAttributes(r io.Reader) ([]types.NodeActivity, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 6

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty node attributes table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, want := range nodeAttributeColumns {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header %v, want %v", header, nodeAttributeColumns)
		}
	}

	var nodes []types.NodeActivity
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		n := types.NodeActivity{Node: record[0], NodeType: record[5]}
		if n.Node == "" {
			return nil, fmt.Errorf("line %d: empty node", line)
		}
		switch n.NodeType {
		case types.NodeTypePerturbation, types.NodeTypeMeasured, types.NodeTypeIntermediate:
		default:
			return nil, fmt.Errorf("line %d: node type %q must be S, T, or empty", line, n.NodeType)
		}

		for i, dst := range []*float64{&n.ZeroAct, &n.UpAct, &n.DownAct, &n.AvgAct} {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing %s %q", line, nodeAttributeColumns[i+1], record[i+1])
			}
			*dst = v
		}

		nodes = append(nodes, n)
	}

	return nodes, nil
}

// LoadResults reads both result tables from <jobDir>/results/.
func LoadResults(jobDir string) (*Results, error) {
	dir := filepath.Join(jobDir, resultsDirName)

	edges, err := loadWeightedNetwork(filepath.Join(dir, weightedModelFile))
	if err != nil {
		return nil, err
	}
	nodes, err := loadNodeAttributes(filepath.Join(dir, nodeAttributesFile))
	if err != nil {
		return nil, err
	}

	return &Results{Edges: edges, Nodes: nodes}, nil
}

func loadWeightedNetwork(path string) ([]types.CarnivalEdge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weighted network: %w", err)
	}
	defer f.Close()

	edges, err := ReadWeightedNetwork(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return edges, nil
}

func loadNodeAttributes(path string) ([]types.NodeActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening node attributes: %w", err)
	}
	defer f.Close()

	nodes, err := ReadNodeAttributes(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return nodes, nil
}

// FilterEdges keeps edges whose weight is at least minWeight, preserving
// order.
func FilterEdges(edges []types.CarnivalEdge, minWeight float64) []types.CarnivalEdge {
	if minWeight <= 0 {
		return edges
	}
	var kept []types.CarnivalEdge
	for _, e := range edges {
		if e.Weight >= minWeight {
			kept = append(kept, e)
		}
	}
	return kept
}

// NodeRank pairs a node with its average activity.
type NodeRank struct {
	Node   string  `json:"node" yaml:"node"`
	AvgAct float64 `json:"avg_act" yaml:"avg_act"`
}

// ResultSummary aggregates one solver run's outputs.
type ResultSummary struct {
	Edges         int        `json:"edges" yaml:"edges"`
	Nodes         int        `json:"nodes" yaml:"nodes"`
	Perturbations int        `json:"perturbations" yaml:"perturbations"`
	Measured      int        `json:"measured" yaml:"measured"`
	Intermediate  int        `json:"intermediate" yaml:"intermediate"`
	MostActive    []NodeRank `json:"most_active,omitempty" yaml:"most_active,omitempty"`
	MostInhibited []NodeRank `json:"most_inhibited,omitempty" yaml:"most_inhibited,omitempty"`
}

// Summarize counts nodes by type and ranks the top most-activated and
// most-inhibited nodes by average activity. Ties break on name.
func Summarize(res *Results, top int) ResultSummary {
	s := ResultSummary{Edges: len(res.Edges), Nodes: len(res.Nodes)}

	for _, n := range res.Nodes {
		switch n.NodeType {
		case types.NodeTypePerturbation:
			s.Perturbations++
		case types.NodeTypeMeasured:
			s.Measured++
		default:
			s.Intermediate++
		}
	}

	if top <= 0 {
		return s
	}

	ranked := make([]NodeRank, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ranked = append(ranked, NodeRank{Node: n.Node, AvgAct: n.AvgAct})
	}

	byActivity := func(desc bool) func(i, j int) bool {
		return func(i, j int) bool {
			if ranked[i].AvgAct != ranked[j].AvgAct {
				if desc {
					return ranked[i].AvgAct > ranked[j].AvgAct
				}
				return ranked[i].AvgAct < ranked[j].AvgAct
			}
			return ranked[i].Node < ranked[j].Node
		}
	}

	sort.Slice(ranked, byActivity(true))
	for _, r := range ranked {
		if r.AvgAct <= 0 || len(s.MostActive) == top {
			break
		}
		s.MostActive = append(s.MostActive, r)
	}

	sort.Slice(ranked, byActivity(false))
	for _, r := range ranked {
		if r.AvgAct >= 0 || len(s.MostInhibited) == top {
			break
		}
		s.MostInhibited = append(s.MostInhibited, r)
	}

	return s
}

// FormatTable writes the summary as a human-readable table to w.
func FormatTable(s ResultSummary, w io.Writer) {
	fmt.Fprintf(w, "Edges: %d\n", s.Edges)
	fmt.Fprintf(w, "Nodes: %d (%d perturbation, %d measured, %d intermediate)\n",
		s.Nodes, s.Perturbations, s.Measured, s.Intermediate)

	writeRanks := func(title string, ranks []NodeRank) {
		if len(ranks) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%-20s  %s\n", title, "AvgAct")
		fmt.Fprintln(w, strings.Repeat("-", 28))
		for _, r := range ranks {
			fmt.Fprintf(w, "%-20s  %.1f\n", r.Node, r.AvgAct)
		}
	}
	writeRanks("Most active", s.MostActive)
	writeRanks("Most inhibited", s.MostInhibited)
}

// ExportYAML writes the parsed results to path as YAML.
func ExportYAML(res *Results, path string) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the parsed results to path as JSON.
func ExportJSON(res *Results, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
