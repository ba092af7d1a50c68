// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package carnival

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asumann/transcriptutorial/internal/network"
)

var inputColumns = [2]string{"node", "weight"}

// Perturbation pins a network node to a known up (+1) or down (-1) state
// for the solver.
type Perturbation struct {
	Node   string
	Weight int
}

// ParsePerturbation parses a NODE=1 or NODE=-1 flag value. The node label
// goes through the network label rule.
func ParsePerturbation(s string) (Perturbation, error) {
	node, weight, ok := strings.Cut(s, "=")
	if !ok {
		return Perturbation{}, fmt.Errorf("perturbation %q: want NODE=1 or NODE=-1", s)
	}
	node = strings.TrimSpace(node)
	if node == "" {
		return Perturbation{}, fmt.Errorf("perturbation %q: empty node", s)
	}

	switch strings.TrimSpace(weight) {
	case "1", "+1":
		return Perturbation{Node: network.SafeID(node), Weight: 1}, nil
	case "-1":
		return Perturbation{Node: network.SafeID(node), Weight: -1}, nil
	default:
		return Perturbation{}, fmt.Errorf("perturbation %q: weight must be 1 or -1", s)
	}
}

// ParsePerturbations parses repeated flag values, rejecting duplicate
// nodes.
func ParsePerturbations(values []string) ([]Perturbation, error) {
	var ps []Perturbation
	seen := make(map[string]struct{}, len(values))

	for _, v := range values {
		p, err := ParsePerturbation(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Node]; dup {
			return nil, fmt.Errorf("duplicate perturbation node %s", p.Node)
		}
		seen[p.Node] = struct{}{}
		ps = append(ps, p)
	}
	return ps, nil
}

// WriteInputs writes perturbations as the solver's two-column input table.
func WriteInputs(w io.Writer, ps []Perturbation) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\t%s\n", inputColumns[0], inputColumns[1])
	for _, p := range ps {
		fmt.Fprintf(bw, "%s\t%d\n", p.Node, p.Weight)
	}
	return bw.Flush()
}

// WriteInputsFile writes the inputs artifact to path.
func WriteInputsFile(path string, ps []Perturbation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating inputs file: %w", err)
	}
	defer f.Close()

	if err := WriteInputs(f, ps); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadInputs parses a two-column perturbation table. Node labels go
// through the network label rule and duplicates are rejected, matching the
// flag parsing path.
func ReadInputs(r io.Reader) ([]Perturbation, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty inputs table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != inputColumns[0] || header[1] != inputColumns[1] {
		return nil, fmt.Errorf("unexpected header %v, want [%s %s]",
			header, inputColumns[0], inputColumns[1])
	}

	var ps []Perturbation
	seen := make(map[string]struct{})
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

		node := network.SafeID(record[0])
		if node == "" {
			return nil, fmt.Errorf("line %d: empty node", line)
		}
		if _, dup := seen[node]; dup {
			return nil, fmt.Errorf("line %d: duplicate perturbation node %s", line, node)
		}
		seen[node] = struct{}{}

		var weight int
		switch record[1] {
		case "1", "+1":
			weight = 1
		case "-1":
			weight = -1
		default:
			return nil, fmt.Errorf("line %d: weight %q must be 1 or -1", line, record[1])
		}
		ps = append(ps, Perturbation{Node: node, Weight: weight})
	}

	return ps, nil
}

// ReadInputsFile reads the inputs artifact at path.
func ReadInputsFile(path string) ([]Perturbation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening inputs file: %w", err)
	}
	defer f.Close()

	ps, err := ReadInputs(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ps, nil
}
