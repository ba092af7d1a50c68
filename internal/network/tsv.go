// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package network

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// Column names of the network table, in order.
var tableColumns = [3]string{"source", "interaction", "target"}

// WriteTSV writes edges as a tab-separated table: a header line followed by
// one row per edge, signs rendered as 1 and -1. An empty edge list yields a
// header-only table.
func WriteTSV(w io.Writer, edges []types.SignedEdge) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\t%s\t%s\n", tableColumns[0], tableColumns[1], tableColumns[2])
	for _, e := range edges {
		fmt.Fprintf(bw, "%s\t%d\t%s\n", e.Source, e.Sign, e.Target)
	}
	return bw.Flush()
}

// WriteFile writes edges to path, creating parent directories as needed.
func WriteFile(path string, edges []types.SignedEdge) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating network directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating network file: %w", err)
	}
	if err := WriteTSV(f, edges); err != nil {
		f.Close()
		return fmt.Errorf("writing network %s: %w", path, err)
	}
	return f.Close()
}

// ReadTSV parses a network table. The header must name the three columns
// exactly; each row must carry a sign of 1 or -1. Errors cite the
// offending line.
func ReadTSV(r io.Reader) ([]types.SignedEdge, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 3

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("network table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading network header: %w", err)
	}
	for i, want := range tableColumns {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected network header %q: want %q",
				strings.Join(header, "\t"), strings.Join(tableColumns[:], "\t"))
		}
	}

	var edges []types.SignedEdge
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading network row: %w", err)
		}
		sign, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || (sign != types.SignActivating && sign != types.SignInhibiting) {
			return nil, fmt.Errorf("line %d: interaction must be 1 or -1, got %q", line, row[1])
		}
		edges = append(edges, types.SignedEdge{Source: row[0], Sign: sign, Target: row[2]})
	}
	return edges, nil
}

// ReadFile reads a network table from path.
func ReadFile(path string) ([]types.SignedEdge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening network file: %w", err)
	}
	defer f.Close()

	edges, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return edges, nil
}

// WriteJSONFile writes the edge list to path as indented JSON, a secondary
// format carrying the same data as the table.
func WriteJSONFile(path string, edges []types.SignedEdge) error {
	if edges == nil {
		edges = []types.SignedEdge{}
	}
	data, err := json.MarshalIndent(edges, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling edges: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating network directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
