// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package activity

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asumann/transcriptutorial/internal/network"
	"github.com/asumann/transcriptutorial/pkg/types"
)

var measurementColumns = [2]string{"node", "value"}

// MatchNetwork keeps the scores whose regulator appears in the network
// node set. Regulator names go through the network label rule first so the
// lookup sees what the network artifact carries. Dropped names come back
// for the caller to report; the solver rejects measured nodes it cannot
// find in the network.
func MatchNetwork(scores []types.ActivityScore, nodes map[string]struct{}) (kept []types.ActivityScore, dropped []string) {
	for _, s := range scores {
		s.Source = network.SafeID(s.Source)
		if _, ok := nodes[s.Source]; ok {
			kept = append(kept, s)
		} else {
			dropped = append(dropped, s.Source)
		}
	}
	return kept, dropped
}

// WriteMeasurements writes scores as the solver's two-column table.
// Row order is preserved; regulator names get the network label rule.
func WriteMeasurements(w io.Writer, scores []types.ActivityScore) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\t%s\n", measurementColumns[0], measurementColumns[1])
	for _, s := range scores {
		fmt.Fprintf(bw, "%s\t%s\n",
			network.SafeID(s.Source), strconv.FormatFloat(s.Score, 'g', -1, 64))
	}
	return bw.Flush()
}

// WriteFile writes the measurement artifact to path, creating parent
// directories as needed.
func WriteFile(path string, scores []types.ActivityScore) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating measurements directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating measurements file: %w", err)
	}
	defer f.Close()

	if err := WriteMeasurements(f, scores); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadMeasurements parses a two-column measurement table.
func ReadMeasurements(r io.Reader) ([]types.ActivityScore, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty measurements table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != measurementColumns[0] || header[1] != measurementColumns[1] {
		return nil, fmt.Errorf("unexpected header %v, want [%s %s]",
			header, measurementColumns[0], measurementColumns[1])
	}

	var scores []types.ActivityScore
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

		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing value %q", line, record[1])
		}
		scores = append(scores, types.ActivityScore{Source: record[0], Score: value})
	}

	return scores, nil
}

// ReadFile reads the measurement artifact at path.
func ReadFile(path string) ([]types.ActivityScore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening measurements file: %w", err)
	}
	defer f.Close()

	scores, err := ReadMeasurements(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return scores, nil
}
