// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package activity stages regulator activity scores as solver measurements.
// It reads the enrichment engine's per-regulator table, selects the top
// regulators, and writes the two-column measurement artifact.
//
// See docs/ARCHITECTURE.md § Measurements.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// Columns maps logical fields to header names in an activity table.
// Zero-value fields fall back to the decoupleR-style defaults.
type Columns struct {
	Source    string
	Condition string
	Score     string
	PValue    string
}

// DefaultColumns returns the decoupleR-style header names.
func DefaultColumns() Columns {
	return Columns{
		Source:    "source",
		Condition: "condition",
		Score:     "score",
		PValue:    "p_value",
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.Condition == "" {
		c.Condition = d.Condition
	}
	if c.Score == "" {
		c.Score = d.Score
	}
	if c.PValue == "" {
		c.PValue = d.PValue
	}
	return c
}

// ReadScores loads an activity table from path. The delimiter follows the
// extension: ',' for .csv, tab otherwise. When condition is empty the table
// must hold a single contrast; otherwise rows are filtered to the named one.
func ReadScores(path string, cols Columns, condition string) ([]types.ActivityScore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening activity table: %w", err)
	}
	defer f.Close()

	comma := '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		comma = ','
	}
	scores, err := parseScores(f, comma, cols, condition)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return scores, nil
}

func parseScores(r io.Reader, comma rune, cols Columns, condition string) ([]types.ActivityScore, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty activity table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	srcIdx, ok := index[cols.Source]
	if !ok {
		return nil, fmt.Errorf("missing column %q (have: %s)", cols.Source, strings.Join(header, ", "))
	}
	scoreIdx, ok := index[cols.Score]
	if !ok {
		return nil, fmt.Errorf("missing column %q (have: %s)", cols.Score, strings.Join(header, ", "))
	}
	condIdx, hasCond := index[cols.Condition]
	pIdx, hasP := index[cols.PValue]

	if condition != "" && !hasCond {
		return nil, fmt.Errorf("condition %q requested but table has no %q column", condition, cols.Condition)
	}

	var scores []types.ActivityScore
	seen := make(map[string]struct{})
	row := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		s := types.ActivityScore{Source: strings.TrimSpace(record[srcIdx])}
		if s.Source == "" {
			return nil, fmt.Errorf("row %d: empty %s", row, cols.Source)
		}

		if hasCond {
			s.Condition = strings.TrimSpace(record[condIdx])
			seen[s.Condition] = struct{}{}
			if condition != "" && s.Condition != condition {
				continue
			}
		}

		s.Score, err = strconv.ParseFloat(strings.TrimSpace(record[scoreIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing %s %q", row, cols.Score, record[scoreIdx])
		}

		if hasP && strings.TrimSpace(record[pIdx]) != "" {
			s.PValue, err = strconv.ParseFloat(strings.TrimSpace(record[pIdx]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing %s %q", row, cols.PValue, record[pIdx])
			}
		}

		scores = append(scores, s)
	}

	if condition == "" && len(seen) > 1 {
		conds := make([]string, 0, len(seen))
		for c := range seen {
			conds = append(conds, c)
		}
		sort.Strings(conds)
		return nil, fmt.Errorf("table holds %d conditions (%s); pick one", len(conds), strings.Join(conds, ", "))
	}
	if condition != "" && len(scores) == 0 {
		conds := make([]string, 0, len(seen))
		for c := range seen {
			conds = append(conds, c)
		}
		sort.Strings(conds)
		return nil, fmt.Errorf("condition %q not in table (have: %s)", condition, strings.Join(conds, ", "))
	}

	return scores, nil
}

// SelectTop returns the n regulators with the largest absolute score.
// Ties break on name so selection is stable. n <= 0 keeps everything.
// The result is a copy sorted by score magnitude descending.
func SelectTop(scores []types.ActivityScore, n int) []types.ActivityScore {
	out := make([]types.ActivityScore, len(scores))
	copy(out, scores)

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Score), math.Abs(out[j].Score)
		if ai != aj {
			return ai > aj
		}
		return out[i].Source < out[j].Source
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ZScale standardizes the scores in place to zero mean and unit variance,
// population denominator. A constant vector collapses to all zeros.
func ZScale(scores []types.ActivityScore) {
	if len(scores) == 0 {
		return
	}
	xs := make([]float64, len(scores))
	for i, s := range scores {
		xs[i] = s.Score
	}

	mean := stat.Mean(xs, nil)
	sd := stat.PopStdDev(xs, nil)

	for i := range scores {
		if sd == 0 {
			scores[i].Score = 0
			continue
		}
		scores[i].Score = (scores[i].Score - mean) / sd
	}
}

// Stats describes a score vector.
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics over the scores.
func Summarize(scores []types.ActivityScore) Stats {
	if len(scores) == 0 {
		return Stats{}
	}
	xs := make([]float64, len(scores))
	for i, s := range scores {
		xs[i] = s.Score
	}
	st := Stats{
		Count: len(xs),
		Mean:  stat.Mean(xs, nil),
		Min:   floats.Min(xs),
		Max:   floats.Max(xs),
	}
	if len(xs) > 1 {
		st.StdDev = stat.StdDev(xs, nil)
	}
	return st
}

// FormatStats writes the summary line used by the measurements stage.
func FormatStats(st Stats, w io.Writer) {
	fmt.Fprintf(w, "scores: %d (mean %.3f, sd %.3f, range %.3f..%.3f)\n",
		st.Count, st.Mean, st.StdDev, st.Min, st.Max)
}
