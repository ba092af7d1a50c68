// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interactions

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// requiredColumns must all be present in a table header; a table missing
// any of them is rejected outright rather than parsed row by row.
var requiredColumns = []string{
	"source",
	"target",
	"consensus_direction",
	"consensus_stimulation",
	"consensus_inhibition",
}

// tableColumns is the canonical column order used when writing tables.
var tableColumns = []string{
	"source",
	"target",
	"source_genesymbol",
	"target_genesymbol",
	"is_directed",
	"is_stimulation",
	"is_inhibition",
	"consensus_direction",
	"consensus_stimulation",
	"consensus_inhibition",
	"curation_effort",
	"sources",
	"references",
}

// TableStats counts data rows seen and rows dropped as malformed.
type TableStats struct {
	Rows    int
	Dropped int
}

// ParseTable decodes an interaction table. The header is matched by column
// name, so extra columns and arbitrary column order are fine. Rows with the
// wrong field count, a missing endpoint, or an unparseable flag are dropped
// and counted, not fatal; only a missing or unreadable header aborts.
func ParseTable(r io.Reader, dataset types.Dataset) ([]types.Interaction, TableStats, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, TableStats{}, fmt.Errorf("reading header: %w", err)
		}
		return nil, TableStats{}, fmt.Errorf("interaction table is empty")
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, TableStats{}, fmt.Errorf("interaction table missing columns: %s", strings.Join(missing, ", "))
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.Interaction
	var stats TableStats
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		stats.Rows++

		row := strings.Split(line, "\t")
		if len(row) != len(header) {
			stats.Dropped++
			continue
		}

		rec := types.Interaction{
			Source:       get(row, "source"),
			Target:       get(row, "target"),
			SourceSymbol: get(row, "source_genesymbol"),
			TargetSymbol: get(row, "target_genesymbol"),
			Dataset:      dataset,
		}
		if rec.Source == "" || rec.Target == "" {
			stats.Dropped++
			continue
		}

		flagsOK := true
		for _, f := range []struct {
			name string
			dst  *bool
		}{
			{"is_directed", &rec.Directed},
			{"is_stimulation", &rec.Stimulation},
			{"is_inhibition", &rec.Inhibition},
			{"consensus_direction", &rec.ConsensusDirection},
			{"consensus_stimulation", &rec.ConsensusStimulation},
			{"consensus_inhibition", &rec.ConsensusInhibition},
		} {
			v, ok := parseFlag(get(row, f.name))
			if !ok {
				flagsOK = false
				break
			}
			*f.dst = v
		}
		if !flagsOK {
			stats.Dropped++
			continue
		}

		if v := get(row, "curation_effort"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				rec.CurationEffort = n
			}
		}
		rec.Sources = splitList(get(row, "sources"))
		rec.References = splitList(get(row, "references"))

		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading interaction table: %w", err)
	}
	return records, stats, nil
}

// parseFlag decodes a boolean column. The web service emits 0/1; tables
// round-tripped through R may carry TRUE/FALSE. An empty cell means unset.
func parseFlag(s string) (value, ok bool) {
	switch s {
	case "1", "true", "True", "TRUE":
		return true, true
	case "0", "false", "False", "FALSE", "":
		return false, true
	}
	return false, false
}

// splitList splits a semicolon-separated cell, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// WriteTable encodes records in the canonical column order, flags as 0/1
// and lists joined with semicolons. ParseTable reads the output back
// unchanged.
func WriteTable(w io.Writer, records []types.Interaction) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(tableColumns, "\t"))
	for _, rec := range records {
		fields := []string{
			rec.Source,
			rec.Target,
			rec.SourceSymbol,
			rec.TargetSymbol,
			flagCell(rec.Directed),
			flagCell(rec.Stimulation),
			flagCell(rec.Inhibition),
			flagCell(rec.ConsensusDirection),
			flagCell(rec.ConsensusStimulation),
			flagCell(rec.ConsensusInhibition),
			strconv.Itoa(rec.CurationEffort),
			strings.Join(rec.Sources, ";"),
			strings.Join(rec.References, ";"),
		}
		fmt.Fprintln(bw, strings.Join(fields, "\t"))
	}
	return bw.Flush()
}

func flagCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
