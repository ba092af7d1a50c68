// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// QueryOptions filters interaction retrieval. Zero values mean no filter.
type QueryOptions struct {
	// Gene matches source or target gene symbols via full-text search.
	Gene string
	// Dataset restricts results to one snapshot.
	Dataset types.Dataset
	// MinCuration drops rows below a curation effort threshold.
	MinCuration int
	// OnlySigned keeps rows with a stimulation or inhibition consensus.
	OnlySigned bool
	// OnlyDirected keeps rows with a direction consensus.
	OnlyDirected bool
	// MaxResults caps the result set. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether no filter is set.
func (o QueryOptions) IsEmpty() bool {
	return o.Gene == "" && o.Dataset == "" && o.MinCuration == 0 &&
		!o.OnlySigned && !o.OnlyDirected
}

// Retrieve returns interactions matching the options. Full-text matches are
// ranked by relevance; otherwise results come back in a stable dataset,
// source, target order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Interaction, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT i.dataset, i.source, i.target, i.source_symbol, i.target_symbol,
		i.is_directed, i.is_stimulation, i.is_inhibition,
		i.consensus_direction, i.consensus_stimulation, i.consensus_inhibition,
		i.curation_effort, i.sources, i.refs
	FROM interactions i`)

	if opts.Gene != "" {
		sb.WriteString(` JOIN interactions_fts f ON f.rowid = i.rowid WHERE interactions_fts MATCH ?`)
		args = append(args, opts.Gene)
	} else {
		sb.WriteString(` WHERE 1=1`)
	}

	if opts.Dataset != "" {
		sb.WriteString(` AND i.dataset = ?`)
		args = append(args, string(opts.Dataset))
	}
	if opts.MinCuration > 0 {
		sb.WriteString(` AND i.curation_effort >= ?`)
		args = append(args, opts.MinCuration)
	}
	if opts.OnlySigned {
		sb.WriteString(` AND (i.consensus_stimulation = 1 OR i.consensus_inhibition = 1)`)
	}
	if opts.OnlyDirected {
		sb.WriteString(` AND i.consensus_direction = 1`)
	}

	if opts.Gene != "" {
		sb.WriteString(` ORDER BY rank`)
	} else {
		sb.WriteString(` ORDER BY i.dataset, i.source, i.target, i.rowid`)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}
	sb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// LoadDataset returns every interaction of one dataset in snapshot order.
// Builds read through this path so row order, and with it edge order, stays
// reproducible across machines.
func (s *Store) LoadDataset(ctx context.Context, dataset types.Dataset) ([]types.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, source, target, source_symbol, target_symbol,
			is_directed, is_stimulation, is_inhibition,
			consensus_direction, consensus_stimulation, consensus_inhibition,
			curation_effort, sources, refs
		FROM interactions WHERE dataset = ? ORDER BY rowid`,
		string(dataset),
	)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", dataset, err)
	}
	defer rows.Close()

	records, err := scanInteractions(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s not indexed", dataset)
	}
	return records, nil
}

func scanInteractions(rows *sql.Rows) ([]types.Interaction, error) {
	var records []types.Interaction

	for rows.Next() {
		var rec types.Interaction
		var dataset string
		var directed, stim, inhib, consDir, consStim, consInhib int
		var sourcesJSON, refsJSON string

		err := rows.Scan(&dataset, &rec.Source, &rec.Target, &rec.SourceSymbol, &rec.TargetSymbol,
			&directed, &stim, &inhib, &consDir, &consStim, &consInhib,
			&rec.CurationEffort, &sourcesJSON, &refsJSON)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		rec.Dataset = types.Dataset(dataset)
		rec.Directed = directed == 1
		rec.Stimulation = stim == 1
		rec.Inhibition = inhib == 1
		rec.ConsensusDirection = consDir == 1
		rec.ConsensusStimulation = consStim == 1
		rec.ConsensusInhibition = consInhib == 1

		if sourcesJSON != "" {
			if err := json.Unmarshal([]byte(sourcesJSON), &rec.Sources); err != nil {
				return nil, fmt.Errorf("decoding sources list: %w", err)
			}
		}
		if refsJSON != "" {
			if err := json.Unmarshal([]byte(refsJSON), &rec.References); err != nil {
				return nil, fmt.Errorf("decoding references list: %w", err)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// DatasetInfo summarizes one indexed dataset.
type DatasetInfo struct {
	Name      types.Dataset
	Records   int
	FetchedAt time.Time
	Source    string
}

// Stats lists indexed datasets with record counts and fetch times.
func (s *Store) Stats(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, records, fetched_at, source FROM datasets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var infos []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var name string
		var fetchedAt, source sql.NullString
		var records sql.NullInt64

		if err := rows.Scan(&name, &records, &fetchedAt, &source); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}

		info.Name = types.Dataset(name)
		info.Records = int(records.Int64)
		info.Source = source.String
		if fetchedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, fetchedAt.String); err == nil {
				info.FetchedAt = t
			}
		}

		infos = append(infos, info)
	}

	return infos, rows.Err()
}
