// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package network distills curated interaction records into a signed,
// directed causal network suitable for ILP-based inference.
//
// See docs/ARCHITECTURE.md § Network.
package network

import (
	"strings"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// BuildStats counts what happened to every input record. Each record is
// either kept as an edge or dropped for exactly one reason, tested in field
// order.
type BuildStats struct {
	// Input is the number of records examined.
	Input int

	// Incomplete counts records missing a source or target identifier.
	Incomplete int

	// LowEffort counts records below the configured curation effort floor.
	LowEffort int

	// Undirected counts records without a direction consensus.
	Undirected int

	// Unsigned counts directed records with neither a stimulation nor an
	// inhibition consensus.
	Unsigned int

	// Contradictory counts records whose stimulation and inhibition
	// consensus disagree about the sign.
	Contradictory int

	// Duplicates counts records that repeat an already-emitted triple.
	Duplicates int

	// Edges is the number of edges kept.
	Edges int
}

// Dropped returns the total number of records that did not become edges.
func (s BuildStats) Dropped() int {
	return s.Incomplete + s.LowEffort + s.Undirected + s.Unsigned + s.Contradictory + s.Duplicates
}

// BuildOutput holds the built edge list and per-reason drop counts.
type BuildOutput struct {
	Edges []types.SignedEdge
	Stats BuildStats
}

// Build reduces curated interaction records to signed edges. A record
// survives when it has a direction consensus, carries exactly one polarity,
// and its two consensus columns agree on the sign after remapping. Node
// labels are made safe for downstream table readers, and repeated triples
// are dropped; two edges between the same pair with opposite signs are both
// kept. Edge order follows first occurrence in the input, so identical
// inputs produce identical outputs.
func Build(records []types.Interaction, cfg types.NetworkConfig) BuildOutput {
	seen := make(map[types.SignedEdge]struct{}, len(records))
	var edges []types.SignedEdge
	stats := BuildStats{Input: len(records)}

	for _, rec := range records {
		src := nodeLabel(rec.SourceSymbol, rec.Source)
		tgt := nodeLabel(rec.TargetSymbol, rec.Target)
		if src == "" || tgt == "" {
			stats.Incomplete++
			continue
		}
		if cfg.MinCurationEffort > 0 && rec.CurationEffort < cfg.MinCurationEffort {
			stats.LowEffort++
			continue
		}
		if !rec.ConsensusDirection {
			stats.Undirected++
			continue
		}
		if !rec.ConsensusStimulation && !rec.ConsensusInhibition {
			stats.Unsigned++
			continue
		}

		stim, inhib := candidateSigns(rec)
		if stim != inhib {
			stats.Contradictory++
			continue
		}

		edge := types.SignedEdge{Source: SafeID(src), Sign: stim, Target: SafeID(tgt)}
		if _, ok := seen[edge]; ok {
			stats.Duplicates++
			continue
		}
		seen[edge] = struct{}{}
		edges = append(edges, edge)
	}

	stats.Edges = len(edges)
	return BuildOutput{Edges: edges, Stats: stats}
}

// candidateSigns remaps the two consensus columns to sign votes. Each
// column votes from its own polarity: a set stimulation consensus votes +1
// and a clear one votes -1, while a set inhibition consensus votes -1 and a
// clear one votes +1. The votes coincide only when exactly one consensus is
// set; both-set records split the vote and are dropped as contradictory.
func candidateSigns(rec types.Interaction) (stim, inhib int) {
	stim = types.SignInhibiting
	if rec.ConsensusStimulation {
		stim = types.SignActivating
	}
	inhib = types.SignActivating
	if rec.ConsensusInhibition {
		inhib = types.SignInhibiting
	}
	return stim, inhib
}

// nodeLabel picks the node label for one endpoint: the gene symbol when the
// snapshot carries one, the molecule identifier otherwise.
func nodeLabel(symbol, id string) string {
	if symbol != "" {
		return symbol
	}
	return id
}

// SafeID rewrites label characters that collide with downstream table
// conventions. Complex identifiers such as "COMPLEX:P27986_P42336" contain
// colons, which solver-side readers treat as separators.
func SafeID(id string) string {
	return strings.ReplaceAll(id, ":", "_")
}
