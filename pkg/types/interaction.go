// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the transcriptutorial
// pipeline: interaction records fetched from OmniPath, signed network edges,
// regulator activity scores, CARNIVAL result rows, and per-stage
// configuration.
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Dataset names an OmniPath interaction collection that can be fetched and
// cached independently. The web service exposes each collection under the
// same endpoint, selected by the "datasets" query parameter.
type Dataset string

const (
	DatasetOmniPath     Dataset = "omnipath"
	DatasetPathwayExtra Dataset = "pathwayextra"
	DatasetKinaseExtra  Dataset = "kinaseextra"
	DatasetLigRecExtra  Dataset = "ligrecextra"
	DatasetDorothea     Dataset = "dorothea"
	DatasetTFTarget     Dataset = "tf_target"
)

// Interaction is one curated record from an interaction snapshot. Flags are
// reported per resource and as a cross-resource consensus; the network stage
// consumes only the consensus columns.
type Interaction struct {
	// Source is the upstream molecule identifier (UniProt accession, or a
	// complex identifier such as "COMPLEX:P27986_P42336").
	Source string `json:"source" yaml:"source"`

	// Target is the downstream molecule identifier.
	Target string `json:"target" yaml:"target"`

	// SourceSymbol is the gene symbol for Source, when the snapshot was
	// fetched with genesymbols enabled.
	SourceSymbol string `json:"source_genesymbol,omitempty" yaml:"source_genesymbol,omitempty"`

	// TargetSymbol is the gene symbol for Target.
	TargetSymbol string `json:"target_genesymbol,omitempty" yaml:"target_genesymbol,omitempty"`

	// Directed reports whether at least one resource curates the record as
	// a directed interaction.
	Directed bool `json:"is_directed" yaml:"is_directed"`

	// Stimulation reports whether at least one resource curates the record
	// as stimulatory.
	Stimulation bool `json:"is_stimulation" yaml:"is_stimulation"`

	// Inhibition reports whether at least one resource curates the record
	// as inhibitory.
	Inhibition bool `json:"is_inhibition" yaml:"is_inhibition"`

	// ConsensusDirection is set when the majority of curating resources
	// agree the record is directed.
	ConsensusDirection bool `json:"consensus_direction" yaml:"consensus_direction"`

	// ConsensusStimulation is set when the majority of curating resources
	// agree the record is stimulatory.
	ConsensusStimulation bool `json:"consensus_stimulation" yaml:"consensus_stimulation"`

	// ConsensusInhibition is set when the majority of curating resources
	// agree the record is inhibitory.
	ConsensusInhibition bool `json:"consensus_inhibition" yaml:"consensus_inhibition"`

	// CurationEffort counts resource-reference pairs backing the record.
	CurationEffort int `json:"curation_effort" yaml:"curation_effort"`

	// Sources lists the curation resources reporting the record.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// References lists PubMed identifiers backing the record.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`

	// Dataset names the collection the record was fetched from.
	Dataset Dataset `json:"dataset" yaml:"dataset"`
}
