package network

import (
	"reflect"
	"testing"

	"github.com/asumann/transcriptutorial/pkg/types"
)

func rec(source, target string, direction, stim, inhib bool) types.Interaction {
	return types.Interaction{
		Source:               source,
		Target:               target,
		ConsensusDirection:   direction,
		ConsensusStimulation: stim,
		ConsensusInhibition:  inhib,
	}
}

// --- Sign mapping ---

func TestBuildSignMapping(t *testing.T) {
	tests := []struct {
		name     string
		record   types.Interaction
		wantSign int
		dropped  bool
	}{
		{
			name:     "stimulation consensus becomes +1",
			record:   rec("MAP2K1", "MAPK1", true, true, false),
			wantSign: 1,
		},
		{
			name:     "inhibition consensus becomes -1",
			record:   rec("TP53", "MDM2", true, false, true),
			wantSign: -1,
		},
		{
			name:    "both consensus flags set is contradictory",
			record:  rec("A", "B", true, true, true),
			dropped: true,
		},
		{
			name:    "neither consensus flag set is unsigned",
			record:  rec("A", "B", true, false, false),
			dropped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Build([]types.Interaction{tt.record}, types.NetworkConfig{})
			if tt.dropped {
				if len(out.Edges) != 0 {
					t.Fatalf("got %d edges, want record dropped", len(out.Edges))
				}
				return
			}
			if len(out.Edges) != 1 {
				t.Fatalf("got %d edges, want 1", len(out.Edges))
			}
			if out.Edges[0].Sign != tt.wantSign {
				t.Errorf("sign = %d, want %d", out.Edges[0].Sign, tt.wantSign)
			}
		})
	}
}

func TestBuildDropReasons(t *testing.T) {
	records := []types.Interaction{
		rec("A", "B", false, true, false), // no direction consensus
		rec("C", "D", true, false, false), // unsigned
		rec("E", "F", true, true, true),   // contradictory
		rec("", "G", true, true, false),   // missing source
		rec("H", "I", true, true, false),  // kept
	}
	out := Build(records, types.NetworkConfig{})

	want := BuildStats{
		Input:         5,
		Incomplete:    1,
		Undirected:    1,
		Unsigned:      1,
		Contradictory: 1,
		Edges:         1,
	}
	if out.Stats != want {
		t.Errorf("stats = %+v, want %+v", out.Stats, want)
	}
	if got := out.Stats.Dropped(); got != 4 {
		t.Errorf("Dropped() = %d, want 4", got)
	}
	if out.Stats.Input != out.Stats.Edges+out.Stats.Dropped() {
		t.Errorf("stats do not partition the input: %+v", out.Stats)
	}
}

// --- Opposite signs between the same pair ---

func TestBuildKeepsOppositeSignsBetweenSamePair(t *testing.T) {
	records := []types.Interaction{
		rec("X", "Y", true, true, false),
		rec("X", "Y", true, false, true),
	}
	out := Build(records, types.NetworkConfig{})

	want := []types.SignedEdge{
		{Source: "X", Sign: 1, Target: "Y"},
		{Source: "X", Sign: -1, Target: "Y"},
	}
	if !reflect.DeepEqual(out.Edges, want) {
		t.Errorf("edges = %v, want %v", out.Edges, want)
	}
	if out.Stats.Duplicates != 0 {
		t.Errorf("Duplicates = %d, want 0: opposite signs are distinct triples", out.Stats.Duplicates)
	}
}

// --- Deduplication ---

func TestBuildDropsRepeatedTriples(t *testing.T) {
	records := []types.Interaction{
		rec("A", "B", true, true, false),
		rec("A", "B", true, true, false),
		rec("A", "B", true, true, false),
	}
	out := Build(records, types.NetworkConfig{})

	if len(out.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(out.Edges))
	}
	if out.Stats.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", out.Stats.Duplicates)
	}
}

func TestBuildDedupAfterLabelRewrite(t *testing.T) {
	// The colon rewrite runs before dedup, so labels that collide after
	// rewriting collapse to one edge.
	records := []types.Interaction{
		rec("COMPLEX:P27986_P42336", "AKT1", true, true, false),
		rec("COMPLEX_P27986_P42336", "AKT1", true, true, false),
	}
	out := Build(records, types.NetworkConfig{})

	if len(out.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(out.Edges))
	}
	if out.Edges[0].Source != "COMPLEX_P27986_P42336" {
		t.Errorf("source = %q, want rewritten complex label", out.Edges[0].Source)
	}
	if out.Stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", out.Stats.Duplicates)
	}
}

// --- Labels ---

func TestBuildPrefersGeneSymbols(t *testing.T) {
	records := []types.Interaction{
		{
			Source: "P28482", Target: "P04637",
			SourceSymbol: "MAPK1", TargetSymbol: "TP53",
			ConsensusDirection: true, ConsensusStimulation: true,
		},
		{
			Source: "Q00987", Target: "P04637",
			ConsensusDirection: true, ConsensusInhibition: true,
		},
	}
	out := Build(records, types.NetworkConfig{})

	want := []types.SignedEdge{
		{Source: "MAPK1", Sign: 1, Target: "TP53"},
		{Source: "Q00987", Sign: -1, Target: "P04637"},
	}
	if !reflect.DeepEqual(out.Edges, want) {
		t.Errorf("edges = %v, want %v", out.Edges, want)
	}
}

func TestSafeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MAPK1", "MAPK1"},
		{"COMPLEX:P27986_P42336", "COMPLEX_P27986_P42336"},
		{"a:b:c", "a_b_c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeID(tt.in); got != tt.want {
			t.Errorf("SafeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Curation effort floor ---

func TestBuildMinCurationEffort(t *testing.T) {
	records := []types.Interaction{
		{Source: "A", Target: "B", CurationEffort: 1, ConsensusDirection: true, ConsensusStimulation: true},
		{Source: "C", Target: "D", CurationEffort: 8, ConsensusDirection: true, ConsensusStimulation: true},
	}
	out := Build(records, types.NetworkConfig{MinCurationEffort: 5})

	if len(out.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(out.Edges))
	}
	if out.Edges[0].Source != "C" {
		t.Errorf("kept edge source = %q, want %q", out.Edges[0].Source, "C")
	}
	if out.Stats.LowEffort != 1 {
		t.Errorf("LowEffort = %d, want 1", out.Stats.LowEffort)
	}
}

// --- Determinism ---

func TestBuildPreservesFirstOccurrenceOrder(t *testing.T) {
	records := []types.Interaction{
		rec("C", "D", true, false, true),
		rec("A", "B", true, true, false),
		rec("C", "D", true, false, true), // repeat of the first
		rec("E", "F", true, true, false),
	}
	out := Build(records, types.NetworkConfig{})

	want := []types.SignedEdge{
		{Source: "C", Sign: -1, Target: "D"},
		{Source: "A", Sign: 1, Target: "B"},
		{Source: "E", Sign: 1, Target: "F"},
	}
	if !reflect.DeepEqual(out.Edges, want) {
		t.Errorf("edges = %v, want %v", out.Edges, want)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	records := []types.Interaction{
		rec("A", "B", true, true, false),
		rec("B", "C", true, false, true),
		rec("A", "B", true, false, true),
		rec("C", "A", true, true, false),
	}
	first := Build(records, types.NetworkConfig{})
	second := Build(records, types.NetworkConfig{})

	if !reflect.DeepEqual(first.Edges, second.Edges) {
		t.Errorf("two builds of the same input differ: %v vs %v", first.Edges, second.Edges)
	}
	if first.Stats != second.Stats {
		t.Errorf("two builds of the same input differ in stats: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	out := Build(nil, types.NetworkConfig{})
	if len(out.Edges) != 0 {
		t.Errorf("got %d edges, want 0", len(out.Edges))
	}
	if out.Stats != (BuildStats{}) {
		t.Errorf("stats = %+v, want zero", out.Stats)
	}
}
