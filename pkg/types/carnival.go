// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Node types reported in CARNIVAL node attribute tables.
const (
	NodeTypePerturbation = "S"
	NodeTypeMeasured     = "T"
	NodeTypeIntermediate = ""
)

// CarnivalEdge is one edge of an optimized network, aggregated across the
// solution pool. Weight is the percentage of solutions that contain the
// edge, in [0, 100].
type CarnivalEdge struct {
	// Source is the upstream node identifier.
	Source string `json:"source" yaml:"source"`

	// Sign is SignActivating or SignInhibiting.
	Sign int `json:"sign" yaml:"sign"`

	// Target is the downstream node identifier.
	Target string `json:"target" yaml:"target"`

	// Weight is the share of solutions containing the edge, as a
	// percentage.
	Weight float64 `json:"weight" yaml:"weight"`
}

// NodeActivity summarizes a node's inferred activity across the solution
// pool. The three activity shares sum to 100 for nodes present in every
// solution.
type NodeActivity struct {
	// Node is the node identifier.
	Node string `json:"node" yaml:"node"`

	// ZeroAct is the percentage of solutions where the node is inactive.
	ZeroAct float64 `json:"zero_act" yaml:"zero_act"`

	// UpAct is the percentage of solutions where the node is up-regulated.
	UpAct float64 `json:"up_act" yaml:"up_act"`

	// DownAct is the percentage of solutions where the node is
	// down-regulated.
	DownAct float64 `json:"down_act" yaml:"down_act"`

	// AvgAct is the mean activity over solutions, in [-100, 100].
	AvgAct float64 `json:"avg_act" yaml:"avg_act"`

	// NodeType marks perturbation ("S") and measured ("T") nodes; empty
	// for intermediates.
	NodeType string `json:"node_type" yaml:"node_type"`
}
