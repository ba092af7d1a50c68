// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Sign values carried by a causal edge.
const (
	SignActivating = 1
	SignInhibiting = -1
)

// SignedEdge is one causal interaction in solver-ready form: an upstream
// node, a sign, and a downstream node. The struct is comparable, so an edge
// set can be deduplicated with a map keyed on the full triple; two edges
// between the same pair of nodes with opposite signs are distinct.
type SignedEdge struct {
	// Source is the upstream node identifier.
	Source string `json:"source" yaml:"source"`

	// Sign is SignActivating or SignInhibiting.
	Sign int `json:"interaction" yaml:"interaction"`

	// Target is the downstream node identifier.
	Target string `json:"target" yaml:"target"`
}

// String renders the edge in arrow form, e.g. "MAP2K1 -(+1)-> MAPK1".
func (e SignedEdge) String() string {
	return fmt.Sprintf("%s -(%+d)-> %s", e.Source, e.Sign, e.Target)
}
