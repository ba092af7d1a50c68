// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package network

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/asumann/transcriptutorial/pkg/types"
)

// Hub is a node ranked by total degree.
type Hub struct {
	Node   string `json:"node"`
	Degree int    `json:"degree"`
}

// Summary aggregates topology counts for a built network.
type Summary struct {
	Nodes      int   `json:"nodes"`
	Edges      int   `json:"edges"`
	Activating int   `json:"activating"`
	Inhibiting int   `json:"inhibiting"`
	Hubs       []Hub `json:"hubs,omitempty"`
}

// Summarize computes topology counts and the topHubs highest-degree nodes.
// Hubs tie-break alphabetically so the ranking is stable.
func Summarize(edges []types.SignedEdge, topHubs int) Summary {
	degree := make(map[string]int)
	s := Summary{Edges: len(edges)}

	for _, e := range edges {
		degree[e.Source]++
		degree[e.Target]++
		if e.Sign == types.SignActivating {
			s.Activating++
		} else {
			s.Inhibiting++
		}
	}
	s.Nodes = len(degree)

	if topHubs <= 0 {
		return s
	}
	hubs := make([]Hub, 0, len(degree))
	for node, d := range degree {
		hubs = append(hubs, Hub{Node: node, Degree: d})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Node < hubs[j].Node
	})
	if len(hubs) > topHubs {
		hubs = hubs[:topHubs]
	}
	s.Hubs = hubs
	return s
}

// NodeSet collects the distinct node labels appearing in edges.
func NodeSet(edges []types.SignedEdge) map[string]struct{} {
	nodes := make(map[string]struct{}, 2*len(edges))
	for _, e := range edges {
		nodes[e.Source] = struct{}{}
		nodes[e.Target] = struct{}{}
	}
	return nodes
}

// FormatTable writes the summary as a human-readable table to w.
func FormatTable(s Summary, w io.Writer) {
	fmt.Fprintf(w, "Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "Edges: %d (%d activating, %d inhibiting)\n",
		s.Edges, s.Activating, s.Inhibiting)

	if len(s.Hubs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-4s  %-20s  %s\n", "Rank", "Node", "Degree")
	fmt.Fprintln(w, strings.Repeat("-", 34))
	for i, h := range s.Hubs {
		fmt.Fprintf(w, "%-4d  %-20s  %d\n", i+1, h.Node, h.Degree)
	}
}

// FormatJSON writes the summary as indented JSON to w.
func FormatJSON(s Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
