// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/interactions"
	"github.com/asumann/transcriptutorial/internal/network"
	"github.com/asumann/transcriptutorial/internal/store"
	"github.com/asumann/transcriptutorial/pkg/types"
)

var networkCmd = &cobra.Command{
	Use:   "network [datasets...]",
	Short: "Build a signed network from interaction snapshots",
	Long: `Network reduces curated interaction records to a signed edge list:
records with a direction consensus and exactly one polarity consensus
become (source, sign, target) edges, duplicates collapse, and complex
identifiers are rewritten for the solver. The edge list is written as a
tab-separated table under networks/.

Records come from dataset snapshots in data/interactions/ by default, or
from the SQLite interaction store with --from-store. Without arguments
the omnipath dataset is used.`,
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().String("interactions-dir", "data/interactions", "directory holding dataset snapshots")
	networkCmd.Flags().String("index-dir", "data/index", "directory holding the SQLite index (with --from-store)")
	networkCmd.Flags().Bool("from-store", false, "read records from the interaction store instead of snapshots")
	networkCmd.Flags().String("networks-dir", "networks", "directory built networks are written to")
	networkCmd.Flags().String("name", "", "artifact name (default: dataset name, or combined for several)")
	networkCmd.Flags().Int("min-curation", 0, "drop records below this curation effort (0 keeps everything)")
	networkCmd.Flags().Int("top-hubs", 5, "number of highest-degree nodes in the summary")
	networkCmd.Flags().Bool("json", false, "print the summary as JSON")
	networkCmd.Flags().Bool("export-json", false, "also export the edge list as JSON")

	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	datasets := []types.Dataset{types.DatasetOmniPath}
	if len(args) > 0 {
		datasets = datasets[:0]
		for _, name := range args {
			d, err := interactions.ParseDataset(name)
			if err != nil {
				return err
			}
			datasets = append(datasets, d)
		}
	}

	minCuration, _ := cmd.Flags().GetInt("min-curation")
	fromStore, _ := cmd.Flags().GetBool("from-store")

	records, err := loadRecords(cmd, datasets, fromStore)
	if err != nil {
		return err
	}

	cfg := types.NetworkConfig{MinCurationEffort: minCuration}
	for _, d := range datasets {
		cfg.Datasets = append(cfg.Datasets, string(d))
	}

	out := network.Build(records, cfg)
	st := out.Stats
	fmt.Fprintf(os.Stdout, "Build summary: %d records in, %d edges out (%d undirected, %d unsigned, %d contradictory, %d duplicate, %d incomplete, %d low effort)\n",
		st.Input, st.Edges, st.Undirected, st.Unsigned, st.Contradictory,
		st.Duplicates, st.Incomplete, st.LowEffort)

	networksDir, _ := cmd.Flags().GetString("networks-dir")
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = "combined"
		if len(datasets) == 1 {
			name = string(datasets[0])
		}
	}

	tablePath := filepath.Join(networksDir, name+".tsv")
	if err := network.WriteFile(tablePath, out.Edges); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", tablePath)

	if exportJSON, _ := cmd.Flags().GetBool("export-json"); exportJSON {
		jsonPath := filepath.Join(networksDir, name+".json")
		if err := network.WriteJSONFile(jsonPath, out.Edges); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", jsonPath)
	}

	topHubs, _ := cmd.Flags().GetInt("top-hubs")
	summary := network.Summarize(out.Edges, topHubs)
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return network.FormatJSON(summary, os.Stdout)
	}
	network.FormatTable(summary, os.Stdout)
	return nil
}

// loadRecords gathers interaction records for the requested datasets, in
// request order, from snapshots or from the store.
func loadRecords(cmd *cobra.Command, datasets []types.Dataset, fromStore bool) ([]types.Interaction, error) {
	if fromStore {
		indexDir, _ := cmd.Flags().GetString("index-dir")
		s, err := store.NewStore(types.StoreConfig{IndexDir: indexDir})
		if err != nil {
			return nil, err
		}
		defer s.Close()

		var records []types.Interaction
		for _, d := range datasets {
			recs, err := s.LoadDataset(context.Background(), d)
			if err != nil {
				return nil, err
			}
			records = append(records, recs...)
		}
		return records, nil
	}

	interactionsDir, _ := cmd.Flags().GetString("interactions-dir")
	var records []types.Interaction
	for _, d := range datasets {
		recs, stats, err := interactions.LoadSnapshot(interactionsDir, d)
		if err != nil {
			return nil, err
		}
		if stats.Dropped > 0 {
			fmt.Fprintf(os.Stderr, "warning: %s: %d malformed rows dropped\n", d, stats.Dropped)
		}
		records = append(records, recs...)
	}
	return records, nil
}
