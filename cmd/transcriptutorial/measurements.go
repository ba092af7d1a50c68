// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/activity"
	"github.com/asumann/transcriptutorial/internal/network"
)

var measurementsCmd = &cobra.Command{
	Use:   "measurements <scores-file>",
	Short: "Stage regulator activity scores as solver measurements",
	Long: `Measurements reads a per-regulator activity table (the decoupleR-style
output of an enrichment run), keeps the top regulators by absolute score,
optionally standardizes the scores, and writes the solver's measurement
table under measurements/.

Column names are mapped from the header; defaults follow the decoupleR
convention (source, condition, score, p_value). Tables holding several
conditions need --condition. With --network, regulators absent from the
network are dropped before staging.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeasurements,
}

func init() {
	measurementsCmd.Flags().String("measurements-dir", "measurements", "directory measurement tables are written to")
	measurementsCmd.Flags().String("name", "", "artifact name (default: condition, or the input file name)")
	measurementsCmd.Flags().String("condition", "", "condition to stage when the table holds several")
	measurementsCmd.Flags().Int("top", 50, "regulators kept, ranked by absolute score (0 keeps everything)")
	measurementsCmd.Flags().Bool("z-scale", false, "standardize retained scores to zero mean and unit variance")
	measurementsCmd.Flags().String("network", "", "network table; regulators outside it are dropped")
	measurementsCmd.Flags().String("source-col", "", "column holding the regulator name (default source)")
	measurementsCmd.Flags().String("score-col", "", "column holding the activity score (default score)")
	measurementsCmd.Flags().String("condition-col", "", "column holding the condition (default condition)")
	measurementsCmd.Flags().String("pvalue-col", "", "column holding the p-value (default p_value)")

	rootCmd.AddCommand(measurementsCmd)
}

func runMeasurements(cmd *cobra.Command, args []string) error {
	scoresPath := args[0]
	condition, _ := cmd.Flags().GetString("condition")

	cols := activity.DefaultColumns()
	if v, _ := cmd.Flags().GetString("source-col"); v != "" {
		cols.Source = v
	}
	if v, _ := cmd.Flags().GetString("score-col"); v != "" {
		cols.Score = v
	}
	if v, _ := cmd.Flags().GetString("condition-col"); v != "" {
		cols.Condition = v
	}
	if v, _ := cmd.Flags().GetString("pvalue-col"); v != "" {
		cols.PValue = v
	}

	scores, err := activity.ReadScores(scoresPath, cols, condition)
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	scores = activity.SelectTop(scores, top)

	if zScale, _ := cmd.Flags().GetBool("z-scale"); zScale {
		activity.ZScale(scores)
	}

	if networkPath, _ := cmd.Flags().GetString("network"); networkPath != "" {
		edges, err := network.ReadFile(networkPath)
		if err != nil {
			return err
		}
		kept, dropped := activity.MatchNetwork(scores, network.NodeSet(edges))
		if len(dropped) > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d regulators outside the network: %s\n",
				len(dropped), strings.Join(dropped, ", "))
		}
		scores = kept
	}
	if len(scores) == 0 {
		return fmt.Errorf("no measurements left to stage")
	}

	activity.FormatStats(activity.Summarize(scores), os.Stdout)

	measurementsDir, _ := cmd.Flags().GetString("measurements-dir")
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = condition
	}
	if name == "" {
		base := filepath.Base(scoresPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	outPath := filepath.Join(measurementsDir, name+".tsv")
	if err := activity.WriteFile(outPath, scores); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s (%d measurements)\n", outPath, len(scores))
	return nil
}
