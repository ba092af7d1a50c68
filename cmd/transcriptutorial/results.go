// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/carnival"
)

var resultsCmd = &cobra.Command{
	Use:   "results [job-dir]",
	Short: "Parse and summarize solver results",
	Long: `Results parses the optimized network a solver run left in
<job>/results/ (the weighted edge table and the node activity table),
prints a summary, and optionally exports the parsed results. Without an
argument the most recently staged job is used.

Edges below --min-weight are dropped before summarizing; weights are the
percentage of solutions containing the edge.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().String("jobs-dir", "carnival/jobs", "directory jobs are staged under")
	resultsCmd.Flags().Float64("min-weight", 0, "drop edges below this solution share (0 keeps everything)")
	resultsCmd.Flags().Int("top", 5, "nodes listed in the activity rankings")
	resultsCmd.Flags().Bool("json", false, "print the parsed results as JSON")
	resultsCmd.Flags().String("export", "", "write results.yaml or results.json into the job directory: yaml or json")

	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	jobsDir, _ := cmd.Flags().GetString("jobs-dir")
	jobDir, err := resolveJobDir(jobsDir, args)
	if err != nil {
		return err
	}

	res, err := carnival.LoadResults(jobDir)
	if err != nil {
		return err
	}

	minWeight, _ := cmd.Flags().GetFloat64("min-weight")
	res.Edges = carnival.FilterEdges(res.Edges, minWeight)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		top, _ := cmd.Flags().GetInt("top")
		carnival.FormatTable(carnival.Summarize(res, top), os.Stdout)
	}

	format, _ := cmd.Flags().GetString("export")
	switch format {
	case "":
	case "yaml":
		path := filepath.Join(jobDir, "results.yaml")
		if err := carnival.ExportYAML(res, path); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	case "json":
		path := filepath.Join(jobDir, "results.json")
		if err := carnival.ExportJSON(res, path); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}
