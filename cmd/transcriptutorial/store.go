// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/store"
	"github.com/asumann/transcriptutorial/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the interaction store (ingest, query, export)",
	Long: `Store manages a local SQLite cache of fetched interaction snapshots.
Use subcommands to ingest snapshots, query them, or export query results.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest interaction snapshots into the store",
	Long: `Ingest reads dataset snapshots from data/interactions/, loads them
into a SQLite database with FTS5 indexing over gene symbols and curation
sources, and records each snapshot's modification time. Unchanged
snapshots are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	interactionsDir, _ := cmd.Flags().GetString("interactions-dir")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), interactionsDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d snapshot(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [gene]",
	Short: "Query the interaction store",
	Long: `Query searches stored interactions by gene symbol (either endpoint,
FTS5 match), dataset, minimum curation effort, or consensus flags.
Filters combine.

With --stats, per-dataset record counts are printed instead.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		return formatStoreStats(s)
	}

	opts := storeQueryOpts(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a gene, --dataset, --min-curation, --signed, or --directed")
	}

	records, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(records, jsonOutput)
}

func formatQueryOutput(records []types.Interaction, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-12s  %-12s  %-9s  %6s  %s\n",
		"Dataset", "Source", "Target", "Consensus", "Effort", "Sources")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range records {
		sources := strings.Join(r.Sources, ",")
		if len(sources) > 24 {
			sources = sources[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-12s  %-12s  %-9s  %6d  %s\n",
			r.Dataset, endpointLabel(r.SourceSymbol, r.Source),
			endpointLabel(r.TargetSymbol, r.Target),
			consensusLabel(r), r.CurationEffort, sources)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(records))
	return nil
}

func endpointLabel(symbol, id string) string {
	if symbol != "" {
		return symbol
	}
	return id
}

// consensusLabel compresses the three consensus flags into one cell.
func consensusLabel(r types.Interaction) string {
	switch {
	case r.ConsensusStimulation && r.ConsensusInhibition:
		return "both"
	case r.ConsensusStimulation:
		return "stim"
	case r.ConsensusInhibition:
		return "inhib"
	case r.ConsensusDirection:
		return "directed"
	default:
		return "-"
	}
}

func formatStoreStats(s *store.Store) error {
	infos, err := s.Stats(context.Background())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("Store is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %8s  %-20s  %s\n", "Dataset", "Records", "Fetched", "Source")
	for _, info := range infos {
		fetched := ""
		if !info.FetchedAt.IsZero() {
			fetched = info.FetchedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(os.Stdout, "%-14s  %8d  %-20s  %s\n",
			info.Name, info.Records, fetched, info.Source)
	}
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored interactions to TSV or JSON",
	Long: `Export writes stored interactions (or a filtered subset) to
data/index/export.tsv or export.json. Supports the same filter flags as
query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := storeQueryOpts(cmd, args)

	var path string
	switch format {
	case "tsv", "":
		path, err = s.ExportTSV(context.Background(), opts)
	case "json":
		path, err = s.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use tsv or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return store.NewStore(types.StoreConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	})
}

func storeQueryOpts(cmd *cobra.Command, args []string) store.QueryOptions {
	gene, _ := cmd.Flags().GetString("gene")
	if gene == "" && len(args) > 0 {
		gene = strings.Join(args, " ")
	}

	dataset, _ := cmd.Flags().GetString("dataset")
	minCuration, _ := cmd.Flags().GetInt("min-curation")
	onlySigned, _ := cmd.Flags().GetBool("signed")
	onlyDirected, _ := cmd.Flags().GetBool("directed")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Gene:         gene,
		Dataset:      types.Dataset(dataset),
		MinCuration:  minCuration,
		OnlySigned:   onlySigned,
		OnlyDirected: onlyDirected,
		MaxResults:   limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("index-dir", "data/index", "directory holding the SQLite index")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Ingest flags.
	storeIngestCmd.Flags().String("interactions-dir", "data/interactions", "directory holding dataset snapshots")

	// Query flags.
	storeQueryCmd.Flags().String("gene", "", "gene symbol to search for (either endpoint)")
	storeQueryCmd.Flags().String("dataset", "", "filter by dataset")
	storeQueryCmd.Flags().Int("min-curation", 0, "minimum curation effort")
	storeQueryCmd.Flags().Bool("signed", false, "keep only records with a polarity consensus")
	storeQueryCmd.Flags().Bool("directed", false, "keep only records with a direction consensus")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("stats", false, "print per-dataset record counts")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "tsv", "export format: tsv or json")
	storeExportCmd.Flags().String("gene", "", "gene filter for partial export")
	storeExportCmd.Flags().String("dataset", "", "dataset filter for partial export")
	storeExportCmd.Flags().Int("min-curation", 0, "minimum curation effort for partial export")
	storeExportCmd.Flags().Bool("signed", false, "polarity consensus filter for partial export")
	storeExportCmd.Flags().Bool("directed", false, "direction consensus filter for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
