package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/interactions"
	"github.com/asumann/transcriptutorial/internal/secrets"
	"github.com/asumann/transcriptutorial/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "transcriptutorial/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [datasets...]",
	Short: "Snapshot interaction datasets from OmniPath",
	Long: `Fetch downloads curated interaction tables from the OmniPath web service
and snapshots them to data/interactions/ with a YAML sidecar per dataset.
Without arguments all known datasets are fetched: omnipath, pathwayextra,
kinaseextra, ligrecextra, dorothea, tf_target. Existing snapshots are
skipped unless --refresh.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("interactions-dir", "data/interactions", "directory snapshots are written to")
	fetchCmd.Flags().Int("organism", 9606, "NCBI taxonomy identifier")
	fetchCmd.Flags().String("license", "", "license tier: academic or commercial (empty: freely redistributable subset)")
	fetchCmd.Flags().String("password", "", "OmniPath password for restricted-license resources (default: .secrets/omnipath-password)")
	fetchCmd.Flags().String("from-dir", "", "read tables from a local directory instead of the web service")
	fetchCmd.Flags().Bool("refresh", false, "re-download datasets that already have snapshots")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	datasets := interactions.KnownDatasets()
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

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	interactionsDir, _ := cmd.Flags().GetString("interactions-dir")
	organism, _ := cmd.Flags().GetInt("organism")
	license, _ := cmd.Flags().GetString("license")
	password, _ := cmd.Flags().GetString("password")
	fromDir, _ := cmd.Flags().GetString("from-dir")
	refresh, _ := cmd.Flags().GetBool("refresh")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay:   delay,
		InteractionsDir: interactionsDir,
		Organism:        organism,
		License:         license,
	}

	var src interactions.Source
	if fromDir != "" {
		src = &interactions.FileSource{Dir: fromDir}
	} else {
		src = &interactions.WebSource{
			Password: secretDefault(secrets.KeyOmniPathPassword, password),
		}
	}

	if refresh {
		removeSnapshots(cfg.InteractionsDir, datasets)
	}

	result := interactions.FetchBatch(context.Background(), src, datasets, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d dataset(s) failed to fetch", result.Failed)
	}
	return nil
}

// removeSnapshots drops existing tables and sidecars so the batch fetch
// downloads them again.
func removeSnapshots(dir string, datasets []types.Dataset) {
	for _, d := range datasets {
		os.Remove(filepath.Join(dir, string(d)+".tsv"))
		os.Remove(filepath.Join(dir, string(d)+".yaml"))
	}
}
