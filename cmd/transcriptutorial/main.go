// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transcriptutorial CLI.
// See docs/ARCHITECTURE.md § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asumann/transcriptutorial/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the transcriptutorial CLI.
var rootCmd = &cobra.Command{
	Use:   "transcriptutorial",
	Short: "Signed causal network preparation for CARNIVAL",
	Long: `transcriptutorial prepares the inputs of CARNIVAL-style causal network
optimization. It fetches curated interaction tables from OmniPath, distills
them into signed networks, stages transcription factor activity scores as
solver measurements, assembles self-contained solver jobs, runs the
containerized solver, and parses the optimized networks it returns.

Each pipeline stage is a subcommand: fetch, network, measurements, stage,
solve, results, and store. Stages communicate through files, so any stage
can be rerun in isolation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./transcriptutorial.yaml or ~/.config/transcriptutorial/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transcriptutorial")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transcriptutorial"))
		}
	}

	viper.SetEnvPrefix("TRANSCRIPTUTORIAL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
