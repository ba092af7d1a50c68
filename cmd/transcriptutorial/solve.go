// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asumann/transcriptutorial/internal/carnival"
	"github.com/asumann/transcriptutorial/internal/container"
)

var solveCmd = &cobra.Command{
	Use:   "solve [job-dir]",
	Short: "Run the containerized solver on a staged job",
	Long: `Solve bind-mounts a staged job directory into the solver container
image and runs it. The solver's output streams through, and its result
tables land in <job>/results/. Without an argument the most recently
staged job is run.

The container runtime is detected automatically: docker first, then
podman. The image comes from --image or the carnival.image config key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().String("image", "", "solver container image (default: carnival.image config key)")
	solveCmd.Flags().String("jobs-dir", "carnival/jobs", "directory jobs are staged under")
	solveCmd.Flags().Bool("list", false, "list staged jobs instead of running")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	jobsDir, _ := cmd.Flags().GetString("jobs-dir")

	if list, _ := cmd.Flags().GetBool("list"); list {
		return listJobs(jobsDir)
	}

	jobDir, err := resolveJobDir(jobsDir, args)
	if err != nil {
		return err
	}

	image, _ := cmd.Flags().GetString("image")
	if image == "" {
		image = viper.GetString("carnival.image")
	}

	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	return carnival.RunJob(rt, jobDir, image, os.Stdout)
}

// resolveJobDir picks the job to run: the argument if given, the most
// recently staged job otherwise.
func resolveJobDir(jobsDir string, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	names, err := carnival.ListJobs(jobsDir)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no staged jobs in %s: run stage first", jobsDir)
	}
	return filepath.Join(jobsDir, names[0]), nil
}

func listJobs(jobsDir string) error {
	names, err := carnival.ListJobs(jobsDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No staged jobs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-20s  %8s  %13s  %8s\n",
		"Job", "Created", "Edges", "Measurements", "Inputs")
	for _, name := range names {
		m, err := carnival.LoadManifest(filepath.Join(jobsDir, name))
		if err != nil {
			continue
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-20s  %8d  %13d  %8d\n",
			name, m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.NetworkEdges, m.Measurements, m.Perturbations)
	}
	return nil
}
