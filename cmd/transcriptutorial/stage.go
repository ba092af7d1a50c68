// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asumann/transcriptutorial/internal/activity"
	"github.com/asumann/transcriptutorial/internal/carnival"
	"github.com/asumann/transcriptutorial/internal/network"
	"github.com/asumann/transcriptutorial/pkg/types"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Assemble a solver job from network and measurement artifacts",
	Long: `Stage assembles one self-contained solver job directory under
carnival/jobs/: the network table, the measurement table, the perturbation
inputs, and a manifest recording the job identity and solver options.

Perturbation targets are given as repeated --perturb NODE=1 or NODE=-1
flags, or as an existing inputs table via --inputs-file. Measurements
outside the network are dropped with a warning; a perturbation outside the
network is an error. Without perturbations the solver infers the upstream
inputs itself.`,
	RunE: runStage,
}

func init() {
	stageCmd.Flags().String("network", "", "network table to stage (required)")
	stageCmd.Flags().String("measurements", "", "measurement table to stage (required)")
	stageCmd.Flags().StringArray("perturb", nil, "perturbation target NODE=1 or NODE=-1 (repeatable)")
	stageCmd.Flags().String("inputs-file", "", "read perturbation targets from an inputs table")
	stageCmd.Flags().String("jobs-dir", "carnival/jobs", "directory jobs are staged under")
	stageCmd.Flags().String("solver", "", "ILP backend: lpSolve, cplex, or cbc (default lpSolve)")
	stageCmd.Flags().Duration("time-limit", 0, "solver time limit (default 1h)")
	stageCmd.Flags().Float64("mip-gap", 0, "relative optimality gap the solver may stop at (default 0.05)")
	stageCmd.Flags().Float64("beta", 0, "node penalty weight in the objective (default 0.2)")
	stageCmd.MarkFlagRequired("network")
	stageCmd.MarkFlagRequired("measurements")

	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	networkPath, _ := cmd.Flags().GetString("network")
	measurementsPath, _ := cmd.Flags().GetString("measurements")

	edges, err := network.ReadFile(networkPath)
	if err != nil {
		return err
	}
	measurements, err := activity.ReadFile(measurementsPath)
	if err != nil {
		return err
	}
	perturbations, err := stagePerturbations(cmd)
	if err != nil {
		return err
	}

	cfg := stageConfig(cmd)
	_, jobDir, err := carnival.StageJob(edges, measurements, perturbations, cfg, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "run it with: transcriptutorial solve %s\n", jobDir)
	return nil
}

func stagePerturbations(cmd *cobra.Command) ([]carnival.Perturbation, error) {
	values, _ := cmd.Flags().GetStringArray("perturb")
	inputsFile, _ := cmd.Flags().GetString("inputs-file")

	if len(values) > 0 && inputsFile != "" {
		return nil, fmt.Errorf("use either --perturb or --inputs-file, not both")
	}
	if inputsFile != "" {
		return carnival.ReadInputsFile(inputsFile)
	}
	return carnival.ParsePerturbations(values)
}

func stageConfig(cmd *cobra.Command) types.CarnivalConfig {
	jobsDir, _ := cmd.Flags().GetString("jobs-dir")
	solver, _ := cmd.Flags().GetString("solver")
	timeLimit, _ := cmd.Flags().GetDuration("time-limit")
	mipGap, _ := cmd.Flags().GetFloat64("mip-gap")
	beta, _ := cmd.Flags().GetFloat64("beta")

	return types.CarnivalConfig{
		JobsDir:    jobsDir,
		Solver:     types.SolverBackend(solver),
		TimeLimit:  timeLimit,
		MIPGap:     mipGap,
		BetaWeight: beta,
	}
}
