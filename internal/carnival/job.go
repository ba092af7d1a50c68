// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package carnival stages self-contained solver job directories and parses
// the solver's result tables. The solver itself runs opaquely inside a
// container image; this package owns everything on the host side of that
// boundary.
//
// See docs/ARCHITECTURE.md § Solver.
package carnival

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/asumann/transcriptutorial/internal/activity"
	"github.com/asumann/transcriptutorial/internal/network"
	"github.com/asumann/transcriptutorial/pkg/types"
)

const (
	networkFile      = "network.tsv"
	measurementsFile = "measurements.tsv"
	inputsFile       = "inputs.tsv"
	manifestFile     = "job.yaml"
	resultsDirName   = "results"
)

// SolverOptions is the solver parameter snapshot recorded in a job
// manifest. Seconds rather than a duration so the containerized entrypoint
// can read the manifest without Go duration syntax.
type SolverOptions struct {
	Backend          types.SolverBackend `yaml:"backend" json:"backend"`
	TimeLimitSeconds int                 `yaml:"time_limit_seconds" json:"time_limit_seconds"`
	MIPGap           float64             `yaml:"mip_gap" json:"mip_gap"`
	BetaWeight       float64             `yaml:"beta_weight" json:"beta_weight"`
}

// JobManifest records what went into a staged solver job.
type JobManifest struct {
	ID            string        `yaml:"id" json:"id"`
	CreatedAt     time.Time     `yaml:"created_at" json:"created_at"`
	NetworkEdges  int           `yaml:"network_edges" json:"network_edges"`
	Measurements  int           `yaml:"measurements" json:"measurements"`
	Perturbations int           `yaml:"perturbations" json:"perturbations"`
	Solver        SolverOptions `yaml:"solver" json:"solver"`
}

// solverOptions fills CARNIVAL defaults for zero-valued settings.
func solverOptions(cfg types.CarnivalConfig) SolverOptions {
	opts := SolverOptions{
		Backend:          cfg.Solver,
		TimeLimitSeconds: int(cfg.TimeLimit.Seconds()),
		MIPGap:           cfg.MIPGap,
		BetaWeight:       cfg.BetaWeight,
	}
	if opts.Backend == "" {
		opts.Backend = types.SolverLPSolve
	}
	if opts.TimeLimitSeconds <= 0 {
		opts.TimeLimitSeconds = 3600
	}
	if opts.MIPGap == 0 {
		opts.MIPGap = 0.05
	}
	if opts.BetaWeight == 0 {
		opts.BetaWeight = 0.2
	}
	return opts
}

// StageJob assembles a job directory under cfg.JobsDir holding the network,
// the measurements restricted to network nodes, the perturbation inputs,
// and a manifest. Measurements outside the network are dropped with a
// warning; a perturbation outside the network is an error. An empty
// perturbation set stages an inverse run where the solver infers input
// activities.
func StageJob(edges []types.SignedEdge, measurements []types.ActivityScore, perturbations []Perturbation, cfg types.CarnivalConfig, w io.Writer) (*JobManifest, string, error) {
	if len(edges) == 0 {
		return nil, "", fmt.Errorf("network is empty")
	}
	if len(measurements) == 0 {
		return nil, "", fmt.Errorf("no measurements supplied")
	}

	nodes := network.NodeSet(edges)

	kept, droppedMeas := activity.MatchNetwork(measurements, nodes)
	if len(kept) == 0 {
		return nil, "", fmt.Errorf("none of the %d measurements map to network nodes", len(measurements))
	}
	if len(droppedMeas) > 0 {
		fmt.Fprintf(w, "warning: %d measurements outside the network: %s\n",
			len(droppedMeas), strings.Join(droppedMeas, ", "))
	}

	seen := make(map[string]struct{}, len(perturbations))
	for i := range perturbations {
		perturbations[i].Node = network.SafeID(perturbations[i].Node)
		node := perturbations[i].Node
		if _, ok := nodes[node]; !ok {
			return nil, "", fmt.Errorf("perturbation %s is not in the network", node)
		}
		if _, dup := seen[node]; dup {
			return nil, "", fmt.Errorf("duplicate perturbation node %s", node)
		}
		seen[node] = struct{}{}
	}

	id := uuid.New().String()
	jobDir := filepath.Join(cfg.JobsDir, strings.SplitN(id, "-", 2)[0])

	if err := os.MkdirAll(cfg.JobsDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating jobs directory: %w", err)
	}
	if err := os.Mkdir(jobDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating job directory: %w", err)
	}

	manifest := &JobManifest{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		NetworkEdges:  len(edges),
		Measurements:  len(kept),
		Perturbations: len(perturbations),
		Solver:        solverOptions(cfg),
	}

	if err := writeJobArtifacts(jobDir, edges, kept, perturbations, manifest); err != nil {
		os.RemoveAll(jobDir)
		return nil, "", err
	}

	fmt.Fprintf(w, "staged job %s in %s\n", id, jobDir)
	fmt.Fprintf(w, "  network:       %d edges\n", len(edges))
	fmt.Fprintf(w, "  measurements:  %d kept, %d dropped\n", len(kept), len(droppedMeas))
	fmt.Fprintf(w, "  perturbations: %d\n", len(perturbations))

	return manifest, jobDir, nil
}

func writeJobArtifacts(jobDir string, edges []types.SignedEdge, measurements []types.ActivityScore, perturbations []Perturbation, manifest *JobManifest) error {
	if err := network.WriteFile(filepath.Join(jobDir, networkFile), edges); err != nil {
		return fmt.Errorf("writing network artifact: %w", err)
	}
	if err := activity.WriteFile(filepath.Join(jobDir, measurementsFile), measurements); err != nil {
		return fmt.Errorf("writing measurements artifact: %w", err)
	}
	if err := WriteInputsFile(filepath.Join(jobDir, inputsFile), perturbations); err != nil {
		return fmt.Errorf("writing inputs artifact: %w", err)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(jobDir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of a staged job directory.
func LoadManifest(jobDir string) (*JobManifest, error) {
	data, err := os.ReadFile(filepath.Join(jobDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading job manifest: %w", err)
	}
	var manifest JobManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing job manifest: %w", err)
	}
	return &manifest, nil
}

// ListJobs returns the job directory names under jobsDir, newest first by
// manifest creation time. Directories without a readable manifest are
// skipped.
func ListJobs(jobsDir string) ([]string, error) {
	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading jobs directory: %w", err)
	}

	type job struct {
		name    string
		created time.Time
	}
	var jobs []job
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := LoadManifest(filepath.Join(jobsDir, e.Name()))
		if err != nil {
			continue
		}
		jobs = append(jobs, job{name: e.Name(), created: m.CreatedAt})
	}

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].created.Equal(jobs[j].created) {
			return jobs[i].created.After(jobs[j].created)
		}
		return jobs[i].name < jobs[j].name
	})

	names := make([]string, len(jobs))
	for i := range jobs {
		names[i] = jobs[i].name
	}
	return names, nil
}
