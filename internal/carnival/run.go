// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package carnival

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/asumann/transcriptutorial/internal/container"
)

// containerJobDir is where the staged job directory appears inside the
// solver container.
const containerJobDir = "/data"

// RunJob bind-mounts a staged job directory into the solver image and runs
// it, streaming solver output to w. Results land in <jobDir>/results/.
func RunJob(rt container.Runtime, jobDir string, image string, w io.Writer) error {
	manifest, err := LoadManifest(jobDir)
	if err != nil {
		return err
	}

	if image == "" {
		return fmt.Errorf("no solver image configured")
	}
	if err := rt.ImageExists(image); err != nil {
		return fmt.Errorf("solver image not available in %s: %w", rt.Name(), err)
	}

	hostDir, err := filepath.Abs(jobDir)
	if err != nil {
		return fmt.Errorf("resolving job directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(hostDir, resultsDirName), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	args := solverArgs(manifest.Solver)

	fmt.Fprintf(w, "running job %s (%s via %s)\n", manifest.ID, image, rt.Name())
	start := time.Now()
	if err := rt.RunMounted(image, hostDir, containerJobDir, args, w); err != nil {
		return fmt.Errorf("solver run failed: %w", err)
	}
	fmt.Fprintf(w, "solver finished in %s\n", time.Since(start).Round(time.Second))

	return nil
}

// solverArgs builds the argument list for the containerized solver
// entrypoint from the manifest's parameter snapshot.
func solverArgs(opts SolverOptions) []string {
	return []string{
		"--network", containerJobDir + "/" + networkFile,
		"--measurements", containerJobDir + "/" + measurementsFile,
		"--inputs", containerJobDir + "/" + inputsFile,
		"--results", containerJobDir + "/" + resultsDirName,
		"--solver", string(opts.Backend),
		"--time-limit", strconv.Itoa(opts.TimeLimitSeconds),
		"--mip-gap", strconv.FormatFloat(opts.MIPGap, 'g', -1, 64),
		"--beta", strconv.FormatFloat(opts.BetaWeight, 'g', -1, 64),
	}
}
