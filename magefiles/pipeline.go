//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// runBin runs the built CLI binary with the given arguments.
func runBin(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Fetch snapshots all known interaction datasets from OmniPath.
func Fetch() error {
	mg.Deps(Build)
	return runBin("fetch")
}

// Ingest loads fetched snapshots into the SQLite interaction store.
func Ingest() error {
	mg.Deps(Build)
	return runBin("store", "ingest")
}

// Network builds the signed omnipath network from the fetched snapshots.
func Network() error {
	mg.Deps(Build)
	return runBin("network")
}

// Prepare runs the input-preparation stages in order: fetch, ingest, network.
func Prepare() error {
	mg.SerialDeps(Init, Fetch, Ingest, Network)
	return nil
}
