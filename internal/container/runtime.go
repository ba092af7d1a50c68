// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs the CARNIVAL solver image through a local
// container engine. The pipeline stages a job directory on the host,
// bind-mounts it into the container, and streams the solver log back to
// the caller. Docker and podman accept identical arguments for the few
// commands needed here, so one engine implementation parameterized by an
// engineSpec covers both.
//
// See docs/ARCHITECTURE.md § Solver.
package container

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runtime is a detected container engine, ready to run solver jobs.
type Runtime interface {
	// Name reports which engine binary this runtime drives.
	Name() string

	// Available reports whether the binary is installed and its backend
	// answers commands.
	Available() bool

	// ImageExists fails when the image is absent from local storage.
	ImageExists(image string) error

	// RunMounted starts the image with hostDir bind-mounted at
	// containerDir and args handed to the entrypoint. Container stdout
	// and stderr both stream to output.
	RunMounted(image, hostDir, containerDir string, args []string, output io.Writer) error
}

// commander shells out to an engine binary. Tests swap in a fake.
type commander interface {
	LookPath(bin string) (string, error)
	Quiet(bin string, args ...string) error
	Stream(bin string, args []string, output io.Writer) error
}

// execCommander backs commander with os/exec outside tests.
type execCommander struct{}

func (execCommander) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

func (execCommander) Quiet(bin string, args ...string) error {
	return exec.Command(bin, args...).Run()
}

func (execCommander) Stream(bin string, args []string, output io.Writer) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = output
	cmd.Stderr = output
	return cmd.Run()
}

// engineSpec holds the points where docker and podman diverge.
type engineSpec struct {
	bin        string   // binary name, doubles as the Runtime name
	imageCheck []string // subcommand that verifies a local image
	mountLabel string   // volume suffix, ":Z" where SELinux relabeling applies
}

var (
	dockerSpec = engineSpec{bin: "docker", imageCheck: []string{"image", "inspect"}}
	podmanSpec = engineSpec{bin: "podman", imageCheck: []string{"image", "exists"}, mountLabel: ":Z"}

	// Probe order. Docker wins when both engines respond.
	probeOrder = []engineSpec{dockerSpec, podmanSpec}
)

// engine implements Runtime for one engineSpec.
type engine struct {
	spec engineSpec
	cmd  commander
}

func (e *engine) Name() string { return e.spec.bin }

func (e *engine) Available() bool {
	if _, err := e.cmd.LookPath(e.spec.bin); err != nil {
		return false
	}
	// A binary on PATH can still front a stopped daemon or VM.
	return e.cmd.Quiet(e.spec.bin, "info") == nil
}

func (e *engine) ImageExists(image string) error {
	check := append(append([]string{}, e.spec.imageCheck...), image)
	if err := e.cmd.Quiet(e.spec.bin, check...); err != nil {
		return fmt.Errorf("image %s not found in local %s storage: %w", image, e.spec.bin, err)
	}
	return nil
}

func (e *engine) RunMounted(image, hostDir, containerDir string, args []string, output io.Writer) error {
	mount := hostDir + ":" + containerDir + e.spec.mountLabel
	run := append([]string{"run", "--rm", "-v", mount, image}, args...)
	if err := e.cmd.Stream(e.spec.bin, run, output); err != nil {
		return fmt.Errorf("%s run of %s failed: %w", e.spec.bin, image, err)
	}
	return nil
}

// DetectRuntime probes for a working container engine, docker before
// podman, and returns the first one that responds.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(execCommander{})
}

func detectRuntime(cmd commander) (Runtime, error) {
	probed := make([]string, 0, len(probeOrder))
	for _, spec := range probeOrder {
		e := &engine{spec: spec, cmd: cmd}
		if e.Available() {
			return e, nil
		}
		probed = append(probed, spec.bin)
	}
	return nil, fmt.Errorf("no container runtime available: %s not installed or not responding",
		strings.Join(probed, " and "))
}
