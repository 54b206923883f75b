//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/dkoosis/exnote/internal/magetasks"
	"github.com/magefile/mage/mg"
)

// Default target - build the binary
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the exnote binary
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts and the example binary cache
func Clean() error {
	return magetasks.Clean()
}

// QA runs linters, tests, the build and the project's own examples
func QA() error {
	return magetasks.QualityCheck()
}

// Examples runs the project's example tests through exnote itself
func Examples() error {
	mg.Deps(Build)
	return magetasks.Examples()
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() error {
	return magetasks.LintAll()
}

// Format checks code formatting
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// Vet runs go vet
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Staticcheck runs staticcheck
func (Lint) Staticcheck() error {
	return magetasks.LintStaticcheck()
}

// Golangci runs golangci-lint
func (Lint) Golangci() error {
	return magetasks.LintGolangci()
}

// Fix runs golangci-lint with auto-fixes
func (Lint) Fix() error {
	return magetasks.LintGolangciFix()
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return magetasks.TestAll()
}

// Short runs the tests that do not build example binaries
func (Test) Short() error {
	return magetasks.TestShort()
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with race detector
func (Test) Race() error {
	return magetasks.TestRace()
}
