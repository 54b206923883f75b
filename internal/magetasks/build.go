package magetasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// BuildAll builds the exnote binary with version metadata.
func BuildAll() error {
	PrintH2Header("Build")

	pkg := ModulePath + "/internal/version"
	ldflags := fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, gitVersion(), pkg, gitCommit(), pkg, time.Now().UTC().Format(time.RFC3339))

	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", BinPath, "./cmd/exnote"); err != nil {
		PrintError("Build failed")
		return err
	}
	PrintSuccess("Built: " + BinPath)
	return nil
}

// Clean removes build artifacts, coverage output and the example binary
// cache.
func Clean() error {
	PrintH2Header("Clean")
	for _, path := range []string{"./bin", "./.exnote", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	PrintSuccess("Cleaned build artifacts")
	return nil
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil || v == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

func gitCommit() string {
	c, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || c == "" {
		return "unknown"
	}
	return strings.TrimSpace(c)
}
