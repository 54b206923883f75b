package magetasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

var golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs all linters. Optional linters that are not installed are
// skipped with a warning.
func LintAll() error {
	var errs []error
	for _, lint := range []func() error{LintFormat, LintVet, LintStaticcheck, LintGolangci} {
		if err := lint(); err != nil && !IsCommandNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails when a file is not gofmt-formatted.
func LintFormat() error {
	PrintH2Header("Go Format")
	files, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg")
	if err != nil {
		return err
	}
	if files = strings.TrimSpace(files); files != "" {
		PrintError("Not formatted:\n" + files)
		return fmt.Errorf("gofmt: %d files need formatting", len(strings.Split(files, "\n")))
	}
	return nil
}

// LintVet runs go vet.
func LintVet() error {
	PrintH2Header("Go Vet")
	return sh.RunV("go", "vet", "./...")
}

// LintStaticcheck runs staticcheck.
func LintStaticcheck() error {
	return optional("Staticcheck", "honnef.co/go/tools/cmd/staticcheck@latest", "staticcheck", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return optional("Golangci-lint", "github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
		"golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return optional("Golangci-lint Fix", "github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
		"golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
}

// optional runs a tool that may not be installed, printing how to install
// it when it is missing.
func optional(title, install, cmd string, args ...string) error {
	PrintH2Header(title)
	if err := sh.RunV(cmd, args...); err != nil {
		if IsCommandNotFound(err) {
			PrintWarning(fmt.Sprintf("%s not found (install: go install %s)", cmd, install))
			return err
		}
		return fmt.Errorf("%s failed: %w", cmd, err)
	}
	return nil
}
