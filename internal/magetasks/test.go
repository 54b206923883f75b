package magetasks

import (
	"errors"
	"fmt"

	"github.com/magefile/mage/sh"
)

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")
	if err := sh.RunV("go", "test", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	PrintSuccess("All tests passed")
	return nil
}

// TestShort runs the tests that do not build example binaries.
func TestShort() error {
	PrintH2Header("Tests (short)")
	return sh.RunV("go", "test", "-short", "./...")
}

// TestCoverage runs tests with coverage.
func TestCoverage() error {
	PrintH2Header("Test Coverage")
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	_ = sh.RunV("go", "tool", "cover", "-func=coverage.out")
	PrintSuccess("Coverage report generated")
	return nil
}

// TestRace runs tests with race detector.
func TestRace() error {
	PrintH2Header("Race Detector")
	if err := sh.RunV("go", "test", "-race", "./..."); err != nil {
		PrintError("Race detector found issues")
		return err
	}
	PrintSuccess("No race conditions detected")
	return nil
}

// Examples runs the project's own example tests through the built binary.
func Examples() error {
	PrintH2Header("Examples")
	files, err := ExampleFiles(ProjectRoot)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		PrintWarning("No example files found")
		return nil
	}
	args := append([]string{"run", "--format", "llm"}, files...)
	if err := sh.RunV(BinPath, args...); err != nil {
		PrintError("Examples failed")
		return err
	}
	PrintSuccess(fmt.Sprintf("%d example files passed", len(files)))
	return nil
}

// QualityCheck runs linters, tests, the build and the examples.
func QualityCheck() error {
	PrintH1Header("exnote Quality Assurance")

	if err := LintAll(); err != nil {
		PrintWarning("Linting issues found")
	}
	var errs []error
	if err := TestAll(); err != nil {
		errs = append(errs, fmt.Errorf("tests failed: %w", err))
	}
	if err := BuildAll(); err != nil {
		return errors.Join(append(errs, fmt.Errorf("build failed: %w", err))...)
	}
	if err := Examples(); err != nil {
		errs = append(errs, fmt.Errorf("examples failed: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("QA complete!")
	return nil
}
