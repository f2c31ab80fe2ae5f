package framework

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped. Tests that only
// group subtests are counted like any other test.
func (r Results) Counts() (passed, failed, skipped int) {
	failed = len(r.Failures)
	for _, t := range r.Tests {
		if t.Skipped {
			skipped++
		}
	}
	passed = len(r.Tests) - failed - skipped
	return
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the test run, listing every failed test and its errors.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	if results.OK() {
		fmt.Fprintf(out, "All tests passed (%d passed, %d skipped)\n", passed, skipped)
		return
	}
	fmt.Fprintf(out, "FAILED TESTS (%d failed, %d passed, %d skipped):\n", failed, passed, skipped)
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}
