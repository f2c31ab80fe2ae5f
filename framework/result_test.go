package framework

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrintResultsWhenAllPassed(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, Results{Tests: []TestResult{{TestID: makeID("a")}, {TestID: makeID("b"), Skipped: true}}})
	assert.Equal(t, "All tests passed (1 passed, 1 skipped)\n", buf.String())
}

func TestPrintResultsListsFailures(t *testing.T) {
	failure := TestResult{TestID: makeID("a/b"), Errors: []error{errors.New("line one\nline two")}}
	results := Results{
		Tests:    []TestResult{failure, {TestID: makeID("a")}},
		Failures: []TestResult{failure},
	}
	var buf bytes.Buffer
	PrintResults(&buf, results)
	assert.Equal(t,
		"FAILED TESTS (1 failed, 1 passed, 0 skipped):\n* a/b\n    line one\n    line two\n",
		buf.String())
}

func TestConsoleTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := ConsoleTestLogger{DebugOutputOnFailure: true, Out: &buf}
	debug := CapturedOutput{{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Message: "sent request"}}

	logger.TestStarted(makeID("a"))
	logger.TestError(makeID("a"), errors.New("bad\nthings"))
	logger.TestFinished(makeID("a"), true, debug)
	logger.TestFinished(makeID("b"), false, debug)
	logger.TestSkipped(makeID("c"), "")

	assert.Equal(t, strings.Join([]string{
		"[a]",
		"  bad",
		"  things",
		"  FAILED: a",
		"    DEBUG [2024-01-02 03:04:05.000] sent request",
		"  SKIPPED: c",
		"",
	}, "\n"), buf.String())
}

func TestWithPrefix(t *testing.T) {
	var target CapturingLogger
	WithPrefix(&target, "[x] ").Printf("value=%d", 3)
	out := target.Output()
	if assert.Len(t, out, 1) {
		assert.Equal(t, "[x] value=3", out[0].Message)
	}
}
