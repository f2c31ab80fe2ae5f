package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

const filteredOutReason = "excluded by filter parameters"

type environment struct {
	results     Results
	testLogger  TestLogger
	filter      Filter
	testContext interface{}
}

// Context is used similarly to *testing.T. It implements require.TestingT so scenarios can use
// the standard assert/require functions, and it has a Run method for subtests.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()

	// set for a test that the filter did not select, but that may contain selected subtests
	notSelected bool
	subtestsRun int
}

// Run executes the root action of a test suite and returns the accumulated results.
//
// The testContext value is made available to every test through Context.TestContext; this is
// how domain-specific test code gets at things like the shared HTTP session.
func Run(
	filter Filter,
	testLogger TestLogger,
	testContext interface{},
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:      filter,
		testLogger:  testLogger,
		testContext: testContext,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil && !c.skipped {
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			c.fail(addError)
		}
		c.runCleanups()
		if c.notSelected && !c.failed && c.subtestsRun == 0 {
			c.skipped = true
			c.skipReason = filteredOutReason
		}
		if len(c.id.Path) == 0 {
			return // the root context is not a test in itself
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped && !c.failed}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.fail(fmt.Errorf("panic in deferred function: %+v\n%s", r, string(debug.Stack())))
				}
			}()
			c.cleanups[i]()
		}()
	}
	c.cleanups = nil
}

// fail marks the test as failed. A nil err means the failure was already reported.
func (c *Context) fail(err error) {
	c.failed = true
	if err != nil {
		c.errors = append(c.errors, err)
		c.env.testLogger.TestError(c.id, err)
	}
}

func (c *Context) ID() TestID {
	return c.id
}

// TestContext returns whatever value was passed to Run as the suite-wide context.
//
// A test that the filter did not select is only allowed to start subtests. If it asks for the
// suite context, it is doing work of its own, so it is skipped at that point.
func (c *Context) TestContext() interface{} {
	if c.notSelected {
		c.SkipWithReason(filteredOutReason)
	}
	return c.env.testContext
}

// Run executes a named subtest. Failures in the subtest do not stop the parent.
//
// If the filter rejects the subtest with NotSelected, it still runs so that any of its own
// subtests that are selected can run; it is reported as skipped if none of them did.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	selection := Selected
	if c.env.filter != nil {
		selection = c.env.filter(id)
	}
	if selection == Excluded {
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.testLogger.TestSkipped(id, filteredOutReason)
		return
	}
	c1 := &Context{
		id:          id,
		env:         c.env,
		notSelected: selection == NotSelected,
	}
	c1.run(action)
	if c1.skipped && !c1.failed {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
		return
	}
	c.subtestsRun++
	c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.fail(fmt.Errorf(format, args...))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to be called when the current test ends, after any subtests.
// Deferred functions run in reverse order of registration. A panic in one of them fails the
// test without stopping the others.
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
