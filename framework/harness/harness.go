package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/launchdarkly/echo-contract-tests/client"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/servicedef"
)

// TestHarness owns the connection to the echo service for the duration of a test run.
type TestHarness struct {
	session *client.Session
	logger  framework.Logger
}

// NewTestHarness creates the shared session and sends one GET request to the echo service so
// that an unreachable or misbehaving service is visible before the scenarios run. The result is
// only reported to startupOutput. The request is not retried, and a failure does not stop the
// run, since each scenario reports its own failures.
func NewTestHarness(
	serviceBaseURL string,
	requestTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) *TestHarness {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	h := &TestHarness{
		session: client.NewSession(serviceBaseURL, requestTimeout),
		logger:  debugLogger,
	}
	h.checkService(startupOutput)
	return h
}

// Session returns the shared session.
func (h *TestHarness) Session() *client.Session {
	return h.session
}

// Close releases the session's connections. The harness should not be used afterward.
func (h *TestHarness) Close() {
	h.logger.Printf("Closing session to %s", h.session.BaseURL())
	h.session.Close()
}

func (h *TestHarness) checkService(output io.Writer) {
	fmt.Fprintf(output, "Connecting to echo service at %s... ", h.session.BaseURL())
	if _, err := h.session.Do(context.Background(), client.Get(servicedef.PathGet), h.logger); err != nil {
		fmt.Fprintf(output, "WARNING: %s\n", err)
		fmt.Fprintln(output, "Continuing; scenarios that depend on the service will fail.")
		return
	}
	fmt.Fprintln(output, "OK")
}
