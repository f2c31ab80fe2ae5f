package echotests

import (
	"context"
	"net/http"

	"github.com/launchdarkly/echo-contract-tests/client"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/framework/harness"
	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type EchoTestContext struct {
	harness *harness.TestHarness
}

func requireContext(t *framework.Context) EchoTestContext {
	if c, ok := t.TestContext().(EchoTestContext); ok && c.harness != nil {
		return c
	}
	panic("EchoTestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// RequireEcho sends a request through the shared session and decodes the echoed response.
//
// The test fails and immediately exits if the request fails, if the status is not 200, or if
// any of the named top-level fields is missing from the response.
func RequireEcho(t *framework.Context, req client.Request, requiredFields ...string) servicedef.EchoResponse {
	session := requireContext(t).harness.Session()
	ctx, cancel := context.WithCancel(context.Background())
	t.Defer(cancel)
	resp, err := session.Do(ctx, req, t.DebugLogger())
	require.NoError(t, err, "request to echo service failed")
	require.Equal(t, http.StatusOK, resp.StatusCode, "unexpected status code")
	t.Debug("%s %s echoed %d bytes", req.Method(), req.Path(), len(resp.Body))
	for _, field := range requiredFields {
		require.True(t, resp.HasField(field), "response did not contain %q field: %s", field, string(resp.Body))
	}
	echo, err := resp.Echo()
	require.NoError(t, err)
	return echo
}

// RequireStringMap converts an echoed object whose values are all strings into a map.
func RequireStringMap(t *framework.Context, value ldvalue.Value, field string) map[string]string {
	m, err := servicedef.StringMap(value)
	require.NoError(t, err, "unexpected content in %q field", field)
	return m
}

// AssertJSONEqual compares two JSON values structurally, so property order does not matter.
func AssertJSONEqual(t *framework.Context, expected, actual ldvalue.Value, field string) bool {
	return assert.JSONEq(t, expected.JSONString(), actual.JSONString(), "incorrect %q field", field)
}
