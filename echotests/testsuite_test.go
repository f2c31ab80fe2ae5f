package echotests

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/echo-contract-tests/echoserver"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/framework/harness"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSuiteAgainst(t *testing.T, handler http.Handler, filter framework.Filter) framework.Results {
	var results framework.Results
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := harness.NewTestHarness(server.URL, time.Second*5, nil, &bytes.Buffer{})
		defer h.Close()
		results = RunTestSuite(h, filter, nil)
	})
	return results
}

func testIDs(results []framework.TestResult) []string {
	var ret []string
	for _, r := range results {
		ret = append(ret, r.TestID.String())
	}
	return ret
}

func describeFailures(results framework.Results) string {
	var buf bytes.Buffer
	framework.PrintResults(&buf, results)
	return buf.String()
}

func TestSuitePassesAgainstLocalEchoService(t *testing.T) {
	results := runSuiteAgainst(t, echoserver.New(nil), nil)

	require.True(t, results.OK(), describeFailures(results))
	ids := testIDs(results.Tests)
	for _, expected := range []string{
		"query parameters/simple values",
		"query parameters/encoded value with spaces",
		"JSON body/object with string values",
		"JSON body/empty object",
		"form body",
		"custom header",
	} {
		assert.Contains(t, ids, expected)
	}
}

func TestWrongEchoFailsOnlyAffectedScenarios(t *testing.T) {
	// answers every request with the same canned body, as if nothing had been sent
	canned := httphelpers.HandlerWithJSONResponse(map[string]interface{}{
		"args":    map[string]interface{}{},
		"data":    map[string]interface{}{},
		"form":    map[string]interface{}{},
		"headers": map[string]interface{}{"host": "example"},
	}, nil)
	results := runSuiteAgainst(t, canned, nil)

	failed := testIDs(results.Failures)
	assert.Contains(t, failed, "query parameters/simple values")
	assert.Contains(t, failed, "JSON body/object with string values")
	assert.Contains(t, failed, "form body")
	assert.Contains(t, failed, "custom header")
	assert.NotContains(t, failed, "query parameters/no parameters")
	assert.NotContains(t, failed, "JSON body/empty object")
}

func TestExtraQueryArgFailsScenario(t *testing.T) {
	canned := httphelpers.HandlerWithJSONResponse(map[string]interface{}{
		"args":    map[string]interface{}{"key1": "value1", "key2": "value2", "key3": "unexpected"},
		"headers": map[string]interface{}{"host": "example"},
	}, nil)
	results := runSuiteAgainst(t, canned, nil)

	var simple *framework.TestResult
	for i, f := range results.Failures {
		if f.TestID.String() == "query parameters/simple values" {
			simple = &results.Failures[i]
		}
	}
	require.NotNil(t, simple, "expected scenario to fail: %s", describeFailures(results))
	require.NotEmpty(t, simple.Errors)
	assert.Contains(t, simple.Errors[0].Error(), "key3")
}

func TestFailingServiceCheckDoesNotStopScenarios(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/get", httphelpers.HandlerWithStatus(503))
	mux.Handle("/post", echoserver.New(nil))
	results := runSuiteAgainst(t, mux, nil)

	failed := testIDs(results.Failures)
	for _, id := range []string{
		"query parameters/simple values",
		"query parameters/no parameters",
		"custom header",
	} {
		assert.Contains(t, failed, id)
	}
	for _, id := range []string{
		"JSON body/object with string values",
		"JSON body/empty object",
		"JSON body/nested values",
		"form body",
	} {
		assert.NotContains(t, failed, id)
		assert.Contains(t, testIDs(results.Tests), id)
	}
}

func TestErrorStatusFailsScenarioWithDescriptiveMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/get", echoserver.New(nil))
	mux.Handle("/post", httphelpers.HandlerWithResponse(500, nil, []byte("server exploded")))
	results := runSuiteAgainst(t, mux, nil)

	failed := testIDs(results.Failures)
	assert.ElementsMatch(t, []string{
		"JSON body/object with string values",
		"JSON body/empty object",
		"JSON body/nested values",
		"form body",
	}, failed)
	for _, f := range results.Failures {
		require.NotEmpty(t, f.Errors)
		assert.True(t, strings.Contains(f.Errors[0].Error(), "returned HTTP status 500: server exploded"),
			"unexpected error for %s: %s", f.TestID, f.Errors[0])
	}
}

func TestFilterSelectsScenarios(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^custom header$"))

	handler, requestsCh := httphelpers.RecordingHandler(echoserver.New(nil))
	results := runSuiteAgainst(t, handler, filters.AsFilter)

	require.True(t, results.OK(), describeFailures(results))
	passed, _, skipped := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 15, skipped)
	assert.Len(t, requestsCh, 2) // service check plus the one scenario
}

func TestFilterSelectsNestedScenarios(t *testing.T) {
	for pattern, expected := range map[string][]string{
		"encoded": {
			"query parameters/encoded value with spaces",
			"query parameters/encoded value with ampersand and equals",
			"query parameters/encoded value with percent",
			"query parameters/encoded value with plus",
			"query parameters/encoded value with slash and question mark",
			"query parameters/encoded value with hash",
			"query parameters/encoded value with multi-byte characters",
			"query parameters",
		},
		"empty object": {"JSON body/empty object", "JSON body"},
		"body/empty":   {"JSON body/empty object", "JSON body"},
	} {
		t.Run(pattern, func(t *testing.T) {
			var filters framework.RegexFilters
			require.NoError(t, filters.MustMatch.Set(pattern))

			handler, requestsCh := httphelpers.RecordingHandler(echoserver.New(nil))
			results := runSuiteAgainst(t, handler, filters.AsFilter)

			require.True(t, results.OK(), describeFailures(results))
			var ran []string
			for _, r := range results.Tests {
				if !r.Skipped {
					ran = append(ran, r.TestID.String())
				}
			}
			assert.ElementsMatch(t, expected, ran)
			assert.Len(t, requestsCh, len(expected)) // service check plus each leaf scenario
		})
	}
}

func TestRequireContextPanicsWithoutHarness(t *testing.T) {
	results := framework.Run(nil, nil, nil, func(c *framework.Context) {
		c.Run("x", DoCustomHeaderTest)
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "EchoTestContext was not included")
}
