package echotests

import (
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/framework/harness"
)

func RunTestSuite(
	h *harness.TestHarness,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, EchoTestContext{harness: h}, func(t *framework.Context) {
		t.Run("query parameters", DoQueryParameterTests)
		t.Run("JSON body", DoJSONBodyTests)
		t.Run("form body", DoFormBodyTest)
		t.Run("custom header", DoCustomHeaderTest)
	})
}
