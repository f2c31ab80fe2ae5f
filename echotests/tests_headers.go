package echotests

import (
	"github.com/launchdarkly/echo-contract-tests/client"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

const (
	customHeaderName  = "X-Custom-Header"
	customHeaderValue = "my-custom-value"
)

func DoCustomHeaderTest(t *framework.Context) {
	req := client.Get(servicedef.PathGet).WithHeader(customHeaderName, customHeaderValue)
	echo := RequireEcho(t, req, "headers")

	value, ok := echo.Header("x-custom-header")
	assert.True(t, ok, "missing header %q in echoed headers: %s", "x-custom-header", echo.Headers.JSONString())
	assert.Equal(t, customHeaderValue, value, "incorrect value for custom header")
}
