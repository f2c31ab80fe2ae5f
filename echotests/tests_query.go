package echotests

import (
	"github.com/launchdarkly/echo-contract-tests/client"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

func DoQueryParameterTests(t *framework.Context) {
	t.Run("simple values", func(t *framework.Context) {
		params := map[string]string{"key1": "value1", "key2": "value2"}
		echo := RequireEcho(t, client.Get(servicedef.PathGet).WithQuery(params), "args")
		assert.Equal(t, params, RequireStringMap(t, echo.Args, "args"))
	})

	t.Run("no parameters", func(t *framework.Context) {
		echo := RequireEcho(t, client.Get(servicedef.PathGet), "args")
		assert.Empty(t, RequireStringMap(t, echo.Args, "args"))
	})

	// Each value must come back exactly as it was sent, after the client percent-encodes it and
	// the service decodes it.
	encodedValues := []struct {
		name  string
		value string
	}{
		{"spaces", "some value with spaces"},
		{"ampersand and equals", "a&b=c"},
		{"percent", "100%"},
		{"plus", "x+y"},
		{"slash and question mark", "/path?q"},
		{"hash", "#fragment"},
		{"multi-byte characters", "€豆腐"},
	}
	for _, ev := range encodedValues {
		ev := ev
		t.Run("encoded value with "+ev.name, func(t *framework.Context) {
			params := map[string]string{"query": ev.value}
			echo := RequireEcho(t, client.Get(servicedef.PathGet).WithQuery(params), "args")
			args := RequireStringMap(t, echo.Args, "args")
			assert.Equal(t, ev.value, args["query"], "value was not decoded to the original string")
			assert.Equal(t, params, args)
		})
	}
}
