package echotests

import (
	"github.com/launchdarkly/echo-contract-tests/client"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoJSONBodyTests(t *framework.Context) {
	payloads := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"object with string values", map[string]interface{}{"key1": "value1", "key2": "value2"}},
		{"empty object", map[string]interface{}{}},
		{"nested values", map[string]interface{}{
			"name":   "echo",
			"count":  3,
			"active": true,
			"tags":   []interface{}{"a", "b"},
			"child":  map[string]interface{}{"key": "value"},
		}},
	}
	for _, p := range payloads {
		p := p
		t.Run(p.name, func(t *framework.Context) {
			expected, err := servicedef.ValueOf(p.payload)
			require.NoError(t, err)

			req := client.Post(servicedef.PathPost).WithJSON(p.payload)
			echo := RequireEcho(t, req, "data")
			AssertJSONEqual(t, expected, echo.Data, "data")
		})
	}
}

// DoFormBodyTest does not set a Content-Type itself; the client uses the standard form encoding.
func DoFormBodyTest(t *framework.Context) {
	fields := map[string]string{"key1": "value1", "key2": "value2"}
	echo := RequireEcho(t, client.Post(servicedef.PathPost).WithForm(fields), "form")
	assert.Equal(t, fields, RequireStringMap(t, echo.Form, "form"))
}
