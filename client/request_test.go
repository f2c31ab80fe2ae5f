package client

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestURLEncodesQuery(t *testing.T) {
	r := Get("/get").WithQuery(map[string]string{"query": "some value with spaces", "a": "x&y=z"})
	assert.Equal(t, "https://example.com/get?a=x%26y%3Dz&query=some+value+with+spaces", r.URL("https://example.com/"))
}

func TestRequestWithoutQuery(t *testing.T) {
	assert.Equal(t, "http://localhost:8111/get", Get("/get").URL("http://localhost:8111"))
}

func TestRequestIsNotModifiedByWithMethods(t *testing.T) {
	base := Get("/get").WithQuery(map[string]string{"a": "1"}).WithHeader("X-One", "1")
	derived := base.WithQuery(map[string]string{"b": "2"}).WithHeader("X-Two", "2")

	assert.Equal(t, "http://h/get?a=1", base.URL("http://h"))
	assert.Equal(t, "http://h/get?a=1&b=2", derived.URL("http://h"))

	baseReq, err := base.build("http://h")
	require.NoError(t, err)
	assert.Empty(t, baseReq.Header.Get("X-Two"))
}

func TestBuildJSONRequest(t *testing.T) {
	req, err := Post("/post").WithJSON(map[string]interface{}{}).build("http://h")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestBuildFormRequest(t *testing.T) {
	req, err := Post("/post").WithForm(map[string]string{"key2": "value2", "key1": "value 1"}).build("http://h")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "key1=value+1&key2=value2", string(body))
}

func TestCustomHeaderOverridesImpliedContentType(t *testing.T) {
	req, err := Post("/post").WithJSON(1).WithHeader("content-type", "application/vnd.test+json").build("http://h")
	require.NoError(t, err)
	assert.Equal(t, []string{"application/vnd.test+json"}, req.Header.Values("Content-Type"))
}

func TestUnencodableJSONPayload(t *testing.T) {
	_, err := Post("/post").WithJSON(func() {}).build("http://h")
	assert.Error(t, err)
}

func TestCurl(t *testing.T) {
	r := Post("/post").WithJSON(map[string]string{"a": "it's"}).WithHeader("X-Custom-Header", "v")
	assert.Equal(t,
		`curl -sS -X POST -H 'Content-Type: application/json' -H 'X-Custom-Header: v' --data-raw '{"a":"it'"'"'s"}' http://h/post`,
		r.Curl("http://h"))
}
