package harness

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestHarnessChecksService(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(map[string]interface{}{}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var out bytes.Buffer
		h := NewTestHarness(server.URL, time.Second, nil, &out)
		defer h.Close()

		assert.Equal(t, server.URL, h.Session().BaseURL())
		assert.Equal(t, time.Second, h.Session().Timeout())
		assert.Contains(t, out.String(), "Connecting to echo service at "+server.URL+"... OK")

		req := <-requestsCh
		assert.Equal(t, "/get", req.Request.URL.Path)
		assert.Len(t, requestsCh, 0)
	})
}

func TestNewTestHarnessWarnsOnErrorStatus(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(503))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var out bytes.Buffer
		h := NewTestHarness(server.URL, time.Second, nil, &out)
		require.NotNil(t, h)
		defer h.Close()

		assert.Contains(t, out.String(), "WARNING: GET "+server.URL+"/get returned HTTP status 503")
		assert.Len(t, requestsCh, 1)
	})
}

func TestNewTestHarnessDoesNotWaitForServiceThatIsDown(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	var out bytes.Buffer
	started := time.Now()
	h := NewTestHarness(url, time.Second*5, nil, &out)
	require.NotNil(t, h)
	defer h.Close()

	assert.Less(t, time.Since(started), time.Second)
	assert.Contains(t, out.String(), "WARNING: GET "+url+"/get failed")
	assert.Contains(t, out.String(), "Continuing")
}

func TestStartLocalService(t *testing.T) {
	s, err := StartLocalService(0, httphelpers.HandlerWithStatus(200), time.Second, nil)
	require.NoError(t, err)

	resp, err := http.Get(s.URL() + "/anything")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	require.NoError(t, s.Close())
	_, err = http.Get(s.URL())
	assert.Error(t, err)
}
