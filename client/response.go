package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"github.com/tidwall/gjson"
)

// Response is a snapshot of one successful response from the echo service.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HasField reports whether the response body is a JSON object with the given top-level
// property, even if its value is null.
func (r *Response) HasField(name string) bool {
	if !gjson.ValidBytes(r.Body) {
		return false
	}
	root := gjson.ParseBytes(r.Body)
	if !root.IsObject() {
		return false
	}
	found := false
	root.ForEach(func(key, _ gjson.Result) bool {
		if key.String() == name {
			found = true
			return false
		}
		return true
	})
	return found
}

// Echo decodes the response body.
func (r *Response) Echo() (servicedef.EchoResponse, error) {
	var ret servicedef.EchoResponse
	if len(r.Body) == 0 {
		return ret, errors.New("echo service returned an empty body")
	}
	if err := json.Unmarshal(r.Body, &ret); err != nil {
		return ret, fmt.Errorf("malformed JSON response from echo service: %w", err)
	}
	return ret, nil
}
