package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/alessio/shellescape"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type bodyKind int

const (
	noBody bodyKind = iota
	jsonBody
	formBody
)

// Request describes one HTTP request to the echo service. It is a value type: the With methods
// return a modified copy and never change the receiver, so a Request can be shared freely
// between test cases.
type Request struct {
	method   string
	path     string
	query    url.Values
	headers  http.Header
	bodyKind bodyKind
	payload  interface{}
	form     url.Values
}

// NewRequest creates a Request for the given method and path, relative to the session's base URL.
func NewRequest(method, path string) Request {
	return Request{method: method, path: path}
}

// Get is shorthand for NewRequest("GET", path).
func Get(path string) Request { return NewRequest(http.MethodGet, path) }

// Post is shorthand for NewRequest("POST", path).
func Post(path string) Request { return NewRequest(http.MethodPost, path) }

func (r Request) Method() string { return r.method }

func (r Request) Path() string { return r.path }

// WithQuery adds each key/value pair as a query parameter.
func (r Request) WithQuery(params map[string]string) Request {
	q := cloneValues(r.query)
	for k, v := range params {
		q.Add(k, v)
	}
	r.query = q
	return r
}

// WithHeader adds a request header. Custom headers are applied after any Content-Type header
// implied by the body, so they can override it.
func (r Request) WithHeader(name, value string) Request {
	h := r.headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Add(name, value)
	r.headers = h
	return r
}

// WithJSON sets the body to the JSON encoding of payload, with a Content-Type of
// application/json.
func (r Request) WithJSON(payload interface{}) Request {
	r.bodyKind = jsonBody
	r.payload = payload
	r.form = nil
	return r
}

// WithForm sets the body to the URL-encoded form representation of fields. The Content-Type
// is the standard one for HTML forms.
func (r Request) WithForm(fields map[string]string) Request {
	f := make(url.Values, len(fields))
	for k, v := range fields {
		f.Add(k, v)
	}
	r.bodyKind = formBody
	r.payload = nil
	r.form = f
	return r
}

// URL returns the full request URL, including the encoded query string.
func (r Request) URL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/") + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

func (r Request) encodeBody() (body []byte, contentType string, err error) {
	switch r.bodyKind {
	case jsonBody:
		data, err := json.Marshal(r.payload)
		if err != nil {
			return nil, "", fmt.Errorf("can't encode JSON request body: %w", err)
		}
		return data, contentTypeJSON, nil
	case formBody:
		return []byte(r.form.Encode()), contentTypeForm, nil
	default:
		return nil, "", nil
	}
}

func (r Request) build(baseURL string) (*http.Request, error) {
	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(r.method, r.URL(baseURL), reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, values := range r.headers {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return req, nil
}

// Curl renders the request as an equivalent curl command line, for debug output.
func (r Request) Curl(baseURL string) string {
	var cmd commandBuilder
	cmd.add("curl", "-sS", "-X", r.method)
	body, contentType, err := r.encodeBody()
	if err != nil {
		body = nil
	}
	headers := r.headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}
	if contentType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range headers[name] {
			cmd.add("-H", name+": "+v)
		}
	}
	if body != nil {
		cmd.add("--data-raw", string(body))
	}
	cmd.add(r.URL(baseURL))
	return cmd.String()
}

func cloneValues(v url.Values) url.Values {
	ret := make(url.Values, len(v))
	for k, vv := range v {
		ret[k] = append([]string(nil), vv...)
	}
	return ret
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
