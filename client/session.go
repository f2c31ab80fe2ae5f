package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/launchdarkly/echo-contract-tests/framework"
)

// DefaultTimeout is the overall time limit for one request, including reading the response body.
const DefaultTimeout = time.Second * 10

const maxErrorBodyLength = 500

// Session is the one HTTP connection context shared by every test in a run. It holds a single
// http.Client so that connections to the echo service are reused between tests.
type Session struct {
	baseURL string
	client  *http.Client
}

// StatusError is returned by Session.Do when the service answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s returned HTTP status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned HTTP status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// NewSession creates a Session for the service at baseURL. A timeout of zero or less means
// DefaultTimeout; there is no way to make requests wait forever.
func NewSession(baseURL string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewSessionWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewSessionWithClient creates a Session that uses an existing http.Client.
func NewSessionWithClient(baseURL string, client *http.Client) *Session {
	return &Session{baseURL: baseURL, client: client}
}

func (s *Session) BaseURL() string {
	return s.baseURL
}

func (s *Session) Timeout() time.Duration {
	return s.client.Timeout
}

// Do sends the request and reads the whole response. Transport errors, and responses with a
// status outside of the 2xx range, are returned as errors; in the latter case the error is a
// *StatusError.
func (s *Session) Do(ctx context.Context, r Request, logger framework.Logger) (*Response, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	req, err := r.build(s.baseURL)
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	logger.Printf("Sending request: %s", r.Curl(s.baseURL))

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Printf("Request failed: %s", err)
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body from %s %s: %w", req.Method, req.URL, err)
	}
	logger.Printf("Received HTTP %d in %s: %s", resp.StatusCode, time.Since(started).Round(time.Millisecond), string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Close releases any idle connections held by the session.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}
