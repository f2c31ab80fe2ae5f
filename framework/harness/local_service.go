package harness

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/launchdarkly/echo-contract-tests/framework"
)

const httpListenerTimeout = time.Second * 10

// LocalService is an HTTP service started in-process by the harness, such as the local echo
// service used for offline runs.
type LocalService struct {
	server *http.Server
	url    string
}

// StartLocalService starts serving handler on the given port (0 picks a free one) and waits
// until the listener answers a HEAD request, giving up after startupTimeout. A non-positive
// startupTimeout means the default of 10 seconds.
func StartLocalService(
	port int,
	handler http.Handler,
	startupTimeout time.Duration,
	logger framework.Logger,
) (*LocalService, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	if startupTimeout <= 0 {
		startupTimeout = httpListenerTimeout
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("can't listen on port %d: %w", port, err)
	}
	s := &LocalService{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: httpListenerTimeout,
		},
		url: "http://" + listener.Addr().String(),
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Local service at %s stopped: %s", s.url, err)
		}
	}()

	// Wait till the server is definitely listening for requests before we run any tests
	deadline := time.NewTimer(startupTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			_ = s.server.Close()
			return nil, fmt.Errorf("could not detect own listener at %s", s.url)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(s.url)
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == 200 {
					logger.Printf("Local service is listening at %s", s.url)
					return s, nil
				}
			}
		}
	}
}

// URL returns the base URL of the service.
func (s *LocalService) URL() string {
	return s.url
}

// Close shuts the service down, waiting briefly for active requests to finish.
func (s *LocalService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	return s.server.Shutdown(ctx)
}
