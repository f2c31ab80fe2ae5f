// Package echoserver is an in-process echo service with the same request and response shapes as
// postman-echo.com, so that the test suite can run without network access.
package echoserver

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxBodySize = 1 << 20

// Server echoes requests back as JSON.
type Server struct {
	router *chi.Mux
	logger framework.Logger
}

// New creates a Server. The logger receives one line per request.
func New(logger framework.Logger) *Server {
	if logger == nil {
		logger = framework.NullLogger()
	}
	s := &Server{router: chi.NewRouter(), logger: logger}

	s.router.Use(chimw.Recoverer)
	s.router.Use(s.requestLog)
	s.router.Head("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get(servicedef.PathGet, s.handleGet)
	s.router.Post(servicedef.PathPost, s.handlePost)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("%s %s -> %d", r.Method, r.URL.RequestURI(), ww.Status())
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"args":    valuesObject(r.URL.Query()),
		"headers": headersObject(r),
		"url":     requestURL(r),
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "can't read request body: "+err.Error())
		return
	}
	if len(body) > maxBodySize {
		writeError(w, http.StatusRequestEntityTooLarge, "request body is too large")
		return
	}

	resp := servicedef.EchoResponse{
		Args:    valuesObject(r.URL.Query()),
		Data:    ldvalue.String(""),
		Files:   ldvalue.ObjectBuild().Build(),
		Form:    ldvalue.ObjectBuild().Build(),
		Headers: headersObject(r),
		JSON:    ldvalue.Null(),
		URL:     requestURL(r),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case len(body) == 0:
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "request body is not valid JSON")
			return
		}
		resp.Data = ldvalue.Parse(body)
		resp.JSON = resp.Data
	case mediaType == "application/x-www-form-urlencoded":
		fields, err := url.ParseQuery(string(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed form body: "+err.Error())
			return
		}
		resp.Form = valuesObject(fields)
		resp.JSON = resp.Form
	default:
		resp.Data = ldvalue.String(string(body))
	}

	writeJSON(w, http.StatusOK, resp)
}

// valuesObject converts query or form values to a JSON object; a key that was given more than
// once becomes an array of its values.
func valuesObject(values url.Values) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for k, vv := range values {
		if len(vv) == 1 {
			b.Set(k, ldvalue.String(vv[0]))
			continue
		}
		arr := ldvalue.ArrayBuild()
		for _, v := range vv {
			arr.Add(ldvalue.String(v))
		}
		b.Set(k, arr.Build())
	}
	return b.Build()
}

func headersObject(r *http.Request) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.Set(strings.ToLower(name), ldvalue.String(strings.Join(r.Header.Values(name), ", ")))
	}
	if r.Host != "" {
		b.Set("host", ldvalue.String(r.Host))
	}
	return b.Build()
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
