// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

// Package arcgistest provides a scripted in-process feature server for tests.
//
// Route payloads are registered per path; every incoming request is captured
// with its merged query and form parameters so tests can assert on exactly
// what went over the wire, including that nothing did.
package arcgistest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Request is one captured request.
type Request struct {
	Method string
	Path   string
	// Params merges query-string and body form parameters.
	Params url.Values
	// Files maps multipart field names to the uploaded file names.
	Files map[string]string
}

// Param returns the first value of the named parameter.
func (r Request) Param(key string) string {
	return r.Params.Get(key)
}

// HasParam reports whether the named parameter was sent at all.
func (r Request) HasParam(key string) bool {
	return r.Params.Has(key)
}

// Server is a fake feature server backed by httptest and a chi router.
type Server struct {
	srv    *httptest.Server
	router *chi.Mux

	mu       sync.Mutex
	requests []Request
}

// New starts a fake server and closes it when the test finishes.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{router: chi.NewRouter()}
	s.router.Use(s.capture)
	s.srv = httptest.NewServer(s.router)
	t.Cleanup(s.srv.Close)

	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Handle serves doc, JSON-encoded, for every request to path.
func (s *Server) Handle(path string, doc any) {
	s.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, doc)
	})
}

// HandleSeq serves one document per request in order; the last one repeats
// once the script is exhausted.
func (s *Server) HandleSeq(path string, docs ...any) {
	var (
		mu   sync.Mutex
		next int
	)
	s.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		doc := docs[next]
		if next < len(docs)-1 {
			next++
		}
		mu.Unlock()
		writeJSON(w, doc)
	})
}

// HandleFunc registers a custom handler for path. The capture middleware has
// already parsed the request form by the time the handler runs.
func (s *Server) HandleFunc(path string, h http.HandlerFunc) {
	s.router.HandleFunc(path, h)
}

// Requests returns the captured requests to path, or every request when path
// is empty.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		return append([]Request(nil), s.requests...)
	}
	var out []Request
	for _, r := range s.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests hit path.
func (s *Server) Count(path string) int {
	return len(s.Requests(path))
}

// Last returns the most recent request to path and reports whether one
// exists.
func (s *Server) Last(path string) (Request, bool) {
	reqs := s.Requests(path)
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

func (s *Server) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			_ = r.ParseMultipartForm(4 << 20)
		} else {
			_ = r.ParseForm()
		}

		captured := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Params: cloneValues(r.Form),
		}
		if r.MultipartForm != nil {
			captured.Files = make(map[string]string, len(r.MultipartForm.File))
			for field, headers := range r.MultipartForm.File {
				if len(headers) > 0 {
					captured.Files[field] = headers[0].Filename
				}
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, captured)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func writeJSON(w http.ResponseWriter, doc any) {
	w.Header().Set("Content-Type", "application/json")
	switch d := doc.(type) {
	case string:
		_, _ = w.Write([]byte(d))
	case []byte:
		_, _ = w.Write(d)
	default:
		_ = json.NewEncoder(w).Encode(doc)
	}
}
