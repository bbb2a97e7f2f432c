// Package stubbackend serves fixture responses in the shapes of the RetailSense
// REST backend. It backs local development and the HTTP tests.
package stubbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// APIPrefix is where the stub mounts the backend API.
const APIPrefix = "/api"

// Route is the canned response for one path.
type Route struct {
	Status int
	Body   string
	Delay  time.Duration
	// Gate, when set, holds the response until it is closed.
	Gate chan struct{}
}

// Request records what the stub received.
type Request struct {
	Path          string
	Query         url.Values
	Authorization string
}

// Backend is a configurable fake of the RetailSense REST API
type Backend struct {
	mu       sync.Mutex
	routes   map[string]Route
	requests []Request
	token    string
}

// New returns a backend serving DefaultRoutes.
func New() *Backend {
	return &Backend{routes: DefaultRoutes()}
}

// RequireToken makes every data route answer 401 unless the bearer matches.
func (b *Backend) RequireToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// Set replaces the response for path.
func (b *Backend) Set(path string, route Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[path] = route
}

// SetBody replaces the body for path, answering 200.
func (b *Backend) SetBody(path, body string) {
	b.Set(path, Route{Body: body})
}

// Fail makes path answer with status.
func (b *Backend) Fail(path string, status int) {
	b.Set(path, Route{Status: status, Body: `{"error":"stubbed failure"}`})
}

// Hits counts requests received for path.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request for path.
func (b *Backend) Last(path string) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return Request{}, false
}

// Handler returns the mux router for the backend, mounted under APIPrefix.
func (b *Backend) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix(APIPrefix).Subrouter()

	api.HandleFunc(PathLogin, b.login).Methods(http.MethodPost)
	for _, path := range []string{
		PathSalesTrend,
		PathTopProducts,
		PathCategoryDistribution,
		PathProductStats,
		PathSalesSummary,
		PathAIInsights,
		PathProducts,
		PathSales,
	} {
		api.HandleFunc(path, b.serve(path)).Methods(http.MethodGet)
	}

	return r
}

func (b *Backend) serve(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Path:          path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
		})
		route, ok := b.routes[path]
		token := b.token
		b.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, `{"error":"not found"}`)
			return
		}

		if route.Gate != nil {
			select {
			case <-route.Gate:
			case <-r.Context().Done():
				return
			}
		}
		if route.Delay > 0 {
			select {
			case <-time.After(route.Delay):
			case <-r.Context().Done():
				return
			}
		}

		status := route.Status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, route.Body)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeJSON(w, http.StatusUnauthorized, `{"error":"invalid credentials"}`)
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, Request{Path: PathLogin})
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, loginJSON)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Server is a running Backend on a loopback listener.
type Server struct {
	*Backend
	ts *httptest.Server
}

// Start launches a stub backend; callers must Close it.
func Start() *Server {
	b := New()
	return &Server{Backend: b, ts: httptest.NewServer(b.Handler())}
}

// BaseURL is the API root to hand to apiclient.NewClient.
func (s *Server) BaseURL() string {
	return s.ts.URL + APIPrefix
}

func (s *Server) Close() {
	s.ts.Close()
}
