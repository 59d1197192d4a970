// Package devserver is a local stand-in for the remote answer service. It
// answers POST /ask and POST /search from YAML fixtures.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultTopK = 5

// Server is the development answer service.
type Server struct {
	httpServer *http.Server
	fixtures   atomic.Pointer[Fixtures]
	host       string
	port       int
}

type askRequest struct {
	Query *string `json:"query"`
	TopK  int     `json:"top_k"`
}

type askResponse struct {
	Answer  string           `json:"answer"`
	Context []map[string]any `json:"context"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// NewServer creates a development server serving fixtures.
func NewServer(fixtures *Fixtures, host string, port int) *Server {
	s := &Server{host: host, port: port}
	s.SetFixtures(fixtures)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Post("/search", s.handleSearch)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		Handler: r,
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// FixtureCount returns the number of fixture entries currently served.
func (s *Server) FixtureCount() int {
	return len(s.fixtures.Load().Entries)
}

// SetFixtures swaps the served fixtures. A nil value serves no fixtures.
func (s *Server) SetFixtures(f *Fixtures) {
	if f == nil {
		f = &Fixtures{DefaultAnswer: DefaultAnswer}
	}
	s.fixtures.Store(f)
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It blocks until the server is stopped.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("devhelper answer service listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	f := s.fixtures.Load()
	resp := askResponse{Answer: f.DefaultAnswer, Context: []map[string]any{}}
	if fx, found := f.Lookup(*req.Query); found {
		resp.Answer = fx.Answer
		for i, src := range fx.Context {
			if i >= req.TopK {
				break
			}
			resp.Context = append(resp.Context, src.toMap())
		}
	}

	slog.Debug("ask", "request_id", middleware.GetReqID(r.Context()), "top_k", req.TopK, "sources", len(resp.Context))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	f := s.fixtures.Load()
	resp := searchResponse{Query: *req.Query, Results: []searchResult{}}
	for i, fx := range f.Entries {
		if !fx.Matches(*req.Query) {
			continue
		}
		for j, src := range fx.Context {
			if len(resp.Results) >= req.TopK {
				break
			}
			resp.Results = append(resp.Results, searchResult{
				ID:       fmt.Sprintf("fixture-%d-%d", i, j),
				Text:     src.Text,
				Metadata: map[string]any{"source": src.Source},
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeRequest reads {query, top_k}. A missing query is rejected with 422;
// a missing or non-positive top_k falls back to the default.
func decodeRequest(w http.ResponseWriter, r *http.Request) (askRequest, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
		return req, false
	}
	if req.Query == nil {
		writeError(w, http.StatusUnprocessableEntity, "field required: query")
		return req, false
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
