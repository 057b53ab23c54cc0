// Package acvptest is a disposable in-process ACVP server double for
// transport/auth/session integration tests, playing the role the
// teacher's testcontainers-go Postgres fixture plays for the control
// plane — except there's no database to containerize here, so this is
// a plain net/http/httptest server routed with go-chi/chi/v5, the
// teacher's own REST-routing library reused for the opposite side of
// the wire (spec.md §9 test-tooling note).
package acvptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Server is a fake ACVP server: login, vector-set retrieval, and
// result submission with optional pending-then-ready polling.
type Server struct {
	httpServer *httptest.Server
	router     chi.Router

	mu sync.Mutex

	// ValidJWT is the token Login issues and Bearer-auth checks accept.
	// Requests bearing any other token get a 401 "JWT signature does
	// not match" body; an empty Authorization header gets "JWT
	// expired", mirroring the real server's behavior when a session
	// has gone stale.
	ValidJWT string

	// LoginFailN, when > 0, makes the first N login attempts fail with
	// 500 before the (N+1)th succeeds — unused by default.
	LoginFailN int
	loginCalls int

	// VectorSets maps "vsId" to the raw JSON document returned for a
	// GET on that vector set's URL.
	VectorSets map[string]json.RawMessage

	// PendingPolls is how many GETs on a submission's poll URL return
	// 202 before the (PendingPolls+1)th returns 200.
	PendingPolls int
	pollCounts   map[string]int

	// Submissions records each accepted result submission body, keyed
	// by vsId, for test assertions.
	Submissions map[string]json.RawMessage
}

// New starts the fake server and returns it; call Close when done.
func New() *Server {
	s := &Server{
		ValidJWT:    "test-jwt-token",
		VectorSets:  make(map[string]json.RawMessage),
		pollCounts:  make(map[string]int),
		Submissions: make(map[string]json.RawMessage),
	}
	s.router = s.buildRouter()
	s.httpServer = httptest.NewServer(s.router)
	return s
}

// URL is the server's base URL (http://host:port, no trailing slash).
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpServer.Close() }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Post("/acvp/v1/login", s.handleLogin)

	r.Route("/acvp/v1/testSessions/{sessionID}/vectorSets/{vsID}", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleGetVectorSet))
		r.Post("/results", s.requireAuth(s.handleSubmitResults))
	})

	r.Get("/acvp/v1/testSessions/{sessionID}/vectorSets/{vsID}/results/poll", s.requireAuth(s.handlePoll))

	return r
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" {
			writeErr(w, http.StatusUnauthorized, "JWT expired")
			return
		}
		token := authz
		const prefix = "Bearer "
		if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
			token = authz[len(prefix):]
		}
		if token != s.ValidJWT {
			writeErr(w, http.StatusUnauthorized, "JWT signature does not match")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.loginCalls++
	calls := s.loginCalls
	s.mu.Unlock()

	if calls <= s.LoginFailN {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": s.ValidJWT})
}

func (s *Server) handleGetVectorSet(w http.ResponseWriter, r *http.Request) {
	vsID := chi.URLParam(r, "vsID")
	s.mu.Lock()
	doc, ok := s.VectorSets[vsID]
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "vector set not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleSubmitResults(w http.ResponseWriter, r *http.Request) {
	vsID := chi.URLParam(r, "vsID")
	sessionID := chi.URLParam(r, "sessionID")

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed submission body")
		return
	}

	s.mu.Lock()
	s.Submissions[vsID] = body
	s.mu.Unlock()

	if s.PendingPolls <= 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
		return
	}

	pollURL := s.httpServer.URL + "/acvp/v1/testSessions/" + sessionID + "/vectorSets/" + vsID + "/results/poll"
	writeJSON(w, http.StatusAccepted, map[string]string{"url": pollURL})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	vsID := chi.URLParam(r, "vsID")

	s.mu.Lock()
	s.pollCounts[vsID]++
	count := s.pollCounts[vsID]
	s.mu.Unlock()

	if count <= s.PendingPolls {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "processing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "passed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
