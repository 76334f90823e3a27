// Package storetest provides an in-process fake of the remote resource
// store for tests. It follows json-server semantics for the REST shape
// the resource clients consume, and lets tests inject failures.
package storetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Server is a fake resource store listening on a local httptest server.
// Records are kept per collection in insertion order.
type Server struct {
	*httptest.Server

	collections map[string][]map[string]any
	failures    map[string][]int
	requests    []string
	mu          sync.Mutex
}

// New starts a fake store serving the given collections. The server is
// closed when the test ends.
func New(t testing.TB, collections ...string) *Server {
	t.Helper()

	s := &Server{
		collections: make(map[string][]map[string]any),
		failures:    make(map[string][]int),
	}
	for _, c := range collections {
		s.collections[c] = []map[string]any{}
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/{collection}", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/{collection}/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/{id}", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/{collection}/{id}", s.handleDelete).Methods(http.MethodDelete)
	return r
}

// Seed appends records to a collection, bypassing HTTP.
func (s *Server) Seed(collection string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		m, err := toMap(rec)
		if err != nil {
			panic(fmt.Sprintf("storetest: seed %s: %v", collection, err))
		}
		s.collections[collection] = append(s.collections[collection], m)
	}
}

// IDs returns the ids currently stored in a collection, in order.
func (s *Server) IDs(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.collections[collection]))
	for _, rec := range s.collections[collection] {
		ids = append(ids, idOf(rec))
	}
	return ids
}

// Decode unmarshals the stored record for id into out. It reports
// whether the record exists.
func (s *Server) Decode(collection, id string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(collection, id)
	if i < 0 {
		return false
	}
	b, _ := json.Marshal(s.collections[collection][i])
	return json.Unmarshal(b, out) == nil
}

// FailNext makes the next request with the given method answer status
// instead of being served. Calls queue up in order; a status of 0 lets
// that request through.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], status)
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		var status int
		if q := s.failures[r.Method]; len(q) > 0 {
			status, s.failures[r.Method] = q[0], q[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]

	s.mu.Lock()
	list, ok := s.collections[name]
	out := append([]map[string]any{}, list...)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	i := s.indexLocked(vars["collection"], vars["id"])
	var rec map[string]any
	if i >= 0 {
		rec = s.collections[vars["collection"]][i]
	}
	s.mu.Unlock()

	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]

	var rec map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	id := idOf(rec)
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	if s.indexLocked(name, id) >= 0 {
		http.Error(w, "duplicate id", http.StatusConflict)
		return
	}
	s.collections[name] = append(s.collections[name], rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var rec map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	rec["id"] = vars["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(vars["collection"], vars["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	s.collections[vars["collection"]][i] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["collection"]

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(name, vars["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	s.collections[name] = append(s.collections[name][:i], s.collections[name][i+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{})
}

// indexLocked must be called with s.mu held.
func (s *Server) indexLocked(collection, id string) int {
	for i, rec := range s.collections[collection] {
		if idOf(rec) == id {
			return i
		}
	}
	return -1
}

func idOf(rec map[string]any) string {
	id, _ := rec["id"].(string)
	return id
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
