// Package registrytest provides in-process test doubles for
// registry.Client: a plain in-memory FakeClient for unit tests that talk to
// registry.CachedService directly, and a gorilla/mux-routed HTTP fake
// server for tests exercising registry.HTTPClient end to end.
package registrytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/warpstreamlabs/avroregistry/registry"
)

// FakeClient is an in-memory registry.Client. Every method is safe for
// concurrent use; GetByIDCallCount/GetLatestCallCount and the Before hook
// let single-flight tests observe and control how many times the registry
// was actually hit.
type FakeClient struct {
	mu sync.Mutex

	nextID    int32
	byID      map[int32]registry.SchemaInfo
	bySubject map[string][]registry.VersionInfo // ordered oldest -> newest

	getByIDCalls int64
	getLatestCalls int64

	// Before, if set, runs synchronously inside GetByID and GetLatest before
	// they return,
	// letting tests coordinate concurrent callers around a registry fetch.
	Before func()
}

// NewFakeClient constructs an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		byID:      map[int32]registry.SchemaInfo{},
		bySubject: map[string][]registry.VersionInfo{},
	}
}

// Seed registers schemaJSON under subject (appending a new version) and
// also makes it fetchable by id, returning the assigned id.
func (f *FakeClient) Seed(subject, schemaJSON string) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	info := registry.SchemaInfo{Kind: registry.KindAvro, Schema: schemaJSON, ID: id}
	f.byID[id] = info
	f.bySubject[subject] = append(f.bySubject[subject], registry.VersionInfo{
		SchemaInfo: info,
		Version:    len(f.bySubject[subject]) + 1,
	})
	return id
}

// GetByIDCallCount reports how many times GetByID actually ran its body
// (i.e. was not de-duplicated by a caller's own single-flight layer).
func (f *FakeClient) GetByIDCallCount() int64 { return atomic.LoadInt64(&f.getByIDCalls) }

// GetLatestCallCount is GetByIDCallCount's counterpart for GetLatest.
func (f *FakeClient) GetLatestCallCount() int64 { return atomic.LoadInt64(&f.getLatestCalls) }

func (f *FakeClient) GetByID(id int32) (registry.SchemaInfo, error) {
	atomic.AddInt64(&f.getByIDCalls, 1)
	if f.Before != nil {
		f.Before()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.byID[id]
	if !ok {
		return registry.SchemaInfo{}, fmt.Errorf("registrytest: no schema registered for id %d", id)
	}
	return info, nil
}

func (f *FakeClient) GetLatest(subject string) (registry.VersionInfo, error) {
	atomic.AddInt64(&f.getLatestCalls, 1)
	if f.Before != nil {
		f.Before()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.bySubject[subject]
	if len(versions) == 0 {
		return registry.VersionInfo{}, fmt.Errorf("registrytest: no versions registered for subject %q", subject)
	}
	return versions[len(versions)-1], nil
}

func (f *FakeClient) GetVersion(subject string, version int) (registry.SchemaInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.bySubject[subject] {
		if v.Version == version {
			return v.SchemaInfo, nil
		}
	}
	return registry.SchemaInfo{}, fmt.Errorf("registrytest: subject %q has no version %d", subject, version)
}

func (f *FakeClient) IDOf(subject string, schemaJSON string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.bySubject[subject] {
		if v.Schema == schemaJSON {
			return v.ID, nil
		}
	}
	return 0, fmt.Errorf("registrytest: subject %q has no registered version matching schema", subject)
}

func (f *FakeClient) Register(subject string, schemaJSON string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.bySubject[subject] {
		if v.Schema == schemaJSON {
			return v.ID, nil
		}
	}
	f.nextID++
	id := f.nextID
	info := registry.SchemaInfo{Kind: registry.KindAvro, Schema: schemaJSON, ID: id}
	f.byID[id] = info
	f.bySubject[subject] = append(f.bySubject[subject], registry.VersionInfo{
		SchemaInfo: info,
		Version:    len(f.bySubject[subject]) + 1,
	})
	return id, nil
}

var _ registry.Client = (*FakeClient)(nil)

//------------------------------------------------------------------------------
// HTTP fake server, routed with gorilla/mux to exercise registry.HTTPClient
// end to end.

type httpPayload struct {
	Schema     string `json:"schema"`
	SchemaType string `json:"schemaType,omitempty"`
	ID         int32  `json:"id"`
	Subject    string `json:"subject,omitempty"`
	Version    int    `json:"version,omitempty"`
}

// Server is an in-process HTTP fake of the Confluent Schema Registry REST
// API, backed by a FakeClient.
type Server struct {
	*httptest.Server
	client *FakeClient
}

// NewServer starts a fake registry HTTP server backed by client (a fresh
// FakeClient if nil).
func NewServer(client *FakeClient) *Server {
	if client == nil {
		client = NewFakeClient()
	}
	s := &Server{client: client}

	r := mux.NewRouter()
	r.HandleFunc("/schemas/ids/{id}", s.handleGetByID).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions/latest", s.handleGetLatest).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions/{version}", s.handleGetVersion).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{subject}/versions", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/subjects/{subject}", s.handleIDOf).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// Client exposes the FakeClient backing this server, e.g. to Seed it.
func (s *Server) Client() *FakeClient { return s.client }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, map[string]any{"error_code": 40403, "message": message})
}

func (s *Server) handleGetByID(w http.ResponseWriter, r *http.Request) {
	var id int32
	if _, err := fmt.Sscanf(mux.Vars(r)["id"], "%d", &id); err != nil {
		writeNotFound(w, "invalid id")
		return
	}
	info, err := s.client.GetByID(id)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, httpPayload{Schema: info.Schema, SchemaType: string(info.Kind), ID: info.ID})
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]
	v, err := s.client.GetLatest(subject)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, httpPayload{Schema: v.Schema, SchemaType: string(v.Kind), ID: v.ID, Subject: subject, Version: v.Version})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]
	var version int
	if _, err := fmt.Sscanf(mux.Vars(r)["version"], "%d", &version); err != nil {
		writeNotFound(w, "invalid version")
		return
	}
	info, err := s.client.GetVersion(subject, version)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, httpPayload{Schema: info.Schema, SchemaType: string(info.Kind), ID: info.ID, Subject: subject, Version: version})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]
	var body httpPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": 42201, "message": err.Error()})
		return
	}
	id, err := s.client.Register(subject, body.Schema)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error_code": 500, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, httpPayload{ID: id})
}

func (s *Server) handleIDOf(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]
	var body httpPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": 42201, "message": err.Error()})
		return
	}
	id, err := s.client.IDOf(subject, body.Schema)
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, httpPayload{ID: id, Subject: subject})
}
