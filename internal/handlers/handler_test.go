// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// a fake upstream eFood API and in-memory stand-ins for the Valkey and
// PostgreSQL backed stores.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"efoodadmin/internal/catalog"
	"efoodadmin/internal/efood"
	"efoodadmin/internal/export"
	"efoodadmin/internal/middleware"
	"efoodadmin/internal/session"
	"efoodadmin/internal/store"
)

// upstreamCall records one request received by the fake upstream.
type upstreamCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakeUpstream is an httptest server standing in for the eFood API.
type fakeUpstream struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	calls  []upstreamCall
	routes map[string]http.HandlerFunc // "METHOD /path"
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{t: t, routes: map[string]http.HandlerFunc{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	h(w, r)
}

// handle registers a handler for "METHOD /path".
func (f *fakeUpstream) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

// reply registers a fixed JSON response.
func (f *fakeUpstream) reply(route string, status int, body string) {
	f.handle(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// callsTo returns the recorded calls matching "METHOD /path".
func (f *fakeUpstream) callsTo(route string) []upstreamCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []upstreamCall
	for _, c := range f.calls {
		if c.Method+" "+c.Path == route {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeUpstream) client() *efood.Client {
	return efood.New(f.server.URL, 0)
}

// categoriesJSON is the upstream category collection used across tests:
// Pizza > Veg Pizza, Drinks, and an orphan whose parent is gone.
const categoriesJSON = `{"data":[
	{"id":1,"category_name":"Pizza","short_description":"Stone oven","is_sub_category":false,"parent_categories":[]},
	{"id":2,"category_name":"Veg Pizza","is_sub_category":true,"parent_categories":[{"id":1}]},
	{"id":3,"category_name":"Drinks","is_sub_category":false},
	{"id":4,"category_name":"Lost","is_sub_category":true,"parent_categories":[{"id":99}]}
]}`

// memCache is an in-memory CatalogCache.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
}

func (c *memCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidated++
}

// memStates is an in-memory ExpandStates.
type memStates struct {
	mu    sync.Mutex
	users map[int64]map[int]bool
}

func newMemStates() *memStates { return &memStates{users: map[int64]map[int]bool{}} }

func (s *memStates) Load(_ context.Context, userID int64) (*catalog.ExpandState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := catalog.NewExpandState()
	for id := range s.users[userID] {
		state.Expand(id)
	}
	return state, nil
}

func (s *memStates) Set(_ context.Context, userID int64, categoryID int, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[userID] == nil {
		s.users[userID] = map[int]bool{}
	}
	if expanded {
		s.users[userID][categoryID] = true
	} else {
		delete(s.users[userID], categoryID)
	}
	return nil
}

func (s *memStates) Forget(_ context.Context, userID int64, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.users[userID], id)
	}
	return nil
}

func (s *memStates) ForgetCategory(_ context.Context, categoryID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ids := range s.users {
		delete(ids, categoryID)
	}
	return nil
}

// ids returns the expanded ids saved for userID, sorted.
func (s *memStates) ids(userID int64) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []int{}
	for id := range s.users[userID] {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// memAudit is an in-memory AuditLog.
type memAudit struct {
	mu      sync.Mutex
	entries []store.AuditEntry
}

func (a *memAudit) Log(_ context.Context, userID int64, categoryID int, action, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, store.AuditEntry{
		ID:         int64(len(a.entries) + 1),
		UserID:     userID,
		CategoryID: int64(categoryID),
		Action:     action,
		Detail:     detail,
	})
}

func (a *memAudit) Recent(_ context.Context, limit int) ([]store.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []store.AuditEntry{}
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

// memCovers is an in-memory CoverStorage.
type memCovers struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

const memCoversURL = "https://cdn.test"

func newMemCovers() *memCovers { return &memCovers{objects: map[string][]byte{}} }

func (m *memCovers) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memCovers) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memCovers) FileURL(key string) string { return memCoversURL + "/" + key }

func (m *memCovers) ExtractKey(rawURL string) (string, bool) {
	prefix := memCoversURL + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return rawURL[len(prefix):], true
	}
	return "", false
}

// memSessions is an in-memory SessionStore recording what handlers did.
type memSessions struct {
	created   *session.Data
	updated   *session.Data
	destroyed bool
	createErr error
}

func (s *memSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session"})
	return "test-session", nil
}

func (s *memSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	s.updated = data
	return nil
}

func (s *memSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	s.destroyed = true
	return nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Upstream   *fakeUpstream
	Cache      *memCache
	States     *memStates
	Audit      *memAudit
	Covers     *memCovers
	Sessions   *memSessions
	Auth       *Auth
	Categories *Categories
	Rosters    *Rosters
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	up := newFakeUpstream(t)
	env := &testEnv{
		Upstream: up,
		Cache:    newMemCache(),
		States:   newMemStates(),
		Audit:    &memAudit{},
		Covers:   newMemCovers(),
		Sessions: &memSessions{},
	}
	api := up.client()
	env.Auth = NewAuth(api, env.Sessions)
	env.Categories = NewCategories(api, env.Cache, env.Sessions, env.States, env.Audit, env.Covers, export.NewCatalog(nil))
	env.Rosters = NewRosters(api, env.Cache, env.Sessions)
	return env
}

// adminSession and vendorSession are verified sessions for tests.
func adminSession() *session.Data {
	return &session.Data{UserID: 10, Email: "admin@efood.local", Name: "Admin", Role: efood.RoleAdmin, APIToken: "admin-token"}
}

func vendorSession() *session.Data {
	return &session.Data{UserID: 77, Email: "vendor@efood.local", Name: "Vendor", Role: efood.RoleVendor, APIToken: "vendor-token"}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, sess *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, sess)
}

// serve runs a request through handler mounted on pattern, with sess in
// the context (nil for anonymous requests).
func serve(t *testing.T, method, pattern, target string, body io.Reader, sess *session.Data, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, handler)

	req := httptest.NewRequest(method, target, body)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req = req.WithContext(ctxWithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// jsonBody encodes v for a request body.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// decode decodes a recorder body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// errorMessage returns the "error" field of a JSON error response.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}
