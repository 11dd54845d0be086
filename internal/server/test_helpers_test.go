package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bravepulse/internal/achievements"
	"bravepulse/internal/cards"
	"bravepulse/internal/config"
	"bravepulse/internal/db"
	"bravepulse/internal/game"
	"bravepulse/internal/store"
)

type fakeReporter struct {
	mu       sync.Mutex
	started  [][]game.User
	finished []*game.State
}

func (r *fakeReporter) StartGame(ctx context.Context, players []game.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, players)
	return nil
}

func (r *fakeReporter) FinishGame(ctx context.Context, state *game.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, state)
	return nil
}

type fakeEventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *fakeEventRecorder) RecordEvent(ctx context.Context, eventType string, round int, playerID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
	return nil
}

func (r *fakeEventRecorder) Events(ctx context.Context, limit, offset int) ([]db.Event, int64, error) {
	return nil, 0, nil
}

func (r *fakeEventRecorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, typ := range r.types {
		if typ == eventType {
			n++
		}
	}
	return n
}

type testApp struct {
	srv      *Server
	store    *store.RecordStore
	reporter *fakeReporter
	ts       *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.MaxRounds = 2
	backend := store.NewMemory()
	catalog := cards.NewCatalog("")
	hub := NewHub()
	reporter := &fakeReporter{}
	srv := New(cfg, Deps{
		Store:        backend,
		Cards:        catalog,
		Manager:      game.NewManager(backend, catalog, game.Settings{MaxRounds: cfg.MaxRounds, Language: "en"}),
		Achievements: achievements.NewEngine(backend, backend, hub),
		Hub:          hub,
		Reporter:     reporter,
	})
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return &testApp{srv: srv, store: backend, reporter: reporter, ts: ts}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}
