package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"bravepulse/internal/achievements"
	"bravepulse/internal/config"
	"bravepulse/internal/db"
	"bravepulse/internal/game"
)

func mustUpsert(t *testing.T, backend Backend, user game.User) game.User {
	t.Helper()
	saved, err := backend.UpsertUser(context.Background(), user)
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	return saved
}

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	state, err := backend.LoadState(ctx)
	if err != nil || state != nil {
		t.Fatalf("expected no state, got %+v err=%v", state, err)
	}

	ada := mustUpsert(t, backend, game.User{FirstName: " Ada ", LastName: "Lovelace", Email: "Ada@Example.com"})
	if ada.ID == "" || ada.Email != "ada@example.com" || ada.FirstName != "Ada" {
		t.Fatalf("unexpected normalized user: %+v", ada)
	}
	if _, err := backend.UpsertUser(ctx, game.User{FirstName: "Other", Email: "ada@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := backend.UpsertUser(ctx, game.User{Email: "x@example.com"}); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	ada.LastName = "King"
	updated := mustUpsert(t, backend, ada)
	if updated.ID != ada.ID || !updated.CreatedAt.Equal(ada.CreatedAt) {
		t.Fatalf("expected update in place, got %+v", updated)
	}
	grace := mustUpsert(t, backend, game.User{FirstName: "Grace", Email: "grace@example.com"})

	users, err := backend.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].LastName != "King" {
		t.Fatalf("unexpected users: %+v", users)
	}
	if err := backend.DeleteUser(ctx, grace.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := backend.GetUser(ctx, grace.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := backend.DeleteUser(ctx, grace.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}

	saved := &game.State{CurrentRound: 2, Players: []string{ada.ID}, CardOrder: []string{"a", "b"}, TeamScore: 14}
	if err := backend.SaveState(ctx, saved); err != nil {
		t.Fatalf("save state: %v", err)
	}
	if err := backend.SaveCheckpoint(ctx, game.Checkpoint{Route: "/game", Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}
	loaded, err := backend.LoadState(ctx)
	if err != nil || loaded == nil || loaded.CurrentRound != 2 || loaded.TeamScore != 14 {
		t.Fatalf("unexpected loaded state: %+v err=%v", loaded, err)
	}
	checkpoint, err := backend.Checkpoint(ctx)
	if err != nil || checkpoint == nil || checkpoint.Route != "/game" {
		t.Fatalf("unexpected checkpoint: %+v err=%v", checkpoint, err)
	}
	if err := backend.ClearState(ctx); err != nil {
		t.Fatalf("clear state: %v", err)
	}
	if loaded, _ := backend.LoadState(ctx); loaded != nil {
		t.Fatalf("expected state cleared")
	}
	if checkpoint, _ := backend.Checkpoint(ctx); checkpoint != nil {
		t.Fatalf("expected checkpoint cleared")
	}

	unlock := achievements.UnlockedAchievement{Slug: "50-club", UnlockedAt: time.Now().UTC(), XP: 50}
	for i := 0; i < 2; i++ {
		if err := backend.AppendUnlock(ctx, unlock); err != nil {
			t.Fatalf("append unlock: %v", err)
		}
	}
	if err := backend.AppendUnlock(ctx, achievements.UnlockedAchievement{Slug: "iron-mind", PlayerID: ada.ID, XP: 50, UnlockedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("append individual unlock: %v", err)
	}
	history, err := backend.UnlockHistory(ctx)
	if err != nil {
		t.Fatalf("unlock history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected duplicate unlock to be ignored, got %+v", history)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bravepulse.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	backend := NewRecordStore(kv)
	exerciseBackend(t, backend)

	if err := backend.SaveState(context.Background(), &game.State{CurrentRound: 3}); err != nil {
		t.Fatalf("save state: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer reopened.Close()
	state, err := NewRecordStore(reopened).LoadState(context.Background())
	if err != nil || state == nil || state.CurrentRound != 3 {
		t.Fatalf("expected state to survive reopen, got %+v err=%v", state, err)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestCachedKVServesStaleUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	cached := NewCachedKV(inner, 16, time.Minute)

	if err := cached.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := inner.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("inner set: %v", err)
	}
	value, err := cached.Get(ctx, "k")
	if err != nil || string(value) != "one" {
		t.Fatalf("expected cached value one, got %q err=%v", value, err)
	}
	cached.Invalidate("k")
	value, err = cached.Get(ctx, "k")
	if err != nil || string(value) != "two" {
		t.Fatalf("expected fresh value two, got %q err=%v", value, err)
	}

	if err := cached.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cached.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCachedKVExpires(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	cached := NewCachedKV(inner, 16, 20*time.Millisecond)
	if err := cached.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := inner.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("inner set: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	value, err := cached.Get(ctx, "k")
	if err != nil || string(value) != "two" {
		t.Fatalf("expected expired entry to reload, got %q err=%v", value, err)
	}
}

func TestCachedRecordStore(t *testing.T) {
	exerciseBackend(t, NewRecordStore(NewCachedKV(NewMemoryKV(), 8, time.Minute)))
}

func TestGormStore(t *testing.T) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		t.Skip("skipping test; DATABASE_URL not set")
	}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cleanup := conn.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&db.Event{}, &db.UnlockedAchievement{}, &db.Checkpoint{}, &db.GameState{}, &db.User{}} {
		if err := cleanup.Delete(model).Error; err != nil {
			t.Fatalf("clean table: %v", err)
		}
	}
	backend := NewGorm(conn)
	defer backend.Close()

	exerciseBackend(t, backend)

	ctx := context.Background()
	if err := backend.RecordEvent(ctx, db.EventRoundAdvanced, 2, "", map[string]int{"round": 2}); err != nil {
		t.Fatalf("record event: %v", err)
	}
	events, total, err := backend.Events(ctx, 10, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if total != 1 || len(events) != 1 || events[0].Type != db.EventRoundAdvanced || events[0].PlayerID != nil {
		t.Fatalf("unexpected events: total=%d %+v", total, events)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("expected postgres unique violation")
	}
	if !isUniqueViolation(&mysql.MySQLError{Number: 1062}) {
		t.Fatalf("expected mysql duplicate entry")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("expected plain error not to match")
	}
}
