package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bravepulse/internal/achievements"
	"bravepulse/internal/game"
)

const (
	keyUsers      = "users"
	keyGameState  = "game_state"
	keyCheckpoint = "checkpoint"
	keyUnlocks    = "unlocked_achievements"
)

// RecordStore keeps each record as one JSON document in a KV.
type RecordStore struct {
	kv  KV
	mu  sync.Mutex
	now func() time.Time
}

func NewRecordStore(kv KV) *RecordStore {
	return &RecordStore{kv: kv, now: func() time.Time { return time.Now().UTC() }}
}

// NewMemory returns a RecordStore that lives only in process memory.
func NewMemory() *RecordStore {
	return NewRecordStore(NewMemoryKV())
}

func (s *RecordStore) read(ctx context.Context, key string, target any) (bool, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RecordStore) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

func (s *RecordStore) LoadState(ctx context.Context) (*game.State, error) {
	var state game.State
	found, err := s.read(ctx, keyGameState, &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (s *RecordStore) SaveState(ctx context.Context, state *game.State) error {
	return s.write(ctx, keyGameState, state)
}

// ClearState removes the game and its checkpoint.
func (s *RecordStore) ClearState(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyGameState); err != nil {
		return err
	}
	return s.kv.Delete(ctx, keyCheckpoint)
}

func (s *RecordStore) SaveCheckpoint(ctx context.Context, checkpoint game.Checkpoint) error {
	return s.write(ctx, keyCheckpoint, checkpoint)
}

func (s *RecordStore) Checkpoint(ctx context.Context) (*game.Checkpoint, error) {
	var checkpoint game.Checkpoint
	found, err := s.read(ctx, keyCheckpoint, &checkpoint)
	if err != nil || !found {
		return nil, err
	}
	return &checkpoint, nil
}

func (s *RecordStore) ListUsers(ctx context.Context) ([]game.User, error) {
	var users []game.User
	if _, err := s.read(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RecordStore) GetUser(ctx context.Context, id string) (game.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return game.User{}, err
	}
	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return game.User{}, ErrUserNotFound
}

// UpsertUser creates the user when ID is empty or unknown, otherwise replaces it.
func (s *RecordStore) UpsertUser(ctx context.Context, user game.User) (game.User, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return game.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.ListUsers(ctx)
	if err != nil {
		return game.User{}, err
	}
	now := s.now()
	index := -1
	for i, existing := range users {
		if existing.ID == user.ID && user.ID != "" {
			index = i
			continue
		}
		if existing.Email == user.Email {
			return game.User{}, ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.UpdatedAt = now
	if index >= 0 {
		user.CreatedAt = users[index].CreatedAt
		users[index] = user
	} else {
		user.CreatedAt = now
		users = append(users, user)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if err := s.write(ctx, keyUsers, users); err != nil {
		return game.User{}, err
	}
	return user, nil
}

func (s *RecordStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}
	for i, user := range users {
		if user.ID == id {
			users = append(users[:i], users[i+1:]...)
			return s.write(ctx, keyUsers, users)
		}
	}
	return ErrUserNotFound
}

func (s *RecordStore) UnlockHistory(ctx context.Context) ([]achievements.UnlockedAchievement, error) {
	var history []achievements.UnlockedAchievement
	if _, err := s.read(ctx, keyUnlocks, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// AppendUnlock ignores an entry whose slug and player are already recorded.
func (s *RecordStore) AppendUnlock(ctx context.Context, unlock achievements.UnlockedAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.UnlockHistory(ctx)
	if err != nil {
		return err
	}
	for _, existing := range history {
		if existing.Slug == unlock.Slug && existing.PlayerID == unlock.PlayerID {
			return nil
		}
	}
	return s.write(ctx, keyUnlocks, append(history, unlock))
}

func (s *RecordStore) Close() error {
	return s.kv.Close()
}
