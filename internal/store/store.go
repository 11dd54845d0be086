package store

import (
	"context"
	"errors"
	"strings"

	"bravepulse/internal/achievements"
	"bravepulse/internal/game"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidUser    = errors.New("first name and email are required")
)

// Backend is everything the game needs from persistence.
type Backend interface {
	game.Repository
	game.CheckpointStore
	achievements.Ledger
	Checkpoint(ctx context.Context) (*game.Checkpoint, error)
	ListUsers(ctx context.Context) ([]game.User, error)
	GetUser(ctx context.Context, id string) (game.User, error)
	UpsertUser(ctx context.Context, user game.User) (game.User, error)
	DeleteUser(ctx context.Context, id string) error
	Close() error
}

func normalizeUser(user game.User) (game.User, error) {
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.FirstName == "" || user.Email == "" {
		return game.User{}, ErrInvalidUser
	}
	return user, nil
}
