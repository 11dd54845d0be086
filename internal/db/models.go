package db

import (
	"time"

	"gorm.io/datatypes"

	"bravepulse/internal/game"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36"`
	FirstName string    `gorm:"size:128;not null"`
	LastName  string    `gorm:"size:128;not null;default:''"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// GameState holds the whole game record as one JSON document, keyed like the local store.
type GameState struct {
	Key       string                         `gorm:"primaryKey;size:64"`
	State     datatypes.JSONType[game.State] `gorm:"not null"`
	UpdatedAt time.Time                      `gorm:"not null"`
}

type Checkpoint struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Route     string    `gorm:"size:255;not null"`
	Timestamp time.Time `gorm:"not null"`
}

// UnlockedAchievement rows are unique per slug and player; team unlocks store an empty PlayerKey.
type UnlockedAchievement struct {
	ID         uint      `gorm:"primaryKey"`
	Slug       string    `gorm:"size:64;not null;uniqueIndex:idx_unlocks_slug_player"`
	PlayerKey  string    `gorm:"size:36;not null;default:'';uniqueIndex:idx_unlocks_slug_player"`
	XP         int       `gorm:"not null"`
	UnlockedAt time.Time `gorm:"not null"`
}

func UserFromGame(user game.User) User {
	return User{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (u User) ToGame() game.User {
	return game.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
