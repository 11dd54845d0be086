package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventGameStarted         = "game_started"
	EventReactionsRecorded   = "reactions_recorded"
	EventScoresRecorded      = "scores_recorded"
	EventRoundAdvanced       = "round_advanced"
	EventAchievementUnlocked = "achievement_unlocked"
	EventGameFinished        = "game_finished"
	EventGameReset           = "game_reset"
)

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	Round     int            `gorm:"index;not null"`
	PlayerID  *string        `gorm:"size:36;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
