package achievements

import (
	"time"

	"bravepulse/internal/game"
)

// Trigger is the point in the game at which a rule is evaluated.
type Trigger string

const (
	TriggerInstant  Trigger = "instant"
	TriggerRoundEnd Trigger = "round_end"
	TriggerGameEnd  Trigger = "game_end"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerInstant, TriggerRoundEnd, TriggerGameEnd:
		return true
	}
	return false
}

type Category string

const (
	CategoryIndividual Category = "individual"
	CategoryTeam       Category = "team"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// CheckContext is everything a rule may look at. PlayerID is set only for individual rules.
type CheckContext struct {
	State        *game.State
	Users        []game.User
	CurrentRound int
	PlayerID     string
	RoundScores  []game.PlayerScores
	FinalScores  []game.PlayerScores
}

func (c CheckContext) finalScoresOf(playerID string) (game.PlayerScores, bool) {
	for _, scores := range c.FinalScores {
		if scores.PlayerID == playerID {
			return scores, true
		}
	}
	return game.PlayerScores{}, false
}

// Achievement is a fixed rule definition. Check must not mutate the context.
type Achievement struct {
	Slug           string                  `json:"slug"`
	TranslationKey string                  `json:"translationKey"`
	Icon           string                  `json:"icon"`
	XP             int                     `json:"xp"`
	Category       Category                `json:"category"`
	Difficulty     Difficulty              `json:"difficulty"`
	Trigger        Trigger                 `json:"checkTrigger"`
	Check          func(CheckContext) bool `json:"-"`
}

// UnlockedAchievement is one ledger entry. Team unlocks leave PlayerID empty.
type UnlockedAchievement struct {
	Slug       string    `json:"slug"`
	PlayerID   string    `json:"playerId,omitempty"`
	UnlockedAt time.Time `json:"unlockedAt"`
	XP         int       `json:"xp"`
}

// Candidate is a rule that was satisfied but not yet unlocked.
type Candidate struct {
	Achievement Achievement `json:"achievement"`
	PlayerID    string      `json:"playerId,omitempty"`
}
