package achievements

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"bravepulse/internal/game"
)

// Ledger is the append-only record of unlocks.
type Ledger interface {
	UnlockHistory(ctx context.Context) ([]UnlockedAchievement, error)
	AppendUnlock(ctx context.Context, unlock UnlockedAchievement) error
}

type UserLister interface {
	ListUsers(ctx context.Context) ([]game.User, error)
}

// Notifier is told about every new unlock after it is in the ledger. An empty playerID means a
// team unlock.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, achievement Achievement, playerID string) error
}

type Options struct {
	RoundScores []game.PlayerScores
	FinalScores []game.PlayerScores
}

type Engine struct {
	ledger    Ledger
	users     UserLister
	notifiers []Notifier
	mu        sync.Mutex
	now       func() time.Time
}

func NewEngine(ledger Ledger, users UserLister, notifiers ...Notifier) *Engine {
	return &Engine{
		ledger:    ledger,
		users:     users,
		notifiers: notifiers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Check returns the rules for trigger that are satisfied and not yet in the ledger.
// Missing score options default to the state's latest round.
func (e *Engine) Check(ctx context.Context, trigger Trigger, state *game.State, opts Options) ([]Candidate, error) {
	if state == nil {
		return nil, game.ErrNoActiveGame
	}
	if !trigger.Valid() {
		return nil, fmt.Errorf("unknown trigger %q", trigger)
	}
	users, err := e.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	history, err := e.ledger.UnlockHistory(ctx)
	if err != nil {
		return nil, err
	}
	unlocked := unlockedSet(history)

	base := CheckContext{
		State:        state,
		Users:        users,
		CurrentRound: state.CurrentRound,
		RoundScores:  opts.RoundScores,
		FinalScores:  opts.FinalScores,
	}
	if base.RoundScores == nil {
		if latest := state.LatestScores(); latest != nil {
			base.RoundScores = latest.PlayerScores
		}
	}
	if base.FinalScores == nil && trigger == TriggerGameEnd {
		base.FinalScores = state.FinalScores()
	}

	var candidates []Candidate
	for _, achievement := range ByTrigger(trigger) {
		if achievement.Category == CategoryTeam {
			if _, ok := unlocked[ledgerKey(achievement.Slug, "")]; ok {
				continue
			}
			if achievement.Check(base) {
				candidates = append(candidates, Candidate{Achievement: achievement})
			}
			continue
		}
		for _, playerID := range state.Players {
			if _, ok := unlocked[ledgerKey(achievement.Slug, playerID)]; ok {
				continue
			}
			playerCtx := base
			playerCtx.PlayerID = playerID
			if achievement.Check(playerCtx) {
				candidates = append(candidates, Candidate{Achievement: achievement, PlayerID: playerID})
			}
		}
	}
	return candidates, nil
}

// Unlock records the candidate and notifies subscribers. It reports false when the unlock was
// already in the ledger or the player is unknown.
func (e *Engine) Unlock(ctx context.Context, candidate Candidate) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	history, err := e.ledger.UnlockHistory(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := unlockedSet(history)[ledgerKey(candidate.Achievement.Slug, candidate.PlayerID)]; ok {
		return false, nil
	}
	if candidate.PlayerID != "" {
		known, err := e.knownUser(ctx, candidate.PlayerID)
		if err != nil {
			return false, err
		}
		if !known {
			log.Printf("achievement unlock skipped slug=%s player_id=%s reason=unknown_user", candidate.Achievement.Slug, candidate.PlayerID)
			return false, nil
		}
	}

	unlock := UnlockedAchievement{
		Slug:       candidate.Achievement.Slug,
		PlayerID:   candidate.PlayerID,
		UnlockedAt: e.now(),
		XP:         candidate.Achievement.XP,
	}
	if err := e.ledger.AppendUnlock(ctx, unlock); err != nil {
		return false, err
	}
	log.Printf("achievement unlocked slug=%s player_id=%s xp=%d", unlock.Slug, unlock.PlayerID, unlock.XP)

	for _, notifier := range e.notifiers {
		if err := notifier.AchievementUnlocked(ctx, candidate.Achievement, candidate.PlayerID); err != nil {
			log.Printf("achievement notify failed slug=%s player_id=%s error=%v", unlock.Slug, unlock.PlayerID, err)
		}
	}
	return true, nil
}

// CheckAndUnlock runs Check and unlocks every candidate, returning the ones newly unlocked.
// A failed unlock is logged and does not stop the others.
func (e *Engine) CheckAndUnlock(ctx context.Context, trigger Trigger, state *game.State, opts Options) ([]Candidate, error) {
	candidates, err := e.Check(ctx, trigger, state, opts)
	if err != nil {
		return nil, err
	}
	var unlocked []Candidate
	for _, candidate := range candidates {
		ok, err := e.Unlock(ctx, candidate)
		if err != nil {
			log.Printf("achievement unlock failed slug=%s player_id=%s error=%v", candidate.Achievement.Slug, candidate.PlayerID, err)
			continue
		}
		if ok {
			unlocked = append(unlocked, candidate)
		}
	}
	return unlocked, nil
}

// Unlocked returns the ledger entries, optionally filtered to one player.
func (e *Engine) Unlocked(ctx context.Context, playerID string) ([]UnlockedAchievement, error) {
	history, err := e.ledger.UnlockHistory(ctx)
	if err != nil {
		return nil, err
	}
	if playerID == "" {
		return history, nil
	}
	var out []UnlockedAchievement
	for _, unlock := range history {
		if unlock.PlayerID == playerID {
			out = append(out, unlock)
		}
	}
	return out, nil
}

// TotalXP sums the XP a player earned, including team unlocks.
func TotalXP(history []UnlockedAchievement, playerID string) int {
	total := 0
	for _, unlock := range history {
		if unlock.PlayerID == "" || unlock.PlayerID == playerID {
			total += unlock.XP
		}
	}
	return total
}

func (e *Engine) knownUser(ctx context.Context, playerID string) (bool, error) {
	users, err := e.users.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, user := range users {
		if user.ID == playerID {
			return true, nil
		}
	}
	return false, nil
}

type unlockKey struct {
	slug     string
	playerID string
}

func ledgerKey(slug, playerID string) unlockKey {
	return unlockKey{slug: slug, playerID: playerID}
}

func unlockedSet(history []UnlockedAchievement) map[unlockKey]struct{} {
	set := make(map[unlockKey]struct{}, len(history))
	for _, unlock := range history {
		set[ledgerKey(unlock.Slug, unlock.PlayerID)] = struct{}{}
	}
	return set
}
