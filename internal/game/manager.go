package game

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultMaxRounds = 8
	gameRoute        = "/game"
)

// Repository is the whole-record store for the game state. LoadState returns nil, nil when no
// game has been saved.
type Repository interface {
	LoadState(ctx context.Context) (*State, error)
	SaveState(ctx context.Context, state *State) error
	ClearState(ctx context.Context) error
}

// CheckpointStore is implemented by repositories that also remember the client's last route.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, checkpoint Checkpoint) error
}

type CardSource interface {
	Cards(ctx context.Context, language string) ([]SituationCard, error)
}

type Settings struct {
	MaxRounds int
	Language  string
}

type Status int32

const (
	StatusUninitialized Status = iota
	StatusInitializing
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Manager owns every mutation of the game state. Operations are serialized; each loads the
// stored record, applies the change to a copy, and only then saves it.
type Manager struct {
	repo     Repository
	cards    CardSource
	settings Settings
	mu       sync.Mutex
	status   atomic.Int32
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
}

func NewManager(repo Repository, cards CardSource, settings Settings) *Manager {
	if settings.MaxRounds <= 0 {
		settings.MaxRounds = DefaultMaxRounds
	}
	return &Manager{
		repo:     repo,
		cards:    cards,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
		shuffle:  rand.Shuffle,
	}
}

func (m *Manager) Status() Status {
	return Status(m.status.Load())
}

func (m *Manager) MaxRounds() int {
	return m.settings.MaxRounds
}

// Initialize starts a new game, replacing any stored one.
func (m *Manager) Initialize(ctx context.Context, playerIDs []string, shuffle bool, language string) (*State, error) {
	if len(playerIDs) == 0 {
		return nil, ErrNoPlayers
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	if !m.beginInitialize() {
		return nil, ErrInitializing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.initialize(ctx, playerIDs, shuffle, language)
	if err != nil {
		m.status.Store(int32(StatusError))
		return nil, err
	}
	m.status.Store(int32(StatusReady))
	log.Printf("game initialized players=%d cards=%d shuffle=%t language=%s", len(state.Players), len(state.CardOrder), shuffle, state.Language)
	return state.Clone(), nil
}

func (m *Manager) beginInitialize() bool {
	for {
		current := m.status.Load()
		if Status(current) == StatusInitializing {
			return false
		}
		if m.status.CompareAndSwap(current, int32(StatusInitializing)) {
			return true
		}
	}
}

func (m *Manager) initialize(ctx context.Context, playerIDs []string, shuffle bool, language string) (*State, error) {
	if language == "" {
		language = m.settings.Language
	}
	cards, err := m.cards.Cards(ctx, language)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	cardOrder := make([]string, 0, len(cards))
	for _, card := range cards {
		cardOrder = append(cardOrder, card.ID)
	}
	if shuffle {
		m.shuffle(len(cardOrder), func(i, j int) {
			cardOrder[i], cardOrder[j] = cardOrder[j], cardOrder[i]
		})
	}

	now := m.now()
	state := &State{
		CurrentRound:     1,
		CurrentCardIndex: 0,
		CardOrder:        cardOrder,
		ActivePlayerID:   playerIDs[0],
		Players:          append([]string(nil), playerIDs...),
		TeamScore:        len(playerIDs) * TeamScorePerPlayer,
		Language:         language,
		StartedAt:        now,
		LastUpdatedAt:    now,
	}
	if err := m.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Resume picks up a previously saved game after a restart.
func (m *Manager) Resume(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.repo.LoadState(ctx)
	if err != nil {
		m.status.Store(int32(StatusError))
		return nil, err
	}
	if state == nil {
		m.status.Store(int32(StatusUninitialized))
		return nil, ErrNoActiveGame
	}
	m.status.Store(int32(StatusReady))
	return state, nil
}

func (m *Manager) State(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.repo.ClearState(ctx); err != nil {
		return err
	}
	m.status.Store(int32(StatusUninitialized))
	return nil
}

// CurrentCard returns the card at the current index of the card order.
func (m *Manager) CurrentCard(ctx context.Context) (SituationCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.load(ctx)
	if err != nil {
		return SituationCard{}, err
	}
	if !state.CardsRemaining() {
		return SituationCard{}, ErrGameOver
	}
	return m.findCard(ctx, state.Language, state.CardIDAtCurrentIndex())
}

func (m *Manager) Card(ctx context.Context, language, cardID string) (SituationCard, error) {
	return m.findCard(ctx, language, cardID)
}

// RevealCard freezes the current card for the round. Revealing twice is a no-op.
func (m *Manager) RevealCard(ctx context.Context) (*State, error) {
	return m.update(ctx, func(state *State) (bool, error) {
		if state.IsCardRevealed {
			return false, nil
		}
		if !state.CardsRemaining() {
			return false, ErrGameOver
		}
		state.IsCardRevealed = true
		state.CurrentCardID = state.CardIDAtCurrentIndex()
		return true, nil
	})
}

func (m *Manager) SelectCard(ctx context.Context, cardID string) (*State, error) {
	return m.update(ctx, func(state *State) (bool, error) {
		found := false
		for _, id := range state.CardOrder {
			if id == cardID {
				found = true
				break
			}
		}
		if !found {
			return false, ErrCardNotFound
		}
		if state.SelectedCardID == cardID {
			return false, nil
		}
		state.SelectedCardID = cardID
		return true, nil
	})
}

// RecordReactions stores the current round's reactions once. A replay for a round that
// already has reactions leaves the stored round untouched.
func (m *Manager) RecordReactions(ctx context.Context, reactions map[string]ReactionType) (*State, error) {
	return m.update(ctx, func(state *State) (bool, error) {
		if !state.IsCardRevealed || state.CurrentCardID == "" {
			return false, ErrCardNotRevealed
		}
		if state.ReactionsForRound(state.CurrentRound) != nil {
			return false, nil
		}
		if len(reactions) == 0 {
			return false, fmt.Errorf("%w: at least one reaction is required", ErrInvalidReaction)
		}
		for playerID, reaction := range reactions {
			if !reaction.Valid() {
				return false, fmt.Errorf("%w %q for player %s", ErrInvalidReaction, reaction, playerID)
			}
			if !state.HasPlayer(playerID) {
				return false, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
			}
			if playerID == state.ActivePlayerID {
				return false, ErrActivePlayerReaction
			}
			if reaction == ReactionAssertive && state.IsFatigued(playerID, state.CurrentRound) {
				return false, fmt.Errorf("%w: %s", ErrPlayerFatigued, playerID)
			}
		}

		entries := make([]PlayerReaction, 0, len(reactions))
		for _, playerID := range state.Players {
			if reaction, ok := reactions[playerID]; ok {
				entries = append(entries, PlayerReaction{PlayerID: playerID, Reaction: reaction})
			}
		}
		state.Reactions = append(state.Reactions, RoundReactions{
			Round:     state.CurrentRound,
			CardID:    state.CurrentCardID,
			Reactions: entries,
		})
		return true, nil
	})
}

// RecordFeedback merges the facilitator's feedback for a player into the current round.
// Only assertive reactions and reactions carrying a custom cost take feedback.
func (m *Manager) RecordFeedback(ctx context.Context, playerID string, feedback ReactionFeedback) (*State, error) {
	if err := validateFeedback(feedback); err != nil {
		return nil, err
	}
	return m.update(ctx, func(state *State) (bool, error) {
		round := state.ReactionsForRound(state.CurrentRound)
		if round == nil {
			return false, ErrNoReactions
		}
		reaction, ok := round.ReactionOf(playerID)
		if !ok {
			return false, ErrFeedbackNotAllowed
		}
		if reaction != ReactionAssertive {
			card, err := m.findCard(ctx, state.Language, round.CardID)
			if err != nil {
				return false, err
			}
			if !card.Reaction(reaction).HasCustomCost() {
				return false, ErrFeedbackNotAllowed
			}
		}
		feedback.PlayerID = playerID
		for i := range round.Feedback {
			if round.Feedback[i].PlayerID == playerID {
				round.Feedback[i] = round.Feedback[i].merge(feedback)
				return true, nil
			}
		}
		round.Feedback = append(round.Feedback, feedback)
		return true, nil
	})
}

func validateFeedback(feedback ReactionFeedback) error {
	if feedback.RelationshipHealthFeedback != "" && !feedback.RelationshipHealthFeedback.Valid() {
		return fmt.Errorf("%w: relationship health %q", ErrInvalidFeedback, feedback.RelationshipHealthFeedback)
	}
	if feedback.GoalAchievementFeedback != "" && !feedback.GoalAchievementFeedback.Valid() {
		return fmt.Errorf("%w: goal achievement %q", ErrInvalidFeedback, feedback.GoalAchievementFeedback)
	}
	if feedback.CustomCostKPI != "" && !feedback.CustomCostKPI.Valid() {
		return fmt.Errorf("%w: custom cost kpi %q", ErrInvalidFeedback, feedback.CustomCostKPI)
	}
	return nil
}

// ScoreRound computes and persists the current round's scores. When the round already has
// scores they are returned as stored and created is false.
func (m *Manager) ScoreRound(ctx context.Context, feedback []ReactionFeedback) (state *State, scores RoundScores, created bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.load(ctx)
	if err != nil {
		return nil, RoundScores{}, false, err
	}
	if existing := stored.ScoresForRound(stored.CurrentRound); existing != nil {
		return stored, *existing, false, nil
	}
	reactions := stored.ReactionsForRound(stored.CurrentRound)
	if reactions == nil {
		return nil, RoundScores{}, false, ErrNoReactions
	}
	card, err := m.findCard(ctx, stored.Language, reactions.CardID)
	if err != nil {
		return nil, RoundScores{}, false, err
	}
	scores, err = ComputeRoundScores(stored, card, feedback)
	if err != nil {
		return nil, RoundScores{}, false, err
	}

	state = stored.Clone()
	state.applyRoundScores(scores)
	if err := m.save(ctx, state); err != nil {
		return nil, RoundScores{}, false, err
	}
	log.Printf("round scored round=%d card_id=%s team_score=%d burnouts=%d aggressive=%d", scores.Round, scores.CardID, scores.TeamScore, len(scores.BurnoutEvents), len(scores.AggressiveReactions))
	return state, scores, true, nil
}

// AdvanceRound moves to the next card and rotates the facilitator. The current round must be
// scored first, so a replayed advance cannot skip a round.
func (m *Manager) AdvanceRound(ctx context.Context) (*State, error) {
	return m.update(ctx, func(state *State) (bool, error) {
		if m.finished(state) {
			return false, ErrGameOver
		}
		if state.ScoresForRound(state.CurrentRound) == nil {
			return false, ErrRoundNotScored
		}
		state.CurrentRound++
		state.CurrentCardIndex++
		state.ActivePlayerID = state.nextActivePlayer()
		state.IsCardRevealed = false
		state.CurrentCardID = ""
		state.SelectedCardID = ""
		return true, nil
	})
}

// Finished reports whether the game has played its last round.
func (m *Manager) Finished(state *State) bool {
	if state == nil {
		return false
	}
	return m.finished(state)
}

func (m *Manager) finished(state *State) bool {
	return state.CurrentRound >= m.settings.MaxRounds || state.CurrentCardIndex+1 >= len(state.CardOrder)
}

func (m *Manager) SaveCheckpoint(ctx context.Context, route string) error {
	store, ok := m.repo.(CheckpointStore)
	if !ok {
		return nil
	}
	return store.SaveCheckpoint(ctx, Checkpoint{Route: route, Timestamp: m.now()})
}

func (m *Manager) update(ctx context.Context, mutate func(state *State) (bool, error)) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	state := stored.Clone()
	changed, err := mutate(state)
	if err != nil {
		return nil, err
	}
	if !changed {
		return stored, nil
	}
	if err := m.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (m *Manager) load(ctx context.Context) (*State, error) {
	state, err := m.repo.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoActiveGame
	}
	return state, nil
}

func (m *Manager) save(ctx context.Context, state *State) error {
	state.LastUpdatedAt = m.now()
	if err := m.repo.SaveState(ctx, state); err != nil {
		return err
	}
	if store, ok := m.repo.(CheckpointStore); ok {
		if err := store.SaveCheckpoint(ctx, Checkpoint{Route: gameRoute, Timestamp: state.LastUpdatedAt}); err != nil {
			log.Printf("save checkpoint failed route=%s error=%v", gameRoute, err)
		}
	}
	return nil
}

func (m *Manager) findCard(ctx context.Context, language, cardID string) (SituationCard, error) {
	if language == "" {
		language = m.settings.Language
	}
	cards, err := m.cards.Cards(ctx, language)
	if err != nil {
		return SituationCard{}, err
	}
	for _, card := range cards {
		if card.ID == cardID {
			return card, nil
		}
	}
	return SituationCard{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
}
