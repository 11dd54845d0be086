package game

import "time"

// State is the single authoritative record of a game in progress.
type State struct {
	CurrentRound     int              `json:"currentRound"`
	CurrentCardIndex int              `json:"currentCardIndex"`
	CardOrder        []string         `json:"cardOrder"`
	CurrentCardID    string           `json:"currentCardId,omitempty"`
	ActivePlayerID   string           `json:"activePlayerId,omitempty"`
	Players          []string         `json:"players"`
	IsCardRevealed   bool             `json:"isCardRevealed"`
	SelectedCardID   string           `json:"selectedCardId,omitempty"`
	Reactions        []RoundReactions `json:"reactions,omitempty"`
	Scores           []RoundScores    `json:"scores,omitempty"`
	TeamScore        int              `json:"teamScore"`
	FatiguedPlayers  []PlayerFatigue  `json:"fatiguedPlayers,omitempty"`
	BurnoutHistory   []PlayerBurnout  `json:"burnoutHistory,omitempty"`
	Language         string           `json:"language,omitempty"`
	StartedAt        time.Time        `json:"startedAt"`
	LastUpdatedAt    time.Time        `json:"lastUpdatedAt"`
}

// Clone returns a deep copy so callers can mutate without touching the stored record.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	clone.CardOrder = append([]string(nil), s.CardOrder...)
	clone.Players = append([]string(nil), s.Players...)
	clone.FatiguedPlayers = append([]PlayerFatigue(nil), s.FatiguedPlayers...)
	clone.BurnoutHistory = append([]PlayerBurnout(nil), s.BurnoutHistory...)
	if s.Reactions != nil {
		clone.Reactions = make([]RoundReactions, len(s.Reactions))
		for i, round := range s.Reactions {
			round.Reactions = append([]PlayerReaction(nil), round.Reactions...)
			round.Feedback = append([]ReactionFeedback(nil), round.Feedback...)
			clone.Reactions[i] = round
		}
	}
	if s.Scores != nil {
		clone.Scores = make([]RoundScores, len(s.Scores))
		for i, round := range s.Scores {
			round.PlayerScores = append([]PlayerScores(nil), round.PlayerScores...)
			round.Feedback = append([]ReactionFeedback(nil), round.Feedback...)
			round.FatiguedPlayers = append([]PlayerFatigue(nil), round.FatiguedPlayers...)
			round.BurnoutEvents = append([]PlayerBurnout(nil), round.BurnoutEvents...)
			round.AggressiveReactions = append([]AggressiveReaction(nil), round.AggressiveReactions...)
			clone.Scores[i] = round
		}
	}
	return &clone
}

func (s *State) ReactionsForRound(round int) *RoundReactions {
	for i := range s.Reactions {
		if s.Reactions[i].Round == round {
			return &s.Reactions[i]
		}
	}
	return nil
}

func (s *State) ScoresForRound(round int) *RoundScores {
	for i := range s.Scores {
		if s.Scores[i].Round == round {
			return &s.Scores[i]
		}
	}
	return nil
}

// LatestScores returns the most recently computed round, or nil before round one is scored.
func (s *State) LatestScores() *RoundScores {
	if len(s.Scores) == 0 {
		return nil
	}
	return &s.Scores[len(s.Scores)-1]
}

// PreviousPlayerScores returns the KPIs carried into the current round.
func (s *State) PreviousPlayerScores() []PlayerScores {
	latest := s.LatestScores()
	if latest == nil {
		scores := make([]PlayerScores, 0, len(s.Players))
		for _, playerID := range s.Players {
			scores = append(scores, DefaultScores(playerID))
		}
		return scores
	}
	return append([]PlayerScores(nil), latest.PlayerScores...)
}

// FinalScores returns the last round's player scores.
func (s *State) FinalScores() []PlayerScores {
	latest := s.LatestScores()
	if latest == nil {
		return nil
	}
	return append([]PlayerScores(nil), latest.PlayerScores...)
}

func (s *State) IsFatigued(playerID string, round int) bool {
	for _, fatigue := range s.FatiguedPlayers {
		if fatigue.PlayerID == playerID && fatigue.Round == round {
			return true
		}
	}
	return false
}

func (s *State) HasPlayer(playerID string) bool {
	for _, id := range s.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *State) CardsRemaining() bool {
	return s.CurrentCardIndex < len(s.CardOrder)
}

// CardIDAtCurrentIndex returns the card for the current round, revealed or not.
func (s *State) CardIDAtCurrentIndex() string {
	if !s.CardsRemaining() {
		return ""
	}
	return s.CardOrder[s.CurrentCardIndex]
}

func (s *State) nextActivePlayer() string {
	if len(s.Players) == 0 {
		return ""
	}
	index := 0
	for i, id := range s.Players {
		if id == s.ActivePlayerID {
			index = (i + 1) % len(s.Players)
			break
		}
	}
	return s.Players[index]
}

// applyRoundScores appends scores and rolls fatigue and burnout forward.
// Fatigue entries older than the current round expire; a player keeps only their latest entry.
func (s *State) applyRoundScores(scores RoundScores) {
	s.Scores = append(s.Scores, scores)
	s.TeamScore = scores.TeamScore

	merged := make([]PlayerFatigue, 0, len(s.FatiguedPlayers)+len(scores.FatiguedPlayers))
	for _, fatigue := range s.FatiguedPlayers {
		if fatigue.Round >= s.CurrentRound {
			merged = append(merged, fatigue)
		}
	}
	merged = append(merged, scores.FatiguedPlayers...)

	unique := make([]PlayerFatigue, 0, len(merged))
	indexByPlayer := make(map[string]int, len(merged))
	for _, fatigue := range merged {
		if i, ok := indexByPlayer[fatigue.PlayerID]; ok {
			if fatigue.Round > unique[i].Round {
				unique[i] = fatigue
			}
			continue
		}
		indexByPlayer[fatigue.PlayerID] = len(unique)
		unique = append(unique, fatigue)
	}
	if len(unique) == 0 {
		unique = nil
	}
	s.FatiguedPlayers = unique
	s.BurnoutHistory = append(s.BurnoutHistory, scores.BurnoutEvents...)
}
