package reporter

import (
	"time"

	"bravepulse/internal/game"
)

// Metadata is the game summary attached to a score update.
type Metadata struct {
	GameInfo        GameInfo              `json:"gameInfo"`
	PlayedCards     []PlayedCard          `json:"playedCards"`
	Reactions       []game.RoundReactions `json:"reactions"`
	Scores          []RoundScores         `json:"scores"`
	Feedbacks       []RoundFeedback       `json:"feedbacks"`
	CustomCosts     []CustomCost          `json:"customCosts"`
	FatiguedPlayers []game.PlayerFatigue  `json:"fatiguedPlayers"`
	BurnoutHistory  []game.PlayerBurnout  `json:"burnoutHistory"`
}

type GameInfo struct {
	CurrentRound  int       `json:"currentRound"`
	TotalRounds   int       `json:"totalRounds"`
	StartedAt     time.Time `json:"startedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	TeamScore     int       `json:"teamScore"`
	PlayerCount   int       `json:"playerCount"`
	CardOrder     []string  `json:"cardOrder"`
}

type PlayedCard struct {
	Round                 int                        `json:"round"`
	CardID                string                     `json:"cardId"`
	Title                 string                     `json:"title,omitempty"`
	Scenario              string                     `json:"scenario,omitempty"`
	Emoji                 string                     `json:"emoji,omitempty"`
	IndividualGainAndCost *game.IndividualGainAndCost `json:"individualGainAndCost,omitempty"`
	TeamResults           *game.TeamResults           `json:"teamResults,omitempty"`
	Reactions             []NamedReaction            `json:"reactions"`
}

type NamedReaction struct {
	PlayerID    string            `json:"playerId"`
	PlayerName  string            `json:"playerName"`
	PlayerEmail string            `json:"playerEmail"`
	Reaction    game.ReactionType `json:"reaction"`
}

type RoundScores struct {
	Round        int           `json:"round"`
	CardID       string        `json:"cardId"`
	TeamScore    int           `json:"teamScore"`
	PlayerScores []NamedScores `json:"playerScores"`
}

type NamedScores struct {
	game.PlayerScores
	PlayerName string `json:"playerName"`
}

type RoundFeedback struct {
	Round    int             `json:"round"`
	CardID   string          `json:"cardId"`
	Feedback []NamedFeedback `json:"feedback"`
}

type NamedFeedback struct {
	game.ReactionFeedback
	PlayerName            string `json:"playerName"`
	CustomCost            *int   `json:"customCost,omitempty"`
	CustomCostTitle       string `json:"customCostTitle,omitempty"`
	CustomCostDescription string `json:"customCostDescription,omitempty"`
}

// CustomCost is one applied custom cost: the card's delta and the KPI the facilitator chose.
type CustomCost struct {
	Round      int               `json:"round"`
	CardID     string            `json:"cardId"`
	PlayerID   string            `json:"playerId"`
	PlayerName string            `json:"playerName"`
	Reaction   game.ReactionType `json:"reaction"`
	KPI        game.KPI          `json:"kpi"`
	Cost       int               `json:"cost"`
	Title      string            `json:"title,omitempty"`
}

// BuildMetadata summarizes state for the backend, resolving player names and card details.
// Unknown cards keep only their id; unknown players get an empty name.
func BuildMetadata(state *game.State, users []game.User, cards []game.SituationCard, maxRounds int) Metadata {
	usersByID := make(map[string]game.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}
	cardsByID := make(map[string]game.SituationCard, len(cards))
	for _, card := range cards {
		cardsByID[card.ID] = card
	}
	nameOf := func(playerID string) string {
		return usersByID[playerID].DisplayName()
	}

	meta := Metadata{
		GameInfo: GameInfo{
			CurrentRound:  state.CurrentRound,
			TotalRounds:   maxRounds,
			StartedAt:     state.StartedAt,
			LastUpdatedAt: state.LastUpdatedAt,
			TeamScore:     state.TeamScore,
			PlayerCount:   len(state.Players),
			CardOrder:     append([]string{}, state.CardOrder...),
		},
		PlayedCards:     []PlayedCard{},
		Reactions:       append([]game.RoundReactions{}, state.Reactions...),
		Scores:          []RoundScores{},
		Feedbacks:       []RoundFeedback{},
		CustomCosts:     []CustomCost{},
		FatiguedPlayers: append([]game.PlayerFatigue{}, state.FatiguedPlayers...),
		BurnoutHistory:  append([]game.PlayerBurnout{}, state.BurnoutHistory...),
	}

	for _, round := range state.Reactions {
		played := PlayedCard{Round: round.Round, CardID: round.CardID, Reactions: []NamedReaction{}}
		card, known := cardsByID[round.CardID]
		if known {
			played.Title = card.Title
			played.Scenario = card.Scenario
			played.Emoji = card.Emoji
			gains := card.IndividualGainAndCost
			results := card.TeamResults
			played.IndividualGainAndCost = &gains
			played.TeamResults = &results
		}
		for _, entry := range round.Reactions {
			played.Reactions = append(played.Reactions, NamedReaction{
				PlayerID:    entry.PlayerID,
				PlayerName:  nameOf(entry.PlayerID),
				PlayerEmail: usersByID[entry.PlayerID].Email,
				Reaction:    entry.Reaction,
			})
		}
		meta.PlayedCards = append(meta.PlayedCards, played)

		if len(round.Feedback) == 0 {
			continue
		}
		feedback := RoundFeedback{Round: round.Round, CardID: round.CardID}
		for _, entry := range round.Feedback {
			named := NamedFeedback{ReactionFeedback: entry, PlayerName: nameOf(entry.PlayerID)}
			reaction, _ := round.ReactionOf(entry.PlayerID)
			outcome := card.Reaction(reaction)
			if known && outcome.HasCustomCost() {
				named.CustomCost = outcome.CustomCost
				named.CustomCostTitle = outcome.CustomCostTitle
				named.CustomCostDescription = outcome.CustomCostDescription
				if entry.CustomCostKPI != "" {
					meta.CustomCosts = append(meta.CustomCosts, CustomCost{
						Round:      round.Round,
						CardID:     round.CardID,
						PlayerID:   entry.PlayerID,
						PlayerName: named.PlayerName,
						Reaction:   reaction,
						KPI:        entry.CustomCostKPI,
						Cost:       *outcome.CustomCost,
						Title:      outcome.CustomCostTitle,
					})
				}
			}
			feedback.Feedback = append(feedback.Feedback, named)
		}
		meta.Feedbacks = append(meta.Feedbacks, feedback)
	}

	for _, round := range state.Scores {
		scores := RoundScores{Round: round.Round, CardID: round.CardID, TeamScore: round.TeamScore}
		for _, entry := range round.PlayerScores {
			scores.PlayerScores = append(scores.PlayerScores, NamedScores{PlayerScores: entry, PlayerName: nameOf(entry.PlayerID)})
		}
		meta.Scores = append(meta.Scores, scores)
	}
	return meta
}
