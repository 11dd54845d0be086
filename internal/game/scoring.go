package game

// ComputeRoundScores derives the current round's scores from state without mutating it.
// A nil feedback slice falls back to the feedback recorded with the round's reactions.
func ComputeRoundScores(state *State, card SituationCard, feedback []ReactionFeedback) (RoundScores, error) {
	if state == nil {
		return RoundScores{}, ErrNoActiveGame
	}
	round := state.CurrentRound
	reactions := state.ReactionsForRound(round)
	if reactions == nil {
		return RoundScores{}, ErrNoReactions
	}
	if feedback == nil {
		feedback = reactions.Feedback
	}

	previous := state.PreviousPlayerScores()
	seen := make(map[string]struct{}, len(previous))
	playerScores := make([]PlayerScores, 0, len(state.Players))
	for _, prev := range previous {
		seen[prev.PlayerID] = struct{}{}
		playerScores = append(playerScores, scorePlayer(prev, *reactions, card, feedback))
	}
	for _, playerID := range state.Players {
		if _, ok := seen[playerID]; ok {
			continue
		}
		seen[playerID] = struct{}{}
		playerScores = append(playerScores, scorePlayer(DefaultScores(playerID), *reactions, card, feedback))
	}

	var burnouts []PlayerBurnout
	var fatigued []PlayerFatigue
	for i := range playerScores {
		kpi, ok := firstDepletedKPI(playerScores[i])
		if !ok {
			continue
		}
		playerScores[i].set(kpi, BurnoutRecoveryKPI)
		burnouts = append(burnouts, PlayerBurnout{PlayerID: playerScores[i].PlayerID, Round: round, KPI: kpi})
		fatigued = append(fatigued, PlayerFatigue{PlayerID: playerScores[i].PlayerID, Round: round + 1})
	}

	var aggressive []AggressiveReaction
	for _, entry := range reactions.Reactions {
		if entry.Reaction == ReactionAggressive {
			aggressive = append(aggressive, AggressiveReaction{PlayerID: entry.PlayerID, Round: round})
		}
	}

	teamScore := state.TeamScore + teamBonus(*reactions, card.TeamResults)
	teamScore -= AggressiveTeamPenalty * len(aggressive)
	teamScore -= BurnoutTeamPenalty * len(burnouts)

	return RoundScores{
		Round:               round,
		CardID:              reactions.CardID,
		PlayerScores:        playerScores,
		TeamScore:           teamScore,
		Feedback:            append([]ReactionFeedback(nil), feedback...),
		FatiguedPlayers:     fatigued,
		BurnoutEvents:       burnouts,
		AggressiveReactions: aggressive,
	}, nil
}

func scorePlayer(current PlayerScores, reactions RoundReactions, card SituationCard, feedback []ReactionFeedback) PlayerScores {
	reaction, ok := reactions.ReactionOf(current.PlayerID)
	if !ok {
		return current
	}
	outcome := card.Reaction(reaction)
	next := current
	next.SelfRespect += outcome.SelfRespect
	next.RelationshipHealth += outcome.RelationshipHealth
	next.GoalAchievement += outcome.GoalAchievement

	playerFeedback, hasFeedback := feedbackFor(feedback, current.PlayerID)
	if hasFeedback && outcome.HasCustomCost() && playerFeedback.CustomCostKPI.Valid() {
		next.add(playerFeedback.CustomCostKPI, *outcome.CustomCost)
	}
	if hasFeedback && reaction == ReactionAssertive {
		next.RelationshipHealth += playerFeedback.RelationshipHealthFeedback.delta()
		next.GoalAchievement += playerFeedback.GoalAchievementFeedback.delta()
	}

	for _, kpi := range KPIs {
		if next.Get(kpi) < 0 {
			next.set(kpi, 0)
		}
	}
	return next
}

func feedbackFor(feedback []ReactionFeedback, playerID string) (ReactionFeedback, bool) {
	for _, entry := range feedback {
		if entry.PlayerID == playerID {
			return entry, true
		}
	}
	return ReactionFeedback{}, false
}

func firstDepletedKPI(scores PlayerScores) (KPI, bool) {
	for _, kpi := range KPIs {
		if scores.Get(kpi) == 0 {
			return kpi, true
		}
	}
	return "", false
}

// teamBonus applies at most one team policy: all assertive, then only one, then per person.
func teamBonus(reactions RoundReactions, results TeamResults) int {
	total := len(reactions.Reactions)
	assertive := reactions.Count(ReactionAssertive)
	switch {
	case total > 0 && assertive == total && results.AllAssertive != nil:
		return *results.AllAssertive
	case assertive == 1 && results.OnlyOneAssertive != nil:
		return *results.OnlyOneAssertive
	case results.PerPersonAssertive != nil:
		return assertive * *results.PerPersonAssertive
	}
	return 0
}

// ScoreDelta reports how a player's KPIs moved during round against the latest earlier scored
// round, using post-shock values.
func (s *State) ScoreDelta(round int, playerID string) (PlayerScores, bool) {
	current := s.ScoresForRound(round)
	if current == nil {
		return PlayerScores{}, false
	}
	now, ok := current.ScoresOf(playerID)
	if !ok {
		return PlayerScores{}, false
	}
	before := DefaultScores(playerID)
	beforeRound := 0
	for _, prev := range s.Scores {
		if prev.Round >= round || prev.Round <= beforeRound {
			continue
		}
		if scores, found := prev.ScoresOf(playerID); found {
			before = scores
			beforeRound = prev.Round
		}
	}
	return PlayerScores{
		PlayerID:           playerID,
		SelfRespect:        now.SelfRespect - before.SelfRespect,
		RelationshipHealth: now.RelationshipHealth - before.RelationshipHealth,
		GoalAchievement:    now.GoalAchievement - before.GoalAchievement,
	}, true
}
