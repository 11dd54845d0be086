package achievements

import "bravepulse/internal/game"

const negotiatorMinAssertive = 3

var catalog = []Achievement{
	{Slug: "iron-mind", TranslationKey: "achievements.ironMind", Icon: "brain", XP: 50, Category: CategoryIndividual, Difficulty: DifficultyHard, Trigger: TriggerGameEnd, Check: ironMind},
	{Slug: "brave-10", TranslationKey: "achievements.brave10", Icon: "zap", XP: 40, Category: CategoryIndividual, Difficulty: DifficultyMedium, Trigger: TriggerGameEnd, Check: brave10},
	{Slug: "triple-balance", TranslationKey: "achievements.tripleBalance", Icon: "scale", XP: 45, Category: CategoryIndividual, Difficulty: DifficultyHard, Trigger: TriggerGameEnd, Check: tripleBalance},
	{Slug: "the-negotiator", TranslationKey: "achievements.theNegotiator", Icon: "handshake", XP: 35, Category: CategoryIndividual, Difficulty: DifficultyMedium, Trigger: TriggerGameEnd, Check: negotiator},
	{Slug: "zero-passive", TranslationKey: "achievements.zeroPassive", Icon: "x-circle", XP: 30, Category: CategoryIndividual, Difficulty: DifficultyMedium, Trigger: TriggerGameEnd, Check: zeroPassive},
	{Slug: "lone-brave", TranslationKey: "achievements.loneBrave", Icon: "user-check", XP: 30, Category: CategoryIndividual, Difficulty: DifficultyMedium, Trigger: TriggerRoundEnd, Check: loneBrave},
	{Slug: "no-burnout-squad", TranslationKey: "achievements.noBurnoutSquad", Icon: "users", XP: 60, Category: CategoryTeam, Difficulty: DifficultyHard, Trigger: TriggerGameEnd, Check: noBurnoutSquad},
	{Slug: "perfect-sprint", TranslationKey: "achievements.perfectSprint", Icon: "rocket", XP: 40, Category: CategoryTeam, Difficulty: DifficultyMedium, Trigger: TriggerRoundEnd, Check: perfectSprint},
	{Slug: "50-club", TranslationKey: "achievements.club50", Icon: "trophy", XP: 50, Category: CategoryTeam, Difficulty: DifficultyMedium, Trigger: TriggerRoundEnd, Check: teamScoreAtLeast(50)},
	{Slug: "75-club", TranslationKey: "achievements.club75", Icon: "trophy", XP: 60, Category: CategoryTeam, Difficulty: DifficultyHard, Trigger: TriggerRoundEnd, Check: teamScoreAtLeast(75)},
	{Slug: "100-club", TranslationKey: "achievements.club100", Icon: "trophy", XP: 75, Category: CategoryTeam, Difficulty: DifficultyVeryHard, Trigger: TriggerRoundEnd, Check: teamScoreAtLeast(100)},
}

// All returns every rule in catalog order.
func All() []Achievement {
	return append([]Achievement(nil), catalog...)
}

func BySlug(slug string) (Achievement, bool) {
	for _, achievement := range catalog {
		if achievement.Slug == slug {
			return achievement, true
		}
	}
	return Achievement{}, false
}

func ByTrigger(trigger Trigger) []Achievement {
	var out []Achievement
	for _, achievement := range catalog {
		if achievement.Trigger == trigger {
			out = append(out, achievement)
		}
	}
	return out
}

func ByCategory(category Category) []Achievement {
	var out []Achievement
	for _, achievement := range catalog {
		if achievement.Category == category {
			out = append(out, achievement)
		}
	}
	return out
}

func hadBurnout(state *game.State, playerID string) bool {
	for _, burnout := range state.BurnoutHistory {
		if burnout.PlayerID == playerID {
			return true
		}
	}
	return false
}

func ironMind(ctx CheckContext) bool {
	if ctx.PlayerID == "" {
		return false
	}
	return !hadBurnout(ctx.State, ctx.PlayerID)
}

func brave10(ctx CheckContext) bool {
	scores, ok := ctx.finalScoresOf(ctx.PlayerID)
	return ok && scores.GoalAchievement >= 10
}

func tripleBalance(ctx CheckContext) bool {
	scores, ok := ctx.finalScoresOf(ctx.PlayerID)
	return ok && scores.SelfRespect > 10 && scores.RelationshipHealth > 10 && scores.GoalAchievement > 10
}

// negotiator counts assertive rounds played before the player's first burnout round.
func negotiator(ctx CheckContext) bool {
	if ctx.PlayerID == "" {
		return false
	}
	count := 0
	for _, round := range ctx.State.Reactions {
		reaction, ok := round.ReactionOf(ctx.PlayerID)
		if !ok || reaction != game.ReactionAssertive {
			continue
		}
		burnedOutBefore := false
		for _, burnout := range ctx.State.BurnoutHistory {
			if burnout.PlayerID == ctx.PlayerID && burnout.Round < round.Round {
				burnedOutBefore = true
				break
			}
		}
		if !burnedOutBefore {
			count++
		}
	}
	return count >= negotiatorMinAssertive
}

func zeroPassive(ctx CheckContext) bool {
	if ctx.PlayerID == "" {
		return false
	}
	for _, round := range ctx.State.Reactions {
		if reaction, ok := round.ReactionOf(ctx.PlayerID); ok && reaction == game.ReactionPassive {
			return false
		}
	}
	return true
}

func lastRound(state *game.State) (game.RoundReactions, bool) {
	if len(state.Reactions) == 0 {
		return game.RoundReactions{}, false
	}
	return state.Reactions[len(state.Reactions)-1], true
}

func loneBrave(ctx CheckContext) bool {
	round, ok := lastRound(ctx.State)
	if !ok || ctx.PlayerID == "" {
		return false
	}
	reaction, ok := round.ReactionOf(ctx.PlayerID)
	return ok && reaction == game.ReactionAssertive && round.Count(game.ReactionAssertive) == 1
}

func noBurnoutSquad(ctx CheckContext) bool {
	return len(ctx.State.BurnoutHistory) == 0
}

func perfectSprint(ctx CheckContext) bool {
	round, ok := lastRound(ctx.State)
	if !ok || len(round.Reactions) == 0 {
		return false
	}
	return round.Count(game.ReactionAssertive) == len(round.Reactions)
}

func teamScoreAtLeast(threshold int) func(CheckContext) bool {
	return func(ctx CheckContext) bool {
		return ctx.State.TeamScore >= threshold
	}
}
