package game

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int {
	return &v
}

func assertiveCard() SituationCard {
	return SituationCard{
		ID:    "card-1",
		Title: "Deadline push",
		IndividualGainAndCost: IndividualGainAndCost{
			Passive:    ReactionGainAndCost{},
			Aggressive: ReactionGainAndCost{SelfRespect: 1, RelationshipHealth: -2},
			Assertive:  ReactionGainAndCost{SelfRespect: 2, RelationshipHealth: -3},
		},
		TeamResults: TeamResults{PerPersonAssertive: intPtr(5)},
	}
}

func roundOneState(players []string, reactions ...PlayerReaction) *State {
	return &State{
		CurrentRound: 1,
		CardOrder:    []string{"card-1", "card-2"},
		Players:      players,
		TeamScore:    len(players) * TeamScorePerPlayer,
		Reactions: []RoundReactions{{
			Round:     1,
			CardID:    "card-1",
			Reactions: reactions,
		}},
	}
}

func TestComputeRoundScoresPerPersonBonus(t *testing.T) {
	state := roundOneState([]string{"p1", "p2", "p3", "p4"},
		PlayerReaction{PlayerID: "p1", Reaction: ReactionAssertive},
		PlayerReaction{PlayerID: "p2", Reaction: ReactionAssertive},
		PlayerReaction{PlayerID: "p3", Reaction: ReactionAssertive},
		PlayerReaction{PlayerID: "p4", Reaction: ReactionPassive},
	)

	scores, err := ComputeRoundScores(state, assertiveCard(), nil)
	if err != nil {
		t.Fatalf("compute scores: %v", err)
	}
	if scores.TeamScore != 55 {
		t.Fatalf("expected team score 55, got %d", scores.TeamScore)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		got, _ := scores.ScoresOf(id)
		want := PlayerScores{PlayerID: id, SelfRespect: 7, RelationshipHealth: 2, GoalAchievement: 5}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("scores for %s mismatch (-want +got):\n%s", id, diff)
		}
	}
	passive, _ := scores.ScoresOf("p4")
	if diff := cmp.Diff(DefaultScores("p4"), passive); diff != "" {
		t.Fatalf("passive scores mismatch (-want +got):\n%s", diff)
	}
	if len(scores.BurnoutEvents) != 0 || len(scores.FatiguedPlayers) != 0 {
		t.Fatalf("expected no burnout, got %+v", scores.BurnoutEvents)
	}
}

func TestComputeRoundScoresBurnoutShock(t *testing.T) {
	state := roundOneState([]string{"p1", "p2"})
	state.CurrentRound = 2
	state.TeamScore = 20
	state.Scores = []RoundScores{{
		Round:  1,
		CardID: "card-0",
		PlayerScores: []PlayerScores{
			{PlayerID: "p1", SelfRespect: 5, RelationshipHealth: 5, GoalAchievement: 5},
			{PlayerID: "p2", SelfRespect: 6, RelationshipHealth: 2, GoalAchievement: 5},
		},
		TeamScore: 20,
	}}
	state.Reactions = []RoundReactions{{
		Round:     2,
		CardID:    "card-1",
		Reactions: []PlayerReaction{{PlayerID: "p2", Reaction: ReactionAssertive}},
	}}
	card := assertiveCard()
	card.TeamResults = TeamResults{}

	scores, err := ComputeRoundScores(state, card, nil)
	if err != nil {
		t.Fatalf("compute scores: %v", err)
	}
	p2, _ := scores.ScoresOf("p2")
	if p2.RelationshipHealth != BurnoutRecoveryKPI {
		t.Fatalf("expected relationship health reset to %d, got %d", BurnoutRecoveryKPI, p2.RelationshipHealth)
	}
	if scores.TeamScore != 10 {
		t.Fatalf("expected team score 10, got %d", scores.TeamScore)
	}
	wantBurnout := []PlayerBurnout{{PlayerID: "p2", Round: 2, KPI: KPIRelationshipHealth}}
	if diff := cmp.Diff(wantBurnout, scores.BurnoutEvents); diff != "" {
		t.Fatalf("burnout mismatch (-want +got):\n%s", diff)
	}
	wantFatigue := []PlayerFatigue{{PlayerID: "p2", Round: 3}}
	if diff := cmp.Diff(wantFatigue, scores.FatiguedPlayers); diff != "" {
		t.Fatalf("fatigue mismatch (-want +got):\n%s", diff)
	}

	scored := state.Clone()
	scored.applyRoundScores(scores)
	delta, ok := scored.ScoreDelta(2, "p2")
	if !ok {
		t.Fatalf("expected score delta for p2")
	}
	if delta.RelationshipHealth != 1 {
		t.Fatalf("expected post-shock delta 1, got %d", delta.RelationshipHealth)
	}
}

func TestScoreDeltaSkipsUnscoredRounds(t *testing.T) {
	state := &State{Scores: []RoundScores{
		{Round: 1, PlayerScores: []PlayerScores{{PlayerID: "p1", SelfRespect: 7, RelationshipHealth: 4, GoalAchievement: 5}}},
		{Round: 3, PlayerScores: []PlayerScores{{PlayerID: "p1", SelfRespect: 8, RelationshipHealth: 6, GoalAchievement: 2}}},
	}}
	delta, ok := state.ScoreDelta(3, "p1")
	if !ok {
		t.Fatalf("expected score delta for p1")
	}
	want := PlayerScores{PlayerID: "p1", SelfRespect: 1, RelationshipHealth: 2, GoalAchievement: -3}
	if diff := cmp.Diff(want, delta); diff != "" {
		t.Fatalf("delta mismatch (-want +got):\n%s", diff)
	}
	if _, ok := state.ScoreDelta(2, "p1"); ok {
		t.Fatalf("expected no delta for an unscored round")
	}
}

func TestComputeRoundScoresFloorAndFirstDepletedKPIOnly(t *testing.T) {
	state := roundOneState([]string{"p1"},
		PlayerReaction{PlayerID: "p1", Reaction: ReactionAggressive},
	)
	card := SituationCard{
		ID: "card-1",
		IndividualGainAndCost: IndividualGainAndCost{
			Aggressive: ReactionGainAndCost{SelfRespect: -9, RelationshipHealth: -9, GoalAchievement: 1},
		},
	}

	scores, err := ComputeRoundScores(state, card, nil)
	if err != nil {
		t.Fatalf("compute scores: %v", err)
	}
	got, _ := scores.ScoresOf("p1")
	want := PlayerScores{PlayerID: "p1", SelfRespect: 3, RelationshipHealth: 0, GoalAchievement: 6}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
	// 10 - 3 aggressive - 10 burnout
	if scores.TeamScore != -3 {
		t.Fatalf("expected team score -3, got %d", scores.TeamScore)
	}
	if len(scores.AggressiveReactions) != 1 {
		t.Fatalf("expected one aggressive reaction, got %d", len(scores.AggressiveReactions))
	}
}

func TestComputeRoundScoresFeedbackAndCustomCost(t *testing.T) {
	state := roundOneState([]string{"p1", "p2", "p3"},
		PlayerReaction{PlayerID: "p2", Reaction: ReactionAssertive},
		PlayerReaction{PlayerID: "p3", Reaction: ReactionPassive},
	)
	card := SituationCard{
		ID: "card-1",
		IndividualGainAndCost: IndividualGainAndCost{
			Assertive: ReactionGainAndCost{SelfRespect: 1, CustomCost: intPtr(-2)},
		},
	}
	feedback := []ReactionFeedback{
		{PlayerID: "p2", RelationshipHealthFeedback: RelationshipGood, GoalAchievementFeedback: GoalCouldnt, CustomCostKPI: KPISelfRespect},
		{PlayerID: "p3", RelationshipHealthFeedback: RelationshipBad, GoalAchievementFeedback: GoalCould},
	}

	scores, err := ComputeRoundScores(state, card, feedback)
	if err != nil {
		t.Fatalf("compute scores: %v", err)
	}
	p2, _ := scores.ScoresOf("p2")
	want := PlayerScores{PlayerID: "p2", SelfRespect: 4, RelationshipHealth: 6, GoalAchievement: 4}
	if diff := cmp.Diff(want, p2); diff != "" {
		t.Fatalf("assertive scores mismatch (-want +got):\n%s", diff)
	}
	p3, _ := scores.ScoresOf("p3")
	if diff := cmp.Diff(DefaultScores("p3"), p3); diff != "" {
		t.Fatalf("feedback must not move passive scores (-want +got):\n%s", diff)
	}
	if len(scores.PlayerScores) != 3 {
		t.Fatalf("expected a row for every player, got %d", len(scores.PlayerScores))
	}
}

func TestComputeRoundScoresUsesRecordedFeedback(t *testing.T) {
	state := roundOneState([]string{"p1", "p2"},
		PlayerReaction{PlayerID: "p2", Reaction: ReactionAssertive},
	)
	state.Reactions[0].Feedback = []ReactionFeedback{{PlayerID: "p2", GoalAchievementFeedback: GoalCould}}

	scores, err := ComputeRoundScores(state, SituationCard{ID: "card-1"}, nil)
	if err != nil {
		t.Fatalf("compute scores: %v", err)
	}
	p2, _ := scores.ScoresOf("p2")
	if p2.GoalAchievement != 6 {
		t.Fatalf("expected recorded feedback to apply, got goal %d", p2.GoalAchievement)
	}
}

func TestTeamBonusPolicyOrder(t *testing.T) {
	results := TeamResults{AllAssertive: intPtr(20), OnlyOneAssertive: intPtr(7), PerPersonAssertive: intPtr(3)}
	tests := []struct {
		name      string
		reactions []ReactionType
		results   TeamResults
		want      int
	}{
		{name: "all assertive", reactions: []ReactionType{ReactionAssertive, ReactionAssertive}, results: results, want: 20},
		{name: "single assertive player", reactions: []ReactionType{ReactionAssertive}, results: results, want: 20},
		{name: "only one", reactions: []ReactionType{ReactionAssertive, ReactionPassive}, results: results, want: 7},
		{name: "per person", reactions: []ReactionType{ReactionAssertive, ReactionAssertive, ReactionPassive}, results: results, want: 6},
		{name: "no policy", reactions: []ReactionType{ReactionAssertive}, results: TeamResults{}, want: 0},
		{name: "empty round", reactions: nil, results: TeamResults{AllAssertive: intPtr(20)}, want: 0},
		{name: "only one falls through", reactions: []ReactionType{ReactionAssertive, ReactionPassive}, results: TeamResults{PerPersonAssertive: intPtr(4)}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			round := RoundReactions{Round: 1}
			for i, reaction := range tt.reactions {
				round.Reactions = append(round.Reactions, PlayerReaction{PlayerID: string(rune('a' + i)), Reaction: reaction})
			}
			if got := teamBonus(round, tt.results); got != tt.want {
				t.Fatalf("expected bonus %d, got %d", tt.want, got)
			}
		})
	}
}

func TestComputeRoundScoresRequiresReactions(t *testing.T) {
	state := &State{CurrentRound: 1, Players: []string{"p1"}}
	if _, err := ComputeRoundScores(state, SituationCard{}, nil); !errors.Is(err, ErrNoReactions) {
		t.Fatalf("expected ErrNoReactions, got %v", err)
	}
}

func TestApplyRoundScoresFatigueTransition(t *testing.T) {
	state := &State{
		CurrentRound: 3,
		FatiguedPlayers: []PlayerFatigue{
			{PlayerID: "old", Round: 2},
			{PlayerID: "p1", Round: 3},
		},
		BurnoutHistory: []PlayerBurnout{{PlayerID: "old", Round: 1, KPI: KPISelfRespect}},
	}
	state.applyRoundScores(RoundScores{
		Round:           3,
		TeamScore:       12,
		FatiguedPlayers: []PlayerFatigue{{PlayerID: "p1", Round: 4}, {PlayerID: "p2", Round: 4}},
		BurnoutEvents: []PlayerBurnout{
			{PlayerID: "p1", Round: 3, KPI: KPIGoalAchievement},
			{PlayerID: "p2", Round: 3, KPI: KPISelfRespect},
		},
	})

	want := []PlayerFatigue{{PlayerID: "p1", Round: 4}, {PlayerID: "p2", Round: 4}}
	if diff := cmp.Diff(want, state.FatiguedPlayers); diff != "" {
		t.Fatalf("fatigue mismatch (-want +got):\n%s", diff)
	}
	if len(state.BurnoutHistory) != 3 {
		t.Fatalf("expected burnout history to append, got %d entries", len(state.BurnoutHistory))
	}
	if state.TeamScore != 12 {
		t.Fatalf("expected team score 12, got %d", state.TeamScore)
	}
}
