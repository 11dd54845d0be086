package game

import "time"

const (
	DefaultKPI            = 5
	BurnoutRecoveryKPI    = 3
	BurnoutTeamPenalty    = 10
	AggressiveTeamPenalty = 3
	TeamScorePerPlayer    = 10
)

type ReactionType string

const (
	ReactionPassive    ReactionType = "passive"
	ReactionAggressive ReactionType = "aggressive"
	ReactionAssertive  ReactionType = "assertive"
)

func (r ReactionType) Valid() bool {
	switch r {
	case ReactionPassive, ReactionAggressive, ReactionAssertive:
		return true
	}
	return false
}

// KPI names one of the three per-player indicators.
type KPI string

const (
	KPISelfRespect        KPI = "selfRespect"
	KPIRelationshipHealth KPI = "relationshipHealth"
	KPIGoalAchievement    KPI = "goalAchievement"
)

// KPIs lists the indicators in burnout check order.
var KPIs = []KPI{KPISelfRespect, KPIRelationshipHealth, KPIGoalAchievement}

func (k KPI) Valid() bool {
	switch k {
	case KPISelfRespect, KPIRelationshipHealth, KPIGoalAchievement:
		return true
	}
	return false
}

type RelationshipFeedback string

const (
	RelationshipGood   RelationshipFeedback = "good"
	RelationshipNormal RelationshipFeedback = "normal"
	RelationshipBad    RelationshipFeedback = "bad"
)

func (f RelationshipFeedback) Valid() bool {
	switch f {
	case RelationshipGood, RelationshipNormal, RelationshipBad:
		return true
	}
	return false
}

func (f RelationshipFeedback) delta() int {
	switch f {
	case RelationshipGood:
		return 1
	case RelationshipBad:
		return -1
	default:
		return 0
	}
}

type GoalFeedback string

const (
	GoalCould   GoalFeedback = "could"
	GoalNormal  GoalFeedback = "normal"
	GoalCouldnt GoalFeedback = "couldnt"
)

func (f GoalFeedback) Valid() bool {
	switch f {
	case GoalCould, GoalNormal, GoalCouldnt:
		return true
	}
	return false
}

func (f GoalFeedback) delta() int {
	switch f {
	case GoalCould:
		return 1
	case GoalCouldnt:
		return -1
	default:
		return 0
	}
}

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type ReactionGainAndCost struct {
	SelfRespect                   int    `json:"selfRespect"`
	SelfRespectDescription        string `json:"selfRespectDescription,omitempty"`
	RelationshipHealth            int    `json:"relationshipHealth"`
	RelationshipHealthDescription string `json:"relationshipHealthDescription,omitempty"`
	GoalAchievement               int    `json:"goalAchievement"`
	GoalAchievementDescription    string `json:"goalAchievementDescription,omitempty"`
	CustomCost                    *int   `json:"customCost,omitempty"`
	CustomCostTitle               string `json:"customCostTitle,omitempty"`
	CustomCostDescription         string `json:"customCostDescription,omitempty"`
}

// HasCustomCost reports whether the reaction carries a non-zero custom cost.
func (g ReactionGainAndCost) HasCustomCost() bool {
	return g.CustomCost != nil && *g.CustomCost != 0
}

type IndividualGainAndCost struct {
	Passive    ReactionGainAndCost `json:"passive"`
	Aggressive ReactionGainAndCost `json:"aggressive"`
	Assertive  ReactionGainAndCost `json:"assertive"`
}

type TeamResults struct {
	AllAssertive                  *int   `json:"allAssertive,omitempty"`
	AllAssertiveDescription       string `json:"allAssertiveDescription,omitempty"`
	OnlyOneAssertive              *int   `json:"onlyOneAssertive,omitempty"`
	OnlyOneAssertiveDescription   string `json:"onlyOneAssertiveDescription,omitempty"`
	PerPersonAssertive            *int   `json:"perPersonAssertive,omitempty"`
	PerPersonAssertiveDescription string `json:"perPersonAssertiveDescription,omitempty"`
}

type SituationCard struct {
	ID                    string                `json:"id"`
	Title                 string                `json:"title"`
	Scenario              string                `json:"scenario"`
	Emoji                 string                `json:"emoji"`
	IndividualGainAndCost IndividualGainAndCost `json:"individualGainAndCost"`
	TeamResults           TeamResults           `json:"teamResults"`
}

// Reaction returns the card's outcome for the given reaction type.
func (c SituationCard) Reaction(reaction ReactionType) ReactionGainAndCost {
	switch reaction {
	case ReactionPassive:
		return c.IndividualGainAndCost.Passive
	case ReactionAggressive:
		return c.IndividualGainAndCost.Aggressive
	case ReactionAssertive:
		return c.IndividualGainAndCost.Assertive
	}
	return ReactionGainAndCost{}
}

type PlayerReaction struct {
	PlayerID string       `json:"playerId"`
	Reaction ReactionType `json:"reaction"`
}

type ReactionFeedback struct {
	PlayerID                   string               `json:"playerId"`
	RelationshipHealthFeedback RelationshipFeedback `json:"relationshipHealthFeedback,omitempty"`
	GoalAchievementFeedback    GoalFeedback         `json:"goalAchievementFeedback,omitempty"`
	CustomCostKPI              KPI                  `json:"customCostKpi,omitempty"`
}

// merge overlays the non-empty fields of update onto f.
func (f ReactionFeedback) merge(update ReactionFeedback) ReactionFeedback {
	if update.RelationshipHealthFeedback != "" {
		f.RelationshipHealthFeedback = update.RelationshipHealthFeedback
	}
	if update.GoalAchievementFeedback != "" {
		f.GoalAchievementFeedback = update.GoalAchievementFeedback
	}
	if update.CustomCostKPI != "" {
		f.CustomCostKPI = update.CustomCostKPI
	}
	return f
}

type RoundReactions struct {
	Round     int                `json:"round"`
	CardID    string             `json:"cardId"`
	Reactions []PlayerReaction   `json:"reactions"`
	Feedback  []ReactionFeedback `json:"feedback,omitempty"`
}

func (r RoundReactions) ReactionOf(playerID string) (ReactionType, bool) {
	for _, entry := range r.Reactions {
		if entry.PlayerID == playerID {
			return entry.Reaction, true
		}
	}
	return "", false
}

func (r RoundReactions) Count(reaction ReactionType) int {
	count := 0
	for _, entry := range r.Reactions {
		if entry.Reaction == reaction {
			count++
		}
	}
	return count
}

type PlayerScores struct {
	PlayerID           string `json:"playerId"`
	SelfRespect        int    `json:"selfRespect"`
	RelationshipHealth int    `json:"relationshipHealth"`
	GoalAchievement    int    `json:"goalAchievement"`
}

func DefaultScores(playerID string) PlayerScores {
	return PlayerScores{
		PlayerID:           playerID,
		SelfRespect:        DefaultKPI,
		RelationshipHealth: DefaultKPI,
		GoalAchievement:    DefaultKPI,
	}
}

func (p PlayerScores) Get(kpi KPI) int {
	switch kpi {
	case KPISelfRespect:
		return p.SelfRespect
	case KPIRelationshipHealth:
		return p.RelationshipHealth
	case KPIGoalAchievement:
		return p.GoalAchievement
	}
	return 0
}

func (p *PlayerScores) add(kpi KPI, delta int) {
	switch kpi {
	case KPISelfRespect:
		p.SelfRespect += delta
	case KPIRelationshipHealth:
		p.RelationshipHealth += delta
	case KPIGoalAchievement:
		p.GoalAchievement += delta
	}
}

func (p *PlayerScores) set(kpi KPI, value int) {
	p.add(kpi, value-p.Get(kpi))
}

type PlayerFatigue struct {
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
}

type PlayerBurnout struct {
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
	KPI      KPI    `json:"kpi"`
}

type AggressiveReaction struct {
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
}

type RoundScores struct {
	Round               int                  `json:"round"`
	CardID              string               `json:"cardId"`
	PlayerScores        []PlayerScores       `json:"playerScores"`
	TeamScore           int                  `json:"teamScore"`
	Feedback            []ReactionFeedback   `json:"feedback,omitempty"`
	FatiguedPlayers     []PlayerFatigue      `json:"fatiguedPlayers,omitempty"`
	BurnoutEvents       []PlayerBurnout      `json:"burnoutEvents,omitempty"`
	AggressiveReactions []AggressiveReaction `json:"aggressiveReactions,omitempty"`
}

func (r RoundScores) ScoresOf(playerID string) (PlayerScores, bool) {
	for _, scores := range r.PlayerScores {
		if scores.PlayerID == playerID {
			return scores, true
		}
	}
	return PlayerScores{}, false
}

// Checkpoint is the last presentation route a client reached.
type Checkpoint struct {
	Route     string    `json:"route"`
	Timestamp time.Time `json:"timestamp"`
}
