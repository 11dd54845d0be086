package web

import "time"

type ScoreRow struct {
	PlayerID           string
	Name               string
	SelfRespect        int
	RelationshipHealth int
	GoalAchievement    int
	Delta              int
	Active             bool
	Fatigued           bool
	XP                 int
}

type UnlockRow struct {
	Icon       string
	Slug       string
	PlayerName string
	XP         int
	UnlockedAt time.Time
}

type ScoreboardData struct {
	Started      bool
	Round        int
	MaxRounds    int
	TeamScore    int
	CardTitle    string
	CardEmoji    string
	Rows         []ScoreRow
	Unlocks      []UnlockRow
	Language     string
	LastUpdateAt time.Time
}

type EventRow struct {
	ID        uint
	Type      string
	Round     int
	PlayerID  string
	Payload   string
	CreatedAt time.Time
}

type PaginationData struct {
	BasePath   string `json:"-"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	HasPrev    bool   `json:"hasPrev"`
	HasNext    bool   `json:"hasNext"`
	PrevPage   int    `json:"prevPage,omitempty"`
	NextPage   int    `json:"nextPage,omitempty"`
}

type EventsData struct {
	Events     []EventRow
	Pagination PaginationData
	Error      string
}
