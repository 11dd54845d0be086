package server

import (
	"context"
	"log"

	"bravepulse/internal/game"
)

type EventPayload struct {
	Players       []string                     `json:"players,omitempty"`
	Language      string                       `json:"language,omitempty"`
	CardID        string                       `json:"card_id,omitempty"`
	Reactions     map[string]game.ReactionType `json:"reactions,omitempty"`
	TeamScore     int                          `json:"team_score,omitempty"`
	Burnouts      int                          `json:"burnouts,omitempty"`
	ActivePlayer  string                       `json:"active_player,omitempty"`
	Achievement   string                       `json:"achievement,omitempty"`
	XP            int                          `json:"xp,omitempty"`
	RemoteReports bool                         `json:"remote_reports,omitempty"`
}

// recordEvent appends to the audit log when the store keeps one. Failures never fail the
// request.
func (s *Server) recordEvent(ctx context.Context, eventType string, round int, playerID string, payload EventPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordEvent(ctx, eventType, round, playerID, payload); err != nil {
		log.Printf("record event failed type=%s round=%d error=%v", eventType, round, err)
	}
}
