package server

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"bravepulse/internal/achievements"
	"bravepulse/internal/game"
	"bravepulse/internal/web"
)

func (s *Server) handleScoreboard(c *gin.Context) {
	data, err := s.scoreboardData(c.Request.Context())
	if err != nil {
		log.Printf("scoreboard failed error=%v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	templ.Handler(web.Scoreboard(data)).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleEventsView(c *gin.Context) {
	page := parsePagination(c)
	data := web.EventsData{Events: []web.EventRow{}}
	if s.events == nil {
		data.Error = "The event log is only kept when a database is configured."
		data.Pagination = buildPaginationData(c.Request.URL.Path, page, 0)
		templ.Handler(web.EventsView(data)).ServeHTTP(c.Writer, c.Request)
		return
	}
	events, total, err := s.events.Events(c.Request.Context(), page.PerPage, page.Offset())
	if err != nil {
		log.Printf("events view failed error=%v", err)
		data.Error = "Failed to load events."
	}
	for _, event := range events {
		row := web.EventRow{
			ID:        event.ID,
			Type:      event.Type,
			Round:     event.Round,
			Payload:   string(event.Payload),
			CreatedAt: event.CreatedAt,
		}
		if event.PlayerID != nil {
			row.PlayerID = *event.PlayerID
		}
		data.Events = append(data.Events, row)
	}
	data.Pagination = buildPaginationData(c.Request.URL.Path, page, total)
	templ.Handler(web.EventsView(data)).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) scoreboardData(ctx context.Context) (web.ScoreboardData, error) {
	data := web.ScoreboardData{Language: s.cards.Resolve(s.cfg.DefaultLanguage), MaxRounds: s.manager.MaxRounds()}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return data, err
	}
	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.DisplayName()
	}
	var history []achievements.UnlockedAchievement
	if s.achievements != nil {
		if history, err = s.achievements.Unlocked(ctx, ""); err != nil {
			return data, err
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		unlock := history[i]
		row := web.UnlockRow{Slug: unlock.Slug, PlayerName: names[unlock.PlayerID], XP: unlock.XP, UnlockedAt: unlock.UnlockedAt}
		if achievement, ok := achievements.BySlug(unlock.Slug); ok {
			row.Icon = achievement.Icon
		}
		data.Unlocks = append(data.Unlocks, row)
	}

	state, err := s.manager.State(ctx)
	if errors.Is(err, game.ErrNoActiveGame) {
		return data, nil
	}
	if err != nil {
		return data, err
	}
	data.Started = true
	data.Round = state.CurrentRound
	data.TeamScore = state.TeamScore
	if state.Language != "" {
		data.Language = state.Language
	}
	data.LastUpdateAt = state.LastUpdatedAt
	data.Rows = scoreRows(state, names, history)
	if state.IsCardRevealed {
		if card, err := s.manager.Card(ctx, state.Language, state.CurrentCardID); err == nil {
			data.CardTitle = card.Title
			data.CardEmoji = card.Emoji
		}
	}
	return data, nil
}

func scoreRows(state *game.State, names map[string]string, history []achievements.UnlockedAchievement) []web.ScoreRow {
	latest := state.LatestScores()
	rows := make([]web.ScoreRow, 0, len(state.Players))
	for _, playerID := range state.Players {
		scores := game.DefaultScores(playerID)
		delta := 0
		if latest != nil {
			if current, ok := latest.ScoresOf(playerID); ok {
				scores = current
			}
			if diff, ok := state.ScoreDelta(latest.Round, playerID); ok {
				delta = diff.SelfRespect + diff.RelationshipHealth + diff.GoalAchievement
			}
		}
		name := names[playerID]
		if name == "" {
			name = playerID
		}
		rows = append(rows, web.ScoreRow{
			PlayerID:           playerID,
			Name:               name,
			SelfRespect:        scores.SelfRespect,
			RelationshipHealth: scores.RelationshipHealth,
			GoalAchievement:    scores.GoalAchievement,
			Delta:              delta,
			Active:             playerID == state.ActivePlayerID,
			Fatigued:           state.IsFatigued(playerID, state.CurrentRound),
			XP:                 achievements.TotalXP(history, playerID),
		})
	}
	return rows
}

// publish pushes the new state and the re-rendered scoreboard fragments to every socket.
func (s *Server) publish(ctx context.Context, state *game.State) {
	if s.hub.Len() == 0 {
		return
	}
	s.hub.Broadcast(wsMessage{Type: "state", State: state})
	data, err := s.scoreboardData(ctx)
	if err != nil {
		log.Printf("scoreboard refresh failed error=%v", err)
		return
	}
	var rows bytes.Buffer
	if err := web.ScoreRows(data.Rows).Render(ctx, &rows); err != nil {
		return
	}
	s.hub.Broadcast(htmlMessage("#scoreRows", rows.String()))
	s.hub.Broadcast(htmlMessage("#roundLabel", web.RoundLabel(data.Round, data.MaxRounds)))
	s.hub.Broadcast(htmlMessage("#teamScore", strconv.Itoa(data.TeamScore)))
}

func htmlMessage(selector, html string) wsMessage {
	return wsMessage{Type: "html", Selector: selector, HTML: html}
}
