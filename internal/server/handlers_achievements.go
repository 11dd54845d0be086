package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/achievements"
)

type achievementQuery struct {
	Trigger  string `form:"trigger" binding:"omitempty,trigger"`
	Category string `form:"category" binding:"omitempty,oneof=individual team"`
}

var achievementMessages = bindMessages{
	"Trigger":  {"trigger": "trigger must be instant, round_end or game_end"},
	"Category": {"oneof": "category must be individual or team"},
}

func (s *Server) handleListAchievements(c *gin.Context) {
	var query achievementQuery
	if !bindQuery(c, &query, achievementMessages) {
		return
	}
	list := achievements.All()
	if query.Trigger != "" {
		list = achievements.ByTrigger(achievements.Trigger(query.Trigger))
	}
	if query.Category != "" {
		filtered := make([]achievements.Achievement, 0, len(list))
		for _, achievement := range list {
			if achievement.Category == achievements.Category(query.Category) {
				filtered = append(filtered, achievement)
			}
		}
		list = filtered
	}
	c.JSON(http.StatusOK, gin.H{"achievements": list})
}

// handleListUnlocked pages through the unlock ledger. With player_id it also reports the
// player's XP, team unlocks included.
func (s *Server) handleListUnlocked(c *gin.Context) {
	ctx := c.Request.Context()
	playerID := c.Query("player_id")
	history, err := s.achievements.Unlocked(ctx, playerID)
	if err != nil {
		writeErr(c, err)
		return
	}
	page := parsePagination(c)
	body := gin.H{
		"unlocked":   paginate(history, page),
		"pagination": buildPaginationData(c.Request.URL.Path, page, int64(len(history))),
	}
	if playerID != "" {
		all, err := s.achievements.Unlocked(ctx, "")
		if err != nil {
			writeErr(c, err)
			return
		}
		body["totalXp"] = achievements.TotalXP(all, playerID)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleListEvents(c *gin.Context) {
	if s.events == nil {
		writeError(c, http.StatusNotFound, "event log requires a database store")
		return
	}
	page := parsePagination(c)
	events, total, err := s.events.Events(c.Request.Context(), page.PerPage, page.Offset())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": buildPaginationData(c.Request.URL.Path, page, total),
	})
}
