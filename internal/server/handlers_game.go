package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/achievements"
	"bravepulse/internal/db"
	"bravepulse/internal/game"
)

type startGameRequest struct {
	PlayerIDs []string `json:"playerIds" binding:"omitempty,dive,required"`
	Shuffle   *bool    `json:"shuffle"`
	Language  string   `json:"language" binding:"omitempty,max=35"`
}

type selectCardRequest struct {
	CardID string `json:"cardId" binding:"required"`
}

type reactionsRequest struct {
	Reactions map[string]game.ReactionType `json:"reactions" binding:"required,min=1,dive,keys,required,endkeys,reaction"`
}

type feedbackRequest struct {
	PlayerID                   string                    `json:"playerId" binding:"required"`
	RelationshipHealthFeedback game.RelationshipFeedback `json:"relationshipHealthFeedback" binding:"omitempty,relationship_feedback"`
	GoalAchievementFeedback    game.GoalFeedback         `json:"goalAchievementFeedback" binding:"omitempty,goal_feedback"`
	CustomCostKPI              game.KPI                  `json:"customCostKpi" binding:"omitempty,kpi"`
}

func (r feedbackRequest) feedback() game.ReactionFeedback {
	return game.ReactionFeedback{
		PlayerID:                   r.PlayerID,
		RelationshipHealthFeedback: r.RelationshipHealthFeedback,
		GoalAchievementFeedback:    r.GoalAchievementFeedback,
		CustomCostKPI:              r.CustomCostKPI,
	}
}

type scoreRoundRequest struct {
	Feedback []feedbackRequest `json:"feedback" binding:"omitempty,dive"`
}

type checkpointRequest struct {
	Route string `json:"route" binding:"required,route"`
}

var gameMessages = bindMessages{
	"PlayerIDs":                  {"required": "player ids must not be empty"},
	"CardID":                     {"required": "card id is required"},
	"Reactions":                  {"required": "reactions are required", "min": "reactions are required", "reaction": "reaction must be passive, aggressive or assertive"},
	"PlayerID":                   {"required": "player id is required"},
	"RelationshipHealthFeedback": {"relationship_feedback": "relationship feedback must be good, normal or bad"},
	"GoalAchievementFeedback":    {"goal_feedback": "goal feedback must be could, normal or couldnt"},
	"CustomCostKPI":              {"kpi": "custom cost kpi is invalid"},
	"Route":                      {"required": "route is required", "route": "route is invalid"},
}

type gameResponse struct {
	Status    string      `json:"status"`
	MaxRounds int         `json:"maxRounds"`
	Finished  bool        `json:"finished"`
	State     *game.State `json:"state"`
}

type unlockView struct {
	Slug     string                `json:"slug"`
	PlayerID string                `json:"playerId,omitempty"`
	Icon     string                `json:"icon"`
	XP       int                   `json:"xp"`
	Category achievements.Category `json:"category"`
}

func (s *Server) gameView(state *game.State) gameResponse {
	return gameResponse{
		Status:    s.manager.Status().String(),
		MaxRounds: s.manager.MaxRounds(),
		Finished:  s.manager.Finished(state),
		State:     state,
	}
}

func (s *Server) writeGame(c *gin.Context, status int, state *game.State) {
	c.JSON(status, s.gameView(state))
}

// hasBody lets endpoints with an optional payload accept an empty POST.
func hasBody(c *gin.Context) bool {
	return c.Request.ContentLength != 0
}

func (s *Server) handleStartGame(c *gin.Context) {
	var req startGameRequest
	if hasBody(c) && !bindJSON(c, &req, gameMessages, "invalid game settings") {
		return
	}
	ctx := c.Request.Context()
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		writeErr(c, err)
		return
	}
	players, ok := selectPlayers(users, req.PlayerIDs)
	if !ok {
		writeError(c, http.StatusBadRequest, "unknown player id")
		return
	}
	ids := make([]string, 0, len(players))
	for _, user := range players {
		ids = append(ids, user.ID)
	}

	shuffle := s.cfg.ShuffleCards()
	if req.Shuffle != nil {
		shuffle = *req.Shuffle
	}
	lang := s.requestLanguage(c)
	if req.Language != "" {
		lang = s.cards.Resolve(req.Language)
	}

	state, err := s.manager.Initialize(ctx, ids, shuffle, lang)
	if err != nil {
		writeErr(c, err)
		return
	}
	log.Printf("game started players=%d language=%s shuffle=%t", len(ids), lang, shuffle)
	s.recordEvent(ctx, db.EventGameStarted, state.CurrentRound, "", EventPayload{Players: ids, Language: lang, TeamScore: state.TeamScore})
	if s.reporter != nil {
		if err := s.reporter.StartGame(ctx, players); err != nil {
			log.Printf("remote score start failed error=%v", err)
		}
	}
	s.hub.Broadcast(wsMessage{Type: "reload"})
	s.writeGame(c, http.StatusCreated, state)
}

// selectPlayers returns the users named by ids in that order, or every user when ids is empty.
func selectPlayers(users []game.User, ids []string) ([]game.User, bool) {
	if len(ids) == 0 {
		return users, true
	}
	byID := make(map[string]game.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	out := make([]game.User, 0, len(ids))
	for _, id := range ids {
		user, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, user)
	}
	return out, true
}

func (s *Server) handleGetGame(c *gin.Context) {
	state, err := s.manager.State(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	s.writeGame(c, http.StatusOK, state)
}

func (s *Server) handleResetGame(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.manager.Reset(ctx); err != nil {
		writeErr(c, err)
		return
	}
	log.Printf("game reset")
	s.recordEvent(ctx, db.EventGameReset, 0, "", EventPayload{})
	s.hub.Broadcast(wsMessage{Type: "reload"})
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCurrentCard(c *gin.Context) {
	card, err := s.manager.CurrentCard(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) handleRevealCard(c *gin.Context) {
	state, err := s.manager.RevealCard(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	s.publish(c.Request.Context(), state)
	s.writeGame(c, http.StatusOK, state)
}

func (s *Server) handleSelectCard(c *gin.Context) {
	var req selectCardRequest
	if !bindJSON(c, &req, gameMessages, "invalid card selection") {
		return
	}
	state, err := s.manager.SelectCard(c.Request.Context(), req.CardID)
	if err != nil {
		writeErr(c, err)
		return
	}
	s.writeGame(c, http.StatusOK, state)
}

func (s *Server) handleRecordReactions(c *gin.Context) {
	var req reactionsRequest
	if !bindJSON(c, &req, gameMessages, "invalid reactions") {
		return
	}
	ctx := c.Request.Context()
	state, err := s.manager.RecordReactions(ctx, req.Reactions)
	if err != nil {
		writeErr(c, err)
		return
	}
	if round := state.ReactionsForRound(state.CurrentRound); round != nil {
		s.recordEvent(ctx, db.EventReactionsRecorded, round.Round, "", EventPayload{CardID: round.CardID, Reactions: req.Reactions})
	}
	s.writeGame(c, http.StatusOK, state)
}

func (s *Server) handleRecordFeedback(c *gin.Context) {
	var req feedbackRequest
	if !bindJSON(c, &req, gameMessages, "invalid feedback") {
		return
	}
	state, err := s.manager.RecordFeedback(c.Request.Context(), req.PlayerID, req.feedback())
	if err != nil {
		writeErr(c, err)
		return
	}
	s.writeGame(c, http.StatusOK, state)
}

func (s *Server) handleScoreRound(c *gin.Context) {
	var req scoreRoundRequest
	if hasBody(c) && !bindJSON(c, &req, gameMessages, "invalid feedback") {
		return
	}
	var feedback []game.ReactionFeedback
	for _, entry := range req.Feedback {
		feedback = append(feedback, entry.feedback())
	}

	ctx := c.Request.Context()
	state, scores, created, err := s.manager.ScoreRound(ctx, feedback)
	if err != nil {
		writeErr(c, err)
		return
	}
	if created {
		s.recordEvent(ctx, db.EventScoresRecorded, scores.Round, "", EventPayload{
			CardID:    scores.CardID,
			TeamScore: scores.TeamScore,
			Burnouts:  len(scores.BurnoutEvents),
		})
	}
	unlocked := s.unlock(ctx, achievements.TriggerRoundEnd, state, achievements.Options{RoundScores: scores.PlayerScores})
	s.publish(ctx, state)
	c.JSON(http.StatusOK, gin.H{
		"game":     s.gameView(state),
		"scores":   scores,
		"unlocked": unlocked,
	})
}

func (s *Server) handleAdvanceRound(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := s.manager.AdvanceRound(ctx)
	if err != nil {
		writeErr(c, err)
		return
	}
	log.Printf("game advanced round=%d active=%s", state.CurrentRound, state.ActivePlayerID)
	s.recordEvent(ctx, db.EventRoundAdvanced, state.CurrentRound, state.ActivePlayerID, EventPayload{ActivePlayer: state.ActivePlayerID})
	s.publish(ctx, state)
	s.writeGame(c, http.StatusOK, state)
}

// handleFinishGame runs the end-of-game achievements and reports final scores. It may be
// called again safely; unlocks are deduplicated and the remote rows are overwritten.
func (s *Server) handleFinishGame(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := s.manager.State(ctx)
	if err != nil {
		writeErr(c, err)
		return
	}
	if state.ScoresForRound(state.CurrentRound) == nil {
		writeError(c, http.StatusConflict, "current round has not been scored")
		return
	}

	unlocked := s.unlock(ctx, achievements.TriggerGameEnd, state, achievements.Options{})
	reported := false
	if s.reporter != nil {
		if err := s.reporter.FinishGame(ctx, state); err != nil {
			log.Printf("remote score finish failed error=%v", err)
		} else {
			reported = true
		}
	}
	log.Printf("game finished round=%d team_score=%d unlocked=%d", state.CurrentRound, state.TeamScore, len(unlocked))
	s.recordEvent(ctx, db.EventGameFinished, state.CurrentRound, "", EventPayload{TeamScore: state.TeamScore, RemoteReports: reported})
	c.JSON(http.StatusOK, gin.H{
		"game":        s.gameView(state),
		"finalScores": state.FinalScores(),
		"unlocked":    unlocked,
		"reported":    reported,
	})
}

func (s *Server) handleGetCheckpoint(c *gin.Context) {
	checkpoint, err := s.store.Checkpoint(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	if checkpoint == nil {
		writeError(c, http.StatusNotFound, "checkpoint not found")
		return
	}
	c.JSON(http.StatusOK, checkpoint)
}

func (s *Server) handleSaveCheckpoint(c *gin.Context) {
	var req checkpointRequest
	if !bindJSON(c, &req, gameMessages, "invalid checkpoint") {
		return
	}
	if err := s.manager.SaveCheckpoint(c.Request.Context(), req.Route); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// unlock evaluates trigger and returns what was newly unlocked. Engine failures are logged;
// achievements never fail the round.
func (s *Server) unlock(ctx context.Context, trigger achievements.Trigger, state *game.State, opts achievements.Options) []unlockView {
	views := []unlockView{}
	if s.achievements == nil {
		return views
	}
	candidates, err := s.achievements.CheckAndUnlock(ctx, trigger, state, opts)
	if err != nil {
		log.Printf("achievement check failed trigger=%s error=%v", trigger, err)
		return views
	}
	for _, candidate := range candidates {
		s.recordEvent(ctx, db.EventAchievementUnlocked, state.CurrentRound, candidate.PlayerID, EventPayload{
			Achievement: candidate.Achievement.Slug,
			XP:          candidate.Achievement.XP,
		})
		views = append(views, unlockView{
			Slug:     candidate.Achievement.Slug,
			PlayerID: candidate.PlayerID,
			Icon:     candidate.Achievement.Icon,
			XP:       candidate.Achievement.XP,
			Category: candidate.Achievement.Category,
		})
	}
	return views
}
