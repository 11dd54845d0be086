package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/achievements"
	"bravepulse/internal/cards"
	"bravepulse/internal/config"
	"bravepulse/internal/db"
	"bravepulse/internal/game"
	"bravepulse/internal/store"
)

// ScoreReporter mirrors game progress to the remote game backend.
type ScoreReporter interface {
	StartGame(ctx context.Context, players []game.User) error
	FinishGame(ctx context.Context, state *game.State) error
}

// EventRecorder is implemented by stores that keep an audit log.
type EventRecorder interface {
	RecordEvent(ctx context.Context, eventType string, round int, playerID string, payload any) error
	Events(ctx context.Context, limit, offset int) ([]db.Event, int64, error)
}

type Deps struct {
	Store        store.Backend
	Cards        *cards.Catalog
	Manager      *game.Manager
	Achievements *achievements.Engine
	Hub          *Hub
	Reporter     ScoreReporter
}

type Server struct {
	cfg          config.Config
	store        store.Backend
	cards        *cards.Catalog
	manager      *game.Manager
	achievements *achievements.Engine
	hub          *Hub
	reporter     ScoreReporter
	events       EventRecorder
}

func New(cfg config.Config, deps Deps) *Server {
	registerValidators()
	s := &Server{
		cfg:          cfg,
		store:        deps.Store,
		cards:        deps.Cards,
		manager:      deps.Manager,
		achievements: deps.Achievements,
		hub:          deps.Hub,
		reporter:     deps.Reporter,
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	if recorder, ok := deps.Store.(EventRecorder); ok {
		s.events = recorder
	}
	return s
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleScoreboard)
	router.GET("/admin/events", s.handleEventsView)
	router.GET("/ws", s.handleWebsocket)

	api := router.Group("/api")
	api.GET("/users", s.handleListUsers)
	api.POST("/users", s.handleCreateUser)
	api.GET("/users/:userID", s.handleGetUser)
	api.PUT("/users/:userID", s.handleUpdateUser)
	api.DELETE("/users/:userID", s.handleDeleteUser)

	api.GET("/cards", s.handleListCards)
	api.GET("/cards/:cardID", s.handleGetCard)

	api.POST("/game", s.handleStartGame)
	api.GET("/game", s.handleGetGame)
	api.DELETE("/game", s.handleResetGame)
	api.GET("/game/card", s.handleCurrentCard)
	api.POST("/game/reveal", s.handleRevealCard)
	api.POST("/game/select", s.handleSelectCard)
	api.POST("/game/reactions", s.handleRecordReactions)
	api.POST("/game/feedback", s.handleRecordFeedback)
	api.POST("/game/scores", s.handleScoreRound)
	api.POST("/game/advance", s.handleAdvanceRound)
	api.POST("/game/finish", s.handleFinishGame)
	api.GET("/game/checkpoint", s.handleGetCheckpoint)
	api.PUT("/game/checkpoint", s.handleSaveCheckpoint)

	api.GET("/achievements", s.handleListAchievements)
	api.GET("/achievements/unlocked", s.handleListUnlocked)
	api.GET("/events", s.handleListEvents)
	return router
}
