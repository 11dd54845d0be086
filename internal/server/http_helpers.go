package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/game"
	"bravepulse/internal/store"
)

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeErr maps domain errors to a status code. Anything unrecognised is logged and reported
// as a 500 without leaking its text.
func writeErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNoActiveGame),
		errors.Is(err, game.ErrCardNotFound),
		errors.Is(err, store.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNoPlayers),
		errors.Is(err, game.ErrDuplicatePlayer),
		errors.Is(err, game.ErrInvalidReaction),
		errors.Is(err, game.ErrInvalidFeedback),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, store.ErrInvalidUser):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrCardNotRevealed),
		errors.Is(err, game.ErrNoReactions),
		errors.Is(err, game.ErrActivePlayerReaction),
		errors.Is(err, game.ErrPlayerFatigued),
		errors.Is(err, game.ErrFeedbackNotAllowed),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrRoundNotScored),
		errors.Is(err, game.ErrInitializing),
		errors.Is(err, store.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, game.ErrEmptyCatalog):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed method=%s path=%s error=%v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}
