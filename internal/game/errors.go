package game

import "errors"

var (
	ErrNoActiveGame         = errors.New("game not found")
	ErrNoPlayers            = errors.New("at least one player is required")
	ErrDuplicatePlayer      = errors.New("player listed more than once")
	ErrEmptyCatalog         = errors.New("card catalog is empty")
	ErrCardNotFound         = errors.New("card not found")
	ErrCardNotRevealed      = errors.New("card not revealed")
	ErrNoReactions          = errors.New("no reactions found for current round")
	ErrInvalidReaction      = errors.New("invalid reaction")
	ErrUnknownPlayer        = errors.New("player not in game")
	ErrActivePlayerReaction = errors.New("active player cannot react")
	ErrPlayerFatigued       = errors.New("player is fatigued and cannot react assertively")
	ErrFeedbackNotAllowed   = errors.New("feedback only applies to assertive or custom cost reactions")
	ErrInvalidFeedback      = errors.New("invalid feedback")
	ErrGameOver             = errors.New("game is over")
	ErrRoundNotScored       = errors.New("current round has not been scored")
	ErrInitializing         = errors.New("game initialization already in progress")
)
