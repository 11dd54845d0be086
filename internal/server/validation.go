package server

import (
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bravepulse/internal/achievements"
	"bravepulse/internal/game"
)

const (
	maxNameLength  = 40
	maxRouteLength = 200
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			return validName(fl.Field().String())
		})
		_ = engine.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
			return game.ReactionType(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("kpi", func(fl validator.FieldLevel) bool {
			return game.KPI(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("relationship_feedback", func(fl validator.FieldLevel) bool {
			return game.RelationshipFeedback(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("goal_feedback", func(fl validator.FieldLevel) bool {
			return game.GoalFeedback(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("trigger", func(fl validator.FieldLevel) bool {
			return achievements.Trigger(fl.Field().String()).Valid()
		})
		_ = engine.RegisterValidation("route", func(fl validator.FieldLevel) bool {
			return validRoute(fl.Field().String())
		})
	})
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// validName accepts letters from any script plus spaces, hyphens and apostrophes.
func validName(name string) bool {
	trimmed := normalizeText(name)
	if trimmed == "" || len([]rune(trimmed)) > maxNameLength {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			continue
		}
		switch r {
		case ' ', '-', '\'', '.', '\u200c':
			continue
		}
		return false
	}
	return true
}

func validRoute(route string) bool {
	if !strings.HasPrefix(route, "/") || len(route) > maxRouteLength {
		return false
	}
	for _, r := range route {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
