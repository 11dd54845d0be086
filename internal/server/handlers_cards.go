package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestLanguage prefers an explicit ?lang= and falls back to Accept-Language.
func (s *Server) requestLanguage(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return s.cards.Resolve(lang)
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		return s.cards.Negotiate(header)
	}
	return s.cards.Resolve(s.cfg.DefaultLanguage)
}

func (s *Server) handleListCards(c *gin.Context) {
	lang := s.requestLanguage(c)
	deck, err := s.cards.Cards(c.Request.Context(), lang)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language":  lang,
		"languages": s.cards.Languages(),
		"cards":     deck,
	})
}

func (s *Server) handleGetCard(c *gin.Context) {
	card, err := s.cards.Card(c.Request.Context(), s.requestLanguage(c), c.Param("cardID"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}
