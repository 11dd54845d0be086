package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bravepulse/internal/game"
)

type userRequest struct {
	FirstName string `json:"firstName" binding:"required,name"`
	LastName  string `json:"lastName" binding:"omitempty,name"`
	Email     string `json:"email" binding:"required,email,max=254"`
}

var userMessages = bindMessages{
	"FirstName": {"required": "first name is required", "name": "first name contains unsupported characters"},
	"LastName":  {"name": "last name contains unsupported characters"},
	"Email":     {"required": "email is required", "email": "email is invalid", "max": "email is too long"},
}

func (r userRequest) user(id string) game.User {
	return game.User{
		ID:        id,
		FirstName: normalizeText(r.FirstName),
		LastName:  normalizeText(r.LastName),
		Email:     r.Email,
	}
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	if users == nil {
		users = []game.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), c.Param("userID"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req, userMessages, "invalid user") {
		return
	}
	user, err := s.store.UpsertUser(c.Request.Context(), req.user(""))
	if err != nil {
		writeErr(c, err)
		return
	}
	log.Printf("user created user_id=%s", user.ID)
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req, userMessages, "invalid user") {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("userID")
	if _, err := s.store.GetUser(ctx, id); err != nil {
		writeErr(c, err)
		return
	}
	user, err := s.store.UpsertUser(ctx, req.user(id))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id := c.Param("userID")
	if err := s.store.DeleteUser(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	log.Printf("user deleted user_id=%s", id)
	c.Status(http.StatusNoContent)
}
