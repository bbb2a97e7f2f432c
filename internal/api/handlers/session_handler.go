package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/retailsense/backend-go/internal/apiclient"
	"github.com/andresuchdata/retailsense/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SessionHandler struct {
	service *service.DashboardService
}

func NewSessionHandler(service *service.DashboardService) *SessionHandler {
	return &SessionHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("backend login failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    resp.User,
		"session": h.service.SessionStatus(),
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("logout left cached snapshots behind")
	}
	c.JSON(http.StatusOK, h.service.SessionStatus())
}

func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SessionStatus())
}
