package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/retailsense/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ViewHandler struct {
	service *service.DashboardService
}

func NewViewHandler(service *service.DashboardService) *ViewHandler {
	return &ViewHandler{service: service}
}

// GetView returns the latest published model of a view with its refresh state.
func (h *ViewHandler) GetView(c *gin.Context) {
	state, err := h.service.View(c.Request.Context(), c.Param("view"))
	if errors.Is(err, service.ErrUnknownView) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("view", c.Param("view")).Msg("failed to read view")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read view"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Refresh starts a new cycle. A view that is already loading, or whose
// initial run has not been fired, answers 409.
func (h *ViewHandler) Refresh(c *gin.Context) {
	name := c.Param("view")
	_, accepted, err := h.service.Refresh(c.Request.Context(), name)
	if errors.Is(err, service.ErrUnknownView) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, service.ErrNotStarted) {
		c.JSON(http.StatusConflict, gin.H{
			"view":    name,
			"message": "view has not started",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("view", name).Msg("failed to trigger refresh")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to trigger refresh"})
		return
	}

	if !accepted {
		c.JSON(http.StatusConflict, gin.H{
			"view":    name,
			"message": "refresh already in progress",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"view":    name,
		"message": "refresh started",
	})
}

// ListViews returns the state of every view without models.
func (h *ViewHandler) ListViews(c *gin.Context) {
	views := make([]gin.H, 0)
	for _, name := range h.service.Views() {
		state, err := h.service.View(c.Request.Context(), name)
		if err != nil {
			continue
		}
		views = append(views, gin.H{
			"view":       state.View,
			"state":      state.State,
			"stale":      state.Stale,
			"updated_at": state.UpdatedAt,
			"error":      state.Error,
		})
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}
