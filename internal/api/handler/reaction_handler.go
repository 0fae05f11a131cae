package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
)

// React marks the post as liked by the current user. Repeated calls converge
// on the reacted state.
func (h *Handler) React(c *gin.Context) {
	h.toggleReaction(c, true)
}

// Unreact removes the like if present; a no-op otherwise.
func (h *Handler) Unreact(c *gin.Context) {
	h.toggleReaction(c, false)
}

func (h *Handler) toggleReaction(c *gin.Context, on bool) {
	u, _ := middleware.CurrentUser(c)
	postID := c.Param("id")

	var err error
	if on {
		err = h.reactions.React(c.Request.Context(), postID, u.ID)
	} else {
		err = h.reactions.Unreact(c.Request.Context(), postID, u.ID)
	}
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	action := "react"
	if !on {
		action = "unreact"
	}
	h.metrics.Reactions.WithLabelValues(action).Inc()

	count, err := h.reactions.Count(c.Request.Context(), postID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "reacted": on, "count": count})
}
