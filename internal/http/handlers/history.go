package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/execudex-backend/internal/http/response"
	"github.com/yungbote/execudex-backend/internal/services"
)

type HistoryHandler struct {
	store services.HistoryStore
}

func NewHistoryHandler(store services.HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GET /api/history?limit=N
func (h *HistoryHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a non-negative integer: %q", raw))
			return
		}
		limit = n
	}
	items, err := h.store.List(c.Request.Context(), userID.String(), limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// DELETE /api/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.store.Clear(c.Request.Context(), userID.String()); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
