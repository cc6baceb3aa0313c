package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/execudex-backend/internal/http/response"
	"github.com/yungbote/execudex-backend/internal/services"
)

type QuotaHandler struct {
	guard services.QuotaGuard
}

func NewQuotaHandler(guard services.QuotaGuard) *QuotaHandler {
	return &QuotaHandler{guard: guard}
}

type quotaCheckRequest struct {
	ProfileKey string `json:"profile_key" binding:"required"`
}

// POST /api/quota/check
func (h *QuotaHandler) CheckAccess(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req quotaCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	decision := h.guard.CheckAccess(c.Request.Context(), userID, strings.TrimSpace(req.ProfileKey))
	response.RespondOK(c, decision)
}

// GET /api/quota/usage
func (h *QuotaHandler) Usage(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	usage, err := h.guard.Usage(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "quota_usage_failed", err)
		return
	}
	response.RespondOK(c, usage)
}
