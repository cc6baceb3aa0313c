package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/http/response"
	"github.com/yungbote/execudex-backend/internal/navigation"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type NavigationHandler struct {
	log      *logger.Logger
	registry *navigation.Registry
}

func NewNavigationHandler(log *logger.Logger, registry *navigation.Registry) *NavigationHandler {
	return &NavigationHandler{log: log.With("handler", "NavigationHandler"), registry: registry}
}

func outcomeStatus(r navigation.Result) int {
	switch r {
	case navigation.ResultQuotaDenied:
		return http.StatusForbidden
	case navigation.ResultTransientFailure:
		return http.StatusBadGateway
	case navigation.ResultIgnoredBusy:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

// POST /api/navigate/:kind
func (h *NavigationHandler) Navigate(c *gin.Context) {
	kind, err := profiles.ParseKind(c.Param("kind"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_kind", err)
		return
	}
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req navigation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	// The authenticated caller always owns the navigation.
	req.UserID = userID.String()
	req.TraceID = traceID(c)

	session, err := h.registry.For(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "session_unavailable", err)
		return
	}
	var out navigation.Outcome
	if kind.IsPolitician() {
		out = session.NavigateToPoliticianProfile(c.Request.Context(), req)
	} else {
		out = session.NavigateToLegislationProfile(c.Request.Context(), req)
	}
	c.JSON(outcomeStatus(out.Result), out)
}

// POST /api/navigate/cancel
func (h *NavigationHandler) Cancel(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	cancelled := false
	if session, ok := h.registry.Lookup(userID.String()); ok {
		cancelled = session.CancelProcessing()
	}
	response.RespondOK(c, gin.H{"cancelled": cancelled})
}
