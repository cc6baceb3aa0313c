package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/http/response"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
	"github.com/yungbote/execudex-backend/internal/services"
)

type ProfileHandler struct {
	log         *logger.Logger
	politicians services.ReadinessOrchestrator
	legislation services.ReadinessOrchestrator
	locks       services.ProfileLockService
	prefetcher  services.Prefetcher
	metrics     services.MetricsService
	quota       services.QuotaGuard
}

func NewProfileHandler(
	log *logger.Logger,
	politicians services.ReadinessOrchestrator,
	legislation services.ReadinessOrchestrator,
	locks services.ProfileLockService,
	prefetcher services.Prefetcher,
	metrics services.MetricsService,
	quota services.QuotaGuard,
) *ProfileHandler {
	return &ProfileHandler{
		log:         log.With("handler", "ProfileHandler"),
		politicians: politicians,
		legislation: legislation,
		locks:       locks,
		prefetcher:  prefetcher,
		metrics:     metrics,
		quota:       quota,
	}
}

// admit records the view against the caller's weekly quota. It writes the
// response and returns false when the caller may not open the profile.
func (h *ProfileHandler) admit(c *gin.Context, kind profiles.Kind, id int64) bool {
	userID, err := currentUser(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return false
	}
	decision := h.quota.CheckAccess(c.Request.Context(), userID, profiles.QuotaKey(id, kind))
	if !decision.Allowed {
		c.JSON(http.StatusForbidden, quotaDenied{
			Error: response.APIError{Message: "weekly profile limit reached", Code: services.QuotaReasonExceeded},
			Quota: decision,
		})
		return false
	}
	return true
}

type quotaDenied struct {
	Error response.APIError      `json:"error"`
	Quota services.QuotaDecision `json:"quota"`
}

// POST /api/profiles/:kind/:id/readiness
func (h *ProfileHandler) EnsureReady(c *gin.Context) {
	kind, id, err := profileParams(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if !h.admit(c, kind, id) {
		return
	}
	orch := h.legislation
	if kind.IsPolitician() {
		orch = h.politicians
	}
	report, err := orch.Ensure(c.Request.Context(), id, traceID(c))
	switch {
	case err == nil:
		response.RespondOK(c, report)
	case edgefn.IsCallError(err):
		response.RespondError(c, http.StatusBadGateway, "remote_failure", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.RespondError(c, http.StatusServiceUnavailable, "cancelled", err)
	default:
		h.log.Error("Readiness run failed", "kind", string(kind), "id", id, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "readiness_failed", err)
	}
}

type lockResponse struct {
	services.LockStatus
	ShouldHideTabBar bool `json:"should_hide_tab_bar"`
}

// GET /api/profiles/:kind/:id/lock
func (h *ProfileHandler) LockStatus(c *gin.Context) {
	kind, id, err := profileParams(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ctx := c.Request.Context()
	st := h.locks.CheckLockStatus(ctx, id, kind)
	response.RespondOK(c, lockResponse{LockStatus: st, ShouldHideTabBar: h.locks.TabBarHidden(ctx, id, kind, st)})
}

// GET /api/profiles/:kind/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	kind, id, err := profileParams(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	payload, err := h.prefetcher.Prefetch(c.Request.Context(), id, kind)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "profile_read_failed", err)
		return
	}
	if payload == nil {
		response.RespondError(c, http.StatusNotFound, "profile_not_found", errors.New("profile not found"))
		return
	}
	if !h.admit(c, kind, id) {
		return
	}
	response.RespondOK(c, payload)
}

// POST /api/politicians/:id/metrics
func (h *ProfileHandler) GenerateMetrics(c *gin.Context) {
	id, err := profiles.ParseID(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	res := h.metrics.GenerateMetrics(c.Request.Context(), id, traceID(c))
	status := http.StatusOK
	switch res.Message {
	case services.MetricsMsgNotFound:
		status = http.StatusNotFound
	case services.MetricsMsgCooldown, services.MetricsMsgNoTimestamp:
		status = http.StatusConflict
	case services.MetricsMsgFailed:
		status = http.StatusBadGateway
	}
	c.JSON(status, res)
}
