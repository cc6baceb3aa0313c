package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

const (
	MetricsMsgNotFound      = "Profile not found"
	MetricsMsgNoTimestamp   = "Metrics exist but no update timestamp found"
	MetricsMsgCooldown      = "Metrics were recently updated. Please wait 21 days between updates."
	MetricsMsgFailed        = "Failed to generate metrics"
	MetricsMsgNoPollingData = "No polling data found for this politician"
	MetricsMsgGenerated     = "Metrics generated"
)

type MetricsResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type MetricsService interface {
	GenerateMetrics(ctx context.Context, politicianID int64, traceID string) MetricsResult
}

type metricsService struct {
	log         *logger.Logger
	politicians repos.PoliticianRepo
	fns         RemoteFunctions
	cooldown    time.Duration
	now         func() time.Time
}

func NewMetricsService(log *logger.Logger, politicians repos.PoliticianRepo, fns RemoteFunctions, cooldown time.Duration) MetricsService {
	return &metricsService{
		log:         log.With("service", "MetricsService"),
		politicians: politicians,
		fns:         fns,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

func (s *metricsService) GenerateMetrics(ctx context.Context, politicianID int64, traceID string) MetricsResult {
	log := s.log.Trace(traceID).With("politician_id", politicianID)

	prof, err := s.politicians.GetProfile(dbctx.New(ctx), politicianID)
	if err != nil {
		log.Warn("Metrics eligibility check failed", "error", err)
		return MetricsResult{Success: false, Message: MetricsMsgFailed}
	}
	if prof == nil {
		return MetricsResult{Success: false, Message: MetricsMsgNotFound}
	}
	if prof.HasMetrics() {
		if prof.MetricsUpdatedAt == nil {
			return MetricsResult{Success: false, Message: MetricsMsgNoTimestamp}
		}
		if s.now().Sub(*prof.MetricsUpdatedAt) < s.cooldown {
			return MetricsResult{Success: false, Message: MetricsMsgCooldown}
		}
	}

	outcome, err := s.fns.Metrics(ctx, politicianID, traceID)
	if err != nil {
		log.Warn("Metrics generation failed", "error", err)
		return MetricsResult{Success: false, Message: MetricsMsgFailed}
	}
	if !outcome.FoundAny {
		log.Info("Metrics generation found no polling data", "timed_out", outcome.TimedOut)
		return MetricsResult{Success: false, Message: MetricsMsgNoPollingData, Data: outcome.Raw}
	}
	return MetricsResult{Success: true, Message: MetricsMsgGenerated, Data: outcome.Raw}
}
