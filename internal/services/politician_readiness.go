package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/pkg/keymutex"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type politicianReadiness struct {
	log         *logger.Logger
	politicians repos.PoliticianRepo
	fns         RemoteFunctions
	placeholder *PlaceholderMatcher
	runs        *keymutex.Mutex
}

// NewPoliticianReadiness builds the politician orchestrator. runs serializes whole
// runs per profile and may be shared with the legislation orchestrator.
func NewPoliticianReadiness(
	log *logger.Logger,
	politicians repos.PoliticianRepo,
	fns RemoteFunctions,
	placeholder *PlaceholderMatcher,
	runs *keymutex.Mutex,
) ReadinessOrchestrator {
	if runs == nil {
		runs = keymutex.New()
	}
	return &politicianReadiness{
		log:         log.With("service", "PoliticianReadiness"),
		politicians: politicians,
		fns:         fns,
		placeholder: placeholder,
		runs:        runs,
	}
}

func (s *politicianReadiness) Ensure(ctx context.Context, id int64, traceID string) (*ReadinessReport, error) {
	start := time.Now()
	ctx, span := observability.Tracer("services").Start(ctx, "readiness.politician")
	span.SetAttributes(attribute.Int64("profile.id", id), attribute.String("trace.id", traceID))
	defer span.End()

	report, err := s.ensure(ctx, id, traceID)
	if err != nil {
		span.RecordError(err)
	}
	observability.ObserveOrchestration(string(profiles.KindPolitician), err, time.Since(start))
	return report, err
}

func (s *politicianReadiness) ensure(ctx context.Context, id int64, traceID string) (*ReadinessReport, error) {
	log := s.log.Trace(traceID).With("politician_id", id)
	report := newReport(id, profiles.KindPolitician)

	release, err := s.runs.Lock(ctx, profiles.MutexKey(id, profiles.KindPolitician))
	if err != nil {
		return report, err
	}
	defer release()

	dbc := dbctx.New(ctx)

	// Step 1: indexed profiles are done; a missing content row needs indexing first.
	idx, err := s.politicians.GetIndex(dbc, id)
	if err != nil {
		return report, fmt.Errorf("read politician index: %w", err)
	}
	if idx != nil && profiles.IsTrue(idx.Indexed) {
		report.AlreadyIndexed = true
		log.Debug("Politician already indexed")
		return report, nil
	}
	exists, err := s.politicians.ProfileExists(dbc, id)
	if err != nil {
		return report, fmt.Errorf("read politician profile: %w", err)
	}

	if !exists {
		report.step(StepIndexing)
		if err := s.fns.Indexing(ctx, id, profiles.KindPolitician, traceID); err != nil {
			log.Error("Indexing failed for politician without profile row", "error", err)
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
	} else {
		// Step 2: the row exists but the profile is not indexed yet.
		idx, err = s.politicians.GetIndex(dbc, id)
		if err != nil {
			return report, fmt.Errorf("read politician index: %w", err)
		}
		if idx != nil && profiles.IsTrue(idx.Indexed) {
			report.AlreadyIndexed = true
			return report, nil
		}
		report.step(StepIndexing)
		if err := s.fns.Indexing(ctx, id, profiles.KindPolitician, traceID); err != nil {
			log.Error("Indexing failed", "error", err)
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	// Step 3
	if err := s.ensureSynopsis(ctx, dbc, id, traceID, report, log); err != nil {
		return report, err
	}

	// Step 4
	if err := s.politicians.SetIndexed(dbc, id, true); err != nil {
		log.Warn("Could not mark politician indexed", "error", err)
		report.warn(fmt.Sprintf("mark indexed: %v", err))
		return report, nil
	}
	report.step(StepMarkIndexed)
	report.MarkedIndexed = true
	log.Info("Politician ready", "steps", report.Steps)
	return report, nil
}

// ensureSynopsis is advisory: remote failures are logged and only cancellation is returned.
func (s *politicianReadiness) ensureSynopsis(
	ctx context.Context,
	dbc dbctx.Context,
	id int64,
	traceID string,
	report *ReadinessReport,
	log *logger.Logger,
) error {
	isIndexed := false
	if idx, err := s.politicians.GetIndex(dbc, id); err != nil {
		log.Warn("Synopsis check could not read index", "error", err)
	} else if idx != nil {
		isIndexed = profiles.IsTrue(idx.Indexed)
	}

	prof, err := s.politicians.GetProfile(dbc, id)
	if err != nil {
		log.Warn("Synopsis check could not read profile", "error", err)
		report.warn(fmt.Sprintf("read synopsis: %v", err))
		return nil
	}
	var synopsis *string
	if prof != nil {
		synopsis = prof.Synopsis
	}
	if !s.placeholder.IsMissing(synopsis) {
		return nil
	}

	report.step(StepSynopsis)
	res, err := s.fns.Synopsis(ctx, id, traceID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("Synopsis generation failed", "error", err)
		report.warn(fmt.Sprintf("synopsis: %v", err))
		return nil
	}
	if !res.NoSourceData {
		return ctx.Err()
	}
	if isIndexed {
		log.Info("Synopsis reported no source data for an indexed politician")
		return nil
	}

	report.step(StepIndexingRetry)
	if err := s.fns.Indexing(ctx, id, profiles.KindPolitician, traceID); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("Re-indexing after empty synopsis failed", "error", err)
		report.warn(fmt.Sprintf("indexing retry: %v", err))
		return nil
	}
	report.step(StepSynopsisRetry)
	if _, err := s.fns.Synopsis(ctx, id, traceID); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("Synopsis retry failed", "error", err)
		report.warn(fmt.Sprintf("synopsis retry: %v", err))
	}
	return ctx.Err()
}
