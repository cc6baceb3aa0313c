package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/pkg/keymutex"
	"github.com/yungbote/execudex-backend/internal/platform/gcp"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type legislationReadiness struct {
	log         *logger.Logger
	legislation repos.LegislationRepo
	artifacts   gcp.ArtifactStore
	locks       ProfileLockService
	fns         RemoteFunctions
	placeholder *PlaceholderMatcher
	runs        *keymutex.Mutex
}

func NewLegislationReadiness(
	log *logger.Logger,
	legislation repos.LegislationRepo,
	artifacts gcp.ArtifactStore,
	locks ProfileLockService,
	fns RemoteFunctions,
	placeholder *PlaceholderMatcher,
	runs *keymutex.Mutex,
) ReadinessOrchestrator {
	if runs == nil {
		runs = keymutex.New()
	}
	return &legislationReadiness{
		log:         log.With("service", "LegislationReadiness"),
		legislation: legislation,
		artifacts:   artifacts,
		locks:       locks,
		fns:         fns,
		placeholder: placeholder,
		runs:        runs,
	}
}

func present(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }

// legislationComplete re-validates a row after indexing: indexed with name, sub name and bill level.
func legislationComplete(idx *profiles.LegislationIndex) bool {
	return idx != nil &&
		profiles.IsTrue(idx.Indexed) &&
		present(idx.Name) &&
		present(idx.SubName) &&
		present(idx.BillLvl)
}

func (s *legislationReadiness) Ensure(ctx context.Context, id int64, traceID string) (*ReadinessReport, error) {
	start := time.Now()
	ctx, span := observability.Tracer("services").Start(ctx, "readiness.legislation")
	span.SetAttributes(attribute.Int64("profile.id", id), attribute.String("trace.id", traceID))
	defer span.End()

	report, err := s.ensure(ctx, id, traceID)
	if err != nil {
		span.RecordError(err)
	}
	observability.ObserveOrchestration(string(profiles.KindLegislation), err, time.Since(start))
	return report, err
}

func (s *legislationReadiness) ensure(ctx context.Context, id int64, traceID string) (*ReadinessReport, error) {
	log := s.log.Trace(traceID).With("legislation_id", id)
	report := newReport(id, profiles.KindLegislation)

	release, err := s.runs.Lock(ctx, profiles.MutexKey(id, profiles.KindLegislation))
	if err != nil {
		return report, err
	}
	defer release()

	dbc := dbctx.New(ctx)

	idx, err := s.legislation.GetIndex(dbc, id)
	if err != nil {
		return report, fmt.Errorf("read legislation index: %w", err)
	}
	if idx != nil && profiles.IsTrue(idx.Indexed) {
		report.AlreadyIndexed = true
		log.Debug("Legislation already indexed")
		return report, nil
	}

	report.step(StepStorageCheck)
	hasArtifact, err := s.artifacts.HasSynopsisArtifact(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		log.Warn("Storage artifact check failed; treating as missing", "error", err)
		hasArtifact = false
	}

	if !hasArtifact {
		if idx == nil || !present(idx.BillLvl) {
			report.step(StepIndexing)
			if err := s.fns.Indexing(ctx, id, profiles.KindLegislation, traceID); err != nil {
				log.Error("Indexing failed", "error", err)
				return report, err
			}
			if err := ctx.Err(); err != nil {
				return report, err
			}
		}
		idx, err = s.legislation.GetIndex(dbc, id)
		if err != nil {
			return report, fmt.Errorf("read legislation index: %w", err)
		}
		if legislationComplete(idx) {
			report.AlreadyIndexed = true
			return report, nil
		}
	}

	prof, err := s.legislation.GetProfile(dbc, id)
	if err != nil {
		return report, fmt.Errorf("read legislation profile: %w", err)
	}
	if prof != nil && !s.placeholder.IsMissing(prof.Overview) {
		log.Debug("Overview already present")
		return report, nil
	}

	report.step(StepOverview)
	if err := s.fns.Overview(ctx, id, traceID); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		// Left unindexed so the next open retries the overview.
		log.Warn("Overview generation failed", "error", err)
		report.warn(fmt.Sprintf("overview: %v", err))
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := s.legislation.SetIndexed(dbc, id, true); err != nil {
		log.Warn("Could not mark legislation indexed", "error", err)
		report.warn(fmt.Sprintf("mark indexed: %v", err))
	} else {
		report.step(StepMarkIndexed)
		report.MarkedIndexed = true
	}

	st := s.locks.CheckLockStatus(ctx, id, profiles.KindLegislation)
	if st.Error == "" && st.IsLocked && st.LockReason == LockReasonNoCards {
		if err := s.legislation.SetWeak(dbc, id); err != nil {
			log.Warn("Could not mark legislation weak", "error", err)
			report.warn(fmt.Sprintf("mark weak: %v", err))
		} else {
			report.step(StepApplyWeak)
			report.MarkedWeak = true
		}
	}
	log.Info("Legislation ready", "steps", report.Steps, "weak", report.MarkedWeak)
	return report, nil
}
