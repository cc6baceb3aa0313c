package services

import (
	"context"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
)

// RemoteFunctions is the subset of edge functions the readiness runs call.
// *edgefn.Functions satisfies it.
type RemoteFunctions interface {
	Indexing(ctx context.Context, id int64, kind profiles.Kind, traceID string) error
	Synopsis(ctx context.Context, id int64, traceID string) (edgefn.SynopsisResult, error)
	Overview(ctx context.Context, id int64, traceID string) error
	Metrics(ctx context.Context, id int64, traceID string) (edgefn.MetricsOutcome, error)
}

const (
	StepIndexing      = "indexing"
	StepSynopsis      = "synopsis"
	StepIndexingRetry = "indexing_retry"
	StepSynopsisRetry = "synopsis_retry"
	StepStorageCheck  = "storage_check"
	StepOverview      = "overview"
	StepMarkIndexed   = "mark_indexed"
	StepApplyWeak     = "apply_weak"
)

// ReadinessReport records which remote steps a run performed.
type ReadinessReport struct {
	ID             int64         `json:"id"`
	Kind           profiles.Kind `json:"kind"`
	Steps          []string      `json:"steps"`
	AlreadyIndexed bool          `json:"already_indexed"`
	MarkedIndexed  bool          `json:"marked_indexed"`
	MarkedWeak     bool          `json:"marked_weak"`
	Warnings       []string      `json:"warnings,omitempty"`
}

func newReport(id int64, kind profiles.Kind) *ReadinessReport {
	return &ReadinessReport{ID: id, Kind: kind, Steps: []string{}}
}

func (r *ReadinessReport) step(name string) { r.Steps = append(r.Steps, name) }

func (r *ReadinessReport) warn(msg string) { r.Warnings = append(r.Warnings, msg) }

// ReadinessOrchestrator brings one profile to the viewable state. Only cancellation,
// store read failures and *edgefn.CallError from a required indexing step are returned.
type ReadinessOrchestrator interface {
	Ensure(ctx context.Context, id int64, traceID string) (*ReadinessReport, error)
}
