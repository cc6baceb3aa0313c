package navigation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/services"
)

var (
	ErrCancelled = errors.New("navigation cancelled")
	ErrBusy      = errors.New("navigation already in progress")
)

const (
	PathPolitician  = "/profile/politician"
	PathLegislation = "/profile/legislation"

	TransientFailureMessage = "Sorry, try again later"
)

// Request is one tap on a profile link. RawID is passed through unparsed so malformed
// ids can still be navigated to.
type Request struct {
	RawID    string `json:"index"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	// UserID is optional; the session provider is consulted when empty.
	UserID string `json:"user_id,omitempty"`
	// TraceID tags every remote call made for this navigation.
	TraceID string `json:"trace_id,omitempty"`
}

// Destination is what gets handed to the Navigator on commit.
type Destination struct {
	Pathname   string                   `json:"pathname"`
	Kind       profiles.Kind            `json:"kind"`
	RawID      string                   `json:"index"`
	ID         int64                    `json:"id,omitempty"`
	Title      string                   `json:"title,omitempty"`
	Subtitle   string                   `json:"subtitle,omitempty"`
	Prefetched *services.ProfilePayload `json:"prefetched,omitempty"`
}

type Result string

const (
	ResultNavigated        Result = "navigated"
	ResultNavigatedInvalid Result = "navigated_invalid_id"
	ResultNavigatedDegrade Result = "navigated_degraded"
	ResultQuotaDenied      Result = "quota_denied"
	ResultTransientFailure Result = "transient_failure"
	ResultCancelled        Result = "cancelled"
	ResultIgnoredBusy      Result = "ignored_busy"
)

// Navigated reports whether the outcome committed a navigation.
func (r Result) Navigated() bool {
	return r == ResultNavigated || r == ResultNavigatedInvalid || r == ResultNavigatedDegrade
}

type PromptAction struct {
	Label string `json:"label"`
	Path  string `json:"path,omitempty"`
}

type Prompt struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Blocking bool           `json:"blocking"`
	Actions  []PromptAction `json:"actions,omitempty"`
}

// Outcome describes what a navigation call did.
type Outcome struct {
	Result      Result                    `json:"result"`
	Kind        profiles.Kind             `json:"kind"`
	ID          int64                     `json:"id,omitempty"`
	Quota       *services.QuotaDecision   `json:"quota,omitempty"`
	Report      *services.ReadinessReport `json:"report,omitempty"`
	Destination *Destination              `json:"destination,omitempty"`
	Prompts     []Prompt                  `json:"prompts,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

type QuotaChecker interface {
	CheckAccess(ctx context.Context, userID uuid.UUID, profileKey string) services.QuotaDecision
}

type SessionProvider interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, bool)
}

type Navigator interface {
	Navigate(ctx context.Context, dest Destination) error
}

type NavigatorFunc func(ctx context.Context, dest Destination) error

func (f NavigatorFunc) Navigate(ctx context.Context, dest Destination) error { return f(ctx, dest) }

type Alerter interface {
	Alert(p Prompt)
}

type AlerterFunc func(p Prompt)

func (f AlerterFunc) Alert(p Prompt) { f(p) }
