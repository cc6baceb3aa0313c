package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
	"github.com/yungbote/execudex-backend/internal/services"
)

type Deps struct {
	Quota       QuotaChecker
	Politicians services.ReadinessOrchestrator
	Legislation services.ReadinessOrchestrator
	Prefetcher  services.Prefetcher
	Navigator   Navigator
	Log         *logger.Logger

	// Optional collaborators.
	Sessions   SessionProvider
	History    services.HistoryStore
	Alerter    Alerter
	Dispatcher Dispatcher

	ErrorDisplay time.Duration
	LoadingGrace time.Duration
	UpgradePath  string
}

// Session gates profile navigation for one user interface. At most one navigation
// is in flight; a call made while another is processing is ignored, not queued.
type Session struct {
	deps  Deps
	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	processing bool
	generation uint64
	cancel     context.CancelFunc
	onLoading  func(bool)
	onError    func(string)
}

func NewSession(deps Deps) (*Session, error) {
	if deps.Log == nil {
		return nil, errors.New("navigation: logger required")
	}
	if deps.Quota == nil {
		return nil, errors.New("navigation: quota guard required")
	}
	if deps.Politicians == nil || deps.Legislation == nil {
		return nil, errors.New("navigation: readiness orchestrators required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("navigation: navigator required")
	}
	if deps.Prefetcher == nil {
		return nil, errors.New("navigation: prefetcher required")
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher(deps.Log, 10*time.Second)
	}
	if deps.UpgradePath == "" {
		deps.UpgradePath = "/subscription"
	}
	return &Session{
		deps:  deps,
		log:   deps.Log.With("component", "NavigationSession"),
		sleep: sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) SetLoadingCallback(fn func(loading bool)) {
	s.mu.Lock()
	s.onLoading = fn
	s.mu.Unlock()
}

// SetErrorCallback registers the transient error display. An empty message clears it.
func (s *Session) SetErrorCallback(fn func(message string)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *Session) IsCurrentlyProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// CancelProcessing aborts the in-flight navigation, if any, and clears loading and
// error state. It reports whether anything was cancelled.
func (s *Session) CancelProcessing() bool {
	s.mu.Lock()
	cancel := s.cancel
	if cancel == nil {
		s.mu.Unlock()
		return false
	}
	s.cancel = nil
	s.processing = false
	s.mu.Unlock()

	cancel()
	s.setLoading(false)
	s.setError("")
	s.log.Info("Profile processing cancelled by user")
	return true
}

func (s *Session) NavigateToPoliticianProfile(ctx context.Context, req Request) Outcome {
	return s.navigate(ctx, profiles.KindPolitician, req)
}

func (s *Session) NavigateToLegislationProfile(ctx context.Context, req Request) Outcome {
	return s.navigate(ctx, profiles.KindLegislation, req)
}

func (s *Session) begin(ctx context.Context) (context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return nil, 0, false
	}
	opCtx, cancel := context.WithCancel(ctx)
	s.generation++
	s.processing = true
	s.cancel = cancel
	return opCtx, s.generation, true
}

// finish releases the session unless a newer navigation already took it over.
func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.processing = false
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	cb := s.onLoading
	s.mu.Unlock()
	if cb != nil {
		cb(v)
	}
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	cb := s.onError
	s.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}

func (s *Session) orchestrator(kind profiles.Kind) services.ReadinessOrchestrator {
	if kind.IsPolitician() {
		return s.deps.Politicians
	}
	return s.deps.Legislation
}

func pathFor(kind profiles.Kind) string {
	if kind.IsPolitician() {
		return PathPolitician
	}
	return PathLegislation
}

func historyName(kind profiles.Kind, title string) string {
	if title != "" {
		return title
	}
	if kind.IsPolitician() {
		return "Unknown Politician"
	}
	return "Unknown Legislation"
}

func denyPrompt(upgradePath string) Prompt {
	return Prompt{
		Title: "Weekly Profile Limit Reached",
		Message: "You've reached your weekly limit for new profiles, come back Sunday.\n\n" +
			"Check your history to revisit authorized profiles or upgrade to Execudex Plus for unlimited access.",
		Blocking: true,
		Actions:  []PromptAction{{Label: "Upgrade Now", Path: upgradePath}, {Label: "OK"}},
	}
}

func warningPrompt(remaining int) Prompt {
	plural := "s"
	if remaining == 1 {
		plural = ""
	}
	return Prompt{
		Title:   "Profile Limit Warning",
		Message: fmt.Sprintf("You have %d profile%s remaining this week. Your limit resets on Sunday.", remaining, plural),
		Actions: []PromptAction{{Label: "OK"}},
	}
}

func (s *Session) prompt(out *Outcome, p Prompt) {
	out.Prompts = append(out.Prompts, p)
	if s.deps.Alerter != nil {
		s.deps.Alerter.Alert(p)
	}
}

func (s *Session) resolveUser(ctx context.Context, req Request, log *logger.Logger) (uuid.UUID, bool) {
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err == nil && id != uuid.Nil {
			return id, true
		}
		log.Warn("Ignoring malformed user id", "error", err)
	}
	if s.deps.Sessions == nil {
		return uuid.Nil, false
	}
	return s.deps.Sessions.CurrentUserID(ctx)
}

func (s *Session) done(out *Outcome, result Result) Outcome {
	out.Result = result
	observability.ObserveNavigation(string(out.Kind), string(result))
	return *out
}

// cancelled leaves the indicators alone when a newer navigation owns them.
func (s *Session) cancelled(out *Outcome, gen uint64) Outcome {
	if s.current(gen) {
		s.setLoading(false)
		s.setError("")
	}
	out.Error = ErrCancelled.Error()
	return s.done(out, ResultCancelled)
}

func (s *Session) commit(ctx context.Context, out *Outcome, dest Destination, result Result, log *logger.Logger) Outcome {
	if err := s.deps.Navigator.Navigate(ctx, dest); err != nil {
		log.Warn("Navigator rejected destination", "error", err)
		out.Error = err.Error()
	}
	out.Destination = &dest
	return s.done(out, result)
}

func (s *Session) navigate(ctx context.Context, kind profiles.Kind, req Request) Outcome {
	out := Outcome{Kind: kind}
	opCtx, gen, ok := s.begin(ctx)
	if !ok {
		s.log.Info("Already processing a profile, ignoring navigation request", "kind", string(kind), "raw_id", req.RawID)
		out.Error = ErrBusy.Error()
		return s.done(&out, ResultIgnoredBusy)
	}
	defer s.finish(gen)

	log := s.log.Trace(req.TraceID).With("kind", string(kind), "raw_id", req.RawID)
	dest := Destination{Pathname: pathFor(kind), Kind: kind, RawID: req.RawID, Title: req.Title, Subtitle: req.Subtitle}

	id, err := profiles.ParseID(req.RawID)
	if err != nil {
		log.Warn("Invalid profile id; navigating without processing", "error", err)
		return s.commit(ctx, &out, dest, ResultNavigatedInvalid, log)
	}
	out.ID, dest.ID = id, id
	if opCtx.Err() != nil {
		return s.cancelled(&out, gen)
	}

	userID, hasUser := s.resolveUser(opCtx, req, log)
	if hasUser {
		s.setLoading(true)
		decision := s.deps.Quota.CheckAccess(opCtx, userID, profiles.QuotaKey(id, kind))
		if opCtx.Err() != nil {
			return s.cancelled(&out, gen)
		}
		s.setLoading(false)
		out.Quota = &decision
		if !decision.Allowed {
			log.Info("Profile access denied", "user_id", userID.String(), "used", decision.ProfilesUsed)
			s.prompt(&out, denyPrompt(s.deps.UpgradePath))
			return s.done(&out, ResultQuotaDenied)
		}
		if decision.ShowWarning && decision.RemainingProfiles != nil {
			s.prompt(&out, warningPrompt(*decision.RemainingProfiles))
		}
	} else {
		log.Warn("No user available; skipping quota check and history")
	}

	s.setLoading(true)
	report, err := s.orchestrator(kind).Ensure(opCtx, id, req.TraceID)
	out.Report = report
	if opCtx.Err() != nil || errors.Is(err, context.Canceled) {
		return s.cancelled(&out, gen)
	}
	if err != nil {
		out.Error = err.Error()
		if edgefn.IsCallError(err) {
			log.Warn("Profile preparation failed remotely; staying put", "error", err)
			s.setError(TransientFailureMessage)
			if werr := s.sleep(opCtx, s.deps.ErrorDisplay); werr != nil {
				return s.cancelled(&out, gen)
			}
			s.setError("")
			s.setLoading(false)
			return s.done(&out, ResultTransientFailure)
		}
		log.Warn("Profile preparation failed; navigating anyway", "error", err)
		s.setLoading(false)
		return s.commit(ctx, &out, dest, ResultNavigatedDegrade, log)
	}

	payload, err := s.deps.Prefetcher.Prefetch(opCtx, id, kind)
	if err != nil {
		log.Warn("Prefetch failed; destination will load its own data", "error", err)
	} else {
		dest.Prefetched = payload
	}
	if opCtx.Err() != nil {
		return s.cancelled(&out, gen)
	}

	result := s.commit(ctx, &out, dest, ResultNavigated, log)

	grace := s.deps.LoadingGrace
	s.deps.Dispatcher.Go("loading-grace", func(taskCtx context.Context) error {
		if err := s.sleep(taskCtx, grace); err != nil {
			return err
		}
		if s.current(gen) {
			s.setLoading(false)
		}
		return nil
	})

	if hasUser && s.deps.History != nil {
		item := services.HistoryItem{
			ID:        id,
			Kind:      kind,
			Name:      historyName(kind, req.Title),
			SubName:   defaultString(req.Subtitle, "Unknown"),
			VisitedAt: time.Now().UTC(),
		}
		user := userID.String()
		s.deps.Dispatcher.Go("history", func(taskCtx context.Context) error {
			return s.deps.History.Add(taskCtx, user, item)
		})
	}
	return result
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
