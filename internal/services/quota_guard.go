package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	quotatypes "github.com/yungbote/execudex-backend/internal/domain/quota"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

const (
	QuotaReasonAlreadyAccessed = "already_accessed"
	QuotaReasonExceeded        = "quota_exceeded"
	QuotaReasonProfileAdded    = "profile_added"
	QuotaReasonUnlimited       = "unlimited_plan_tracked"
	QuotaReasonCheckFailed     = "check_failed"
)

type QuotaDecision struct {
	Allowed           bool       `json:"allowed"`
	ProfilesUsed      int        `json:"profiles_used"`
	RemainingProfiles *int       `json:"remaining_profiles,omitempty"`
	ShowWarning       bool       `json:"show_warning"`
	Reason            string     `json:"reason,omitempty"`
	Plan              string     `json:"plan,omitempty"`
	ResetDate         *time.Time `json:"reset_date,omitempty"`
	Error             string     `json:"error,omitempty"`
}

type QuotaUsage struct {
	Plan         string    `json:"plan"`
	ProfilesUsed int       `json:"profiles_used"`
	ProfileKeys  []string  `json:"profile_keys"`
	Limit        int       `json:"limit"`
	CycleStart   time.Time `json:"cycle_start"`
	ResetDate    time.Time `json:"reset_date"`
}

type QuotaSettings struct {
	WeeklyLimit      int
	WarningThreshold int
	Location         *time.Location
}

type QuotaGuard interface {
	// CheckAccess never fails: backend errors allow access and set Error.
	CheckAccess(ctx context.Context, userID uuid.UUID, profileKey string) QuotaDecision
	Usage(ctx context.Context, userID uuid.UUID) (*QuotaUsage, error)
}

type quotaGuard struct {
	db       *gorm.DB
	log      *logger.Logger
	accounts repos.QuotaAccountRepo
	grants   repos.ProfileGrantRepo
	settings QuotaSettings
	now      func() time.Time
}

func NewQuotaGuard(
	db *gorm.DB,
	log *logger.Logger,
	accounts repos.QuotaAccountRepo,
	grants repos.ProfileGrantRepo,
	settings QuotaSettings,
) QuotaGuard {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &quotaGuard{
		db:       db,
		log:      log.With("service", "QuotaGuard"),
		accounts: accounts,
		grants:   grants,
		settings: settings,
		now:      time.Now,
	}
}

// CycleStart is the most recent Sunday 00:00 in loc at or before now.
func CycleStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

func (g *quotaGuard) CheckAccess(ctx context.Context, userID uuid.UUID, profileKey string) QuotaDecision {
	log := g.log.With("user_id", userID.String(), "profile_key", profileKey)

	if userID == uuid.Nil || profileKey == "" {
		log.Warn("Quota check skipped on invalid input; allowing")
		d := QuotaDecision{Allowed: true, Reason: QuotaReasonCheckFailed, Error: "user id and profile key are required"}
		observability.ObserveQuotaDecision(d.Allowed, d.Reason)
		return d
	}

	var decision QuotaDecision
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := g.decide(dbctx.WithTx(ctx, tx), userID, profileKey)
		decision = d
		return err
	})
	if err != nil {
		log.Warn("Quota check failed; allowing access", "error", err)
		decision = QuotaDecision{Allowed: true, Reason: QuotaReasonCheckFailed, Error: err.Error()}
	}
	observability.ObserveQuotaDecision(decision.Allowed, decision.Reason)
	log.Debug("Quota decision", "allowed", decision.Allowed, "reason", decision.Reason, "used", decision.ProfilesUsed)
	return decision
}

func (g *quotaGuard) decide(dbc dbctx.Context, userID uuid.UUID, profileKey string) (QuotaDecision, error) {
	cycle := CycleStart(g.now(), g.settings.Location)
	reset := cycle.AddDate(0, 0, 7)

	used, err := g.grants.CountInCycle(dbc, userID, cycle)
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("count grants: %w", err)
	}

	seen, err := g.grants.Has(dbc, userID, profileKey)
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("lookup grant: %w", err)
	}
	if seen {
		return QuotaDecision{Allowed: true, ProfilesUsed: int(used), Reason: QuotaReasonAlreadyAccessed}, nil
	}

	acct, err := g.accounts.GetOrCreate(dbc, userID)
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("load account: %w", err)
	}
	basic := acct.Plan != quotatypes.PlanPlus

	if basic && int(used) >= g.settings.WeeklyLimit {
		return QuotaDecision{
			Allowed:      false,
			ProfilesUsed: int(used),
			Reason:       QuotaReasonExceeded,
			Plan:         acct.Plan,
			ResetDate:    &reset,
		}, nil
	}

	created, err := g.grants.Create(dbc, &quotatypes.Grant{UserID: userID, ProfileKey: profileKey, CycleStart: cycle})
	if err != nil {
		return QuotaDecision{}, fmt.Errorf("record grant: %w", err)
	}
	if !created {
		// A concurrent request recorded the same key first.
		return QuotaDecision{Allowed: true, ProfilesUsed: int(used), Reason: QuotaReasonAlreadyAccessed, Plan: acct.Plan}, nil
	}

	usedAfter := int(used) + 1
	if !basic {
		return QuotaDecision{Allowed: true, ProfilesUsed: usedAfter, Reason: QuotaReasonUnlimited, Plan: acct.Plan}, nil
	}
	remaining := g.settings.WeeklyLimit - usedAfter
	if remaining < 0 {
		remaining = 0
	}
	return QuotaDecision{
		Allowed:           true,
		ProfilesUsed:      usedAfter,
		RemainingProfiles: &remaining,
		ShowWarning:       remaining <= g.settings.WarningThreshold,
		Reason:            QuotaReasonProfileAdded,
		Plan:              acct.Plan,
		ResetDate:         &reset,
	}, nil
}

func (g *quotaGuard) Usage(ctx context.Context, userID uuid.UUID) (*QuotaUsage, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user id required")
	}
	dbc := dbctx.New(ctx)
	cycle := CycleStart(g.now(), g.settings.Location)

	acct, err := g.accounts.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	rows, err := g.grants.ListByUser(dbc, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	keys := []string{}
	for _, r := range rows {
		if r.CycleStart.Equal(cycle) {
			keys = append(keys, r.ProfileKey)
		}
	}
	return &QuotaUsage{
		Plan:         acct.Plan,
		ProfilesUsed: len(keys),
		ProfileKeys:  keys,
		Limit:        g.settings.WeeklyLimit,
		CycleStart:   cycle,
		ResetDate:    cycle.AddDate(0, 0, 7),
	}, nil
}
