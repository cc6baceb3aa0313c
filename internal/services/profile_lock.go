package services

import (
	"context"
	"fmt"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

const (
	LockReasonNoCards = "no_cards"
	LockReasonWeak    = "weak_profile"
	LockReasonNone    = "none"
)

// LockStatus is derived from the weak flag and the active card count. When the
// evaluation itself fails the status is unlocked and Error says why.
type LockStatus struct {
	IsLocked    bool          `json:"is_locked"`
	LockReason  string        `json:"lock_reason"`
	LockedPage  *string       `json:"locked_page"`
	ProfileType profiles.Kind `json:"profile_type"`
	ActiveCards int64         `json:"active_cards"`
	Error       string        `json:"error,omitempty"`
}

type ProfileLockService interface {
	CheckLockStatus(ctx context.Context, id int64, kind profiles.Kind) LockStatus
	ShouldHideTabBar(ctx context.Context, id int64, kind profiles.Kind) bool
	TabBarHidden(ctx context.Context, id int64, kind profiles.Kind, st LockStatus) bool
}

type profileLockService struct {
	log         *logger.Logger
	politicians repos.PoliticianRepo
	legislation repos.LegislationRepo
	cards       repos.CardRepo
	// tabBarThreshold hides secondary navigation at or below this many active cards.
	tabBarThreshold int64
}

func NewProfileLockService(
	log *logger.Logger,
	politicians repos.PoliticianRepo,
	legislation repos.LegislationRepo,
	cards repos.CardRepo,
	tabBarThreshold int64,
) ProfileLockService {
	return &profileLockService{
		log:             log.With("service", "ProfileLockService"),
		politicians:     politicians,
		legislation:     legislation,
		cards:           cards,
		tabBarThreshold: tabBarThreshold,
	}
}

func unlocked(kind profiles.Kind) LockStatus {
	return LockStatus{IsLocked: false, LockReason: LockReasonNone, ProfileType: kind}
}

func locked(kind profiles.Kind, reason string, cards int64) LockStatus {
	page := kind.LockedPage()
	return LockStatus{IsLocked: true, LockReason: reason, LockedPage: &page, ProfileType: kind, ActiveCards: cards}
}

func (s *profileLockService) readWeak(dbc dbctx.Context, id int64, kind profiles.Kind) (weak bool, found bool, err error) {
	if kind.IsPolitician() {
		row, err := s.politicians.GetIndex(dbc, id)
		if err != nil || row == nil {
			return false, false, err
		}
		return profiles.IsTrue(row.Weak), true, nil
	}
	row, err := s.legislation.GetIndex(dbc, id)
	if err != nil || row == nil {
		return false, false, err
	}
	return profiles.IsTrue(row.Weak), true, nil
}

func (s *profileLockService) CheckLockStatus(ctx context.Context, id int64, kind profiles.Kind) LockStatus {
	status := s.evaluate(ctx, id, kind)
	observability.ObserveLockEvaluation(string(kind), status.LockReason)
	return status
}

func (s *profileLockService) evaluate(ctx context.Context, id int64, kind profiles.Kind) LockStatus {
	dbc := dbctx.New(ctx)
	log := s.log.With("profile_id", id, "kind", string(kind))

	weak, found, err := s.readWeak(dbc, id, kind)
	if err != nil {
		log.Warn("Lock check could not read profile", "error", err)
		st := unlocked(kind)
		st.Error = fmt.Sprintf("read profile: %v", err)
		return st
	}
	if !found {
		st := unlocked(kind)
		st.Error = "profile not found"
		return st
	}
	if weak {
		return locked(kind, LockReasonWeak, 0)
	}

	count, err := s.cards.CountActive(dbc, id, kind)
	if err != nil {
		log.Warn("Lock check could not count cards", "error", err)
		st := unlocked(kind)
		st.Error = fmt.Sprintf("count cards: %v", err)
		return st
	}
	if count == 0 {
		return locked(kind, LockReasonNoCards, 0)
	}
	st := unlocked(kind)
	st.ActiveCards = count
	return st
}

func (s *profileLockService) ShouldHideTabBar(ctx context.Context, id int64, kind profiles.Kind) bool {
	return s.TabBarHidden(ctx, id, kind, s.CheckLockStatus(ctx, id, kind))
}

// TabBarHidden applies the sparse-content rule to an already computed status.
// A failed evaluation falls back to counting active cards; if that also fails the
// tab bar stays visible.
func (s *profileLockService) TabBarHidden(ctx context.Context, id int64, kind profiles.Kind, st LockStatus) bool {
	if st.Error == "" {
		return st.IsLocked || st.ActiveCards <= s.tabBarThreshold
	}
	count, err := s.cards.CountActive(dbctx.New(ctx), id, kind)
	if err != nil {
		s.log.Warn("Tab bar fallback could not count cards", "profile_id", id, "kind", string(kind), "error", err)
		return false
	}
	return count <= s.tabBarThreshold
}
