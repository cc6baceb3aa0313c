package services

import (
	"context"
	"testing"

	"github.com/yungbote/execudex-backend/internal/data/repos/testutil"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
)

func newLockService(t *testing.T, fx fixture) ProfileLockService {
	t.Helper()
	return NewProfileLockService(testutil.Logger(t), fx.repos.Politician, fx.repos.Legislation, fx.repos.Card, 8)
}

func TestLockStatusFewCardsHidesTabBar(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 20, Weak: testutil.PtrBool(false)})
	testutil.SeedCards(t, ctx, fx.db, 20, true, true, 5)
	testutil.SeedCards(t, ctx, fx.db, 20, true, false, 9)
	svc := newLockService(t, fx)

	st := svc.CheckLockStatus(ctx, 20, profiles.KindPolitician)
	if st.IsLocked || st.LockReason != LockReasonNone || st.ActiveCards != 5 || st.LockedPage != nil {
		t.Fatalf("status: got=%+v", st)
	}
	if !svc.ShouldHideTabBar(ctx, 20, profiles.KindPolitician) {
		t.Fatalf("hide tab bar: want=true")
	}
}

func TestLockStatusManyCardsShowsTabBar(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedLegislation(t, ctx, fx.db, &profiles.LegislationIndex{ID: 21})
	testutil.SeedCards(t, ctx, fx.db, 21, false, true, 9)
	// Politician cards with the same owner id must not count.
	testutil.SeedCards(t, ctx, fx.db, 21, true, true, 3)
	svc := newLockService(t, fx)

	st := svc.CheckLockStatus(ctx, 21, profiles.KindLegislation)
	if st.IsLocked || st.ActiveCards != 9 {
		t.Fatalf("status: got=%+v", st)
	}
	if svc.ShouldHideTabBar(ctx, 21, profiles.KindLegislation) {
		t.Fatalf("hide tab bar: want=false")
	}
}

func TestLockStatusNoCardsLocksOnKindPage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 22})
	testutil.SeedLegislation(t, ctx, fx.db, &profiles.LegislationIndex{ID: 22})
	svc := newLockService(t, fx)

	p := svc.CheckLockStatus(ctx, 22, profiles.KindPolitician)
	if !p.IsLocked || p.LockReason != LockReasonNoCards || p.LockedPage == nil || *p.LockedPage != "synopsis" {
		t.Fatalf("politician: got=%+v", p)
	}
	l := svc.CheckLockStatus(ctx, 22, profiles.KindLegislation)
	if !l.IsLocked || l.LockedPage == nil || *l.LockedPage != "overview" {
		t.Fatalf("legislation: got=%+v", l)
	}
}

func TestLockStatusWeakStaysLockedWithCards(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedLegislation(t, ctx, fx.db, &profiles.LegislationIndex{ID: 23})
	svc := newLockService(t, fx)

	if err := fx.repos.Legislation.SetWeak(dbctx.New(ctx), 23); err != nil {
		t.Fatalf("SetWeak: %v", err)
	}
	// Cards arriving after the weak mark do not unlock the profile.
	testutil.SeedCards(t, ctx, fx.db, 23, false, true, 20)

	st := svc.CheckLockStatus(ctx, 23, profiles.KindLegislation)
	if !st.IsLocked || st.LockReason != LockReasonWeak {
		t.Fatalf("status: got=%+v", st)
	}
}

func TestLockStatusMissingProfileIsUnlockedWithError(t *testing.T) {
	fx := newFixture(t)
	svc := newLockService(t, fx)

	st := svc.CheckLockStatus(context.Background(), 404, profiles.KindPolitician)
	if st.IsLocked || st.Error == "" {
		t.Fatalf("status: got=%+v", st)
	}
	// no cards exist for the missing profile, so the fallback count hides the tab bar
	if !svc.ShouldHideTabBar(context.Background(), 404, profiles.KindPolitician) {
		t.Fatalf("hide tab bar: want=true from fallback count")
	}
}

func TestTabBarFallsBackToCardCountOnLockError(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedCards(t, ctx, fx.db, 30, true, true, 3)
	testutil.SeedCards(t, ctx, fx.db, 31, true, true, 12)
	if err := fx.db.Migrator().DropTable(&profiles.PoliticianIndex{}); err != nil {
		t.Fatalf("drop index table: %v", err)
	}
	svc := newLockService(t, fx)

	st := svc.CheckLockStatus(ctx, 30, profiles.KindPolitician)
	if st.Error == "" {
		t.Fatalf("status: want evaluation error got=%+v", st)
	}
	if !svc.ShouldHideTabBar(ctx, 30, profiles.KindPolitician) {
		t.Fatalf("3 cards: want=true")
	}
	if svc.ShouldHideTabBar(ctx, 31, profiles.KindPolitician) {
		t.Fatalf("12 cards: want=false")
	}
}

func TestTabBarVisibleWhenFallbackCountFails(t *testing.T) {
	fx := newFixture(t)
	svc := newLockService(t, fx)
	sqlDB, err := fx.db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	_ = sqlDB.Close()

	if svc.ShouldHideTabBar(context.Background(), 1, profiles.KindPolitician) {
		t.Fatalf("hide tab bar: want=false when cards cannot be counted")
	}
}

func TestLockStatusReadFailureIsUnlocked(t *testing.T) {
	fx := newFixture(t)
	svc := newLockService(t, fx)
	sqlDB, err := fx.db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	_ = sqlDB.Close()

	st := svc.CheckLockStatus(context.Background(), 1, profiles.KindLegislation)
	if st.IsLocked || st.Error == "" || st.LockReason != LockReasonNone {
		t.Fatalf("status: got=%+v", st)
	}
}
