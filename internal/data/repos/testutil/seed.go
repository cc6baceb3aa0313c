package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
)

func SeedPolitician(tb testing.TB, ctx context.Context, tx *gorm.DB, row *profiles.PoliticianIndex) *profiles.PoliticianIndex {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed politician: %v", err)
	}
	return row
}

func SeedPoliticianProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, row *profiles.PoliticianProfile) *profiles.PoliticianProfile {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed politician profile: %v", err)
	}
	return row
}

func SeedLegislation(tb testing.TB, ctx context.Context, tx *gorm.DB, row *profiles.LegislationIndex) *profiles.LegislationIndex {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed legislation: %v", err)
	}
	return row
}

func SeedLegislationProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, row *profiles.LegislationProfile) *profiles.LegislationProfile {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed legislation profile: %v", err)
	}
	return row
}

// SeedCards inserts n cards for the owner, all with the given active flag.
func SeedCards(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID int64, isPPL bool, active bool, n int) {
	tb.Helper()
	if n <= 0 {
		return
	}
	cards := make([]*profiles.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, &profiles.Card{
			OwnerID:   ownerID,
			IsPPL:     isPPL,
			IsActive:  active,
			Title:     "card",
			CreatedAt: time.Now().UTC(),
		})
	}
	if err := tx.WithContext(ctx).Create(&cards).Error; err != nil {
		tb.Fatalf("seed cards: %v", err)
	}
}

func PtrBool(v bool) *bool { return &v }

func PtrString(v string) *string { return &v }

func PtrFloat(v float64) *float64 { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
