package quota

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/execudex-backend/internal/domain/quota"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type GrantRepo interface {
	Has(dbc dbctx.Context, userID uuid.UUID, profileKey string) (bool, error)
	CountInCycle(dbc dbctx.Context, userID uuid.UUID, cycleStart time.Time) (int64, error)
	// Create inserts the grant unless the user already holds the key. created is false
	// when an existing row won, so callers never charge twice.
	Create(dbc dbctx.Context, grant *types.Grant) (created bool, err error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Grant, error)
}

type grantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGrantRepo(db *gorm.DB, baseLog *logger.Logger) GrantRepo {
	repoLog := baseLog.With("repo", "ProfileGrantRepo")
	return &grantRepo{db: db, log: repoLog}
}

func (r *grantRepo) Has(dbc dbctx.Context, userID uuid.UUID, profileKey string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Grant{}).
		Where("user_id = ? AND profile_key = ?", userID, profileKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *grantRepo) CountInCycle(dbc dbctx.Context, userID uuid.UUID, cycleStart time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Grant{}).
		Where("user_id = ? AND cycle_start = ?", userID, cycleStart.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *grantRepo) Create(dbc dbctx.Context, grant *types.Grant) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	grant.CycleStart = grant.CycleStart.UTC()

	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "profile_key"}},
			DoNothing: true,
		}).
		Create(grant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *grantRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Grant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Grant
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
