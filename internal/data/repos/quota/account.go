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

type AccountRepo interface {
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.Account, error)
	SetPlan(dbc dbctx.Context, userID uuid.UUID, plan string) error
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "QuotaAccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

// GetOrCreate returns the user's account, inserting a basic one on first sight.
func (r *accountRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	seed := &types.Account{UserID: userID, Plan: types.PlanBasic, CreatedAt: now, UpdatedAt: now}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(seed).Error; err != nil {
		return nil, err
	}

	var row types.Account
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *accountRepo) SetPlan(dbc dbctx.Context, userID uuid.UUID, plan string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if _, err := r.GetOrCreate(dbctx.WithTx(dbc.Ctx, transaction), userID); err != nil {
		return err
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"plan": plan, "updated_at": time.Now().UTC()}).Error
}
