package profiles

import (
	"gorm.io/gorm"

	types "github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type CardRepo interface {
	CountActive(dbc dbctx.Context, ownerID int64, kind types.Kind) (int64, error)
	ListActive(dbc dbctx.Context, ownerID int64, kind types.Kind, limit int) ([]*types.Card, error)
}

type cardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardRepo(db *gorm.DB, baseLog *logger.Logger) CardRepo {
	repoLog := baseLog.With("repo", "CardRepo")
	return &cardRepo{db: db, log: repoLog}
}

func (r *cardRepo) CountActive(dbc dbctx.Context, ownerID int64, kind types.Kind) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Card{}).
		Where("owner_id = ? AND is_ppl = ? AND is_active = ?", ownerID, kind.IsPolitician(), true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *cardRepo) ListActive(dbc dbctx.Context, ownerID int64, kind types.Kind, limit int) ([]*types.Card, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Card
	q := transaction.WithContext(dbc.Ctx).
		Where("owner_id = ? AND is_ppl = ? AND is_active = ?", ownerID, kind.IsPolitician(), true).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
