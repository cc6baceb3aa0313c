package profiles

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type LegislationRepo interface {
	GetIndex(dbc dbctx.Context, id int64) (*types.LegislationIndex, error)
	GetProfile(dbc dbctx.Context, id int64) (*types.LegislationProfile, error)
	ProfileExists(dbc dbctx.Context, id int64) (bool, error)
	SetIndexed(dbc dbctx.Context, id int64, indexed bool) error
	SetWeak(dbc dbctx.Context, id int64) error
}

type legislationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegislationRepo(db *gorm.DB, baseLog *logger.Logger) LegislationRepo {
	repoLog := baseLog.With("repo", "LegislationRepo")
	return &legislationRepo{db: db, log: repoLog}
}

func (r *legislationRepo) GetIndex(dbc dbctx.Context, id int64) (*types.LegislationIndex, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.LegislationIndex
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *legislationRepo) GetProfile(dbc dbctx.Context, id int64) (*types.LegislationProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.LegislationProfile
	err := transaction.WithContext(dbc.Ctx).
		Where("owner_id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *legislationRepo) ProfileExists(dbc dbctx.Context, id int64) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LegislationProfile{}).
		Where("owner_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *legislationRepo) SetIndexed(dbc dbctx.Context, id int64, indexed bool) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.LegislationIndex{}).
		Where("id = ?", id).
		Update("indexed", indexed).Error
}

func (r *legislationRepo) SetWeak(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.LegislationIndex{}).
		Where("id = ?", id).
		Update("weak", true).Error
}
