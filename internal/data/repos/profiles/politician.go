package profiles

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type PoliticianRepo interface {
	GetIndex(dbc dbctx.Context, id int64) (*types.PoliticianIndex, error)
	GetProfile(dbc dbctx.Context, id int64) (*types.PoliticianProfile, error)
	ProfileExists(dbc dbctx.Context, id int64) (bool, error)
	SetIndexed(dbc dbctx.Context, id int64, indexed bool) error
	SetWeak(dbc dbctx.Context, id int64) error
}

type politicianRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPoliticianRepo(db *gorm.DB, baseLog *logger.Logger) PoliticianRepo {
	repoLog := baseLog.With("repo", "PoliticianRepo")
	return &politicianRepo{db: db, log: repoLog}
}

// GetIndex returns nil without error when the politician does not exist.
func (r *politicianRepo) GetIndex(dbc dbctx.Context, id int64) (*types.PoliticianIndex, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.PoliticianIndex
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

func (r *politicianRepo) GetProfile(dbc dbctx.Context, id int64) (*types.PoliticianProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.PoliticianProfile
	err := transaction.WithContext(dbc.Ctx).
		Where("index_id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *politicianRepo) ProfileExists(dbc dbctx.Context, id int64) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.PoliticianProfile{}).
		Where("index_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *politicianRepo) SetIndexed(dbc dbctx.Context, id int64, indexed bool) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.PoliticianIndex{}).
		Where("id = ?", id).
		Update("indexed", indexed).Error
}

// SetWeak is one-way; nothing in this service clears the flag.
func (r *politicianRepo) SetWeak(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.PoliticianIndex{}).
		Where("id = ?", id).
		Update("weak", true).Error
}
