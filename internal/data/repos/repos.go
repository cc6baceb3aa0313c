package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/execudex-backend/internal/data/repos/profiles"
	"github.com/yungbote/execudex-backend/internal/data/repos/quota"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type PoliticianRepo = profiles.PoliticianRepo
type LegislationRepo = profiles.LegislationRepo
type CardRepo = profiles.CardRepo

type QuotaAccountRepo = quota.AccountRepo
type ProfileGrantRepo = quota.GrantRepo

type Repos struct {
	Politician  PoliticianRepo
	Legislation LegislationRepo
	Card        CardRepo

	QuotaAccount QuotaAccountRepo
	ProfileGrant ProfileGrantRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Politician:  profiles.NewPoliticianRepo(db, log),
		Legislation: profiles.NewLegislationRepo(db, log),
		Card:        profiles.NewCardRepo(db, log),

		QuotaAccount: quota.NewAccountRepo(db, log),
		ProfileGrant: quota.NewGrantRepo(db, log),
	}
}
