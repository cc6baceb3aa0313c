package domain

import (
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/domain/quota"
)

type (
	PoliticianIndex    = profiles.PoliticianIndex
	PoliticianProfile  = profiles.PoliticianProfile
	LegislationIndex   = profiles.LegislationIndex
	LegislationProfile = profiles.LegislationProfile
	Card               = profiles.Card

	QuotaAccount = quota.Account
	ProfileGrant = quota.Grant
)

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&profiles.PoliticianIndex{},
		&profiles.PoliticianProfile{},
		&profiles.LegislationIndex{},
		&profiles.LegislationProfile{},
		&profiles.Card{},
		&quota.Account{},
		&quota.Grant{},
	}
}
