package quota

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanBasic = "basic"
	PlanPlus  = "plus"
)

// Account stores the user's plan. Missing accounts are created lazily as basic.
type Account struct {
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;primaryKey" json:"user_id"`
	Plan      string    `gorm:"column:plan;not null;default:'basic'" json:"plan"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "quota_account" }

// Grant records the first time a user opened a profile key. A key is granted at most
// once per user, so repeat visits never consume quota.
type Grant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_profile_grant_user_key,priority:1;index:idx_profile_grant_cycle,priority:1" json:"user_id"`
	ProfileKey string    `gorm:"column:profile_key;not null;uniqueIndex:idx_profile_grant_user_key,priority:2" json:"profile_key"`
	CycleStart time.Time `gorm:"column:cycle_start;not null;index:idx_profile_grant_cycle,priority:2" json:"cycle_start"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Grant) TableName() string { return "profile_grant" }
