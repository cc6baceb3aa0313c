package profiles

import (
	"time"

	"gorm.io/datatypes"
)

// PoliticianIndex is the classification row for a politician.
type PoliticianIndex struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name    string  `gorm:"column:name;not null;default:''" json:"name"`
	SubName string  `gorm:"column:sub_name;not null;default:''" json:"sub_name"`
	Tier    *string `gorm:"column:tier" json:"tier,omitempty"`
	Indexed *bool   `gorm:"column:indexed" json:"indexed,omitempty"`
	Weak    *bool   `gorm:"column:weak" json:"weak,omitempty"`
}

func (PoliticianIndex) TableName() string { return "ppl_index" }

// PoliticianProfile holds generated narrative and metrics. Rows are created by the
// indexing function, never by this service.
type PoliticianProfile struct {
	IndexID     int64    `gorm:"column:index_id;primaryKey;autoIncrement:false" json:"index_id"`
	Synopsis    *string  `gorm:"column:synopsis;type:text" json:"synopsis,omitempty"`
	Agenda      *string  `gorm:"column:agenda;type:text" json:"agenda,omitempty"`
	Identity    *string  `gorm:"column:identity;type:text" json:"identity,omitempty"`
	Affiliates  *string  `gorm:"column:affiliates;type:text" json:"affiliates,omitempty"`
	PollSummary *string  `gorm:"column:poll_summary;type:text" json:"poll_summary,omitempty"`
	PollLink    *string  `gorm:"column:poll_link" json:"poll_link,omitempty"`
	Score       *float64 `gorm:"column:score" json:"score,omitempty"`

	Approval    *float64 `gorm:"column:approval" json:"approval,omitempty"`
	Disapproval *float64 `gorm:"column:disapproval" json:"disapproval,omitempty"`
	Votes       *float64 `gorm:"column:votes" json:"votes,omitempty"`
	// MetricsUpdatedAt is only written by the metrics function.
	MetricsUpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (PoliticianProfile) TableName() string { return "ppl_profiles" }

// HasMetrics reports whether any engagement metric has ever been generated.
func (p *PoliticianProfile) HasMetrics() bool {
	return p != nil && (p.Approval != nil || p.Disapproval != nil || p.Votes != nil)
}

type LegislationIndex struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name    *string `gorm:"column:name" json:"name,omitempty"`
	SubName *string `gorm:"column:sub_name" json:"sub_name,omitempty"`
	BillLvl *string `gorm:"column:bill_lvl" json:"bill_lvl,omitempty"`
	Indexed *bool   `gorm:"column:indexed" json:"indexed,omitempty"`
	Weak    *bool   `gorm:"column:weak" json:"weak,omitempty"`
}

func (LegislationIndex) TableName() string { return "legi_index" }

type LegislationProfile struct {
	OwnerID  int64          `gorm:"column:owner_id;primaryKey;autoIncrement:false" json:"owner_id"`
	Overview *string        `gorm:"column:overview;type:text" json:"overview,omitempty"`
	Agenda   datatypes.JSON `gorm:"column:agenda;type:jsonb" json:"agenda,omitempty"`
	Impact   datatypes.JSON `gorm:"column:impact;type:jsonb" json:"impact,omitempty"`
}

func (LegislationProfile) TableName() string { return "legi_profiles" }

// Card is a generated content unit. Active cards drive lock decisions.
type Card struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index:idx_card_owner,priority:1" json:"owner_id"`
	IsPPL     bool      `gorm:"column:is_ppl;not null;index:idx_card_owner,priority:2" json:"is_ppl"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false" json:"is_active"`
	Title     string    `gorm:"column:title" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Card) TableName() string { return "card_index" }

func IsTrue(b *bool) bool { return b != nil && *b }
