package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PricingCategory string

const (
	PricingCategoryBase  PricingCategory = "base"
	PricingCategoryAddOn PricingCategory = "add_on"
)

type AddOnKind string

const (
	AddOnKindNone      AddOnKind = "none"
	AddOnKindExtraDay  AddOnKind = "extra_day"
	AddOnKindNonHunter AddOnKind = "non_hunter"
	AddOnKindObserver  AddOnKind = "observer"
)

// PricingEntry is one priced offering in an outfitter's catalog.
// Empty Species or Weapons lists apply to every species or weapon.
type PricingEntry struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	OutfitterID  uuid.UUID                    `gorm:"type:uuid;not null;index" json:"outfitter_id"`
	Title        string                       `gorm:"not null" json:"title"`
	Category     PricingCategory              `gorm:"type:varchar(32);not null" json:"category"`
	AddOnKind    AddOnKind                    `gorm:"type:varchar(32);not null;default:'none'" json:"add_on_kind"`
	Species      datatypes.JSONType[[]string] `gorm:"not null" json:"species"`
	Weapons      datatypes.JSONType[[]string] `gorm:"not null" json:"weapons"`
	IncludedDays int                          `gorm:"not null;default:0" json:"included_days"`
	UnitPrice    decimal.Decimal              `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	SortOrder    int                          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

func (PricingEntry) TableName() string { return "pricing_entries" }

func (e PricingEntry) IsBase() bool {
	return e.Category == PricingCategoryBase
}
