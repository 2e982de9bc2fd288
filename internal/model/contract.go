package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ContractStatus string

const (
	ContractStatusPendingClientCompletion ContractStatus = "pending_client_completion"
	ContractStatusReadyForSignature       ContractStatus = "ready_for_signature"
	ContractStatusAwaitingSignatures      ContractStatus = "awaiting_signatures"
	ContractStatusFullyExecuted           ContractStatus = "fully_executed"
)

// CompletionSnapshot is the frozen set of inputs a contract bill was
// computed from. Unknown JSON fields are ignored on decode.
type CompletionSnapshot struct {
	SelectedPricingID *uuid.UUID `json:"selected_pricing_id,omitempty"`
	AddOns
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Pinned    *PinnedPrices `json:"pinned,omitempty"`
}

// PinnedPrices records the prices in effect when the bill was rendered.
// Once a contract is executed these are the prices reconciliation replays.
type PinnedPrices struct {
	BasePricingID *uuid.UUID       `json:"base_pricing_id,omitempty"`
	BaseTitle     string           `json:"base_title,omitempty"`
	BasePrice     *decimal.Decimal `json:"base_price,omitempty"`
	ExtraDayRate  decimal.Decimal  `json:"extra_day_rate"`
	NonHunterRate decimal.Decimal  `json:"non_hunter_rate"`
	ObserverRate  decimal.Decimal  `json:"observer_rate"`
	PinnedAt      time.Time        `json:"pinned_at"`
}

type HuntContract struct {
	ID             uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	HuntID         uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex" json:"hunt_id"`
	OutfitterID    uuid.UUID                              `gorm:"type:uuid;not null;index" json:"outfitter_id"`
	Status         ContractStatus                         `gorm:"type:varchar(40);not null" json:"status"`
	Content        string                                 `gorm:"type:text;not null" json:"content"`
	Completion     datatypes.JSONType[CompletionSnapshot] `gorm:"not null" json:"completion"`
	TotalCents     int64                                  `gorm:"not null;default:0" json:"total_cents"`
	ClientSignedAt *time.Time                             `json:"client_signed_at,omitempty"`
	AdminSignedAt  *time.Time                             `json:"admin_signed_at,omitempty"`
	ExecutedAt     *time.Time                             `json:"executed_at,omitempty"`
	Version        int                                    `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time                              `json:"created_at"`
	UpdatedAt      time.Time                              `json:"updated_at"`
}

func (HuntContract) TableName() string { return "hunt_contracts" }

// Signed reports whether either party has signed.
func (c *HuntContract) Signed() bool {
	return c.ClientSignedAt != nil || c.AdminSignedAt != nil
}

func (c *HuntContract) FullyExecuted() bool {
	return c.Status == ContractStatusFullyExecuted
}

type SignatureParty string

const (
	SignatureClient SignatureParty = "client"
	SignatureAdmin  SignatureParty = "admin"
)

// ContractDocument is the view of a contract used for PDF export.
type ContractDocument struct {
	Contract HuntContract
	Hunt     Hunt
}
