package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentKind string

const PaymentKindGuideFee PaymentKind = "guide_fee"

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// PaymentBreakdown is a monetary split in integer cents.
type PaymentBreakdown struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	FeeCents      int64 `json:"fee_cents"`
	TotalCents    int64 `json:"total_cents"`
}

type PaymentItem struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uq_payment_items_contract_kind" json:"contract_id"`
	Kind            PaymentKind   `gorm:"type:varchar(32);not null;uniqueIndex:uq_payment_items_contract_kind" json:"kind"`
	OutfitterID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"outfitter_id"`
	ClientID        *uuid.UUID    `gorm:"type:uuid" json:"client_id,omitempty"`
	Description     string        `json:"description"`
	SubtotalCents   int64         `gorm:"not null" json:"subtotal_cents"`
	FeeCents        int64         `gorm:"not null" json:"fee_cents"`
	TotalCents      int64         `gorm:"not null" json:"total_cents"`
	AmountPaidCents int64         `gorm:"not null;default:0" json:"amount_paid_cents"`
	Status          PaymentStatus `gorm:"type:varchar(32);not null" json:"status"`
	Version         int           `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (PaymentItem) TableName() string { return "payment_items" }

func (p *PaymentItem) Breakdown() PaymentBreakdown {
	return PaymentBreakdown{
		SubtotalCents: p.SubtotalCents,
		FeeCents:      p.FeeCents,
		TotalCents:    p.TotalCents,
	}
}

func PaymentStatusFor(paidCents, totalCents int64) PaymentStatus {
	switch {
	case paidCents >= totalCents && totalCents > 0:
		return PaymentStatusPaid
	case paidCents > 0:
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusPending
	}
}

type DriftRow struct {
	PaymentItemID   uuid.UUID
	ContractID      uuid.UUID
	HuntCode        string
	ClientName      string
	Stored          PaymentBreakdown
	Expected        *PaymentBreakdown
	AmountPaidCents int64
	Status          PaymentStatus
	Note            string
}

func (r DriftRow) Drifted() bool {
	return r.Expected != nil && *r.Expected != r.Stored
}

type DriftReport struct {
	OutfitterID uuid.UUID
	GeneratedAt time.Time
	Rows        []DriftRow
}
