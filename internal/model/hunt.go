package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HuntType string

const (
	HuntTypeDraw        HuntType = "draw"
	HuntTypePrivateLand HuntType = "private_land"
	HuntTypeUnitWide    HuntType = "unit_wide"
)

func (t HuntType) Valid() bool {
	switch t {
	case HuntTypeDraw, HuntTypePrivateLand, HuntTypeUnitWide:
		return true
	}
	return false
}

type TagStatus string

const (
	TagStatusPending      TagStatus = "pending"
	TagStatusApplied      TagStatus = "applied"
	TagStatusDrawn        TagStatus = "drawn"
	TagStatusUnsuccessful TagStatus = "unsuccessful"
	TagStatusConfirmed    TagStatus = "confirmed"
)

func (s TagStatus) Valid() bool {
	switch s {
	case TagStatusPending, TagStatusApplied, TagStatusDrawn, TagStatusUnsuccessful, TagStatusConfirmed:
		return true
	}
	return false
}

// Secured reports whether the tag is in hand (drawn or confirmed).
func (s TagStatus) Secured() bool {
	return s == TagStatusDrawn || s == TagStatusConfirmed
}

// AddOns holds the variable per-unit quantities a client picks for a hunt.
type AddOns struct {
	ExtraDays       int `json:"extra_days"`
	ExtraNonHunters int `json:"extra_non_hunters"`
	ExtraObservers  int `json:"extra_observers"`
}

func (a AddOns) IsZero() bool {
	return a.ExtraDays == 0 && a.ExtraNonHunters == 0 && a.ExtraObservers == 0
}

type Hunt struct {
	ID                uuid.UUID                               `gorm:"type:uuid;primaryKey" json:"id"`
	OutfitterID       uuid.UUID                               `gorm:"type:uuid;not null;index" json:"outfitter_id"`
	ClientID          *uuid.UUID                              `gorm:"type:uuid" json:"client_id,omitempty"`
	ClientName        string                                  `json:"client_name"`
	Species           string                                  `json:"species"`
	Weapon            string                                  `json:"weapon"`
	Unit              string                                  `json:"unit"`
	HuntCode          string                                  `json:"hunt_code"`
	StartDate         *time.Time                              `json:"start_date,omitempty"`
	EndDate           *time.Time                              `json:"end_date,omitempty"`
	HuntType          HuntType                                `gorm:"type:varchar(32);not null" json:"hunt_type"`
	TagStatus         TagStatus                               `gorm:"type:varchar(32);not null;default:'pending'" json:"tag_status"`
	SelectedPricingID *uuid.UUID                              `gorm:"type:uuid" json:"selected_pricing_id,omitempty"`
	AddOns            datatypes.JSONType[AddOns]              `gorm:"not null" json:"add_ons"`
	PendingCompletion datatypes.JSONType[*CompletionSnapshot] `gorm:"not null" json:"pending_completion"`
	Version           int                                     `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time                               `json:"created_at"`
	UpdatedAt         time.Time                               `json:"updated_at"`
}

func (Hunt) TableName() string { return "hunts" }

func (h *Hunt) HasClient() bool {
	return h.ClientID != nil && *h.ClientID != uuid.Nil
}

// SlotAssigned reports whether the hunt has been placed on the calendar.
func (h *Hunt) SlotAssigned() bool {
	return h.StartDate != nil || h.HuntCode != ""
}

// Snapshot returns the completion inputs currently recorded on the hunt.
func (h *Hunt) Snapshot() CompletionSnapshot {
	snap := CompletionSnapshot{
		SelectedPricingID: h.SelectedPricingID,
		AddOns:            h.AddOns.Data(),
	}
	if h.StartDate != nil && h.EndDate != nil {
		start, end := *h.StartDate, *h.EndDate
		snap.StartDate = &start
		snap.EndDate = &end
	}
	return snap
}
