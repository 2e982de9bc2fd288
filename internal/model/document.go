package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const TemplateKindHuntContract = "hunt_contract"

type DocumentTemplate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OutfitterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_document_templates_outfitter_kind"`
	Kind          string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_document_templates_outfitter_kind"`
	OutfitterName string
	Body          string `gorm:"type:text;not null"`
	UpdatedAt     time.Time
}

func (DocumentTemplate) TableName() string { return "document_templates" }

type ScheduleEntry struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	HuntID       uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex"`
	OutfitterID  uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Title        string                       `gorm:"not null"`
	StartDate    time.Time                    `gorm:"not null"`
	EndDate      time.Time                    `gorm:"not null"`
	Participants datatypes.JSONType[[]string] `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ScheduleEntry) TableName() string { return "schedule_entries" }
