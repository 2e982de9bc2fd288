package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/hunt-contracts/internal/model"
)

// ScheduleRepository stores calendar entries for executed hunts, one per hunt.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) UpsertScheduleEntry(ctx context.Context, entry model.ScheduleEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hunt_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "start_date", "end_date", "participants", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *ScheduleRepository) GetByHunt(ctx context.Context, huntID uuid.UUID) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	if err := r.db.WithContext(ctx).Where("hunt_id = ?", huntID).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
