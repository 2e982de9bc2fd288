package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type HuntRepository struct {
	db *gorm.DB
}

func NewHuntRepository(db *gorm.DB) *HuntRepository {
	return &HuntRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *HuntRepository) WithTx(tx *gorm.DB) *HuntRepository {
	return &HuntRepository{db: tx}
}

func (r *HuntRepository) Create(ctx context.Context, hunt *model.Hunt) error {
	if hunt.ID == uuid.Nil {
		hunt.ID = uuid.New()
	}
	if hunt.Version == 0 {
		hunt.Version = 1
	}
	return r.db.WithContext(ctx).Create(hunt).Error
}

func (r *HuntRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hunt, error) {
	var hunt model.Hunt
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&hunt).Error; err != nil {
		return nil, err
	}
	return &hunt, nil
}

// Update writes every mutable column if the stored version still matches
// hunt.Version, then bumps hunt.Version.
func (r *HuntRepository) Update(ctx context.Context, hunt *model.Hunt) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&model.Hunt{}).
		Where("id = ? AND version = ?", hunt.ID, hunt.Version).
		Updates(map[string]interface{}{
			"client_id":           hunt.ClientID,
			"client_name":         hunt.ClientName,
			"species":             hunt.Species,
			"weapon":              hunt.Weapon,
			"unit":                hunt.Unit,
			"hunt_code":           hunt.HuntCode,
			"start_date":          hunt.StartDate,
			"end_date":            hunt.EndDate,
			"hunt_type":           hunt.HuntType,
			"tag_status":          hunt.TagStatus,
			"selected_pricing_id": hunt.SelectedPricingID,
			"add_ons":             hunt.AddOns,
			"pending_completion":  hunt.PendingCompletion,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	hunt.Version++
	hunt.UpdatedAt = now
	return nil
}
