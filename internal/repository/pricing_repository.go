package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) Create(ctx context.Context, entry *model.PricingEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.AddOnKind == "" {
		entry.AddOnKind = model.AddOnKindNone
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByOutfitter returns the catalog in its stable display order, which is
// also the tie-break order for price matching.
func (r *PricingRepository) ListByOutfitter(ctx context.Context, outfitterID uuid.UUID) ([]model.PricingEntry, error) {
	var entries []model.PricingEntry
	err := r.db.WithContext(ctx).
		Where("outfitter_id = ?", outfitterID).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PricingRepository) UpdatePrice(ctx context.Context, outfitterID, id uuid.UUID, price decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.PricingEntry{}).
		Where("id = ? AND outfitter_id = ?", id, outfitterID).
		Updates(map[string]interface{}{
			"unit_price": price,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
