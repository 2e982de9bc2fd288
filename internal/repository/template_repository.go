package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ContractTemplate returns the outfitter's contract template, or nil when
// none is configured.
func (r *TemplateRepository) ContractTemplate(ctx context.Context, outfitterID uuid.UUID) (*model.DocumentTemplate, error) {
	var tpl model.DocumentTemplate
	err := r.db.WithContext(ctx).
		Where("outfitter_id = ? AND kind = ?", outfitterID, model.TemplateKindHuntContract).
		Take(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) Save(ctx context.Context, tpl *model.DocumentTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.Kind == "" {
		tpl.Kind = model.TemplateKindHuntContract
	}
	tpl.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outfitter_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"outfitter_name", "body", "updated_at"}),
		}).
		Create(tpl).Error
}
