package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) WithTx(tx *gorm.DB) *ContractRepository {
	return &ContractRepository{db: tx}
}

// Create inserts a contract. A second contract for the same hunt violates
// the unique hunt index and yields ErrDuplicate.
func (r *ContractRepository) Create(ctx context.Context, contract *model.HuntContract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	if contract.Version == 0 {
		contract.Version = 1
	}
	err := r.db.WithContext(ctx).Create(contract).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.HuntContract, error) {
	var contract model.HuntContract
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetByHunt(ctx context.Context, huntID uuid.UUID) (*model.HuntContract, error) {
	var contract model.HuntContract
	if err := r.db.WithContext(ctx).Where("hunt_id = ?", huntID).Take(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *model.HuntContract) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&model.HuntContract{}).
		Where("id = ? AND version = ?", contract.ID, contract.Version).
		Updates(map[string]interface{}{
			"status":           contract.Status,
			"content":          contract.Content,
			"completion":       contract.Completion,
			"total_cents":      contract.TotalCents,
			"client_signed_at": contract.ClientSignedAt,
			"admin_signed_at":  contract.AdminSignedAt,
			"executed_at":      contract.ExecutedAt,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	contract.Version++
	contract.UpdatedAt = now
	return nil
}
