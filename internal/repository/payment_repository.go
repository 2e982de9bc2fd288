package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, item *model.PaymentItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Version == 0 {
		item.Version = 1
	}
	if item.Status == "" {
		item.Status = model.PaymentStatusFor(item.AmountPaidCents, item.TotalCents)
	}
	err := r.db.WithContext(ctx).Create(item).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.PaymentItem, error) {
	var item model.PaymentItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PaymentRepository) GetByContract(ctx context.Context, contractID uuid.UUID, kind model.PaymentKind) (*model.PaymentItem, error) {
	var item model.PaymentItem
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND kind = ?", contractID, kind).
		Take(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PaymentRepository) ListByOutfitter(ctx context.Context, outfitterID uuid.UUID, kind model.PaymentKind) ([]model.PaymentItem, error) {
	var items []model.PaymentItem
	err := r.db.WithContext(ctx).
		Where("outfitter_id = ? AND kind = ?", outfitterID, kind).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateTotals overwrites subtotal, fee and total when the row is still at
// version. amount_paid_cents is never written; status is derived from it in
// the same statement.
func (r *PaymentRepository) UpdateTotals(ctx context.Context, id uuid.UUID, version int, totals model.PaymentBreakdown) error {
	res := r.db.WithContext(ctx).
		Model(&model.PaymentItem{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"subtotal_cents": totals.SubtotalCents,
			"fee_cents":      totals.FeeCents,
			"total_cents":    totals.TotalCents,
			"status":         statusExpr("amount_paid_cents", totals.TotalCents),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// AddPayment atomically adds amountCents to the amount paid.
func (r *PaymentRepository) AddPayment(ctx context.Context, id uuid.UUID, amountCents int64) (*model.PaymentItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PaymentItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount_paid_cents": gorm.Expr("amount_paid_cents + ?", amountCents),
			"status": gorm.Expr(
				"CASE WHEN amount_paid_cents + ? >= total_cents AND total_cents > 0 THEN ? WHEN amount_paid_cents + ? > 0 THEN ? ELSE ? END",
				amountCents, model.PaymentStatusPaid, amountCents, model.PaymentStatusPartiallyPaid, model.PaymentStatusPending,
			),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, id)
}

func statusExpr(paidColumn string, totalCents int64) clause.Expr {
	return gorm.Expr(
		"CASE WHEN "+paidColumn+" >= ? AND ? > 0 THEN ? WHEN "+paidColumn+" > 0 THEN ? ELSE ? END",
		totalCents, totalCents, model.PaymentStatusPaid, model.PaymentStatusPartiallyPaid, model.PaymentStatusPending,
	)
}
