package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/billing"
	"github.com/nurpe/hunt-contracts/internal/config"
	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pricing"
	"github.com/nurpe/hunt-contracts/internal/repository"
)

// ReconciliationService keeps guide-fee payment items in line with the bill
// their contract's completion snapshot produces.
type ReconciliationService struct {
	payments   *repository.PaymentRepository
	contracts  *repository.ContractRepository
	hunts      *repository.HuntRepository
	catalog    *repository.PricingRepository
	fees       pricing.FeePolicy
	defaults   pricing.Rates
	maxRetries int
	log        zerolog.Logger
}

type ReconcileResult struct {
	Totals    model.PaymentBreakdown
	Corrected bool
}

func NewReconciliationService(
	payments *repository.PaymentRepository,
	contracts *repository.ContractRepository,
	hunts *repository.HuntRepository,
	catalog *repository.PricingRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		payments:   payments,
		contracts:  contracts,
		hunts:      hunts,
		catalog:    catalog,
		fees:       feePolicy(cfg),
		defaults:   defaultRates(cfg),
		maxRetries: cfg.Payments.MaxRetries,
		log:        log,
	}
}

// ComputeExpectedTotals replays the bill from the contract's completion
// snapshot. Pinned prices are used when the snapshot carries them; older
// snapshots fall back to the current catalog. ErrNoAmount is returned when
// no base price resolves.
func (s *ReconciliationService) ComputeExpectedTotals(ctx context.Context, contract *model.HuntContract) (model.PaymentBreakdown, error) {
	snap := contract.Completion.Data()

	in := billing.Input{
		SelectedPricingID: snap.SelectedPricingID,
		AddOns:            clampAddOns(snap.AddOns),
		Defaults:          s.defaults,
		Pinned:            snap.Pinned,
	}
	if snap.Pinned == nil {
		hunt, err := s.hunts.Get(ctx, contract.HuntID)
		if err != nil {
			return model.PaymentBreakdown{}, err
		}
		catalog, err := s.catalog.ListByOutfitter(ctx, contract.OutfitterID)
		if err != nil {
			return model.PaymentBreakdown{}, err
		}
		in = billInput(hunt, snap, catalog, s.defaults)
	}

	bill := billing.Compose(in)
	if !bill.HasBase() {
		return model.PaymentBreakdown{}, ErrNoAmount
	}
	return s.fees.Breakdown(bill.TotalCents()), nil
}

// EnsurePaymentItem creates the guide-fee item for an executed contract.
// Nothing is created when one already exists or the amount is zero; the
// returned bool reports whether an item was created.
func (s *ReconciliationService) EnsurePaymentItem(ctx context.Context, contract *model.HuntContract, clientID *uuid.UUID) (*model.PaymentItem, bool, error) {
	existing, err := s.payments.GetByContract(ctx, contract.ID, model.PaymentKindGuideFee)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	totals, err := s.ComputeExpectedTotals(ctx, contract)
	if errors.Is(err, ErrNoAmount) {
		s.log.Warn().Str("contract_id", contract.ID.String()).Msg("no base price resolved, guide fee not created")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if totals.TotalCents == 0 {
		return nil, false, nil
	}

	item := &model.PaymentItem{
		ContractID:    contract.ID,
		Kind:          model.PaymentKindGuideFee,
		OutfitterID:   contract.OutfitterID,
		ClientID:      clientID,
		Description:   "Guide fee",
		SubtotalCents: totals.SubtotalCents,
		FeeCents:      totals.FeeCents,
		TotalCents:    totals.TotalCents,
		Status:        model.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, getErr := s.payments.GetByContract(ctx, contract.ID, model.PaymentKindGuideFee)
			return existing, false, getErr
		}
		return nil, false, err
	}

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("payment_item_id", item.ID.String()).
		Int64("total_cents", item.TotalCents).
		Msg("guide fee payment item created")
	return item, true, nil
}

// Reconcile corrects a guide-fee item whose stored totals drifted from the
// expected totals. The write is a compare-and-swap on the item version and
// is retried with a fresh read on conflict.
func (s *ReconciliationService) Reconcile(ctx context.Context, principal model.Principal, itemID uuid.UUID) (ReconcileResult, error) {
	if !principal.IsAdmin() {
		return ReconcileResult{}, ErrPermissionDenied
	}
	return s.reconcile(ctx, principal.OutfitterID, itemID)
}

func (s *ReconciliationService) reconcile(ctx context.Context, outfitterID, itemID uuid.UUID) (ReconcileResult, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		item, err := s.loadItem(ctx, outfitterID, itemID)
		if err != nil {
			return ReconcileResult{}, err
		}
		if item.Kind != model.PaymentKindGuideFee {
			return ReconcileResult{}, fmt.Errorf("%w: only guide-fee payment items are reconciled", ErrInvalidInput)
		}

		contract, err := s.contracts.Get(ctx, item.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ReconcileResult{}, fmt.Errorf("%w: payment item has no contract", ErrNotFound)
			}
			return ReconcileResult{}, err
		}

		expected, err := s.ComputeExpectedTotals(ctx, contract)
		if err != nil {
			return ReconcileResult{}, err
		}
		if expected == item.Breakdown() {
			return ReconcileResult{Totals: expected}, nil
		}

		err = s.payments.UpdateTotals(ctx, item.ID, item.Version, expected)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.log.Debug().Str("payment_item_id", item.ID.String()).Int("attempt", attempt+1).Msg("reconcile conflict, retrying")
			continue
		}
		if err != nil {
			return ReconcileResult{}, err
		}

		s.log.Info().
			Str("payment_item_id", item.ID.String()).
			Int64("stored_total_cents", item.TotalCents).
			Int64("expected_total_cents", expected.TotalCents).
			Msg("payment item reconciled")
		return ReconcileResult{Totals: expected, Corrected: true}, nil
	}
	return ReconcileResult{}, ErrConflict
}

// ReconcileSafe returns the item after a best-effort reconcile. Reconcile
// failures are logged and the stored totals are returned unchanged. Clients
// only see their own items.
func (s *ReconciliationService) ReconcileSafe(ctx context.Context, principal model.Principal, itemID uuid.UUID) (*model.PaymentItem, error) {
	outfitterID := principal.OutfitterID
	item, err := s.loadItem(ctx, outfitterID, itemID)
	if err != nil {
		return nil, err
	}
	if principal.IsClient() && (item.ClientID == nil || *item.ClientID != principal.UserID) {
		return nil, ErrNotFound
	}
	if item.Kind != model.PaymentKindGuideFee {
		return item, nil
	}

	result, err := s.reconcile(ctx, outfitterID, itemID)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_item_id", itemID.String()).Msg("reconcile failed, serving stored totals")
		return item, nil
	}
	if !result.Corrected {
		return item, nil
	}
	return s.loadItem(ctx, outfitterID, itemID)
}

// RecordPayment adds a received amount to the item.
func (s *ReconciliationService) RecordPayment(ctx context.Context, principal model.Principal, itemID uuid.UUID, amountCents int64) (*model.PaymentItem, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if _, err := s.loadItem(ctx, principal.OutfitterID, itemID); err != nil {
		return nil, err
	}
	return s.payments.AddPayment(ctx, itemID, amountCents)
}

// DriftReport lists stored against expected totals for every guide-fee item.
func (s *ReconciliationService) DriftReport(ctx context.Context, principal model.Principal) (model.DriftReport, error) {
	if !principal.IsAdmin() {
		return model.DriftReport{}, ErrPermissionDenied
	}
	outfitterID := principal.OutfitterID
	items, err := s.payments.ListByOutfitter(ctx, outfitterID, model.PaymentKindGuideFee)
	if err != nil {
		return model.DriftReport{}, err
	}

	report := model.DriftReport{
		OutfitterID: outfitterID,
		GeneratedAt: time.Now().UTC(),
		Rows:        make([]model.DriftRow, 0, len(items)),
	}
	for _, item := range items {
		row := model.DriftRow{
			PaymentItemID:   item.ID,
			ContractID:      item.ContractID,
			Stored:          item.Breakdown(),
			AmountPaidCents: item.AmountPaidCents,
			Status:          item.Status,
		}

		contract, err := s.contracts.Get(ctx, item.ContractID)
		if err != nil {
			row.Note = "contract not found"
			report.Rows = append(report.Rows, row)
			continue
		}
		if hunt, err := s.hunts.Get(ctx, contract.HuntID); err == nil {
			row.HuntCode = hunt.HuntCode
			row.ClientName = hunt.ClientName
		}

		expected, err := s.ComputeExpectedTotals(ctx, contract)
		switch {
		case errors.Is(err, ErrNoAmount):
			row.Note = "no base price resolves"
		case err != nil:
			row.Note = err.Error()
		default:
			row.Expected = &expected
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

func (s *ReconciliationService) loadItem(ctx context.Context, outfitterID, itemID uuid.UUID) (*model.PaymentItem, error) {
	item, err := s.payments.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.OutfitterID != outfitterID {
		return nil, ErrNotFound
	}
	return item, nil
}

func feePolicy(cfg *config.Config) pricing.FeePolicy {
	return pricing.FeePolicy{
		Percent:     cfg.Payments.FeePercent,
		MinFeeCents: cfg.Payments.MinFeeCents,
	}
}

func defaultRates(cfg *config.Config) pricing.Rates {
	return pricing.Rates{
		ExtraDay:  cfg.AddOns.ExtraDay,
		NonHunter: cfg.AddOns.NonHunter,
		Observer:  cfg.AddOns.Observer,
	}
}

// billInput assembles the bill inputs for a hunt and completion snapshot
// against the given catalog. Snapshot dates take precedence over the hunt's.
func billInput(hunt *model.Hunt, snap model.CompletionSnapshot, catalog []model.PricingEntry, defaults pricing.Rates) billing.Input {
	start, end := snap.StartDate, snap.EndDate
	if start == nil || end == nil {
		start, end = hunt.StartDate, hunt.EndDate
	}
	return billing.Input{
		SelectedPricingID: snap.SelectedPricingID,
		Species:           hunt.Species,
		Weapon:            hunt.Weapon,
		DurationDays:      durationDays(start, end),
		AddOns:            clampAddOns(snap.AddOns),
		Catalog:           catalog,
		Defaults:          defaults,
		Pinned:            snap.Pinned,
	}
}

func clampAddOns(a model.AddOns) model.AddOns {
	if a.ExtraDays < 0 {
		a.ExtraDays = 0
	}
	if a.ExtraNonHunters < 0 {
		a.ExtraNonHunters = 0
	}
	if a.ExtraObservers < 0 {
		a.ExtraObservers = 0
	}
	return a
}
