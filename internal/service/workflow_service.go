package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/billing"
	"github.com/nurpe/hunt-contracts/internal/config"
	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pricing"
	"github.com/nurpe/hunt-contracts/internal/repository"
)

// TemplateStore supplies the outfitter's contract template. A nil template
// means none is configured.
type TemplateStore interface {
	ContractTemplate(ctx context.Context, outfitterID uuid.UUID) (*model.DocumentTemplate, error)
}

// ScheduleStore places executed hunts on the outfitter calendar.
type ScheduleStore interface {
	UpsertScheduleEntry(ctx context.Context, entry model.ScheduleEntry) error
}

// EventPublisher emits workflow events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

const (
	sideEffectSchedule = "schedule"
	sideEffectPayment  = "payment_item"
	sideEffectEvent    = "event"

	EventContractExecuted = "contract.executed"
)

// SideEffectFailure reports a post-execution step that did not complete.
type SideEffectFailure struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

type TransitionResult struct {
	Hunt        *model.Hunt         `json:"hunt"`
	Contract    *model.HuntContract `json:"contract,omitempty"`
	Stage       model.Stage         `json:"stage"`
	PaymentItem *model.PaymentItem  `json:"payment_item,omitempty"`
	SideEffects []SideEffectFailure `json:"side_effect_failures,omitempty"`
}

type ContractExecutedEvent struct {
	ContractID  uuid.UUID  `json:"contract_id"`
	HuntID      uuid.UUID  `json:"hunt_id"`
	OutfitterID uuid.UUID  `json:"outfitter_id"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	TotalCents  int64      `json:"total_cents"`
	ExecutedAt  time.Time  `json:"executed_at"`
}

type RegisterHuntInput struct {
	Species           string
	Weapon            string
	Unit              string
	HuntCode          string
	HuntType          model.HuntType
	StartDate         *time.Time
	EndDate           *time.Time
	SelectedPricingID *uuid.UUID
}

type CompletionInput struct {
	SelectedPricingID *uuid.UUID
	AddOns            model.AddOns
	StartDate         *time.Time
	EndDate           *time.Time
}

type WorkflowService struct {
	db              *gorm.DB
	hunts           *repository.HuntRepository
	contracts       *repository.ContractRepository
	catalog         *repository.PricingRepository
	templates       TemplateStore
	schedule        ScheduleStore
	events          EventPublisher
	reconciler      *ReconciliationService
	defaults        pricing.Rates
	maxRetries      int
	sideEffectTries int
	log             zerolog.Logger
	now             func() time.Time
}

func NewWorkflowService(
	db *gorm.DB,
	hunts *repository.HuntRepository,
	contracts *repository.ContractRepository,
	catalog *repository.PricingRepository,
	templates TemplateStore,
	schedule ScheduleStore,
	events EventPublisher,
	reconciler *ReconciliationService,
	cfg *config.Config,
	log zerolog.Logger,
) *WorkflowService {
	return &WorkflowService{
		db:              db,
		hunts:           hunts,
		contracts:       contracts,
		catalog:         catalog,
		templates:       templates,
		schedule:        schedule,
		events:          events,
		reconciler:      reconciler,
		defaults:        defaultRates(cfg),
		maxRetries:      cfg.Payments.MaxRetries,
		sideEffectTries: cfg.Payments.SideEffectTries,
		log:             log,
		now:             time.Now,
	}
}

// renderContext is the outfitter data a contract render needs. It is read
// before the transaction opens.
type renderContext struct {
	catalog       []model.PricingEntry
	template      string
	outfitterName string
}

type txRepos struct {
	hunts     *repository.HuntRepository
	contracts *repository.ContractRepository
}

func (s *WorkflowService) RegisterHunt(ctx context.Context, principal model.Principal, in RegisterHuntInput) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !in.HuntType.Valid() {
		return nil, fmt.Errorf("%w: unknown hunt type %q", ErrInvalidInput, in.HuntType)
	}
	if strings.TrimSpace(in.Species) == "" {
		return nil, fmt.Errorf("%w: species is required", ErrInvalidInput)
	}
	if err := validateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	hunt := &model.Hunt{
		OutfitterID:       principal.OutfitterID,
		Species:           strings.TrimSpace(in.Species),
		Weapon:            strings.TrimSpace(in.Weapon),
		Unit:              strings.TrimSpace(in.Unit),
		HuntCode:          strings.TrimSpace(in.HuntCode),
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		HuntType:          in.HuntType,
		TagStatus:         model.TagStatusPending,
		SelectedPricingID: in.SelectedPricingID,
		AddOns:            datatypes.NewJSONType(model.AddOns{}),
		PendingCompletion: datatypes.NewJSONType[*model.CompletionSnapshot](nil),
	}
	if err := s.hunts.Create(ctx, hunt); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("hunt_id", hunt.ID.String()).
		Str("hunt_type", string(hunt.HuntType)).
		Msg("hunt registered")
	return s.result(hunt, nil), nil
}

// AssignClient attaches a client to the hunt. An unsigned contract is
// re-rendered with the new name.
func (s *WorkflowService) AssignClient(ctx context.Context, principal model.Principal, huntID, clientID uuid.UUID, clientName string) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err = s.mutate(ctx, func(repos txRepos) error {
		hunt, contract, err = s.loadHuntAndContract(ctx, repos, principal, huntID)
		if err != nil {
			return err
		}
		if contract != nil && contract.Signed() {
			return ErrContractLocked
		}

		id := clientID
		hunt.ClientID = &id
		hunt.ClientName = strings.TrimSpace(clientName)
		if err := repos.hunts.Update(ctx, hunt); err != nil {
			return err
		}

		if contract == nil {
			return nil
		}
		s.render(rc, hunt, contract, contract.Completion.Data())
		return repos.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return s.result(hunt, contract), nil
}

// SetTagStatus records the tag outcome. Drawn applies to draw hunts and
// creates the contract in the same transaction; confirmed applies to every
// other hunt type.
func (s *WorkflowService) SetTagStatus(ctx context.Context, principal model.Principal, huntID uuid.UUID, status model.TagStatus) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown tag status %q", ErrInvalidInput, status)
	}
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err = s.mutate(ctx, func(repos txRepos) error {
		hunt, contract, err = s.loadHuntAndContract(ctx, repos, principal, huntID)
		if err != nil {
			return err
		}
		if !hunt.HasClient() {
			return fmt.Errorf("%w: assign a client before updating the tag", ErrPrecondition)
		}
		if err := checkTagTransition(hunt, contract, status); err != nil {
			return err
		}

		hunt.TagStatus = status
		if err := repos.hunts.Update(ctx, hunt); err != nil {
			return err
		}

		if status == model.TagStatusDrawn && contract == nil {
			contract, err = s.createContract(ctx, repos, rc, hunt)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("hunt_id", hunt.ID.String()).
		Str("tag_status", string(status)).
		Bool("has_contract", contract != nil).
		Msg("tag status updated")
	return s.result(hunt, contract), nil
}

func checkTagTransition(hunt *model.Hunt, contract *model.HuntContract, status model.TagStatus) error {
	if hunt.TagStatus == model.TagStatusUnsuccessful && status != model.TagStatusUnsuccessful {
		return fmt.Errorf("%w: unsuccessful draw is final", ErrPrecondition)
	}
	switch status {
	case model.TagStatusDrawn, model.TagStatusUnsuccessful:
		if hunt.HuntType != model.HuntTypeDraw {
			return fmt.Errorf("%w: %s only applies to draw hunts", ErrPrecondition, status)
		}
	case model.TagStatusConfirmed:
		if hunt.HuntType == model.HuntTypeDraw {
			return fmt.Errorf("%w: draw hunts are drawn, not confirmed", ErrPrecondition)
		}
	}
	if contract != nil && !status.Secured() {
		return fmt.Errorf("%w: hunt already has a contract", ErrPrecondition)
	}
	return nil
}

// GenerateContract creates or refreshes the contract of a private-land hunt.
func (s *WorkflowService) GenerateContract(ctx context.Context, principal model.Principal, huntID uuid.UUID) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err = s.mutate(ctx, func(repos txRepos) error {
		hunt, contract, err = s.loadHuntAndContract(ctx, repos, principal, huntID)
		if err != nil {
			return err
		}
		if hunt.HuntType != model.HuntTypePrivateLand {
			return fmt.Errorf("%w: contracts are generated for private-land hunts only", ErrPrecondition)
		}
		if !hunt.HasClient() {
			return fmt.Errorf("%w: hunt has no client", ErrPrecondition)
		}
		if hunt.TagStatus != model.TagStatusConfirmed {
			return fmt.Errorf("%w: tag is not confirmed", ErrPrecondition)
		}

		if contract == nil {
			contract, err = s.createContract(ctx, repos, rc, hunt)
			return err
		}
		if contract.Signed() {
			return ErrContractLocked
		}
		s.render(rc, hunt, contract, contract.Completion.Data())
		return repos.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return s.result(hunt, contract), nil
}

// AssignSlot places the hunt on the calendar. A completion recorded before
// the contract could exist is turned into a contract once the hunt is
// eligible.
func (s *WorkflowService) AssignSlot(ctx context.Context, principal model.Principal, huntID uuid.UUID, huntCode string, start, end *time.Time) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	huntCode = strings.TrimSpace(huntCode)
	if huntCode == "" && start == nil {
		return nil, fmt.Errorf("%w: hunt code or dates are required", ErrInvalidInput)
	}
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err = s.mutate(ctx, func(repos txRepos) error {
		hunt, contract, err = s.loadHuntAndContract(ctx, repos, principal, huntID)
		if err != nil {
			return err
		}
		if huntCode != "" {
			hunt.HuntCode = huntCode
		}
		if start != nil {
			hunt.StartDate, hunt.EndDate = start, end
		}
		if err := repos.hunts.Update(ctx, hunt); err != nil {
			return err
		}

		switch {
		case contract == nil && hunt.PendingCompletion.Data() != nil && eligibleForContract(hunt):
			contract, err = s.createContract(ctx, repos, rc, hunt)
			return err
		case contract != nil && !contract.Signed():
			s.render(rc, hunt, contract, contract.Completion.Data())
			return repos.contracts.Update(ctx, contract)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.result(hunt, contract), nil
}

// CompleteBooking records the client's package choice and add-ons. With a
// contract the bill is refreshed and the contract becomes ready for
// signature; without one the completion is held on the hunt.
func (s *WorkflowService) CompleteBooking(ctx context.Context, principal model.Principal, huntID uuid.UUID, in CompletionInput) (*TransitionResult, error) {
	if in.AddOns.ExtraDays < 0 || in.AddOns.ExtraNonHunters < 0 || in.AddOns.ExtraObservers < 0 {
		return nil, fmt.Errorf("%w: add-on quantities must not be negative", ErrInvalidInput)
	}
	if err := validateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}
	if in.SelectedPricingID != nil {
		entry, ok := pricing.FindEntry(*in.SelectedPricingID, rc.catalog)
		if !ok || !entry.IsBase() {
			return nil, fmt.Errorf("%w: selected pricing is not a base package", ErrInvalidInput)
		}
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err = s.mutate(ctx, func(repos txRepos) error {
		hunt, contract, err = s.loadHuntAndContract(ctx, repos, principal, huntID)
		if err != nil {
			return err
		}
		if !canComplete(principal, hunt) {
			return ErrPermissionDenied
		}
		if contract != nil && contract.Signed() {
			return ErrContractLocked
		}

		// An absent selection keeps the package chosen earlier.
		if in.SelectedPricingID != nil {
			hunt.SelectedPricingID = in.SelectedPricingID
		}
		snap := model.CompletionSnapshot{
			SelectedPricingID: hunt.SelectedPricingID,
			AddOns:            in.AddOns,
			StartDate:         in.StartDate,
			EndDate:           in.EndDate,
		}
		hunt.AddOns = datatypes.NewJSONType(in.AddOns)
		if in.StartDate != nil && hunt.StartDate == nil {
			hunt.StartDate, hunt.EndDate = in.StartDate, in.EndDate
		}

		if contract == nil && !eligibleForContract(hunt) {
			pending := snap
			hunt.PendingCompletion = datatypes.NewJSONType(&pending)
			return repos.hunts.Update(ctx, hunt)
		}

		hunt.PendingCompletion = datatypes.NewJSONType[*model.CompletionSnapshot](nil)
		if err := repos.hunts.Update(ctx, hunt); err != nil {
			return err
		}
		if contract == nil {
			contract = s.newContract(hunt)
			contract.Status = model.ContractStatusReadyForSignature
			s.render(rc, hunt, contract, snap)
			return repos.contracts.Create(ctx, contract)
		}
		contract.Status = model.ContractStatusReadyForSignature
		s.render(rc, hunt, contract, snap)
		return repos.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	event := s.log.Info().Str("hunt_id", hunt.ID.String())
	if contract != nil {
		event.Str("contract_id", contract.ID.String()).Int64("total_cents", contract.TotalCents).Msg("booking completed")
	} else {
		event.Msg("booking completion held until contract is available")
	}
	return s.result(hunt, contract), nil
}

func (s *WorkflowService) SendForSignature(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	err := s.mutate(ctx, func(repos txRepos) error {
		var err error
		contract, hunt, err = s.loadContract(ctx, repos, principal, contractID)
		if err != nil {
			return err
		}
		if contract.Status != model.ContractStatusReadyForSignature {
			return fmt.Errorf("%w: contract is %s", ErrPrecondition, contract.Status)
		}
		contract.Status = model.ContractStatusAwaitingSignatures
		return repos.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	return s.result(hunt, contract), nil
}

// RecordSignature stores a signature timestamp. When both parties have
// signed the contract is executed and the post-execution side effects run
// after commit; their failures are reported, not rolled back.
func (s *WorkflowService) RecordSignature(ctx context.Context, principal model.Principal, contractID uuid.UUID, party model.SignatureParty, at time.Time) (*TransitionResult, error) {
	if party != model.SignatureClient && party != model.SignatureAdmin {
		return nil, fmt.Errorf("%w: unknown signature party %q", ErrInvalidInput, party)
	}
	if party == model.SignatureAdmin && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	rc, err := s.loadRenderContext(ctx, principal.OutfitterID)
	if err != nil {
		return nil, err
	}

	var hunt *model.Hunt
	var contract *model.HuntContract
	var executed bool
	err = s.mutate(ctx, func(repos txRepos) error {
		executed = false
		contract, hunt, err = s.loadContract(ctx, repos, principal, contractID)
		if err != nil {
			return err
		}
		if party == model.SignatureClient && !principal.IsAdmin() && !isHuntClient(principal, hunt) {
			return ErrPermissionDenied
		}
		if contract.FullyExecuted() {
			return nil
		}
		if contract.Status != model.ContractStatusAwaitingSignatures && contract.Status != model.ContractStatusReadyForSignature {
			return fmt.Errorf("%w: contract is %s", ErrPrecondition, contract.Status)
		}

		switch party {
		case model.SignatureClient:
			if contract.ClientSignedAt == nil {
				contract.ClientSignedAt = &at
			}
		case model.SignatureAdmin:
			if contract.AdminSignedAt == nil {
				contract.AdminSignedAt = &at
			}
		}
		contract.Status = model.ContractStatusAwaitingSignatures

		if contract.ClientSignedAt != nil && contract.AdminSignedAt != nil {
			executedAt := s.now().UTC()
			contract.Status = model.ContractStatusFullyExecuted
			contract.ExecutedAt = &executedAt
			s.pinPrices(rc, hunt, contract)
			executed = true
		}
		return repos.contracts.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	result := s.result(hunt, contract)
	if executed {
		s.log.Info().
			Str("contract_id", contract.ID.String()).
			Str("hunt_id", hunt.ID.String()).
			Int64("total_cents", contract.TotalCents).
			Msg("contract fully executed")
		s.runSideEffects(ctx, hunt, contract, result)
	}
	return result, nil
}

// RetrySideEffects re-runs the post-execution steps of an executed contract.
func (s *WorkflowService) RetrySideEffects(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*TransitionResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	contract, hunt, err := s.loadContract(ctx, txRepos{hunts: s.hunts, contracts: s.contracts}, principal, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.FullyExecuted() {
		return nil, fmt.Errorf("%w: contract is not fully executed", ErrPrecondition)
	}

	result := s.result(hunt, contract)
	s.runSideEffects(ctx, hunt, contract, result)
	return result, nil
}

func (s *WorkflowService) GetWorkflow(ctx context.Context, principal model.Principal, huntID uuid.UUID) (*TransitionResult, error) {
	hunt, contract, err := s.loadHuntAndContract(ctx, txRepos{hunts: s.hunts, contracts: s.contracts}, principal, huntID)
	if err != nil {
		return nil, err
	}
	if !canView(principal, hunt) {
		return nil, ErrPermissionDenied
	}
	return s.result(hunt, contract), nil
}

// ContractDocument returns the contract with its hunt for export.
func (s *WorkflowService) ContractDocument(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.ContractDocument, error) {
	contract, hunt, err := s.loadContract(ctx, txRepos{hunts: s.hunts, contracts: s.contracts}, principal, contractID)
	if err != nil {
		return nil, err
	}
	if !canView(principal, hunt) {
		return nil, ErrPermissionDenied
	}
	return &model.ContractDocument{Contract: *contract, Hunt: *hunt}, nil
}

// mutate runs fn in a transaction with tx-bound repositories. Version
// conflicts and duplicate inserts restart fn with fresh reads.
func (s *WorkflowService) mutate(ctx context.Context, fn func(repos txRepos) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(txRepos{
				hunts:     s.hunts.WithTx(tx),
				contracts: s.contracts.WithTx(tx),
			})
		})
		if errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrDuplicate) {
			s.log.Debug().Err(err).Int("attempt", attempt+1).Msg("workflow write conflict, retrying")
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *WorkflowService) loadRenderContext(ctx context.Context, outfitterID uuid.UUID) (renderContext, error) {
	catalog, err := s.catalog.ListByOutfitter(ctx, outfitterID)
	if err != nil {
		return renderContext{}, err
	}
	rc := renderContext{catalog: catalog}
	if s.templates == nil {
		return rc, nil
	}
	tpl, err := s.templates.ContractTemplate(ctx, outfitterID)
	if err != nil {
		return renderContext{}, err
	}
	if tpl != nil {
		rc.template = tpl.Body
		rc.outfitterName = tpl.OutfitterName
	}
	return rc, nil
}

func (s *WorkflowService) loadHuntAndContract(ctx context.Context, repos txRepos, principal model.Principal, huntID uuid.UUID) (*model.Hunt, *model.HuntContract, error) {
	hunt, err := repos.hunts.Get(ctx, huntID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if hunt.OutfitterID != principal.OutfitterID {
		return nil, nil, ErrNotFound
	}

	contract, err := repos.contracts.GetByHunt(ctx, hunt.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return hunt, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return hunt, contract, nil
}

func (s *WorkflowService) loadContract(ctx context.Context, repos txRepos, principal model.Principal, contractID uuid.UUID) (*model.HuntContract, *model.Hunt, error) {
	contract, err := repos.contracts.Get(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if contract.OutfitterID != principal.OutfitterID {
		return nil, nil, ErrNotFound
	}
	hunt, err := repos.hunts.Get(ctx, contract.HuntID)
	if err != nil {
		return nil, nil, err
	}
	return contract, hunt, nil
}

// createContract inserts the hunt's contract. A held completion is consumed
// and makes the new contract ready for signature.
func (s *WorkflowService) createContract(ctx context.Context, repos txRepos, rc renderContext, hunt *model.Hunt) (*model.HuntContract, error) {
	contract := s.newContract(hunt)
	snap := hunt.Snapshot()

	if pending := hunt.PendingCompletion.Data(); pending != nil {
		snap = *pending
		contract.Status = model.ContractStatusReadyForSignature
		hunt.PendingCompletion = datatypes.NewJSONType[*model.CompletionSnapshot](nil)
		if err := repos.hunts.Update(ctx, hunt); err != nil {
			return nil, err
		}
	}

	s.render(rc, hunt, contract, snap)
	if err := repos.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("hunt_id", hunt.ID.String()).
		Str("contract_id", contract.ID.String()).
		Str("status", string(contract.Status)).
		Msg("contract created")
	return contract, nil
}

func (s *WorkflowService) newContract(hunt *model.Hunt) *model.HuntContract {
	return &model.HuntContract{
		ID:          uuid.New(),
		HuntID:      hunt.ID,
		OutfitterID: hunt.OutfitterID,
		Status:      model.ContractStatusPendingClientCompletion,
	}
}

// render recomposes the bill from the current catalog, rewrites the
// contract content and stores the snapshot with the prices it used.
func (s *WorkflowService) render(rc renderContext, hunt *model.Hunt, contract *model.HuntContract, snap model.CompletionSnapshot) {
	snap.Pinned = nil
	bill := billing.Compose(billInput(hunt, snap, rc.catalog, s.defaults))

	pinned := bill.Pinned
	pinned.PinnedAt = s.now().UTC()
	snap.Pinned = &pinned

	start, end := snap.StartDate, snap.EndDate
	if start == nil || end == nil {
		start, end = hunt.StartDate, hunt.EndDate
	}
	fields := billing.Fields{
		ClientName:    hunt.ClientName,
		OutfitterName: rc.outfitterName,
		Species:       hunt.Species,
		Weapon:        hunt.Weapon,
		Unit:          hunt.Unit,
		HuntCode:      hunt.HuntCode,
		StartDate:     start,
		EndDate:       end,
		DurationDays:  durationDays(start, end),
	}

	contract.Content = billing.RenderContract(rc.template, fields, bill)
	contract.Completion = datatypes.NewJSONType(snap)
	contract.TotalCents = bill.TotalCents()
}

// pinPrices freezes the prices of a snapshot written before prices were
// recorded. Already pinned snapshots are left alone.
func (s *WorkflowService) pinPrices(rc renderContext, hunt *model.Hunt, contract *model.HuntContract) {
	snap := contract.Completion.Data()
	if snap.Pinned != nil {
		return
	}
	bill := billing.Compose(billInput(hunt, snap, rc.catalog, s.defaults))
	pinned := bill.Pinned
	pinned.PinnedAt = s.now().UTC()
	snap.Pinned = &pinned
	contract.Completion = datatypes.NewJSONType(snap)
}

func (s *WorkflowService) runSideEffects(ctx context.Context, hunt *model.Hunt, contract *model.HuntContract, result *TransitionResult) {
	s.attempt(ctx, sideEffectSchedule, contract, result, func() error {
		return s.syncSchedule(ctx, hunt, contract)
	})
	s.attempt(ctx, sideEffectPayment, contract, result, func() error {
		item, _, err := s.reconciler.EnsurePaymentItem(ctx, contract, hunt.ClientID)
		if err != nil {
			return err
		}
		result.PaymentItem = item
		return nil
	})
	if s.events == nil {
		return
	}
	s.attempt(ctx, sideEffectEvent, contract, result, func() error {
		return s.events.Publish(ctx, EventContractExecuted, ContractExecutedEvent{
			ContractID:  contract.ID,
			HuntID:      hunt.ID,
			OutfitterID: contract.OutfitterID,
			ClientID:    hunt.ClientID,
			TotalCents:  contract.TotalCents,
			ExecutedAt:  derefTime(contract.ExecutedAt),
		})
	})
}

func (s *WorkflowService) attempt(ctx context.Context, step string, contract *model.HuntContract, result *TransitionResult, fn func() error) {
	tries := s.sideEffectTries
	if tries <= 0 {
		tries = 1
	}
	var err error
	for i := 0; i < tries; i++ {
		if err = fn(); err == nil {
			return
		}
		if ctx.Err() != nil {
			break
		}
	}

	s.log.Error().
		Err(err).
		Str("step", step).
		Str("contract_id", contract.ID.String()).
		Str("hunt_id", contract.HuntID.String()).
		Msg("post-execution step failed")
	result.SideEffects = append(result.SideEffects, SideEffectFailure{Step: step, Error: err.Error()})
}

func (s *WorkflowService) syncSchedule(ctx context.Context, hunt *model.Hunt, contract *model.HuntContract) error {
	if s.schedule == nil {
		return nil
	}
	start, end, source, ok := resolveHuntDates(contract, hunt)
	if !ok {
		return fmt.Errorf("%w: no hunt dates to schedule", ErrPrecondition)
	}

	var participants []string
	if name := strings.TrimSpace(hunt.ClientName); name != "" {
		participants = append(participants, name)
	}
	entry := model.ScheduleEntry{
		HuntID:       hunt.ID,
		OutfitterID:  hunt.OutfitterID,
		Title:        scheduleTitle(hunt),
		StartDate:    start,
		EndDate:      end,
		Participants: datatypes.NewJSONType(participants),
	}
	if err := s.schedule.UpsertScheduleEntry(ctx, entry); err != nil {
		return err
	}

	s.log.Debug().
		Str("hunt_id", hunt.ID.String()).
		Str("date_source", string(source)).
		Msg("schedule entry synced")
	return nil
}

func (s *WorkflowService) result(hunt *model.Hunt, contract *model.HuntContract) *TransitionResult {
	return &TransitionResult{
		Hunt:     hunt,
		Contract: contract,
		Stage:    model.DeriveStage(hunt, contract),
	}
}

func scheduleTitle(hunt *model.Hunt) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{hunt.Species, hunt.Weapon, hunt.HuntCode} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	title := strings.Join(parts, " ")
	if title == "" {
		title = "Hunt"
	}
	if hunt.ClientName != "" {
		title += " - " + hunt.ClientName
	}
	return title
}

// eligibleForContract reports whether a hunt has a client, a secured tag
// and a calendar slot.
func eligibleForContract(hunt *model.Hunt) bool {
	return hunt.HasClient() && hunt.TagStatus.Secured() && hunt.SlotAssigned()
}

func isHuntClient(principal model.Principal, hunt *model.Hunt) bool {
	return principal.IsClient() && hunt.HasClient() && *hunt.ClientID == principal.UserID
}

func canComplete(principal model.Principal, hunt *model.Hunt) bool {
	return principal.IsAdmin() || isHuntClient(principal, hunt)
}

func canView(principal model.Principal, hunt *model.Hunt) bool {
	if principal.IsClient() {
		return isHuntClient(principal, hunt)
	}
	return true
}

func validateRange(start, end *time.Time) error {
	if (start == nil) != (end == nil) {
		return fmt.Errorf("%w: start and end dates go together", ErrInvalidInput)
	}
	if start != nil && end.Before(*start) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
