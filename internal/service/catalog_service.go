package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/repository"
)

// CatalogService manages an outfitter's pricing entries and contract
// template.
type CatalogService struct {
	pricing   *repository.PricingRepository
	templates *repository.TemplateRepository
	log       zerolog.Logger
}

type PricingEntryInput struct {
	Title        string
	Category     model.PricingCategory
	AddOnKind    model.AddOnKind
	Species      []string
	Weapons      []string
	IncludedDays int
	UnitPrice    decimal.Decimal
	SortOrder    int
}

func NewCatalogService(pricing *repository.PricingRepository, templates *repository.TemplateRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{pricing: pricing, templates: templates, log: log}
}

func (s *CatalogService) ListPricing(ctx context.Context, principal model.Principal) ([]model.PricingEntry, error) {
	return s.pricing.ListByOutfitter(ctx, principal.OutfitterID)
}

func (s *CatalogService) CreatePricing(ctx context.Context, principal model.Principal, in PricingEntryInput) (*model.PricingEntry, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := validatePricing(in); err != nil {
		return nil, err
	}

	entry := &model.PricingEntry{
		OutfitterID:  principal.OutfitterID,
		Title:        strings.TrimSpace(in.Title),
		Category:     in.Category,
		AddOnKind:    in.AddOnKind,
		Species:      datatypes.NewJSONType(cleanList(in.Species)),
		Weapons:      datatypes.NewJSONType(cleanList(in.Weapons)),
		IncludedDays: in.IncludedDays,
		UnitPrice:    in.UnitPrice,
		SortOrder:    in.SortOrder,
	}
	if err := s.pricing.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("pricing_id", entry.ID.String()).
		Str("category", string(entry.Category)).
		Str("unit_price", entry.UnitPrice.StringFixed(2)).
		Msg("pricing entry created")
	return entry, nil
}

// UpdatePrice changes a catalog price. Executed contracts keep the prices
// pinned at render time.
func (s *CatalogService) UpdatePrice(ctx context.Context, principal model.Principal, id uuid.UUID, price decimal.Decimal) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if err := s.pricing.UpdatePrice(ctx, principal.OutfitterID, id, price); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *CatalogService) SaveContractTemplate(ctx context.Context, principal model.Principal, outfitterName, body string) (*model.DocumentTemplate, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	tpl := &model.DocumentTemplate{
		OutfitterID:   principal.OutfitterID,
		Kind:          model.TemplateKindHuntContract,
		OutfitterName: strings.TrimSpace(outfitterName),
		Body:          body,
	}
	if err := s.templates.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func validatePricing(in PricingEntryInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	switch in.Category {
	case model.PricingCategoryBase, model.PricingCategoryAddOn:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	switch in.AddOnKind {
	case "", model.AddOnKindNone:
	case model.AddOnKindExtraDay, model.AddOnKindNonHunter, model.AddOnKindObserver:
		if in.Category != model.PricingCategoryAddOn {
			return fmt.Errorf("%w: add-on kind requires the add_on category", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown add-on kind %q", ErrInvalidInput, in.AddOnKind)
	}
	if in.IncludedDays < 0 {
		return fmt.Errorf("%w: included days must not be negative", ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func cleanList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
