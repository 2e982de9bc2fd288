package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/hunt-contracts/internal/db"
	"github.com/nurpe/hunt-contracts/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.Models()...))
	return database
}

func newHunt(outfitterID uuid.UUID) *model.Hunt {
	return &model.Hunt{
		OutfitterID: outfitterID,
		Species:     "Elk",
		Weapon:      "Rifle",
		HuntType:    model.HuntTypeDraw,
		TagStatus:   model.TagStatusPending,
		AddOns:      datatypes.NewJSONType(model.AddOns{}),
	}
}

func TestHuntRepository_UpdateUsesVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewHuntRepository(setupTestDB(t))

	hunt := newHunt(uuid.New())
	require.NoError(t, repo.Create(ctx, hunt))

	stale, err := repo.Get(ctx, hunt.ID)
	require.NoError(t, err)

	clientID := uuid.New()
	hunt.ClientID = &clientID
	hunt.AddOns = datatypes.NewJSONType(model.AddOns{ExtraDays: 2})
	require.NoError(t, repo.Update(ctx, hunt))
	assert.Equal(t, 2, hunt.Version)

	stale.TagStatus = model.TagStatusDrawn
	assert.ErrorIs(t, repo.Update(ctx, stale), ErrVersionConflict)

	stored, err := repo.Get(ctx, hunt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TagStatusPending, stored.TagStatus)
	require.NotNil(t, stored.ClientID)
	assert.Equal(t, clientID, *stored.ClientID)
	assert.Equal(t, 2, stored.AddOns.Data().ExtraDays)
	assert.Nil(t, stored.PendingCompletion.Data())
}

func TestPricingRepository_ListOrderAndUpdatePrice(t *testing.T) {
	ctx := context.Background()
	repo := NewPricingRepository(setupTestDB(t))
	outfitterID := uuid.New()

	second := &model.PricingEntry{OutfitterID: outfitterID, Title: "B", Category: model.PricingCategoryBase, SortOrder: 2, UnitPrice: decimal.NewFromInt(200)}
	first := &model.PricingEntry{OutfitterID: outfitterID, Title: "A", Category: model.PricingCategoryBase, SortOrder: 1, UnitPrice: decimal.RequireFromString("150.50")}
	other := &model.PricingEntry{OutfitterID: uuid.New(), Title: "C", Category: model.PricingCategoryBase, UnitPrice: decimal.NewFromInt(1)}
	for _, e := range []*model.PricingEntry{second, first, other} {
		require.NoError(t, repo.Create(ctx, e))
	}

	entries, err := repo.ListByOutfitter(ctx, outfitterID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Title)
	assert.True(t, entries[0].UnitPrice.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, model.AddOnKindNone, entries[0].AddOnKind)

	require.NoError(t, repo.UpdatePrice(ctx, outfitterID, first.ID, decimal.NewFromInt(175)))
	entries, err = repo.ListByOutfitter(ctx, outfitterID)
	require.NoError(t, err)
	assert.True(t, entries[0].UnitPrice.Equal(decimal.NewFromInt(175)))

	assert.ErrorIs(t, repo.UpdatePrice(ctx, outfitterID, uuid.New(), decimal.NewFromInt(1)), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdatePrice(ctx, outfitterID, other.ID, decimal.NewFromInt(1)), gorm.ErrRecordNotFound)
}

func TestContractRepository_OnePerHunt(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	hunts := NewHuntRepository(database)
	repo := NewContractRepository(database)

	hunt := newHunt(uuid.New())
	require.NoError(t, hunts.Create(ctx, hunt))

	contract := &model.HuntContract{
		HuntID:      hunt.ID,
		OutfitterID: hunt.OutfitterID,
		Status:      model.ContractStatusPendingClientCompletion,
		Content:     "draft",
		Completion:  datatypes.NewJSONType(model.CompletionSnapshot{AddOns: model.AddOns{ExtraObservers: 1}}),
	}
	require.NoError(t, repo.Create(ctx, contract))

	dup := &model.HuntContract{HuntID: hunt.ID, OutfitterID: hunt.OutfitterID, Status: model.ContractStatusPendingClientCompletion}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	byHunt, err := repo.GetByHunt(ctx, hunt.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, byHunt.ID)
	assert.Equal(t, 1, byHunt.Completion.Data().ExtraObservers)

	contract.Content = "refreshed"
	require.NoError(t, repo.Update(ctx, contract))
	byHunt.Content = "stale write"
	assert.ErrorIs(t, repo.Update(ctx, byHunt), ErrVersionConflict)

	stored, err := repo.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", stored.Content)
}

func TestPaymentRepository_TotalsNeverTouchAmountPaid(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(setupTestDB(t))

	item := &model.PaymentItem{
		ContractID:    uuid.New(),
		Kind:          model.PaymentKindGuideFee,
		OutfitterID:   uuid.New(),
		SubtotalCents: 10000,
		FeeCents:      500,
		TotalCents:    10500,
	}
	require.NoError(t, repo.Create(ctx, item))
	assert.Equal(t, model.PaymentStatusPending, item.Status)

	read, err := repo.Get(ctx, item.ID)
	require.NoError(t, err)

	paid, err := repo.AddPayment(ctx, item.ID, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), paid.AmountPaidCents)
	assert.Equal(t, model.PaymentStatusPartiallyPaid, paid.Status)

	corrected := model.PaymentBreakdown{SubtotalCents: 3000, FeeCents: 150, TotalCents: 3150}
	assert.ErrorIs(t, repo.UpdateTotals(ctx, item.ID, read.Version, corrected), ErrVersionConflict)
	require.NoError(t, repo.UpdateTotals(ctx, item.ID, paid.Version, corrected))

	stored, err := repo.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, corrected, stored.Breakdown())
	assert.Equal(t, int64(4000), stored.AmountPaidCents)
	assert.Equal(t, model.PaymentStatusPaid, stored.Status)

	dup := &model.PaymentItem{ContractID: item.ContractID, Kind: model.PaymentKindGuideFee, OutfitterID: item.OutfitterID, TotalCents: 1}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
}

func TestScheduleRepository_UpsertByHunt(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	hunts := NewHuntRepository(database)
	repo := NewScheduleRepository(database)

	hunt := newHunt(uuid.New())
	require.NoError(t, hunts.Create(ctx, hunt))

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	entry := model.ScheduleEntry{
		HuntID:       hunt.ID,
		OutfitterID:  hunt.OutfitterID,
		Title:        "Elk hunt",
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 4),
		Participants: datatypes.NewJSONType([]string{"Jane Doe"}),
	}
	require.NoError(t, repo.UpsertScheduleEntry(ctx, entry))

	entry.Title = "Elk hunt (moved)"
	entry.EndDate = start.AddDate(0, 0, 6)
	require.NoError(t, repo.UpsertScheduleEntry(ctx, entry))

	var count int64
	require.NoError(t, database.Model(&model.ScheduleEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.GetByHunt(ctx, hunt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Elk hunt (moved)", stored.Title)
	assert.True(t, stored.EndDate.Equal(start.AddDate(0, 0, 6)))
}

func TestTemplateRepository_MissingTemplateIsNil(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository(setupTestDB(t))
	outfitterID := uuid.New()

	tpl, err := repo.ContractTemplate(ctx, outfitterID)
	require.NoError(t, err)
	assert.Nil(t, tpl)

	require.NoError(t, repo.Save(ctx, &model.DocumentTemplate{OutfitterID: outfitterID, OutfitterName: "High Ridge", Body: "v1"}))
	require.NoError(t, repo.Save(ctx, &model.DocumentTemplate{OutfitterID: outfitterID, OutfitterName: "High Ridge", Body: "v2"}))

	tpl, err = repo.ContractTemplate(ctx, outfitterID)
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, "v2", tpl.Body)
}
