package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/hunt-contracts/internal/model"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS hunts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		outfitter_id UUID NOT NULL,
		client_id UUID,
		client_name TEXT NOT NULL DEFAULT '',
		species TEXT NOT NULL DEFAULT '',
		weapon TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		hunt_code TEXT NOT NULL DEFAULT '',
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		hunt_type VARCHAR(32) NOT NULL,
		tag_status VARCHAR(32) NOT NULL DEFAULT 'pending',
		selected_pricing_id UUID,
		add_ons JSONB NOT NULL DEFAULT '{}'::jsonb,
		pending_completion JSONB NOT NULL DEFAULT 'null'::jsonb,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_hunts_outfitter_id ON hunts (outfitter_id);`,
	`CREATE TABLE IF NOT EXISTS pricing_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		outfitter_id UUID NOT NULL,
		title TEXT NOT NULL,
		category VARCHAR(32) NOT NULL,
		add_on_kind VARCHAR(32) NOT NULL DEFAULT 'none',
		species JSONB NOT NULL DEFAULT '[]'::jsonb,
		weapons JSONB NOT NULL DEFAULT '[]'::jsonb,
		included_days INTEGER NOT NULL DEFAULT 0,
		unit_price NUMERIC(12,2) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pricing_entries_outfitter_id ON pricing_entries (outfitter_id, sort_order);`,
	`CREATE TABLE IF NOT EXISTS hunt_contracts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		hunt_id UUID NOT NULL REFERENCES hunts(id),
		outfitter_id UUID NOT NULL,
		status VARCHAR(40) NOT NULL,
		content TEXT NOT NULL,
		completion JSONB NOT NULL DEFAULT '{}'::jsonb,
		total_cents BIGINT NOT NULL DEFAULT 0,
		client_signed_at TIMESTAMPTZ,
		admin_signed_at TIMESTAMPTZ,
		executed_at TIMESTAMPTZ,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_hunt_contracts_hunt_id ON hunt_contracts (hunt_id);`,
	`CREATE INDEX IF NOT EXISTS idx_hunt_contracts_outfitter_id ON hunt_contracts (outfitter_id);`,
	`CREATE TABLE IF NOT EXISTS payment_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES hunt_contracts(id),
		kind VARCHAR(32) NOT NULL,
		outfitter_id UUID NOT NULL,
		client_id UUID,
		description TEXT NOT NULL DEFAULT '',
		subtotal_cents BIGINT NOT NULL,
		fee_cents BIGINT NOT NULL,
		total_cents BIGINT NOT NULL,
		amount_paid_cents BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payment_items_contract_kind ON payment_items (contract_id, kind);`,
	`CREATE INDEX IF NOT EXISTS idx_payment_items_outfitter_id ON payment_items (outfitter_id);`,
	`CREATE TABLE IF NOT EXISTS schedule_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		hunt_id UUID NOT NULL REFERENCES hunts(id),
		outfitter_id UUID NOT NULL,
		title TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		participants JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_schedule_entries_hunt_id ON schedule_entries (hunt_id);`,
	`CREATE TABLE IF NOT EXISTS document_templates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		outfitter_id UUID NOT NULL,
		kind VARCHAR(32) NOT NULL,
		outfitter_name TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_document_templates_outfitter_kind ON document_templates (outfitter_id, kind);`,
}

// Models lists the persisted models, for schema creation on non-Postgres
// databases such as the SQLite instances used in tests.
func Models() []interface{} {
	return []interface{}{
		&model.Hunt{},
		&model.PricingEntry{},
		&model.HuntContract{},
		&model.PaymentItem{},
		&model.ScheduleEntry{},
		&model.DocumentTemplate{},
	}
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
