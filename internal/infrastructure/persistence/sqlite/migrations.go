package sqlite

import "database/sql"

func RunMigrations(db *sql.DB) error {
	stmts := []string{

		`CREATE TABLE IF NOT EXISTS connected_accounts (
			account_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			percent_bps INTEGER NOT NULL,
			fixed_fee INTEGER NOT NULL,
			min_fee INTEGER NOT NULL,
			max_fee INTEGER NOT NULL,
			onboarding_complete INTEGER NOT NULL,
			capabilities TEXT NOT NULL,
			disabled INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_accounts_tenant
			ON connected_accounts (tenant_id);`,

		`CREATE TABLE IF NOT EXISTS checkout_intents (
			intent_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			methods TEXT NOT NULL,
			mode TEXT NOT NULL,
			platform_fee INTEGER NOT NULL,
			destination_id TEXT NOT NULL,
			checkout_url TEXT NOT NULL,
			charge_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			metadata TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			completed_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_intents_charge
			ON checkout_intents (charge_id);`,

		`CREATE TABLE IF NOT EXISTS webhook_events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			payload BLOB NOT NULL,
			idempotency_key TEXT NOT NULL UNIQUE,
			processed INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			last_error TEXT NOT NULL DEFAULT '',
			received_at DATETIME NOT NULL,
			processed_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS transfer_instructions (
			instruction_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			source_charge_id TEXT NOT NULL,
			group_id TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			reversed_amount INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_transfers_tenant
			ON transfer_instructions (tenant_id);`,

		`CREATE TABLE IF NOT EXISTS transfer_reversals (
			reversal_id TEXT PRIMARY KEY,
			instruction_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS payouts (
			payout_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			period_start DATETIME NOT NULL,
			period_end DATETIME NOT NULL,
			arrival_date DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS payout_summaries (
			payout_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			period_start DATETIME NOT NULL,
			period_end DATETIME NOT NULL,
			gross_amount INTEGER NOT NULL,
			processor_fees INTEGER NOT NULL,
			platform_fees INTEGER NOT NULL,
			refunds INTEGER NOT NULL,
			disputes INTEGER NOT NULL,
			adjustments INTEGER NOT NULL,
			net_amount INTEGER NOT NULL,
			actual_amount INTEGER NOT NULL,
			diff INTEGER NOT NULL,
			reconciled INTEGER NOT NULL,
			reconciled_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS ledger_entries (
			entry_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			amount INTEGER NOT NULL,
			processor_fee INTEGER NOT NULL,
			platform_fee INTEGER NOT NULL,
			currency TEXT NOT NULL,
			source_id TEXT NOT NULL,
			settled_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_ledger_account_settled
			ON ledger_entries (account_id, settled_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
