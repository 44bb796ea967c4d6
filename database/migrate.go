package database

import (
	"fmt"

	"ledgerbook-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(14,2))
// - Composite indexes (transactions window scan, payments lookup)
// - Basic CHECK constraints (positive amounts, known enum values)
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.User{},
			&models.CostCenter{},
			&models.Product{},
			&models.Budget{},
			&models.MasterBudget{},
			&models.Transaction{},
			&models.Invoice{},
			&models.Payment{},
			&models.PaymentEvent{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(14,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE products       ALTER COLUMN price        TYPE numeric(14,2)`,
			`ALTER TABLE budgets        ALTER COLUMN amount       TYPE numeric(14,2)`,
			`ALTER TABLE master_budgets ALTER COLUMN amount       TYPE numeric(14,2)`,
			`ALTER TABLE transactions   ALTER COLUMN amount       TYPE numeric(14,2)`,
			`ALTER TABLE invoices       ALTER COLUMN total_amount TYPE numeric(14,2)`,
			`ALTER TABLE payments       ALTER COLUMN amount       TYPE numeric(14,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_transactions_cc_date ON transactions (cost_center_id, date, kind)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_paid_at ON payments (invoice_id, paid_at)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_invoice_external ON payments (invoice_id, external_txn_id)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_status_due ON invoices (status, due_date)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Payments must carry a positive amount
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amount_positive'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Transactions must carry a positive amount
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'transactions'::regclass
					  AND conname  = 'chk_transactions_amount_positive'
				) THEN
					ALTER TABLE transactions
					ADD CONSTRAINT chk_transactions_amount_positive
					CHECK (amount > 0);
				END IF;
			END $$;`,
			// Transaction kind enum
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'transactions'::regclass
					  AND conname  = 'chk_transactions_kind'
				) THEN
					ALTER TABLE transactions
					ADD CONSTRAINT chk_transactions_kind
					CHECK (kind IN ('purchase', 'sale'));
				END IF;
			END $$;`,
			// Invoice status enum
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'invoices'::regclass
					  AND conname  = 'chk_invoices_status'
				) THEN
					ALTER TABLE invoices
					ADD CONSTRAINT chk_invoices_status
					CHECK (status IN ('unpaid', 'partial', 'paid'));
				END IF;
			END $$;`,
			// Budget periods must be ordered when both set
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'budgets'::regclass
					  AND conname  = 'chk_budgets_period_order'
				) THEN
					ALTER TABLE budgets
					ADD CONSTRAINT chk_budgets_period_order
					CHECK (period_start IS NULL OR period_end IS NULL OR period_start <= period_end);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
