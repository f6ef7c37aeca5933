package database

import (
	"fmt"

	"baustelle-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(12,2))
// - Indexes for the approval hot paths (dedup check, round re-read,
//   per-approver pending list)
// - Basic CHECK constraints on status enums
// - Idempotency keys unique index
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Project{},
			&models.ProjectBilling{},
			&models.ApprovalRequest{},
			&models.ApproverConfig{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE approval_requests ALTER COLUMN amount_ex_tax         TYPE numeric(12,2)`,
			`ALTER TABLE approval_requests ALTER COLUMN total_with_tax        TYPE numeric(12,2)`,
			`ALTER TABLE projects          ALTER COLUMN billing_amount_ex_tax TYPE numeric(12,2)`,
			`ALTER TABLE projects          ALTER COLUMN billing_amount_total  TYPE numeric(12,2)`,
			`ALTER TABLE project_billings  ALTER COLUMN billing_amount_ex_tax TYPE numeric(12,2)`,
			`ALTER TABLE project_billings  ALTER COLUMN billing_amount_total  TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_approval_requests_target_status ON approval_requests (target_key, status)`,
			`CREATE INDEX IF NOT EXISTS idx_approval_requests_round ON approval_requests (target_key, round_id)`,
			`CREATE INDEX IF NOT EXISTS idx_approval_requests_approver_status ON approval_requests (approver_email, status, created_at DESC)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Request status is one of the four terminal-safe values
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'approval_requests'::regclass
					  AND conname  = 'chk_approval_requests_status'
				) THEN
					ALTER TABLE approval_requests
					ADD CONSTRAINT chk_approval_requests_status
					CHECK (status IN ('pending', 'approved', 'rejected', 'canceled'));
				END IF;
			END $$;`,
			// Project billing status follows the workflow enum
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'projects'::regclass
					  AND conname  = 'chk_projects_billing_status'
				) THEN
					ALTER TABLE projects
					ADD CONSTRAINT chk_projects_billing_status
					CHECK (billing_status IN ('draft', 'awaiting_approval', 'billable', 'returned'));
				END IF;
			END $$;`,
			// Same enum for milestones
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'project_billings'::regclass
					  AND conname  = 'chk_project_billings_billing_status'
				) THEN
					ALTER TABLE project_billings
					ADD CONSTRAINT chk_project_billings_billing_status
					CHECK (billing_status IN ('draft', 'awaiting_approval', 'billable', 'returned'));
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
