package workflow

import (
	"context"
	"errors"
	"time"

	"baustelle-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore backs RequestStore, TargetStore and ConfigStore with Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ── RequestStore ──

func (s *GormStore) FetchByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *GormStore) CreateRound(ctx context.Context, targetKey string, records []*models.ApprovalRequest) (existingIDs []string, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock on the open round keeps two concurrent submissions from
		// both passing the existence check.
		var open []models.ApprovalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("target_key = ? AND status = ?", targetKey, models.ApprovalStatusPending).
			Find(&open).Error; err != nil {
			return err
		}
		if len(open) > 0 {
			existingIDs = make([]string, len(open))
			for i, r := range open {
				existingIDs[i] = r.Id
			}
			return nil
		}
		if err := tx.Create(records).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return existingIDs, created, err
}

func (s *GormStore) ListPendingByTargetKey(ctx context.Context, targetKey string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("target_key = ? AND status = ?", targetKey, models.ApprovalStatusPending).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) ListRound(ctx context.Context, targetKey, roundID string, limit int) ([]models.ApprovalRequest, error) {
	var round []models.ApprovalRequest
	err := s.db.WithContext(ctx).
		Where("target_key = ? AND round_id = ?", targetKey, roundID).
		Limit(limit).
		Find(&round).Error
	return round, err
}

func (s *GormStore) ListPendingForApprover(ctx context.Context, approverEmail string, limit int) ([]models.ApprovalRequest, error) {
	var pending []models.ApprovalRequest
	err := s.db.WithContext(ctx).
		Where("approver_email = ? AND status = ?", approverEmail, models.ApprovalStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}

func (s *GormStore) MarkApproved(ctx context.Context, id, by string, at time.Time) error {
	// The status guard keeps terminal states immutable under racing decisions.
	return s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.ApprovalStatusPending).
		Updates(map[string]any{
			"status":      models.ApprovalStatusApproved,
			"approved_at": at,
			"approved_by": by,
		}).Error
}

func (s *GormStore) MarkRejected(ctx context.Context, id, by string, at time.Time, comment *string) error {
	return s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.ApprovalStatusPending).
		Updates(map[string]any{
			"status":         models.ApprovalStatusRejected,
			"rejected_at":    at,
			"rejected_by":    by,
			"return_comment": comment,
		}).Error
}

func (s *GormStore) CancelPendingSiblings(ctx context.Context, targetKey, roundID, excludeID, by string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.ApprovalRequest{}).
		Where("target_key = ? AND round_id = ? AND status = ? AND id <> ?",
			targetKey, roundID, models.ApprovalStatusPending, excludeID).
		Updates(map[string]any{
			"status":      models.ApprovalStatusCanceled,
			"canceled_at": at,
			"canceled_by": by,
		}).Error
}

// ── TargetStore ──

func (s *GormStore) MarkAwaiting(ctx context.Context, ref TargetRef, roundID string, requestedAt time.Time, amountExTax, totalWithTax *float64) error {
	updates := map[string]any{
		"billing_status":        models.TargetStatusAwaiting,
		"approval_round_id":     roundID,
		"approval_requested_at": requestedAt,
		"return_comment":        nil,
		"returned_at":           nil,
	}
	if amountExTax != nil {
		updates["billing_amount_ex_tax"] = *amountExTax
	}
	if totalWithTax != nil {
		updates["billing_amount_total"] = *totalWithTax
	}
	return s.updateTarget(ctx, ref, updates)
}

func (s *GormStore) MarkBillable(ctx context.Context, ref TargetRef, approvedAt time.Time) error {
	return s.updateTarget(ctx, ref, map[string]any{
		"billing_status": models.TargetStatusBillable,
		"approved_at":    approvedAt,
	})
}

func (s *GormStore) MarkReturned(ctx context.Context, ref TargetRef, comment *string, returnedAt time.Time) error {
	return s.updateTarget(ctx, ref, map[string]any{
		"billing_status": models.TargetStatusReturned,
		"return_comment": comment,
		"returned_at":    returnedAt,
	})
}

func (s *GormStore) updateTarget(ctx context.Context, ref TargetRef, updates map[string]any) error {
	if ref.BillingID != "" {
		return s.db.WithContext(ctx).Model(&models.ProjectBilling{}).
			Where("id = ? AND project_id = ?", ref.BillingID, ref.ProjectID).
			Updates(updates).Error
	}
	return s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", ref.ProjectID).
		Updates(updates).Error
}

// ── ConfigStore ──

func (s *GormStore) Load(ctx context.Context) (*models.ApproverConfig, error) {
	var cfg models.ApproverConfig
	err := s.db.WithContext(ctx).First(&cfg, "id = ?", models.ApproverConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *GormStore) Save(ctx context.Context, cfg *models.ApproverConfig) error {
	cfg.Id = models.ApproverConfigID
	return s.db.WithContext(ctx).Save(cfg).Error
}
