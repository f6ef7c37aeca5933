package workflow

import (
	"context"
	"time"

	"baustelle-backend/models"
)

// TargetRef identifies the billable entity a round gates. BillingID is empty
// for whole-project invoices.
type TargetRef struct {
	ProjectID string
	BillingID string
}

// Key returns the dedup/grouping key for the target.
func (t TargetRef) Key() string {
	return TargetKey(t.ProjectID, t.BillingID)
}

// RequestStore persists approval-request records. FetchByID returns (nil, nil)
// for an unknown id; a missing record is not a store failure.
type RequestStore interface {
	FetchByID(ctx context.Context, id string) (*models.ApprovalRequest, error)

	// CreateRound atomically re-checks for an open round on the target key and,
	// only when none exists, inserts all records. When a pending round is found
	// the existing record ids are returned and nothing is written.
	CreateRound(ctx context.Context, targetKey string, records []*models.ApprovalRequest) (existingIDs []string, created bool, err error)

	// ListPendingByTargetKey returns ids of pending requests for a target key.
	ListPendingByTargetKey(ctx context.Context, targetKey string) ([]string, error)

	// ListRound returns every request of one round, capped at limit.
	ListRound(ctx context.Context, targetKey, roundID string, limit int) ([]models.ApprovalRequest, error)

	// ListPendingForApprover returns pending requests addressed to the
	// approver, newest first, capped at limit.
	ListPendingForApprover(ctx context.Context, approverEmail string, limit int) ([]models.ApprovalRequest, error)

	MarkApproved(ctx context.Context, id, by string, at time.Time) error
	MarkRejected(ctx context.Context, id, by string, at time.Time, comment *string) error

	// CancelPendingSiblings cancels every still-pending request of the round
	// except excludeID, stamping the rejecting approver.
	CancelPendingSiblings(ctx context.Context, targetKey, roundID, excludeID, by string, at time.Time) error
}

// TargetStore writes the workflow's outward effect: the billing-status fields
// on the project or milestone. Nothing else writes these fields.
type TargetStore interface {
	MarkAwaiting(ctx context.Context, ref TargetRef, roundID string, requestedAt time.Time, amountExTax, totalWithTax *float64) error
	MarkBillable(ctx context.Context, ref TargetRef, approvedAt time.Time) error
	MarkReturned(ctx context.Context, ref TargetRef, comment *string, returnedAt time.Time) error
}

// ConfigStore persists the singleton approver configuration.
// Load returns (nil, nil) when no record exists yet.
type ConfigStore interface {
	Load(ctx context.Context) (*models.ApproverConfig, error)
	Save(ctx context.Context, cfg *models.ApproverConfig) error
}
