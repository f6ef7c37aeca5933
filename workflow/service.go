package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"baustelle-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultPendingLimit caps ListPendingForApprover when the caller gives none.
	DefaultPendingLimit = 30
	// roundQueryCap bounds the round re-read during completion checks.
	roundQueryCap = 200
)

// Service drives the invoice-approval workflow: one submission opens a round
// of per-approver requests, and the target becomes billable only after every
// approver in the round's snapshot approves. All mutating operations are
// idempotent so client retries after a timeout are always safe.
type Service struct {
	Requests RequestStore
	Targets  TargetStore
	Registry *Registry

	// RestrictToRegistry, when set, rejects ad hoc approver lists containing
	// identities outside the configured registry.
	RestrictToRegistry bool

	Log zerolog.Logger
}

func NewService(requests RequestStore, targets TargetStore, registry *Registry, log zerolog.Logger) *Service {
	return &Service{
		Requests: requests,
		Targets:  targets,
		Registry: registry,
		Log:      log,
	}
}

// SubmitInput is the caller's submission payload. ProjectID and one of
// RequesterEmail/RequesterLoginID are mandatory.
type SubmitInput struct {
	ProjectID        string   `json:"project_id" validate:"required"`
	BillingID        string   `json:"billing_id"`
	TemplateID       string   `json:"template_id"`
	AmountExTax      *float64 `json:"amount_ex_tax"`
	TotalWithTax     *float64 `json:"total_with_tax"`
	ProjectName      string   `json:"project_name"`
	ClientName       string   `json:"client_name"`
	RequesterLoginID string   `json:"requester_login_id"`
	RequesterName    string   `json:"requester_name"`
	RequesterEmail   string   `json:"requester_email"`
	ApproverEmails   []string `json:"approver_emails"`
}

// SubmitResult reports the round a submission resolved to. AlreadyPending is
// the dedup outcome: an open round existed and no records were written.
type SubmitResult struct {
	ApprovalIDs    []string `json:"approval_ids"`
	AlreadyPending bool     `json:"already_pending"`
	RoundID        string   `json:"round_id,omitempty"`
}

// DecisionResult reports an approve/reject outcome. Skipped means the request
// was already decided (idempotent no-op); Waiting means the round is still
// missing approvals; Returned means the target went back to the requester.
type DecisionResult struct {
	OK       bool `json:"ok"`
	Skipped  bool `json:"skipped,omitempty"`
	Waiting  bool `json:"waiting,omitempty"`
	Returned bool `json:"returned,omitempty"`
}

// newRoundID is unique per submission attempt: millisecond timestamp plus a
// random suffix.
func newRoundID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Submit opens an approval round for a target, fanning out one pending request
// per approver, unless the target already has an open round. Resubmitting
// while a round is open is a no-op returning the existing round's ids.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, validationf("project id is required")
	}
	requesterEmail := NormalizeIdentity(in.RequesterEmail)
	requesterLogin := strings.TrimSpace(in.RequesterLoginID)
	if requesterEmail == "" && requesterLogin == "" {
		return nil, validationf("requester email or login id is required")
	}

	ref := TargetRef{ProjectID: projectID, BillingID: strings.TrimSpace(in.BillingID)}
	targetKey := ref.Key()

	// Dedup comes before approver resolution: a resubmission against an open
	// round must succeed even if the registry has been emptied since.
	pendingIDs, err := s.Requests.ListPendingByTargetKey(ctx, targetKey)
	if err != nil {
		return nil, err
	}
	if len(pendingIDs) > 0 {
		s.Log.Info().Str("target_key", targetKey).Int("open_requests", len(pendingIDs)).
			Msg("submission deduplicated against open round")
		return &SubmitResult{ApprovalIDs: pendingIDs, AlreadyPending: true}, nil
	}

	approvers := NormalizeIdentities(in.ApproverEmails)
	if len(approvers) == 0 {
		approvers, err = s.Registry.Get(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(approvers) == 0 {
		return nil, validationf("no approvers configured")
	}
	if len(approvers) > MaxApprovers {
		return nil, validationf("approver set exceeds %d entries", MaxApprovers)
	}
	if s.RestrictToRegistry && len(in.ApproverEmails) > 0 {
		if err := s.assertRegistryMembers(ctx, approvers); err != nil {
			return nil, err
		}
	}

	roundID := newRoundID()
	now := time.Now().UTC()

	records := make([]*models.ApprovalRequest, 0, len(approvers))
	for _, approver := range approvers {
		rec := &models.ApprovalRequest{
			TargetKey:        targetKey,
			RoundID:          roundID,
			TargetType:       TargetTypeOf(ref.BillingID),
			ProjectID:        projectID,
			BillingID:        ref.BillingID,
			TemplateID:       strings.TrimSpace(in.TemplateID),
			ProjectName:      strings.TrimSpace(in.ProjectName),
			ClientName:       strings.TrimSpace(in.ClientName),
			AmountExTax:      in.AmountExTax,
			TotalWithTax:     in.TotalWithTax,
			RequesterLoginID: requesterLogin,
			RequesterName:    strings.TrimSpace(in.RequesterName),
			RequesterEmail:   requesterEmail,
			ApproverEmail:    approver,
			Status:           models.ApprovalStatusPending,
			CreatedAt:        now,
		}
		rec.SetApproverSet(approvers)
		records = append(records, rec)
	}

	// The store re-checks for an open round and inserts inside one transaction,
	// closing the read-then-write window between the dedup read above and the
	// fan-out.
	existingIDs, created, err := s.Requests.CreateRound(ctx, targetKey, records)
	if err != nil {
		return nil, err
	}
	if !created {
		return &SubmitResult{ApprovalIDs: existingIDs, AlreadyPending: true}, nil
	}

	if err := s.Targets.MarkAwaiting(ctx, ref, roundID, now, in.AmountExTax, in.TotalWithTax); err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.Id
	}
	s.Log.Info().Str("target_key", targetKey).Str("round_id", roundID).
		Int("approvers", len(approvers)).Msg("approval round opened")

	return &SubmitResult{ApprovalIDs: ids, RoundID: roundID}, nil
}

// Approve records one approver's approval. When every identifier of the
// round's stored approver snapshot has approved, the target flips to billable;
// until then the result reports Waiting.
func (s *Service) Approve(ctx context.Context, requestID, approverIdentity string) (*DecisionResult, error) {
	req, err := s.Requests.FetchByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{ID: requestID}
	}
	if req.Status != models.ApprovalStatusPending {
		return &DecisionResult{OK: true, Skipped: true}, nil
	}

	by := NormalizeIdentity(approverIdentity)
	now := time.Now().UTC()
	if err := s.Requests.MarkApproved(ctx, req.Id, by, now); err != nil {
		return nil, err
	}

	round, err := s.Requests.ListRound(ctx, req.TargetKey, req.RoundID, roundQueryCap)
	if err != nil {
		return nil, err
	}

	// The required set is the snapshot stored on the decided request, not the
	// live registry; registry edits never move the goalposts of an open round.
	approvedBy := make(map[string]bool, len(round))
	for _, sibling := range round {
		if sibling.Status == models.ApprovalStatusApproved || sibling.Id == req.Id {
			approvedBy[sibling.ApproverEmail] = true
		}
	}
	for _, required := range req.ApproverSet() {
		if !approvedBy[required] {
			s.Log.Info().Str("round_id", req.RoundID).Str("approver", by).
				Msg("approval recorded, round still waiting")
			return &DecisionResult{OK: true, Waiting: true}, nil
		}
	}

	ref := TargetRef{ProjectID: req.ProjectID, BillingID: req.BillingID}
	if err := s.Targets.MarkBillable(ctx, ref, now); err != nil {
		return nil, err
	}
	s.Log.Info().Str("round_id", req.RoundID).Str("target_key", req.TargetKey).
		Msg("round fully approved, target billable")

	return &DecisionResult{OK: true}, nil
}

// Reject records a rejection, cancels every still-pending sibling of the round
// and returns the target to the requester with the rejecter's comment.
func (s *Service) Reject(ctx context.Context, requestID, approverIdentity, comment string) (*DecisionResult, error) {
	req, err := s.Requests.FetchByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &NotFoundError{ID: requestID}
	}
	if req.Status != models.ApprovalStatusPending {
		return &DecisionResult{OK: true, Skipped: true}, nil
	}

	by := NormalizeIdentity(approverIdentity)
	now := time.Now().UTC()

	var commentPtr *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		commentPtr = &trimmed
	}

	if err := s.Requests.MarkRejected(ctx, req.Id, by, now, commentPtr); err != nil {
		return nil, err
	}
	if err := s.Requests.CancelPendingSiblings(ctx, req.TargetKey, req.RoundID, req.Id, by, now); err != nil {
		return nil, err
	}

	ref := TargetRef{ProjectID: req.ProjectID, BillingID: req.BillingID}
	if err := s.Targets.MarkReturned(ctx, ref, commentPtr, now); err != nil {
		return nil, err
	}
	s.Log.Info().Str("round_id", req.RoundID).Str("target_key", req.TargetKey).
		Str("approver", by).Msg("round rejected, target returned")

	return &DecisionResult{OK: true, Returned: true}, nil
}

// FetchByID returns the request record, or nil for an unknown id.
func (s *Service) FetchByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	return s.Requests.FetchByID(ctx, id)
}

// ListPendingForApprover returns pending requests addressed to the identity,
// newest first. A blank identity yields an empty list rather than an error;
// limit falls back to DefaultPendingLimit when not positive.
func (s *Service) ListPendingForApprover(ctx context.Context, identity string, limit int) ([]models.ApprovalRequest, error) {
	email := NormalizeIdentity(identity)
	if email == "" {
		return []models.ApprovalRequest{}, nil
	}
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return s.Requests.ListPendingForApprover(ctx, email, limit)
}

func (s *Service) assertRegistryMembers(ctx context.Context, approvers []string) error {
	members, err := s.Registry.Get(ctx)
	if err != nil {
		return err
	}
	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		allowed[m] = true
	}
	for _, a := range approvers {
		if !allowed[a] {
			return validationf("approver %s is not in the configured registry", a)
		}
	}
	return nil
}
