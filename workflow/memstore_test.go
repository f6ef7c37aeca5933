package workflow

import (
	"context"
	"sort"
	"time"

	"baustelle-backend/models"

	"github.com/google/uuid"
)

// targetState mirrors the billing-status fields the workflow writes on a
// project or milestone.
type targetState struct {
	Status       string
	RoundID      string
	RequestedAt  *time.Time
	ApprovedAt   *time.Time
	Comment      *string
	ReturnedAt   *time.Time
	AmountExTax  *float64
	TotalWithTax *float64
}

// memStore is an in-memory stand-in for GormStore used by the service tests.
type memStore struct {
	requests map[string]*models.ApprovalRequest
	order    []string // insertion order of request ids
	targets  map[string]*targetState
	cfg      *models.ApproverConfig
}

func newMemStore() *memStore {
	return &memStore{
		requests: make(map[string]*models.ApprovalRequest),
		targets:  make(map[string]*targetState),
	}
}

func (m *memStore) target(ref TargetRef) *targetState {
	t, ok := m.targets[ref.Key()]
	if !ok {
		t = &targetState{Status: models.TargetStatusDraft}
		m.targets[ref.Key()] = t
	}
	return t
}

// ── RequestStore ──

func (m *memStore) FetchByID(_ context.Context, id string) (*models.ApprovalRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (m *memStore) CreateRound(_ context.Context, targetKey string, records []*models.ApprovalRequest) ([]string, bool, error) {
	var existing []string
	for _, id := range m.order {
		r := m.requests[id]
		if r.TargetKey == targetKey && r.Status == models.ApprovalStatusPending {
			existing = append(existing, id)
		}
	}
	if len(existing) > 0 {
		return existing, false, nil
	}
	for _, rec := range records {
		if rec.Id == "" {
			rec.Id = uuid.NewString()
		}
		cp := *rec
		m.requests[rec.Id] = &cp
		m.order = append(m.order, rec.Id)
	}
	return nil, true, nil
}

func (m *memStore) ListPendingByTargetKey(_ context.Context, targetKey string) ([]string, error) {
	var ids []string
	for _, id := range m.order {
		r := m.requests[id]
		if r.TargetKey == targetKey && r.Status == models.ApprovalStatusPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) ListRound(_ context.Context, targetKey, roundID string, limit int) ([]models.ApprovalRequest, error) {
	var round []models.ApprovalRequest
	for _, id := range m.order {
		r := m.requests[id]
		if r.TargetKey == targetKey && r.RoundID == roundID {
			round = append(round, *r)
			if len(round) >= limit {
				break
			}
		}
	}
	return round, nil
}

func (m *memStore) ListPendingForApprover(_ context.Context, approverEmail string, limit int) ([]models.ApprovalRequest, error) {
	var pending []models.ApprovalRequest
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.requests[m.order[i]]
		if r.ApproverEmail == approverEmail && r.Status == models.ApprovalStatusPending {
			pending = append(pending, *r)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *memStore) MarkApproved(_ context.Context, id, by string, at time.Time) error {
	if r, ok := m.requests[id]; ok && r.Status == models.ApprovalStatusPending {
		r.Status = models.ApprovalStatusApproved
		r.ApprovedBy = by
		t := at
		r.ApprovedAt = &t
	}
	return nil
}

func (m *memStore) MarkRejected(_ context.Context, id, by string, at time.Time, comment *string) error {
	if r, ok := m.requests[id]; ok && r.Status == models.ApprovalStatusPending {
		r.Status = models.ApprovalStatusRejected
		r.RejectedBy = by
		t := at
		r.RejectedAt = &t
		r.ReturnComment = comment
	}
	return nil
}

func (m *memStore) CancelPendingSiblings(_ context.Context, targetKey, roundID, excludeID, by string, at time.Time) error {
	for _, id := range m.order {
		r := m.requests[id]
		if r.Id == excludeID || r.TargetKey != targetKey || r.RoundID != roundID {
			continue
		}
		if r.Status == models.ApprovalStatusPending {
			r.Status = models.ApprovalStatusCanceled
			r.CanceledBy = by
			t := at
			r.CanceledAt = &t
		}
	}
	return nil
}

// ── TargetStore ──

func (m *memStore) MarkAwaiting(_ context.Context, ref TargetRef, roundID string, requestedAt time.Time, amountExTax, totalWithTax *float64) error {
	t := m.target(ref)
	t.Status = models.TargetStatusAwaiting
	t.RoundID = roundID
	ts := requestedAt
	t.RequestedAt = &ts
	t.Comment = nil
	t.ReturnedAt = nil
	if amountExTax != nil {
		t.AmountExTax = amountExTax
	}
	if totalWithTax != nil {
		t.TotalWithTax = totalWithTax
	}
	return nil
}

func (m *memStore) MarkBillable(_ context.Context, ref TargetRef, approvedAt time.Time) error {
	t := m.target(ref)
	t.Status = models.TargetStatusBillable
	ts := approvedAt
	t.ApprovedAt = &ts
	return nil
}

func (m *memStore) MarkReturned(_ context.Context, ref TargetRef, comment *string, returnedAt time.Time) error {
	t := m.target(ref)
	t.Status = models.TargetStatusReturned
	t.Comment = comment
	ts := returnedAt
	t.ReturnedAt = &ts
	return nil
}

// ── ConfigStore ──

func (m *memStore) Load(_ context.Context) (*models.ApproverConfig, error) {
	if m.cfg == nil {
		return nil, nil
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, cfg *models.ApproverConfig) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}
