package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Request statuses. Every transition out of "pending" is terminal.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
	ApprovalStatusCanceled = "canceled"
)

// Target kinds: a whole-project invoice or one billing milestone.
const (
	TargetTypeProject = "project"
	TargetTypeBilling = "billing"
)

// ApprovalRequest is one approver's slice of an approval round.
// A round fans out one record per approver; all records of the round share
// RoundID, TargetKey and the ApproverEmails snapshot. Records are never
// deleted, they are the audit trail of the round's outcome.
type ApprovalRequest struct {
	Id        string `json:"id" gorm:"primaryKey"`
	TargetKey string `json:"target_key" gorm:"size:128;not null"`
	RoundID   string `json:"round_id" gorm:"size:64;not null;index"`

	TargetType string `json:"target_type" gorm:"size:10;not null"` // "project" | "billing"
	ProjectID  string `json:"project_id" gorm:"size:64;not null"`
	BillingID  string `json:"billing_id" gorm:"size:64"`
	TemplateID string `json:"template_id" gorm:"size:64"`

	// Snapshot taken at submission so rendering never re-joins the target.
	ProjectName  string   `json:"project_name"`
	ClientName   string   `json:"client_name"`
	AmountExTax  *float64 `json:"amount_ex_tax" gorm:"type:numeric(12,2)"`
	TotalWithTax *float64 `json:"total_with_tax" gorm:"type:numeric(12,2)"`

	RequesterLoginID string `json:"requester_login_id" gorm:"size:128"`
	RequesterName    string `json:"requester_name"`
	RequesterEmail   string `json:"requester_email" gorm:"size:254"`

	// ApproverEmail is the single approver this record addresses;
	// ApproverEmails is the full set the round was opened with.
	// Composite indexes on (target_key, status) and (approver_email, status,
	// created_at) are created in database.Migrate.
	ApproverEmail  string         `json:"approver_email" gorm:"size:254;not null"`
	ApproverEmails datatypes.JSON `json:"approver_emails" gorm:"type:jsonb"`

	Status string `json:"status" gorm:"size:20;not null;default:'pending'"`

	ApprovedAt    *time.Time `json:"approved_at"`
	ApprovedBy    string     `json:"approved_by" gorm:"size:254"`
	RejectedAt    *time.Time `json:"rejected_at"`
	RejectedBy    string     `json:"rejected_by" gorm:"size:254"`
	ReturnComment *string    `json:"return_comment"`
	CanceledAt    *time.Time `json:"canceled_at"`
	CanceledBy    string     `json:"canceled_by" gorm:"size:254"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (r *ApprovalRequest) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if r.Id == "" {
		r.Id = uuid.NewString()
	}
	return
}

// ApproverSet decodes the stored approver-set snapshot.
func (r *ApprovalRequest) ApproverSet() []string {
	if len(r.ApproverEmails) == 0 {
		return nil
	}
	var emails []string
	if err := json.Unmarshal(r.ApproverEmails, &emails); err != nil {
		return nil
	}
	return emails
}

// SetApproverSet encodes the approver-set snapshot onto the record.
func (r *ApprovalRequest) SetApproverSet(emails []string) {
	raw, _ := json.Marshal(emails)
	r.ApproverEmails = datatypes.JSON(raw)
}
