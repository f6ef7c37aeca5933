package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Billing statuses of an approval target. The workflow only ever moves a
// target draft -> awaiting_approval -> billable | returned.
const (
	TargetStatusDraft    = "draft"
	TargetStatusAwaiting = "awaiting_approval"
	TargetStatusBillable = "billable"
	TargetStatusReturned = "returned"
)

// Project is a construction project. The approval workflow owns only its
// billing-status fields; everything else belongs to other screens.
type Project struct {
	Id         string `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null"`
	ClientName string `json:"client_name"`

	BillingStatus       string     `json:"billing_status" gorm:"size:30;not null;default:'draft'"`
	ApprovalRoundID     string     `json:"approval_round_id" gorm:"size:64"`
	ApprovalRequestedAt *time.Time `json:"approval_requested_at"`
	ApprovedAt          *time.Time `json:"approved_at"`
	ReturnComment       *string    `json:"return_comment"`
	ReturnedAt          *time.Time `json:"returned_at"`
	BillingAmountExTax  *float64   `json:"billing_amount_ex_tax" gorm:"type:numeric(12,2)"`
	BillingAmountTotal  *float64   `json:"billing_amount_total" gorm:"type:numeric(12,2)"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	return
}

// ProjectBilling is one milestone of a milestone-billed project. It carries
// the same billing-status fields as Project, written by the same workflow.
type ProjectBilling struct {
	Id        string `json:"id" gorm:"primaryKey"`
	ProjectID string `json:"project_id" gorm:"size:64;not null;index"`
	Title     string `json:"title"`

	BillingStatus       string     `json:"billing_status" gorm:"size:30;not null;default:'draft'"`
	ApprovalRoundID     string     `json:"approval_round_id" gorm:"size:64"`
	ApprovalRequestedAt *time.Time `json:"approval_requested_at"`
	ApprovedAt          *time.Time `json:"approved_at"`
	ReturnComment       *string    `json:"return_comment"`
	ReturnedAt          *time.Time `json:"returned_at"`
	BillingAmountExTax  *float64   `json:"billing_amount_ex_tax" gorm:"type:numeric(12,2)"`
	BillingAmountTotal  *float64   `json:"billing_amount_total" gorm:"type:numeric(12,2)"`

	CreatedAt time.Time `json:"created_at"`
}

func (b *ProjectBilling) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if b.Id == "" {
		b.Id = uuid.NewString()
	}
	return
}
