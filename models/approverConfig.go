package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ApproverConfigID pins the configuration to a single row.
const ApproverConfigID uint = 1

// ApproverConfig is the singleton approver-set record. ApproverEmails is the
// modern array form; PresidentEmail/DirectorEmail mirror its first two entries
// so older readers and writers keep working. Last write wins, no history.
type ApproverConfig struct {
	Id             uint           `json:"id" gorm:"primaryKey"`
	ApproverEmails datatypes.JSON `json:"approver_emails" gorm:"type:jsonb"`
	PresidentEmail string         `json:"president_email" gorm:"size:254"`
	DirectorEmail  string         `json:"director_email" gorm:"size:254"`
}

// Emails decodes the modern array field. Returns nil when the field was never
// written (legacy-only record).
func (c *ApproverConfig) Emails() []string {
	if len(c.ApproverEmails) == 0 {
		return nil
	}
	var emails []string
	if err := json.Unmarshal(c.ApproverEmails, &emails); err != nil {
		return nil
	}
	return emails
}

// SetEmails stores the array field and keeps the legacy mirrors in sync.
func (c *ApproverConfig) SetEmails(emails []string) {
	if emails == nil {
		emails = []string{}
	}
	raw, _ := json.Marshal(emails)
	c.ApproverEmails = datatypes.JSON(raw)
	c.PresidentEmail = ""
	c.DirectorEmail = ""
	if len(emails) > 0 {
		c.PresidentEmail = emails[0]
	}
	if len(emails) > 1 {
		c.DirectorEmail = emails[1]
	}
}
