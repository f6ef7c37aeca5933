package workflow

import (
	"context"

	"baustelle-backend/models"
)

// MaxApprovers bounds the approver set of a round and of the configuration.
const MaxApprovers = 50

// Registry reads and writes the configured approver set. It is the single
// conversion point between the legacy two-field record shape and the modern
// array shape; callers only ever see the canonical normalized set.
type Registry struct {
	store ConfigStore
}

func NewRegistry(store ConfigStore) *Registry {
	return &Registry{store: store}
}

// Get returns the normalized approver set. A missing configuration record
// yields an empty set, not an error. Legacy president/director fields are
// folded in so callers never care which shape is stored.
func (r *Registry) Get(ctx context.Context) ([]string, error) {
	cfg, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return []string{}, nil
	}
	emails := cfg.Emails()
	emails = append(emails, cfg.PresidentEmail, cfg.DirectorEmail)
	return NormalizeIdentities(emails), nil
}

// SetConfigInput accepts either the preferred array form or the legacy
// two-identifier form. When ApproverEmails is non-nil it wins.
type SetConfigInput struct {
	ApproverEmails []string `json:"approver_emails"`
	PresidentEmail string   `json:"president_email"`
	DirectorEmail  string   `json:"director_email"`
}

// Set normalizes, persists and returns the canonical set. An empty result is
// accepted (administrators may intentionally clear all approvers); a set over
// MaxApprovers is a ValidationError.
func (r *Registry) Set(ctx context.Context, in SetConfigInput) ([]string, error) {
	raw := in.ApproverEmails
	if raw == nil {
		raw = []string{in.PresidentEmail, in.DirectorEmail}
	}
	emails := NormalizeIdentities(raw)
	if len(emails) > MaxApprovers {
		return nil, validationf("approver set exceeds %d entries", MaxApprovers)
	}

	cfg, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &models.ApproverConfig{Id: models.ApproverConfigID}
	}
	cfg.SetEmails(emails)
	if err := r.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return emails, nil
}
