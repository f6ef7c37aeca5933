package workflow

import (
	"context"
	"fmt"
	"testing"

	"baustelle-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetMissingRecordIsEmpty(t *testing.T) {
	reg := NewRegistry(newMemStore())

	emails, err := reg.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestRegistrySetArrayForm(t *testing.T) {
	store := newMemStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	emails, err := reg.Set(ctx, SetConfigInput{ApproverEmails: []string{" Boss@X.com ", "lead@x.com", "boss@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"boss@x.com", "lead@x.com"}, emails)

	// Legacy mirrors track the first two entries.
	assert.Equal(t, "boss@x.com", store.cfg.PresidentEmail)
	assert.Equal(t, "lead@x.com", store.cfg.DirectorEmail)

	got, err := reg.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, emails, got)
}

func TestRegistrySetLegacyPair(t *testing.T) {
	reg := NewRegistry(newMemStore())
	ctx := context.Background()

	_, err := reg.Set(ctx, SetConfigInput{PresidentEmail: "a@x.com", DirectorEmail: "b@x.com"})
	require.NoError(t, err)

	got, err := reg.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestRegistryReadsLegacyOnlyRecord(t *testing.T) {
	store := newMemStore()
	// Simulate a record written by an old writer: legacy fields only, no array.
	store.cfg = &models.ApproverConfig{
		Id:             models.ApproverConfigID,
		PresidentEmail: "Pres@X.com",
		DirectorEmail:  "dir@x.com",
	}
	reg := NewRegistry(store)

	got, err := reg.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pres@x.com", "dir@x.com"}, got)
}

func TestRegistryClearedSetIsAccepted(t *testing.T) {
	store := newMemStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	_, err := reg.Set(ctx, SetConfigInput{ApproverEmails: []string{"a@x.com"}})
	require.NoError(t, err)

	emails, err := reg.Set(ctx, SetConfigInput{ApproverEmails: []string{}})
	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.Equal(t, "", store.cfg.PresidentEmail) // mirrors cleared too

	got, err := reg.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegistryRejectsOversizedSet(t *testing.T) {
	reg := NewRegistry(newMemStore())

	big := make([]string, MaxApprovers+1)
	for i := range big {
		big[i] = fmt.Sprintf("user%d@x.com", i)
	}
	_, err := reg.Set(context.Background(), SetConfigInput{ApproverEmails: big})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
