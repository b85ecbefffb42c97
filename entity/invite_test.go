package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsActiveUnlimitedInvite(t *testing.T) {
	inv := &Invite{Code: "abc", Uses: 500}
	require.True(t, inv.IsActive(time.Now()))
}

func TestIsActiveUseCapReached(t *testing.T) {
	maxUses := int64(3)
	inv := &Invite{Code: "abc", Uses: 3, MaxUses: &maxUses}
	require.False(t, inv.IsActive(time.Now()))

	inv.Uses = 2
	require.True(t, inv.IsActive(time.Now()))
}

func TestIsActiveExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Minute)
	require.False(t, (&Invite{Code: "abc", ExpiresAt: &past}).IsActive(now))

	future := now.Add(time.Minute)
	require.True(t, (&Invite{Code: "abc", ExpiresAt: &future}).IsActive(now))

	// An invite expiring exactly now is no longer usable.
	require.False(t, (&Invite{Code: "abc", ExpiresAt: &now}).IsActive(now))
}
