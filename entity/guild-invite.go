package entity

import "time"

// GuildInvite is one row of a live invite snapshot fetched from the provider.
// InviterID may be empty when the provider has no inviter of record
// (vanity URLs, widget invites); such rows are skipped during sync.
type GuildInvite struct {
	Code      string
	InviterID string
	Uses      int64
	MaxUses   *int64
	ExpiresAt *time.Time
	CreatedAt time.Time
}
