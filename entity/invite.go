package entity

import "time"

// Invite is the persisted record of a joinable link: its owner, usage counter
// and optional cap/expiry. Uses only ever grows; records are removed solely by
// an explicit guild data wipe.
type Invite struct {
	Code      string     `json:"code" bson:"code"`
	InviterID string     `json:"inviterId" bson:"inviter_id"`
	GuildID   string     `json:"guildId" bson:"guild_id"`
	Uses      int64      `json:"uses" bson:"uses"`
	MaxUses   *int64     `json:"maxUses" bson:"max_uses"`
	ExpiresAt *time.Time `json:"expiresAt" bson:"expires_at"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

// IsActive reports whether the invite can still be used at the given moment:
// the use cap (when set) is not reached and the expiry (when set) is in the future.
func (i *Invite) IsActive(now time.Time) bool {
	if i.MaxUses != nil && i.Uses >= *i.MaxUses {
		return false
	}
	if i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
		return false
	}
	return true
}
