package entity

import (
	"fmt"
	"time"
)

// PersonalInvite registers an invite code to exactly one user for attribution.
// A user owns at most one per guild, and a code maps to at most one owner.
// There is no regeneration path: once created the record is immutable.
type PersonalInvite struct {
	UserID     string    `json:"userId" bson:"user_id"`
	GuildID    string    `json:"guildId" bson:"guild_id"`
	InviteCode string    `json:"inviteCode" bson:"invite_code"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

func (p *PersonalInvite) URL() string {
	return fmt.Sprintf("https://discord.gg/%s", p.InviteCode)
}

// PersonalInviteInfo is the API-facing view embedded in invite listings.
type PersonalInviteInfo struct {
	InviteCode string    `json:"inviteCode"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (p *PersonalInvite) Info() *PersonalInviteInfo {
	return &PersonalInviteInfo{
		InviteCode: p.InviteCode,
		URL:        p.URL(),
		CreatedAt:  p.CreatedAt,
	}
}
