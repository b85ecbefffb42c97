package entity

import (
	"net/http"
	"time"

	"invitetracker/lib/validate"
)

// JoinRecord is an append-only fact: this user joined via this invite code at
// this time. Only joins attributable to a registered personal invite are
// written with IsPersonalInvite set, and only those count toward statistics.
type JoinRecord struct {
	UserID           string    `json:"userId" bson:"user_id"`
	InviterID        string    `json:"inviterId" bson:"inviter_id"`
	InviteCode       string    `json:"inviteCode" bson:"invite_code"`
	GuildID          string    `json:"guildId" bson:"guild_id"`
	JoinedAt         time.Time `json:"joinedAt" bson:"joined_at"`
	IsPersonalInvite bool      `json:"isPersonalInvite" bson:"is_personal_invite"`
}

// JoinFilter narrows join-record queries. Zero values mean "no constraint";
// results are always newest first.
type JoinFilter struct {
	GuildID      string
	InviterID    string
	UserID       string
	PersonalOnly bool
	From         *time.Time
	To           *time.Time
	Limit        int64
}

// JoinRequest is the POST /api/joins body. JoinedAt is optional and defaults
// to the time of the request.
type JoinRequest struct {
	UserID     string     `json:"userId" validate:"required"`
	InviterID  string     `json:"inviterId" validate:"required"`
	InviteCode string     `json:"inviteCode" validate:"required"`
	GuildID    string     `json:"guildId" validate:"required"`
	JoinedAt   *time.Time `json:"joinedAt,omitempty"`
}

func (j *JoinRequest) Bind(_ *http.Request) error {
	return validate.Struct(j)
}

// Record converts the request into a persistable JoinRecord.
func (j *JoinRequest) Record(now time.Time) *JoinRecord {
	joinedAt := now
	if j.JoinedAt != nil {
		joinedAt = *j.JoinedAt
	}
	return &JoinRecord{
		UserID:           j.UserID,
		InviterID:        j.InviterID,
		InviteCode:       j.InviteCode,
		GuildID:          j.GuildID,
		JoinedAt:         joinedAt,
		IsPersonalInvite: true,
	}
}
