package entity

import "time"

// UserStats are the per-user rollups served by the stats endpoints and the
// bot's stats command. InvitedMembers duplicates UniqueUsers (distinct
// invitees) for backward compatibility with older dashboard consumers;
// TotalJoins counts every record including rejoins.
type UserStats struct {
	UserID         string `json:"userId"`
	TotalInvites   int64  `json:"totalInvites"`
	InvitedMembers int64  `json:"invitedMembers"`
	TotalJoins     int64  `json:"totalJoins"`
	UniqueUsers    int64  `json:"uniqueUsers"`
	ActiveInvites  int64  `json:"activeInvites"`
}

// LeaderboardEntry ranks an inviter by distinct invitees, not raw joins, so
// inviting one person repeatedly does not inflate the position.
type LeaderboardEntry struct {
	InviterID      string `json:"inviterId"`
	InvitedMembers int64  `json:"invitedMembers"`
	TotalJoins     int64  `json:"totalJoins"`
	UniqueUsers    int64  `json:"uniqueUsers"`
}

// SyncResult tallies one full reconciliation pass over a guild's live invites.
type SyncResult struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ClearResult reports how many documents a guild data wipe removed.
type ClearResult struct {
	InvitesDeleted         int64 `json:"invitesDeleted"`
	JoinsDeleted           int64 `json:"joinsDeleted"`
	PersonalInvitesDeleted int64 `json:"personalInvitesDeleted"`
}

// DebugInfo is the diagnostic snapshot served by the debug endpoint:
// collection counts plus a handful of sample documents.
type DebugInfo struct {
	GuildID           string        `json:"guildId"`
	Summary           DebugSummary  `json:"summary"`
	SampleInvites     []*Invite     `json:"sampleInvites"`
	SampleJoinRecords []*JoinRecord `json:"sampleJoinRecords"`
}

type DebugSummary struct {
	TotalInvites     int64 `json:"totalInvites"`
	TotalJoinRecords int64 `json:"totalJoinRecords"`
}

// DateRange bounds join queries; either side may be nil for open-ended.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range (inclusive bounds).
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}
