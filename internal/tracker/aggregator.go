package tracker

import (
	"sort"
	"time"

	"invitetracker/entity"
	"invitetracker/lib/clock"
)

// UserStats computes the per-user rollups: invites owned, attributable joins
// (optionally date-bounded), distinct invitees and currently active invites.
func (t *Tracker) UserStats(guildID, userID string, dateRange *entity.DateRange) (*entity.UserStats, error) {
	invites, err := t.store.FindInvitesByInviter(guildID, userID)
	if err != nil {
		return nil, err
	}

	filter := entity.JoinFilter{GuildID: guildID, InviterID: userID, PersonalOnly: true}
	if dateRange != nil {
		filter.From = dateRange.From
		filter.To = dateRange.To
	}
	joins, err := t.store.FindJoins(filter)
	if err != nil {
		return nil, err
	}

	now := t.now()
	var active int64
	for _, inv := range invites {
		if inv.IsActive(now) {
			active++
		}
	}

	unique := make(map[string]struct{}, len(joins))
	for _, join := range joins {
		unique[join.UserID] = struct{}{}
	}

	return &entity.UserStats{
		UserID:         userID,
		TotalInvites:   int64(len(invites)),
		InvitedMembers: int64(len(unique)),
		TotalJoins:     int64(len(joins)),
		UniqueUsers:    int64(len(unique)),
		ActiveInvites:  active,
	}, nil
}

// Leaderboard ranks the guild's inviters over the whole join history.
func (t *Tracker) Leaderboard(guildID string, limit int) ([]*entity.LeaderboardEntry, error) {
	return t.leaderboard(guildID, limit, nil, nil)
}

// LeaderboardForMonth ranks inviters over one calendar month in server-local
// time. Month is 1-based.
func (t *Tracker) LeaderboardForMonth(guildID string, year, month, limit int) ([]*entity.LeaderboardEntry, error) {
	start, next := clock.MonthRange(year, month)
	end := next.Add(-time.Millisecond)
	return t.leaderboard(guildID, limit, &start, &end)
}

func (t *Tracker) leaderboard(guildID string, limit int, from, to *time.Time) ([]*entity.LeaderboardEntry, error) {
	joins, err := t.store.FindJoins(entity.JoinFilter{
		GuildID:      guildID,
		PersonalOnly: true,
		From:         from,
		To:           to,
	})
	if err != nil {
		return nil, err
	}
	return rankInviters(joins, limit), nil
}

// rankInviters groups joins by inviter, counting distinct invitees and total
// joins, and sorts by unique invitees so repeat joins by one user do not
// inflate a position. Total joins break ties for stable presentation.
func rankInviters(joins []*entity.JoinRecord, limit int) []*entity.LeaderboardEntry {
	totals := make(map[string]int64)
	invitees := make(map[string]map[string]struct{})
	for _, join := range joins {
		totals[join.InviterID]++
		set, ok := invitees[join.InviterID]
		if !ok {
			set = make(map[string]struct{})
			invitees[join.InviterID] = set
		}
		set[join.UserID] = struct{}{}
	}

	entries := make([]*entity.LeaderboardEntry, 0, len(totals))
	for inviterID, total := range totals {
		unique := int64(len(invitees[inviterID]))
		entries = append(entries, &entity.LeaderboardEntry{
			InviterID:      inviterID,
			InvitedMembers: unique,
			TotalJoins:     total,
			UniqueUsers:    unique,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UniqueUsers != entries[j].UniqueUsers {
			return entries[i].UniqueUsers > entries[j].UniqueUsers
		}
		if entries[i].TotalJoins != entries[j].TotalJoins {
			return entries[i].TotalJoins > entries[j].TotalJoins
		}
		return entries[i].InviterID < entries[j].InviterID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// LastJoins returns the latest attributable joins in the guild, newest first.
// Feeds the status log embed.
func (t *Tracker) LastJoins(guildID string, limit int) ([]*entity.JoinRecord, error) {
	return t.store.FindJoins(entity.JoinFilter{
		GuildID:      guildID,
		PersonalOnly: true,
		Limit:        int64(limit),
	})
}

// Joins serves the filtered join-history queries of the REST API.
func (t *Tracker) Joins(f entity.JoinFilter) ([]*entity.JoinRecord, error) {
	return t.store.FindJoins(f)
}

// UserInvites lists a user's invites newest first, together with their
// personal invite registration when one exists. An empty guildID spans all
// guilds; the registration is per guild, so it is only looked up for a
// guild-scoped query.
func (t *Tracker) UserInvites(guildID, userID string) ([]*entity.Invite, *entity.PersonalInviteInfo, error) {
	invites, err := t.store.FindInvitesByInviter(guildID, userID)
	if err != nil {
		return nil, nil, err
	}
	if guildID == "" {
		return invites, nil, nil
	}
	personal, err := t.store.GetPersonalInvite(guildID, userID)
	if err != nil {
		return nil, nil, err
	}
	var info *entity.PersonalInviteInfo
	if personal != nil {
		info = personal.Info()
	}
	return invites, info, nil
}

// GuildTotals reports guild-wide invite and join counts for the dashboard.
func (t *Tracker) GuildTotals(guildID string) (invites, joins int64, err error) {
	invites, err = t.store.CountGuildInvites(guildID)
	if err != nil {
		return 0, 0, err
	}
	joins, err = t.store.CountJoins(entity.JoinFilter{GuildID: guildID})
	if err != nil {
		return 0, 0, err
	}
	return invites, joins, nil
}

// DebugInfo assembles the diagnostic snapshot for the debug endpoint.
func (t *Tracker) DebugInfo(guildID string) (*entity.DebugInfo, error) {
	inviteCount, err := t.store.CountGuildInvites(guildID)
	if err != nil {
		return nil, err
	}
	joinCount, err := t.store.CountJoins(entity.JoinFilter{GuildID: guildID})
	if err != nil {
		return nil, err
	}
	sampleInvites, err := t.store.FindGuildInvites(guildID, 5)
	if err != nil {
		return nil, err
	}
	sampleJoins, err := t.store.FindJoins(entity.JoinFilter{GuildID: guildID, Limit: 5})
	if err != nil {
		return nil, err
	}

	return &entity.DebugInfo{
		GuildID: guildID,
		Summary: entity.DebugSummary{
			TotalInvites:     inviteCount,
			TotalJoinRecords: joinCount,
		},
		SampleInvites:     sampleInvites,
		SampleJoinRecords: sampleJoins,
	}, nil
}
