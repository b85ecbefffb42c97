package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"invitetracker/entity"
)

func seedJoin(store *fakeStore, guildID, inviterID, userID string, joinedAt time.Time) {
	_ = store.InsertJoin(&entity.JoinRecord{
		UserID:           userID,
		InviterID:        inviterID,
		InviteCode:       "code-" + inviterID,
		GuildID:          guildID,
		JoinedAt:         joinedAt,
		IsPersonalInvite: true,
	})
}

func TestLeaderboardRanksByUniqueInvitees(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// Inviter A: 5 joins but only 3 distinct users (one rejoined twice).
	seedJoin(store, "g1", "A", "u1", base)
	seedJoin(store, "g1", "A", "u1", base.Add(time.Hour))
	seedJoin(store, "g1", "A", "u1", base.Add(2*time.Hour))
	seedJoin(store, "g1", "A", "u2", base)
	seedJoin(store, "g1", "A", "u3", base)
	// Inviter B: 4 joins, 4 distinct users.
	seedJoin(store, "g1", "B", "u4", base)
	seedJoin(store, "g1", "B", "u5", base)
	seedJoin(store, "g1", "B", "u6", base)
	seedJoin(store, "g1", "B", "u7", base)

	entries, err := trk.Leaderboard("g1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "B", entries[0].InviterID)
	require.Equal(t, int64(4), entries[0].InvitedMembers)
	require.Equal(t, int64(4), entries[0].TotalJoins)

	require.Equal(t, "A", entries[1].InviterID)
	require.Equal(t, int64(3), entries[1].InvitedMembers)
	require.Equal(t, int64(5), entries[1].TotalJoins)
}

func TestLeaderboardTieBreaksOnTotalJoinsThenID(t *testing.T) {
	entries := rankInviters([]*entity.JoinRecord{
		{InviterID: "B", UserID: "u1", IsPersonalInvite: true},
		{InviterID: "B", UserID: "u1", IsPersonalInvite: true},
		{InviterID: "A", UserID: "u2", IsPersonalInvite: true},
		{InviterID: "C", UserID: "u3", IsPersonalInvite: true},
	}, 0)

	require.Len(t, entries, 3)
	require.Equal(t, "B", entries[0].InviterID)
	require.Equal(t, "A", entries[1].InviterID)
	require.Equal(t, "C", entries[2].InviterID)
}

func TestLeaderboardLimitTruncates(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Now()
	seedJoin(store, "g1", "A", "u1", base)
	seedJoin(store, "g1", "B", "u2", base)
	seedJoin(store, "g1", "C", "u3", base)

	entries, err := trk.Leaderboard("g1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestLeaderboardForMonthBoundsWindow(t *testing.T) {
	trk, store, _ := newTestTracker()

	inMonth := time.Date(2026, 2, 14, 10, 0, 0, 0, time.Local)
	before := time.Date(2026, 1, 31, 23, 59, 0, 0, time.Local)
	after := time.Date(2026, 3, 1, 0, 0, 1, 0, time.Local)
	seedJoin(store, "g1", "A", "u1", inMonth)
	seedJoin(store, "g1", "A", "u2", before)
	seedJoin(store, "g1", "A", "u3", after)

	entries, err := trk.LeaderboardForMonth("g1", 2026, 2, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(1), entries[0].TotalJoins)
}

func TestUserStatsCountsActiveAndUnique(t *testing.T) {
	trk, store, _ := newTestTracker()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	trk.now = func() time.Time { return now }

	expired := now.Add(-time.Hour)
	maxedOut := int64(2)
	require.NoError(t, store.UpsertInvite(&entity.Invite{
		Code: "open", InviterID: "A", GuildID: "g1", Uses: 5, CreatedAt: now.Add(-72 * time.Hour),
	}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{
		Code: "expired", InviterID: "A", GuildID: "g1", ExpiresAt: &expired, CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{
		Code: "maxed", InviterID: "A", GuildID: "g1", Uses: 2, MaxUses: &maxedOut, CreatedAt: now.Add(-24 * time.Hour),
	}))

	seedJoin(store, "g1", "A", "u1", now.Add(-time.Hour))
	seedJoin(store, "g1", "A", "u1", now.Add(-2*time.Hour))
	seedJoin(store, "g1", "A", "u2", now.Add(-3*time.Hour))

	userStats, err := trk.UserStats("g1", "A", nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), userStats.TotalInvites)
	require.Equal(t, int64(1), userStats.ActiveInvites)
	require.Equal(t, int64(3), userStats.TotalJoins)
	require.Equal(t, int64(2), userStats.UniqueUsers)
	// Distinct invitees, not raw joins: one rejoin must not inflate the count.
	require.Equal(t, int64(2), userStats.InvitedMembers)
}

func TestUserStatsDateRangeFilters(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedJoin(store, "g1", "A", "u1", base.Add(-48*time.Hour))
	seedJoin(store, "g1", "A", "u2", base)

	from := base.Add(-24 * time.Hour)
	userStats, err := trk.UserStats("g1", "A", &entity.DateRange{From: &from})
	require.NoError(t, err)
	require.Equal(t, int64(1), userStats.TotalJoins)
}

func TestUserStatsEmptyGuildSpansAllGuilds(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "a", InviterID: "A", GuildID: "g1"}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "b", InviterID: "A", GuildID: "g2"}))
	seedJoin(store, "g1", "A", "u1", base)
	seedJoin(store, "g2", "A", "u2", base)

	userStats, err := trk.UserStats("", "A", nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), userStats.TotalInvites)
	require.Equal(t, int64(2), userStats.TotalJoins)
	require.Equal(t, int64(2), userStats.InvitedMembers)
}

func TestUserInvitesEmptyGuildOmitsPersonalLink(t *testing.T) {
	trk, store, _ := newTestTracker()

	registerPersonal(store, "g1", "A", "abc")
	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "abc", InviterID: "A", GuildID: "g1"}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "def", InviterID: "A", GuildID: "g2"}))

	invites, personal, err := trk.UserInvites("", "A")
	require.NoError(t, err)
	require.Len(t, invites, 2)
	require.Nil(t, personal)

	invites, personal, err = trk.UserInvites("g1", "A")
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.NotNil(t, personal)
	require.Equal(t, "abc", personal.InviteCode)
}

func TestLastJoinsNewestFirst(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedJoin(store, "g1", "A", "u1", base)
	seedJoin(store, "g1", "B", "u2", base.Add(time.Hour))
	seedJoin(store, "g1", "C", "u3", base.Add(2*time.Hour))

	joins, err := trk.LastJoins("g1", 2)
	require.NoError(t, err)
	require.Len(t, joins, 2)
	require.Equal(t, "u3", joins[0].UserID)
	require.Equal(t, "u2", joins[1].UserID)
}

func TestGuildTotals(t *testing.T) {
	trk, store, _ := newTestTracker()

	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "a", InviterID: "A", GuildID: "g1"}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "b", InviterID: "B", GuildID: "g1"}))
	require.NoError(t, store.UpsertInvite(&entity.Invite{Code: "c", InviterID: "C", GuildID: "g2"}))
	seedJoin(store, "g1", "A", "u1", time.Now())

	invites, joins, err := trk.GuildTotals("g1")
	require.NoError(t, err)
	require.Equal(t, int64(2), invites)
	require.Equal(t, int64(1), joins)
}

func TestDebugInfoSamplesAreCapped(t *testing.T) {
	trk, store, _ := newTestTracker()
	base := time.Now()

	for i := 0; i < 8; i++ {
		code := string(rune('a' + i))
		require.NoError(t, store.UpsertInvite(&entity.Invite{
			Code: code, InviterID: "A", GuildID: "g1", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
		seedJoin(store, "g1", "A", "u"+code, base.Add(time.Duration(i)*time.Minute))
	}

	info, err := trk.DebugInfo("g1")
	require.NoError(t, err)
	require.Equal(t, int64(8), info.Summary.TotalInvites)
	require.Equal(t, int64(8), info.Summary.TotalJoinRecords)
	require.Len(t, info.SampleInvites, 5)
	require.Len(t, info.SampleJoinRecords, 5)
}
