package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"invitetracker/entity"
)

func textChannel(id string) *entity.GuildChannel {
	return &entity.GuildChannel{ID: id, Text: true}
}

func TestCreatePersonalInviteRegistersAndMirrors(t *testing.T) {
	trk, store, provider := newTestTracker()
	provider.channels["g1"] = []*entity.GuildChannel{textChannel("ch1")}
	provider.nextCode = "xyz123"

	personal, err := trk.CreatePersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.NotNil(t, personal)
	require.Equal(t, "xyz123", personal.InviteCode)
	require.Equal(t, "https://discord.gg/xyz123", personal.URL())

	// The mirrored invite record belongs to the user, not the bot.
	inv, err := store.GetInvite("g1", "xyz123")
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.Equal(t, "u1", inv.InviterID)
	require.Contains(t, trk.cache.Snapshot("g1"), "xyz123")
}

func TestCreatePersonalInviteSecondCallIsNoOp(t *testing.T) {
	trk, store, provider := newTestTracker()
	provider.channels["g1"] = []*entity.GuildChannel{textChannel("ch1")}
	provider.nextCode = "first"

	created, err := trk.CreatePersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.NotNil(t, created)

	provider.nextCode = "second"
	again, err := trk.CreatePersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.Nil(t, again)

	existing, err := store.GetPersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.Equal(t, "first", existing.InviteCode)
}

func TestCreatePersonalInviteNoChannelSoftFails(t *testing.T) {
	trk, store, provider := newTestTracker()
	provider.channels["g1"] = []*entity.GuildChannel{
		{ID: "voice1", Text: false},
	}

	personal, err := trk.CreatePersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.Nil(t, personal)

	existing, err := store.GetPersonalInvite("g1", "u1")
	require.NoError(t, err)
	require.Nil(t, existing)
}

func TestPickInviteChannelPrefersConfigured(t *testing.T) {
	trk, _, provider := newTestTracker()
	trk.SetInviteChannel("wanted")
	provider.channels["g1"] = []*entity.GuildChannel{
		textChannel("other"),
		{ID: "system", Text: true, System: true},
		textChannel("wanted"),
	}

	channelID, err := trk.pickInviteChannel("g1")
	require.NoError(t, err)
	require.Equal(t, "wanted", channelID)
}

func TestPickInviteChannelFallsBackToSystemThenFirstText(t *testing.T) {
	trk, _, provider := newTestTracker()
	provider.channels["g1"] = []*entity.GuildChannel{
		textChannel("first"),
		{ID: "system", Text: true, System: true},
	}

	channelID, err := trk.pickInviteChannel("g1")
	require.NoError(t, err)
	require.Equal(t, "system", channelID)

	provider.channels["g1"] = []*entity.GuildChannel{
		{ID: "voice", Text: false, System: true},
		textChannel("first"),
	}
	channelID, err = trk.pickInviteChannel("g1")
	require.NoError(t, err)
	require.Equal(t, "first", channelID)
}
