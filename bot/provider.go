package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"invitetracker/entity"
)

// Provider adapts the gateway session to the tracker's view of live guild
// state. All calls hit the Discord REST API except the guild lookup, which
// prefers the state cache.
type Provider struct {
	session *discordgo.Session
}

func NewProvider(session *discordgo.Session) *Provider {
	return &Provider{session: session}
}

func (p *Provider) FetchInvites(guildID string) ([]*entity.GuildInvite, error) {
	invites, err := p.session.GuildInvites(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetching guild invites: %w", err)
	}

	result := make([]*entity.GuildInvite, 0, len(invites))
	for _, inv := range invites {
		result = append(result, convertInvite(inv))
	}
	return result, nil
}

func (p *Provider) GuildChannels(guildID string) ([]*entity.GuildChannel, error) {
	channels, err := p.session.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetching guild channels: %w", err)
	}

	systemChannelID := ""
	if guild, err := p.guild(guildID); err == nil {
		systemChannelID = guild.SystemChannelID
	}

	result := make([]*entity.GuildChannel, 0, len(channels))
	for _, ch := range channels {
		result = append(result, &entity.GuildChannel{
			ID:     ch.ID,
			Text:   ch.Type == discordgo.ChannelTypeGuildText,
			System: ch.ID == systemChannelID,
		})
	}
	return result, nil
}

func (p *Provider) CreateChannelInvite(channelID string) (*entity.GuildInvite, error) {
	inv, err := p.session.ChannelInviteCreate(channelID, discordgo.Invite{
		MaxAge:    0,
		MaxUses:   0,
		Temporary: false,
		Unique:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating channel invite: %w", err)
	}
	return convertInvite(inv), nil
}

func (p *Provider) guild(guildID string) (*discordgo.Guild, error) {
	if guild, err := p.session.State.Guild(guildID); err == nil {
		return guild, nil
	}
	return p.session.Guild(guildID)
}

func convertInvite(inv *discordgo.Invite) *entity.GuildInvite {
	result := &entity.GuildInvite{
		Code:      inv.Code,
		Uses:      int64(inv.Uses),
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
	}
	if inv.Inviter != nil {
		result.InviterID = inv.Inviter.ID
	}
	if inv.MaxUses > 0 {
		maxUses := int64(inv.MaxUses)
		result.MaxUses = &maxUses
	}
	return result
}
