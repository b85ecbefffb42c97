package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"invitetracker/lib/sl"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("gateway session ready",
		slog.String("user", r.User.Username),
		slog.Int("guilds", len(r.Guilds)),
	)
	for _, guild := range r.Guilds {
		b.tracker.InitializeGuild(guild.ID)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info("guild available", sl.Guild(g.ID), slog.String("name", g.Name))
	b.tracker.InitializeGuild(g.ID)
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	b.log.Info("member joined", sl.Guild(m.GuildID), slog.String("user_id", m.User.ID))
	b.tracker.TrackMemberJoin(m.GuildID, m.User.ID)
}

func (b *Bot) onInviteCreate(s *discordgo.Session, e *discordgo.InviteCreate) {
	if e.Invite == nil {
		return
	}
	b.tracker.TrackInviteCreate(e.GuildID, convertInvite(e.Invite))
}
