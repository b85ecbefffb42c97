package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"invitetracker/entity"
	"invitetracker/lib/sl"
)

const (
	dashboardTitle   = "Invite Dashboard"
	leaderboardTitle = "Invite Leaderboard"
	monthlyTitle     = "Monthly Leaderboard"
	controlTitle     = "Personal Invite Links"

	dashboardPeriod = 5 * time.Minute
	dashboardDelay  = 15 * time.Second
)

// Dashboard maintains the pinned guild embeds: a stats dashboard with recent
// joins, all-time and monthly leaderboards, and the control message with the
// invite buttons. Messages are found by embed title and edited in place, so
// restarts do not litter the channels.
type Dashboard struct {
	bot  *Bot
	log  *slog.Logger
	stop chan struct{}
}

func NewDashboard(b *Bot) *Dashboard {
	return &Dashboard{
		bot:  b,
		log:  b.log.With(sl.Module("dashboard")),
		stop: make(chan struct{}),
	}
}

func (d *Dashboard) Start() {
	go d.run()
}

func (d *Dashboard) Stop() {
	close(d.stop)
}

func (d *Dashboard) run() {
	// First refresh waits for the ready burst of guild syncs to settle.
	timer := time.NewTimer(dashboardDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-d.stop:
		return
	}

	ticker := time.NewTicker(dashboardPeriod)
	defer ticker.Stop()
	for {
		d.refresh()
		select {
		case <-ticker.C:
		case <-d.stop:
			return
		}
	}
}

// refresh drives each configured channel with the data of the guild owning
// that channel, so the embeds never mix guilds.
func (d *Dashboard) refresh() {
	if channelID := d.bot.conf.InviteUIChannelID; channelID != "" {
		if guildID := d.channelGuild(channelID); guildID != "" {
			d.ensureControlMessage(channelID)
			d.updateDashboard(guildID, channelID)
		}
	}
	if channelID := d.bot.conf.LeaderboardChannelID; channelID != "" {
		if guildID := d.channelGuild(channelID); guildID != "" {
			d.updateLeaderboards(guildID, channelID)
		}
	}
}

// channelGuild resolves the guild owning a channel, preferring the state
// cache. Empty when the channel is unknown to the session.
func (d *Dashboard) channelGuild(channelID string) string {
	if ch, err := d.bot.session.State.Channel(channelID); err == nil {
		return ch.GuildID
	}
	ch, err := d.bot.session.Channel(channelID)
	if err != nil {
		d.log.Error("resolving channel guild", slog.String("channel_id", channelID), sl.Err(err))
		return ""
	}
	return ch.GuildID
}

// ensureControlMessage posts the button message once; the buttons carry no
// state, so an existing message never needs editing.
func (d *Dashboard) ensureControlMessage(channelID string) {
	if existing, err := d.findByTitle(channelID, controlTitle); err != nil || existing != nil {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       controlTitle,
		Color:       embedColor,
		Description: "Generate your personal invite link and track who joins through it.",
	}
	_, err := d.bot.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: controlComponents(),
	})
	if err != nil {
		d.log.Error("posting control message", slog.String("channel_id", channelID), sl.Err(err))
	}
}

func (d *Dashboard) updateDashboard(guildID, channelID string) {
	invites, joins, err := d.bot.tracker.GuildTotals(guildID)
	if err != nil {
		d.log.Error("getting guild totals", sl.Guild(guildID), sl.Err(err))
		return
	}
	recent, err := d.bot.tracker.LastJoins(guildID, 10)
	if err != nil {
		d.log.Error("getting recent joins", sl.Guild(guildID), sl.Err(err))
		return
	}

	var lines []string
	for _, rec := range recent {
		lines = append(lines, fmt.Sprintf("<@%s> joined via `%s` (invited by %s)",
			rec.UserID, rec.InviteCode, d.bot.memberName(guildID, rec.InviterID)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No joins recorded yet")
	}

	embed := &discordgo.MessageEmbed{
		Title: dashboardTitle,
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tracked Invites", Value: fmt.Sprintf("%d", invites), Inline: true},
			{Name: "Recorded Joins", Value: fmt.Sprintf("%d", joins), Inline: true},
			{Name: "Recent Joins", Value: strings.Join(lines, "\n")},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	d.upsertEmbed(channelID, dashboardTitle, embed)
}

func (d *Dashboard) updateLeaderboards(guildID, channelID string) {
	allTime, err := d.bot.tracker.Leaderboard(guildID, 10)
	if err != nil {
		d.log.Error("getting leaderboard", sl.Guild(guildID), sl.Err(err))
		return
	}
	now := time.Now()
	monthly, err := d.bot.tracker.LeaderboardForMonth(guildID, now.Year(), int(now.Month()), 10)
	if err != nil {
		d.log.Error("getting monthly leaderboard", sl.Guild(guildID), sl.Err(err))
		return
	}

	d.upsertEmbed(channelID, leaderboardTitle, &discordgo.MessageEmbed{
		Title:       leaderboardTitle,
		Color:       embedColor,
		Description: d.leaderboardBody(guildID, allTime),
		Timestamp:   now.UTC().Format(time.RFC3339),
	})
	d.upsertEmbed(channelID, monthlyTitle, &discordgo.MessageEmbed{
		Title:       monthlyTitle,
		Color:       embedColor,
		Description: fmt.Sprintf("%s %d\n\n%s", now.Month(), now.Year(), d.leaderboardBody(guildID, monthly)),
		Timestamp:   now.UTC().Format(time.RFC3339),
	})
}

func (d *Dashboard) leaderboardBody(guildID string, entries []*entity.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No invites recorded yet"
	}
	var lines []string
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("**%d.** %s — %d members (%d joins)",
			i+1, d.bot.memberName(guildID, entry.InviterID), entry.InvitedMembers, entry.TotalJoins))
	}
	return strings.Join(lines, "\n")
}

// upsertEmbed edits the existing message carrying the titled embed, or posts a
// new one when none is found in the recent channel history.
func (d *Dashboard) upsertEmbed(channelID, title string, embed *discordgo.MessageEmbed) {
	existing, err := d.findByTitle(channelID, title)
	if err != nil {
		d.log.Error("searching channel messages", slog.String("channel_id", channelID), sl.Err(err))
		return
	}

	embeds := []*discordgo.MessageEmbed{embed}
	if existing != nil {
		_, err = d.bot.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: channelID,
			ID:      existing.ID,
			Embeds:  &embeds,
		})
	} else {
		_, err = d.bot.session.ChannelMessageSendEmbed(channelID, embed)
	}
	if err != nil {
		d.log.Error("updating embed",
			slog.String("channel_id", channelID),
			slog.String("title", title),
			sl.Err(err),
		)
	}
}

func (d *Dashboard) findByTitle(channelID, title string) (*discordgo.Message, error) {
	messages, err := d.bot.session.ChannelMessages(channelID, 50, "", "", "")
	if err != nil {
		return nil, err
	}
	botID := d.bot.session.State.User.ID
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != botID {
			continue
		}
		for _, embed := range msg.Embeds {
			if embed.Title == title {
				return msg, nil
			}
		}
	}
	return nil, nil
}
