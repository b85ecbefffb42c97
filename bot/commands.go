package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"invitetracker/lib/sl"
)

const (
	commandInviteStats = "invite-stats"
	commandSyncInvites = "sync-invites"
)

func (b *Bot) registerCommands() error {
	manageGuild := int64(discordgo.PermissionManageServer)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        commandInviteStats,
			Description: "Show invite statistics for a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to look up, defaults to you",
					Required:    false,
				},
			},
		},
		{
			Name:                     commandSyncInvites,
			Description:              "Re-sync tracked invites with the server, optionally clearing test data first",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "clear-test-data",
					Description: "Delete all tracked data for a guild before syncing",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "test-guild-id",
					Description: "Guild to clear, defaults to this one",
					Required:    false,
				},
			},
		},
	}

	for _, cmd := range commands {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("registering command %s: %w", cmd.Name, err)
		}
		b.registeredCommands = append(b.registeredCommands, created)
	}
	b.log.Info("commands registered", slog.Int("count", len(b.registeredCommands)))
	return nil
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case commandInviteStats:
		b.commandInviteStats(i, data)
	case commandSyncInvites:
		b.commandSyncInvites(i, data)
	}
}

func (b *Bot) commandInviteStats(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := interactionUser(i)
	for _, opt := range data.Options {
		if opt.Name == "user" {
			target = opt.UserValue(b.session)
		}
	}
	if target == nil {
		b.replyError(i)
		return
	}
	logger := b.log.With(sl.Guild(i.GuildID), slog.String("user_id", target.ID))

	userStats, err := b.tracker.UserStats(i.GuildID, target.ID, nil)
	if err != nil {
		logger.Error("getting invite stats", sl.Err(err))
		b.replyError(i)
		return
	}
	invites, personal, err := b.tracker.UserInvites(i.GuildID, target.ID)
	if err != nil {
		logger.Error("listing user invites", sl.Err(err))
		b.replyError(i)
		return
	}

	now := time.Now()
	var lines []string
	for idx, inv := range invites {
		if idx == 5 {
			break
		}
		marker := "expired"
		if inv.IsActive(now) {
			marker = "active"
		}
		lines = append(lines, fmt.Sprintf("`%s` — %d uses (%s)", inv.Code, inv.Uses, marker))
	}
	if len(lines) == 0 {
		lines = append(lines, "No tracked invites")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Invite Stats — %s", target.Username),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Invited Members", Value: fmt.Sprintf("%d", userStats.InvitedMembers), Inline: true},
			{Name: "Total Joins", Value: fmt.Sprintf("%d", userStats.TotalJoins), Inline: true},
			{Name: "Active Invites", Value: fmt.Sprintf("%d", userStats.ActiveInvites), Inline: true},
			{Name: "Recent Invites", Value: strings.Join(lines, "\n")},
		},
	}
	if personal != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Personal Link", Value: personal.URL,
		})
	}
	b.replyEphemeral(i, "", embed)
}

func (b *Bot) commandSyncInvites(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	logger := b.log.With(sl.Guild(i.GuildID), slog.String("command", commandSyncInvites))

	clearData := false
	clearGuildID := i.GuildID
	for _, opt := range data.Options {
		switch opt.Name {
		case "clear-test-data":
			clearData = opt.BoolValue()
		case "test-guild-id":
			if opt.StringValue() != "" {
				clearGuildID = opt.StringValue()
			}
		}
	}

	// Sync can take a while on guilds with many invites.
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logger.Error("deferring response", sl.Err(err))
		return
	}

	var cleared string
	if clearData {
		result, err := b.tracker.ClearGuildData(clearGuildID)
		if err != nil {
			logger.Error("clearing guild data", sl.Err(err))
			b.editReply(i, "Failed to clear tracked data.")
			return
		}
		cleared = fmt.Sprintf("Cleared %d invites, %d joins, %d personal links.\n",
			result.InvitesDeleted, result.JoinsDeleted, result.PersonalInvitesDeleted)
	}

	result, err := b.tracker.SyncGuildInvites(i.GuildID)
	if err != nil {
		logger.Error("syncing invites", sl.Err(err))
		b.editReply(i, cleared+"Failed to sync invites.")
		return
	}

	b.editReply(i, fmt.Sprintf(
		"%sSynced %d of %d invites: %d created, %d updated, %d skipped.",
		cleared, result.Synced, result.Total, result.Created, result.Updated, result.Skipped,
	))
}

func (b *Bot) editReply(i *discordgo.InteractionCreate, content string) {
	_, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	if err != nil {
		b.log.Error("editing interaction response", sl.Err(err))
	}
}
