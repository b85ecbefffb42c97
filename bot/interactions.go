package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"invitetracker/lib/sl"
)

const (
	buttonCheckLink    = "invite_ui_check_link"
	buttonGenerateLink = "generate_invite_link"
	buttonMyCount      = "invite_ui_my_count"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		b.handleButton(i)
	}
}

func (b *Bot) handleButton(i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	logger := b.log.With(
		sl.Guild(i.GuildID),
		slog.String("user_id", user.ID),
		slog.String("button", i.MessageComponentData().CustomID),
	)

	switch i.MessageComponentData().CustomID {
	case buttonCheckLink:
		b.buttonCheckLink(i, user, logger)
	case buttonGenerateLink:
		b.buttonGenerateLink(i, user, logger)
	case buttonMyCount:
		b.buttonMyCount(i, user, logger)
	}
}

func (b *Bot) buttonCheckLink(i *discordgo.InteractionCreate, user *discordgo.User, logger *slog.Logger) {
	personal, err := b.tracker.PersonalInvite(i.GuildID, user.ID)
	if err != nil {
		logger.Error("checking personal invite", sl.Err(err))
		b.replyError(i)
		return
	}
	if personal == nil {
		b.replyEphemeral(i, "You don't have a personal invite link yet. Press **Generate Invite Link** to create one.")
		return
	}
	b.replyEphemeral(i, fmt.Sprintf("Your personal invite link: %s", personal.URL()))
}

func (b *Bot) buttonGenerateLink(i *discordgo.InteractionCreate, user *discordgo.User, logger *slog.Logger) {
	personal, err := b.tracker.PersonalInvite(i.GuildID, user.ID)
	if err != nil {
		logger.Error("looking up personal invite", sl.Err(err))
		b.replyError(i)
		return
	}
	if personal != nil {
		// One link per user per guild, repeat presses return the same one.
		b.replyEphemeral(i, fmt.Sprintf("You already have a personal invite link: %s", personal.URL()))
		return
	}

	created, err := b.tracker.CreatePersonalInvite(i.GuildID, user.ID)
	if err != nil {
		logger.Error("creating personal invite", sl.Err(err))
		b.replyError(i)
		return
	}
	if created == nil {
		b.replyEphemeral(i, "Could not create an invite link right now, please try again later.")
		return
	}

	logger.Info("personal invite created", slog.String("code", created.InviteCode))
	b.replyEphemeral(i, fmt.Sprintf("Here is your personal invite link: %s\nShare it to get credit for everyone who joins through it.", created.URL()))
}

func (b *Bot) buttonMyCount(i *discordgo.InteractionCreate, user *discordgo.User, logger *slog.Logger) {
	userStats, err := b.tracker.UserStats(i.GuildID, user.ID, nil)
	if err != nil {
		logger.Error("getting user stats", sl.Err(err))
		b.replyError(i)
		return
	}
	b.replyEphemeral(i, fmt.Sprintf(
		"You have invited **%d** distinct members (%d joins total).",
		userStats.InvitedMembers, userStats.TotalJoins,
	))
}

// controlComponents is the button row attached to the control embed.
func controlComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Check My Link",
					Style:    discordgo.SecondaryButton,
					CustomID: buttonCheckLink,
				},
				discordgo.Button{
					Label:    "Generate Invite Link",
					Style:    discordgo.PrimaryButton,
					CustomID: buttonGenerateLink,
				},
				discordgo.Button{
					Label:    "My Invite Count",
					Style:    discordgo.SecondaryButton,
					CustomID: buttonMyCount,
				},
			},
		},
	}
}
