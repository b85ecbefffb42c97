package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"invitetracker/lib/sl"
)

const embedColor = 0x5865F2

// replyEphemeral answers an interaction with a message only the invoking user
// can see.
func (b *Bot) replyEphemeral(i *discordgo.InteractionCreate, content string, embeds ...*discordgo.MessageEmbed) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Error("responding to interaction", sl.Err(err))
	}
}

func (b *Bot) replyError(i *discordgo.InteractionCreate) {
	b.replyEphemeral(i, "Something went wrong, please try again later.")
}

// interactionUser works for both guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// memberName resolves a display name for dashboards, falling back to a raw
// mention when the member cannot be fetched (left the guild, missing intent).
func (b *Bot) memberName(guildID, userID string) string {
	member, err := b.session.State.Member(guildID, userID)
	if err != nil {
		member, err = b.session.GuildMember(guildID, userID)
	}
	if err != nil || member == nil || member.User == nil {
		return fmt.Sprintf("<@%s>", userID)
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}
