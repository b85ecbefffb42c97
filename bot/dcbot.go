// Package bot implements the Discord side of invite tracking.
//
// Architecture overview:
//   - dcbot.go       — Bot struct, lifecycle (Start/Stop), gateway wiring
//   - provider.go    — tracker.Provider implementation over the gateway session
//   - events.go      — Gateway events: ready, guild create, member add, invite create
//   - commands.go    — Slash commands: /invite-stats, /sync-invites
//   - interactions.go — Control buttons: check link, generate link, my count
//   - dashboard.go   — Periodic leaderboard, status log and control embeds
//   - helpers.go     — Ephemeral replies, member names, embed utilities
//
// Data flow for a member join:
//
//	guildMemberAdd → tracker.TrackMemberJoin (fetch invites, resolve delta,
//	registry check, dedup, persist) → next status-log tick shows the result.
//
// Every event handler swallows its own errors; a failing handler answers with
// a generic ephemeral message and never takes the gateway loop down.
package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"invitetracker/internal/config"
	"invitetracker/internal/tracker"
	"invitetracker/lib/sl"
)

type Bot struct {
	log     *slog.Logger
	session *discordgo.Session
	tracker *tracker.Tracker
	conf    config.DiscordConfig

	dashboard *Dashboard

	registeredCommands []*discordgo.ApplicationCommand
}

func New(conf config.DiscordConfig, trk *tracker.Tracker, log *slog.Logger) (*Bot, error) {
	if conf.Token == "" {
		return nil, fmt.Errorf("discord token is empty")
	}

	session, err := discordgo.New("Bot " + conf.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildInvites |
		discordgo.IntentsGuildMessages

	b := &Bot{
		log:     log.With(sl.Module("dcbot")),
		session: session,
		tracker: trk,
		conf:    conf,
	}
	b.dashboard = NewDashboard(b)

	return b, nil
}

// Session exposes the gateway session for the provider adapter.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onInviteCreate)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.log.Error("registering commands", sl.Err(err))
	}

	b.dashboard.Start()
	return nil
}

func (b *Bot) Stop() {
	b.dashboard.Stop()

	for _, cmd := range b.registeredCommands {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, "", cmd.ID); err != nil {
			b.log.Warn("removing command", slog.String("command", cmd.Name), sl.Err(err))
		}
	}

	b.log.Info("stopping discord bot")
	if err := b.session.Close(); err != nil {
		b.log.Error("closing gateway connection", sl.Err(err))
	}
}
