package tracker

import (
	"log/slog"

	"invitetracker/entity"
	"invitetracker/lib/sl"
)

// PersonalInvite returns the user's registered invite in the guild, or nil.
func (t *Tracker) PersonalInvite(guildID, userID string) (*entity.PersonalInvite, error) {
	return t.store.GetPersonalInvite(guildID, userID)
}

// PersonalInviteByCode returns the registration owning a code, or nil.
func (t *Tracker) PersonalInviteByCode(guildID, code string) (*entity.PersonalInvite, error) {
	return t.store.GetPersonalInviteByCode(guildID, code)
}

// CreatePersonalInvite allocates the user's one tracked invite in the guild:
// a provider-side invite with no expiry and unlimited uses, registered to the
// user and mirrored as an Invite record owned by them. The registry owner
// overrides whatever inviter the provider reports for the code.
//
// Soft failures return (nil, nil): the user already owns an invite (the
// existing record is left untouched) or no eligible channel exists.
func (t *Tracker) CreatePersonalInvite(guildID, userID string) (*entity.PersonalInvite, error) {
	existing, err := t.store.GetPersonalInvite(guildID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	channelID, err := t.pickInviteChannel(guildID)
	if err != nil {
		return nil, err
	}
	if channelID == "" {
		t.log.Warn("no eligible channel for invite creation", sl.Guild(guildID))
		return nil, nil
	}

	inv, err := t.provider.CreateChannelInvite(channelID)
	if err != nil {
		return nil, err
	}

	personal := &entity.PersonalInvite{
		UserID:     userID,
		GuildID:    guildID,
		InviteCode: inv.Code,
		CreatedAt:  t.now(),
	}
	if err = t.store.InsertPersonalInvite(personal); err != nil {
		return nil, err
	}

	if err = t.store.UpsertInvite(&entity.Invite{
		Code:      inv.Code,
		InviterID: userID,
		GuildID:   guildID,
		Uses:      inv.Uses,
		MaxUses:   inv.MaxUses,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}); err != nil {
		t.log.Error("mirroring personal invite", sl.Guild(guildID), slog.String("code", inv.Code), sl.Err(err))
	}

	t.cache.Update(guildID, inv.Code, inv.Uses)
	t.log.Info("created personal invite",
		sl.Guild(guildID),
		slog.String("user_id", userID),
		slog.String("code", inv.Code),
	)
	return personal, nil
}

// pickInviteChannel applies the channel selection policy: the configured
// invite channel if text-capable, else the guild's system channel if
// text-capable, else the first text-capable channel. Empty when none qualify.
func (t *Tracker) pickInviteChannel(guildID string) (string, error) {
	channels, err := t.provider.GuildChannels(guildID)
	if err != nil {
		return "", err
	}

	var systemID, firstTextID string
	for _, ch := range channels {
		if !ch.Text {
			continue
		}
		if ch.ID == t.inviteChannelID {
			return ch.ID, nil
		}
		if ch.System && systemID == "" {
			systemID = ch.ID
		}
		if firstTextID == "" {
			firstTextID = ch.ID
		}
	}
	if systemID != "" {
		return systemID, nil
	}
	return firstTextID, nil
}
