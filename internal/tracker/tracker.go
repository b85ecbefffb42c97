// Package tracker implements invite attribution: correlating guild invite-use
// deltas with join events, deduplicating noisy notifications, and reconciling
// the in-memory cache against the persistent store.
//
// Architecture overview:
//   - tracker.go    — Tracker struct, Store/Provider interfaces, join attribution,
//     invite-create tracking, sync and guild wipe
//   - cache.go      — per-guild code→uses snapshot cache
//   - resolver.go   — use-count delta resolution
//   - registry.go   — one-invite-per-user personal invite registry
//   - aggregator.go — per-user stats, leaderboards, guild totals
//
// Error policy: the Track* entry points called from gateway event handlers
// swallow their own errors (log + safe default) so one bad event cannot abort
// the event pipeline. Query methods return errors; the REST layer maps them to
// status codes and the bot layer logs and degrades.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"invitetracker/entity"
	"invitetracker/lib/sl"
)

// Joins for the same (user, guild, code) inside this window are duplicates.
const dedupWindow = 10 * time.Second

// Store defines the persistence operations the tracker depends on.
// Implemented by internal/database/mongo.go.
type Store interface {
	Ping(ctx context.Context) error
	UpsertInvite(inv *entity.Invite) error
	GetInvite(guildID, code string) (*entity.Invite, error)
	FindInvitesByInviter(guildID, inviterID string) ([]*entity.Invite, error)
	FindGuildInvites(guildID string, limit int64) ([]*entity.Invite, error)
	CountGuildInvites(guildID string) (int64, error)
	IncrementInviteUses(guildID, code string) error
	InsertJoin(rec *entity.JoinRecord) error
	FindRecentJoin(guildID, userID, code string, since time.Time) (*entity.JoinRecord, error)
	FindJoins(f entity.JoinFilter) ([]*entity.JoinRecord, error)
	CountJoins(f entity.JoinFilter) (int64, error)
	GetPersonalInvite(guildID, userID string) (*entity.PersonalInvite, error)
	GetPersonalInviteByCode(guildID, code string) (*entity.PersonalInvite, error)
	InsertPersonalInvite(pi *entity.PersonalInvite) error
	DeleteGuildData(guildID string) (*entity.ClearResult, error)
}

// Provider is the live guild state authority (the Discord gateway client).
// Implemented by bot/provider.go.
type Provider interface {
	FetchInvites(guildID string) ([]*entity.GuildInvite, error)
	GuildChannels(guildID string) ([]*entity.GuildChannel, error)
	// CreateChannelInvite creates a provider-side invite with no expiry and
	// unlimited uses.
	CreateChannelInvite(channelID string) (*entity.GuildInvite, error)
}

// Forwarder pushes recorded joins to an external statistics API, best-effort.
type Forwarder interface {
	ForwardJoin(rec *entity.JoinRecord)
}

type Tracker struct {
	store    Store
	provider Provider
	forward  Forwarder
	cache    *Cache
	log      *slog.Logger
	now      func() time.Time

	// Preferred channel for personal invite creation; may be empty.
	inviteChannelID string

	mu         sync.Mutex
	guildLocks map[string]*sync.Mutex
}

func New(store Store, provider Provider, log *slog.Logger) *Tracker {
	return &Tracker{
		store:      store,
		provider:   provider,
		cache:      NewCache(),
		log:        log.With(sl.Module("tracker")),
		now:        time.Now,
		guildLocks: make(map[string]*sync.Mutex),
	}
}

// Ping reports persistent-store availability.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}

func (t *Tracker) SetForwarder(f Forwarder) {
	t.forward = f
}

// SetProvider wires the live guild state source after construction; the
// gateway client needs the tracker to exist before it can be built.
func (t *Tracker) SetProvider(p Provider) {
	t.provider = p
}

func (t *Tracker) SetInviteChannel(channelID string) {
	t.inviteChannelID = channelID
}

// guildLock serializes join processing per guild so that back-to-back joins
// cannot race on the cache between a fetch and its snapshot replacement.
func (t *Tracker) guildLock(guildID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.guildLocks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		t.guildLocks[guildID] = lock
	}
	return lock
}

// InitializeGuild rebuilds the cache from a live fetch and reconciles the
// persisted invite records. Called on ready/guild-create and safe to repeat.
func (t *Tracker) InitializeGuild(guildID string) {
	result, err := t.SyncGuildInvites(guildID)
	if err != nil {
		t.log.Error("initializing guild", sl.Guild(guildID), sl.Err(err))
		return
	}
	t.log.Info("guild initialized",
		sl.Guild(guildID),
		slog.Int("invites", result.Total),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
	)
}

// SyncGuildInvites performs a full refresh of persisted invite records from
// the live provider state. For each invite with a resolvable inviter (registry
// owner first, provider-reported inviter otherwise) the stored record is
// upserted, preserving the original creation date. Idempotent: a second run
// with no intervening changes yields created=0.
func (t *Tracker) SyncGuildInvites(guildID string) (*entity.SyncResult, error) {
	invites, err := t.provider.FetchInvites(guildID)
	if err != nil {
		return nil, err
	}

	result := &entity.SyncResult{Total: len(invites)}
	snapshot := make(map[string]int64, len(invites))

	for _, inv := range invites {
		inviterID, err := t.resolveInviter(guildID, inv)
		if err != nil || inviterID == "" {
			result.Skipped++
			continue
		}

		snapshot[inv.Code] = inv.Uses

		existing, err := t.store.GetInvite(guildID, inv.Code)
		if err != nil {
			t.log.Error("syncing invite", sl.Guild(guildID), slog.String("code", inv.Code), sl.Err(err))
			result.Skipped++
			continue
		}

		record := &entity.Invite{
			Code:      inv.Code,
			InviterID: inviterID,
			GuildID:   guildID,
			Uses:      inv.Uses,
			MaxUses:   inv.MaxUses,
			ExpiresAt: inv.ExpiresAt,
			CreatedAt: inv.CreatedAt,
		}
		if existing != nil {
			record.CreatedAt = existing.CreatedAt
		}
		if err = t.store.UpsertInvite(record); err != nil {
			t.log.Error("syncing invite", sl.Guild(guildID), slog.String("code", inv.Code), sl.Err(err))
			result.Skipped++
			continue
		}

		if existing != nil {
			result.Updated++
		} else {
			result.Created++
		}
		result.Synced++
	}

	t.cache.Replace(guildID, snapshot)
	return result, nil
}

// resolveInviter returns the attributable owner of an invite code: the
// personal-invite registry owner when the code is registered, the
// provider-reported inviter otherwise. Empty when neither exists.
func (t *Tracker) resolveInviter(guildID string, inv *entity.GuildInvite) (string, error) {
	personal, err := t.store.GetPersonalInviteByCode(guildID, inv.Code)
	if err != nil {
		return "", err
	}
	if personal != nil {
		return personal.UserID, nil
	}
	return inv.InviterID, nil
}

// ClearGuildData deletes all invite, join and personal-invite documents for a
// guild and drops its cache entry. Irreversible.
func (t *Tracker) ClearGuildData(guildID string) (*entity.ClearResult, error) {
	result, err := t.store.DeleteGuildData(guildID)
	if err != nil {
		return nil, err
	}
	t.cache.Clear(guildID)
	t.log.Info("cleared guild data",
		sl.Guild(guildID),
		slog.Int64("invites_deleted", result.InvitesDeleted),
		slog.Int64("joins_deleted", result.JoinsDeleted),
	)
	return result, nil
}

// TrackInviteCreate records a newly created invite: upserts the persisted
// record and seeds the cache so the next join diff starts from its current
// use count. Errors are logged, never propagated.
func (t *Tracker) TrackInviteCreate(guildID string, inv *entity.GuildInvite) {
	inviterID, err := t.resolveInviter(guildID, inv)
	if err != nil {
		t.log.Error("tracking invite create", sl.Guild(guildID), slog.String("code", inv.Code), sl.Err(err))
		return
	}
	if inviterID == "" {
		return
	}

	record := &entity.Invite{
		Code:      inv.Code,
		InviterID: inviterID,
		GuildID:   guildID,
		Uses:      inv.Uses,
		MaxUses:   inv.MaxUses,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
	if err = t.store.UpsertInvite(record); err != nil {
		t.log.Error("tracking invite create", sl.Guild(guildID), slog.String("code", inv.Code), sl.Err(err))
		return
	}

	t.cache.Update(guildID, inv.Code, inv.Uses)
	t.log.Info("tracked new invite",
		sl.Guild(guildID),
		slog.String("code", inv.Code),
		slog.String("inviter_id", inviterID),
	)
}

// TrackMemberJoin attributes a join notification to an invite code and, when
// the code is a registered personal invite, persists the join. Returns whether
// a record was written. Never propagates errors to the event pipeline.
func (t *Tracker) TrackMemberJoin(guildID, userID string) bool {
	lock := t.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	old := t.cache.Snapshot(guildID)
	fresh, err := t.provider.FetchInvites(guildID)
	if err != nil {
		t.log.Error("fetching invites on join", sl.Guild(guildID), sl.Err(err))
		return false
	}

	used, snapshot := resolveUsedInvite(old, fresh)
	// The fresh snapshot becomes cache state even when unattributed, so the
	// next delta is computed against the latest observation.
	t.cache.Replace(guildID, snapshot)

	if used == nil {
		t.log.Info("join not attributable, may be vanity/widget invite",
			sl.Guild(guildID),
			slog.String("user_id", userID),
		)
		return false
	}

	personal, err := t.store.GetPersonalInviteByCode(guildID, used.Code)
	if err != nil {
		t.log.Error("looking up personal invite", sl.Guild(guildID), slog.String("code", used.Code), sl.Err(err))
		return false
	}
	if personal == nil {
		// Invites created outside the personal-invite flow are intentionally
		// excluded from statistics.
		t.log.Info("join via unregistered invite, not recorded",
			sl.Guild(guildID),
			slog.String("code", used.Code),
		)
		return false
	}

	return t.recordJoin(guildID, userID, used.Code, personal.UserID)
}

// recordJoin applies the dedup check, persists the join record, bumps the
// invite use counter and forwards the record downstream best-effort.
func (t *Tracker) recordJoin(guildID, userID, code, inviterID string) bool {
	now := t.now()

	duplicate, err := t.store.FindRecentJoin(guildID, userID, code, now.Add(-dedupWindow))
	if err != nil {
		t.log.Error("dedup check", sl.Guild(guildID), slog.String("code", code), sl.Err(err))
		return false
	}
	if duplicate != nil {
		t.log.Warn("duplicate join detected, skipping",
			sl.Guild(guildID),
			slog.String("user_id", userID),
			slog.String("code", code),
		)
		return false
	}

	record := &entity.JoinRecord{
		UserID:           userID,
		InviterID:        inviterID,
		InviteCode:       code,
		GuildID:          guildID,
		JoinedAt:         now,
		IsPersonalInvite: true,
	}
	if err = t.store.InsertJoin(record); err != nil {
		t.log.Error("recording join", sl.Guild(guildID), slog.String("user_id", userID), sl.Err(err))
		return false
	}
	if err = t.store.IncrementInviteUses(guildID, code); err != nil {
		t.log.Error("incrementing invite uses", sl.Guild(guildID), slog.String("code", code), sl.Err(err))
	}

	// Side effect, not a transaction: a forwarding failure never rolls back
	// the local write.
	if t.forward != nil {
		t.forward.ForwardJoin(record)
	}

	t.log.Info("recorded join",
		sl.Guild(guildID),
		slog.String("user_id", userID),
		slog.String("inviter_id", inviterID),
		slog.String("code", code),
	)
	return true
}

// RecordJoin persists a join submitted through the REST API. The caller is
// trusted to have attributed it already; only the required-field contract is
// enforced here.
func (t *Tracker) RecordJoin(req *entity.JoinRequest) (*entity.JoinRecord, error) {
	record := req.Record(t.now())
	if err := t.store.InsertJoin(record); err != nil {
		return nil, err
	}
	return record, nil
}
