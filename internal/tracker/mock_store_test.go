package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"invitetracker/entity"
)

// fakeStore is an in-memory Store for tracker tests. Filtering and sort
// semantics mirror the Mongo queries.
type fakeStore struct {
	invites  map[string]*entity.Invite
	joins    []*entity.JoinRecord
	personal map[string]*entity.PersonalInvite

	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invites:  make(map[string]*entity.Invite),
		personal: make(map[string]*entity.PersonalInvite),
	}
}

func inviteKey(guildID, code string) string {
	return guildID + "|" + code
}

func (s *fakeStore) Ping(_ context.Context) error {
	return s.pingErr
}

func (s *fakeStore) UpsertInvite(inv *entity.Invite) error {
	key := inviteKey(inv.GuildID, inv.Code)
	clone := *inv
	if existing, ok := s.invites[key]; ok {
		clone.CreatedAt = existing.CreatedAt
	}
	s.invites[key] = &clone
	return nil
}

func (s *fakeStore) GetInvite(guildID, code string) (*entity.Invite, error) {
	inv, ok := s.invites[inviteKey(guildID, code)]
	if !ok {
		return nil, nil
	}
	clone := *inv
	return &clone, nil
}

func (s *fakeStore) FindInvitesByInviter(guildID, inviterID string) ([]*entity.Invite, error) {
	var result []*entity.Invite
	for _, inv := range s.invites {
		if (guildID == "" || inv.GuildID == guildID) && inv.InviterID == inviterID {
			clone := *inv
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *fakeStore) FindGuildInvites(guildID string, limit int64) ([]*entity.Invite, error) {
	var result []*entity.Invite
	for _, inv := range s.invites {
		if inv.GuildID == guildID {
			clone := *inv
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeStore) CountGuildInvites(guildID string) (int64, error) {
	var count int64
	for _, inv := range s.invites {
		if inv.GuildID == guildID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) IncrementInviteUses(guildID, code string) error {
	inv, ok := s.invites[inviteKey(guildID, code)]
	if !ok {
		return fmt.Errorf("invite %s not found", code)
	}
	inv.Uses++
	return nil
}

func (s *fakeStore) InsertJoin(rec *entity.JoinRecord) error {
	clone := *rec
	s.joins = append(s.joins, &clone)
	return nil
}

func (s *fakeStore) FindRecentJoin(guildID, userID, code string, since time.Time) (*entity.JoinRecord, error) {
	for _, rec := range s.joins {
		if rec.GuildID == guildID && rec.UserID == userID && rec.InviteCode == code &&
			!rec.JoinedAt.Before(since) {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindJoins(f entity.JoinFilter) ([]*entity.JoinRecord, error) {
	var result []*entity.JoinRecord
	for _, rec := range s.joins {
		if !matchesJoinFilter(rec, f) {
			continue
		}
		clone := *rec
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.After(result[j].JoinedAt)
	})
	if f.Limit > 0 && int64(len(result)) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (s *fakeStore) CountJoins(f entity.JoinFilter) (int64, error) {
	var count int64
	for _, rec := range s.joins {
		if matchesJoinFilter(rec, f) {
			count++
		}
	}
	return count, nil
}

func matchesJoinFilter(rec *entity.JoinRecord, f entity.JoinFilter) bool {
	if f.GuildID != "" && rec.GuildID != f.GuildID {
		return false
	}
	if f.InviterID != "" && rec.InviterID != f.InviterID {
		return false
	}
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	if f.PersonalOnly && !rec.IsPersonalInvite {
		return false
	}
	if f.From != nil && rec.JoinedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.JoinedAt.After(*f.To) {
		return false
	}
	return true
}

func (s *fakeStore) GetPersonalInvite(guildID, userID string) (*entity.PersonalInvite, error) {
	for _, pi := range s.personal {
		if pi.GuildID == guildID && pi.UserID == userID {
			clone := *pi
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetPersonalInviteByCode(guildID, code string) (*entity.PersonalInvite, error) {
	pi, ok := s.personal[inviteKey(guildID, code)]
	if !ok {
		return nil, nil
	}
	clone := *pi
	return &clone, nil
}

func (s *fakeStore) InsertPersonalInvite(pi *entity.PersonalInvite) error {
	clone := *pi
	s.personal[inviteKey(pi.GuildID, pi.InviteCode)] = &clone
	return nil
}

func (s *fakeStore) DeleteGuildData(guildID string) (*entity.ClearResult, error) {
	result := &entity.ClearResult{}
	for key, inv := range s.invites {
		if inv.GuildID == guildID {
			delete(s.invites, key)
			result.InvitesDeleted++
		}
	}
	var kept []*entity.JoinRecord
	for _, rec := range s.joins {
		if rec.GuildID == guildID {
			result.JoinsDeleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.joins = kept
	for key, pi := range s.personal {
		if pi.GuildID == guildID {
			delete(s.personal, key)
			result.PersonalInvitesDeleted++
		}
	}
	return result, nil
}

// fakeProvider serves scripted live guild state.
type fakeProvider struct {
	invites  map[string][]*entity.GuildInvite
	channels map[string][]*entity.GuildChannel

	createdChannelID string
	nextCode         string
	fetchErr         error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		invites:  make(map[string][]*entity.GuildInvite),
		channels: make(map[string][]*entity.GuildChannel),
		nextCode: "generated",
	}
}

func (p *fakeProvider) FetchInvites(guildID string) ([]*entity.GuildInvite, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.invites[guildID], nil
}

func (p *fakeProvider) GuildChannels(guildID string) ([]*entity.GuildChannel, error) {
	return p.channels[guildID], nil
}

func (p *fakeProvider) CreateChannelInvite(channelID string) (*entity.GuildInvite, error) {
	p.createdChannelID = channelID
	return &entity.GuildInvite{
		Code:      p.nextCode,
		Uses:      0,
		CreatedAt: time.Now(),
	}, nil
}

type fakeForwarder struct {
	records []*entity.JoinRecord
}

func (f *fakeForwarder) ForwardJoin(rec *entity.JoinRecord) {
	f.records = append(f.records, rec)
}
