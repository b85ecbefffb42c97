package tracker

import "invitetracker/entity"

// resolveUsedInvite diffs a fresh provider snapshot against the previous cache
// state and returns the invite whose use count increased, plus the new cache
// state. Codes absent from the old state count from zero.
//
// When several codes show a positive delta in one pass the last one in
// provider order wins. Joins are serialized per guild before fetching, so this
// only happens when a join lands between another join and its fetch; the loser
// is picked up as unattributable rather than misattributed on the next pass.
//
// A nil invite means the join is unattributable (vanity URL, widget invite, or
// a code outside tracked scope); callers must not fabricate an attribution.
// The returned snapshot must replace the cache state either way, so later
// deltas are computed against the most recent observation.
func resolveUsedInvite(old map[string]int64, fresh []*entity.GuildInvite) (*entity.GuildInvite, map[string]int64) {
	snapshot := make(map[string]int64, len(fresh))
	var used *entity.GuildInvite
	for _, inv := range fresh {
		snapshot[inv.Code] = inv.Uses
		if inv.Uses > old[inv.Code] {
			used = inv
		}
	}
	return used, snapshot
}
