package tracker

import "sync"

// Cache holds the last observed use count per invite code, per guild. It is a
// process-local optimization, never a source of truth: a lost cache is rebuilt
// by the next sync. The tracker owns it and passes snapshots to the resolver
// explicitly.
type Cache struct {
	mu     sync.RWMutex
	guilds map[string]map[string]int64
}

func NewCache() *Cache {
	return &Cache{guilds: make(map[string]map[string]int64)}
}

// Snapshot returns a copy of the guild's code→uses mapping. An unknown guild
// yields an empty map.
func (c *Cache) Snapshot(guildID string) map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]int64, len(c.guilds[guildID]))
	for code, uses := range c.guilds[guildID] {
		snapshot[code] = uses
	}
	return snapshot
}

func (c *Cache) Update(guildID, code string, uses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	guild, ok := c.guilds[guildID]
	if !ok {
		guild = make(map[string]int64)
		c.guilds[guildID] = guild
	}
	guild[code] = uses
}

// Replace swaps in a freshly observed snapshot for the guild.
func (c *Cache) Replace(guildID string, snapshot map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guilds[guildID] = snapshot
}

func (c *Cache) Clear(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.guilds, guildID)
}
