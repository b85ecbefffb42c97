package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheSnapshotUnknownGuildIsEmpty(t *testing.T) {
	cache := NewCache()

	snapshot := cache.Snapshot("g1")
	require.NotNil(t, snapshot)
	require.Empty(t, snapshot)
}

func TestCacheSnapshotIsACopy(t *testing.T) {
	cache := NewCache()
	cache.Update("g1", "abc", 3)

	snapshot := cache.Snapshot("g1")
	snapshot["abc"] = 99

	require.Equal(t, int64(3), cache.Snapshot("g1")["abc"])
}

func TestCacheReplaceDropsStaleCodes(t *testing.T) {
	cache := NewCache()
	cache.Update("g1", "old", 1)

	cache.Replace("g1", map[string]int64{"new": 5})

	snapshot := cache.Snapshot("g1")
	require.NotContains(t, snapshot, "old")
	require.Equal(t, int64(5), snapshot["new"])
}

func TestCacheClearRemovesOnlyThatGuild(t *testing.T) {
	cache := NewCache()
	cache.Update("g1", "abc", 1)
	cache.Update("g2", "def", 2)

	cache.Clear("g1")

	require.Empty(t, cache.Snapshot("g1"))
	require.Equal(t, int64(2), cache.Snapshot("g2")["def"])
}
