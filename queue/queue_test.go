package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(n int) TrackReference {
	return TrackReference{
		SourceURL:   fmt.Sprintf("https://www.youtube.com/watch?v=song%07d", n),
		Title:       fmt.Sprintf("song %d", n),
		ReplyTarget: ReplyTarget{ChannelID: "chan", RequestedBy: "user"},
	}
}

func TestGuildQueue_Add(t *testing.T) {
	q := &GuildQueue{}

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 1, q.Add(ref(1)))
	assert.Equal(t, 2, q.Add(ref(2)))
	assert.False(t, q.IsEmpty())
	assert.Equal(t, 2, q.Len())
}

func TestGuildQueue_PopFrontIsFIFO(t *testing.T) {
	q := &GuildQueue{}
	for i := 0; i < 10; i++ {
		q.Add(ref(i))
	}

	for i := 0; i < 10; i++ {
		item, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, ref(i), item)

		current, ok := q.Current()
		require.True(t, ok)
		assert.Equal(t, item, current)

		for _, pending := range q.Snapshot().Pending {
			assert.NotEqual(t, current, pending)
		}
	}

	_, ok := q.PopFront()
	assert.False(t, ok)
	_, ok = q.Current()
	assert.False(t, ok)
}

func TestGuildQueue_InterleavedAddAndPop(t *testing.T) {
	q := &GuildQueue{}
	q.Add(ref(1))
	q.Add(ref(2))

	item, _ := q.PopFront()
	assert.Equal(t, ref(1), item)

	q.AddAll([]TrackReference{ref(3), ref(4)})

	var order []TrackReference
	for {
		item, ok := q.PopFront()
		if !ok {
			break
		}
		order = append(order, item)
	}
	assert.Equal(t, []TrackReference{ref(2), ref(3), ref(4)}, order)
}

func TestGuildQueue_Clear(t *testing.T) {
	q := &GuildQueue{}
	q.Add(ref(1))
	q.Add(ref(2))
	q.PopFront()

	q.Clear()

	assert.True(t, q.IsEmpty())
	_, ok := q.Current()
	assert.False(t, ok)
	snap := q.Snapshot()
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.Pending)
}

func TestGuildQueue_ClearOnEmpty(t *testing.T) {
	q := &GuildQueue{}

	assert.NotPanics(t, q.Clear)
	assert.True(t, q.IsEmpty())
}

func TestGuildQueue_ClearCurrent(t *testing.T) {
	q := &GuildQueue{}
	q.Add(ref(1))
	q.Add(ref(2))
	q.PopFront()

	q.ClearCurrent()

	_, ok := q.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestGuildQueue_SnapshotIsCopy(t *testing.T) {
	q := &GuildQueue{}
	q.Add(ref(1))
	q.Add(ref(2))
	q.PopFront()

	snap := q.Snapshot()
	snap.Pending[0].Title = "changed"
	snap.Current.Title = "changed"

	fresh := q.Snapshot()
	assert.Equal(t, "song 2", fresh.Pending[0].Title)
	assert.Equal(t, "song 1", fresh.Current.Title)
}

func TestRegistry_GetCreatesLazily(t *testing.T) {
	r := NewRegistry()

	_, exists := r.Lookup("guild-1")
	assert.False(t, exists)

	q := r.Get("guild-1")
	assert.NotNil(t, q)
	assert.Same(t, q, r.Get("guild-1"))

	found, exists := r.Lookup("guild-1")
	assert.True(t, exists)
	assert.Same(t, q, found)
}

func TestRegistry_GuildsAreIsolated(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for _, guildID := range []string{"guild-a", "guild-b"} {
		wg.Add(1)
		go func(guildID string) {
			defer wg.Done()
			q := r.Get(guildID)
			for i := 0; i < 100; i++ {
				q.Add(TrackReference{SourceURL: guildID, Title: fmt.Sprint(i)})
			}
			q.PopFront()
		}(guildID)
	}
	wg.Wait()

	for _, guildID := range []string{"guild-a", "guild-b"} {
		snap := r.Get(guildID).Snapshot()
		require.NotNil(t, snap.Current)
		assert.Equal(t, guildID, snap.Current.SourceURL)
		assert.Equal(t, "0", snap.Current.Title)
		assert.Len(t, snap.Pending, 99)
		for _, item := range snap.Pending {
			assert.Equal(t, guildID, item.SourceURL)
		}
	}
}

func TestRegistry_ClearAll(t *testing.T) {
	r := NewRegistry()
	r.Get("guild1").Add(ref(1))
	r.Get("guild2").Add(ref(2))
	r.Get("guild3").Add(ref(3))
	r.Get("guild3").PopFront()

	r.ClearAll()

	for _, guildID := range []string{"guild1", "guild2", "guild3"} {
		q := r.Get(guildID)
		assert.True(t, q.IsEmpty())
		_, ok := q.Current()
		assert.False(t, ok)
	}
}
