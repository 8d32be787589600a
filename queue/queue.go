package queue

import (
	"sync"
)

// ReplyTarget identifies where messages about a queued track are sent
type ReplyTarget struct {
	ChannelID   string // Text channel the request came from
	RequestedBy string // Username of who requested the track
}

// TrackReference is a queued track that has not been resolved into a stream yet
type TrackReference struct {
	SourceURL   string      // URL or search text handed to the resolver
	Title       string      // Title shown in the queue
	ReplyTarget ReplyTarget // Where to report playback events for this track
}

// Snapshot is a point in time copy of a guild queue used for display
type Snapshot struct {
	Current *TrackReference
	Pending []TrackReference
}

// GuildQueue holds the pending tracks and the current track of a single guild
type GuildQueue struct {
	items   []TrackReference // Pending tracks, index 0 plays next
	current *TrackReference  // Track most recently taken by PopFront
	mu      sync.Mutex       // Serializes every operation on this guild's queue
}

// Add appends a track to the end of the queue
func (q *GuildQueue) Add(ref TrackReference) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, ref)
	return len(q.items)
}

// AddAll appends refs in order and returns the new queue length
func (q *GuildQueue) AddAll(refs []TrackReference) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, refs...)
	return len(q.items)
}

// PopFront removes the next track, marking it as current. It returns false when the queue is empty
func (q *GuildQueue) PopFront() (TrackReference, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		q.current = nil
		return TrackReference{}, false
	}

	item := q.items[0]
	q.items[0] = TrackReference{}
	q.items = q.items[1:]
	q.current = &item
	return item, true
}

// Clear empties the queue and unsets the current track
func (q *GuildQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.current = nil
}

// ClearCurrent unsets the current track once it has finished playing
func (q *GuildQueue) ClearCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
}

// IsEmpty reports whether no tracks are pending
func (q *GuildQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of pending tracks
func (q *GuildQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Current returns the track most recently popped, if any
func (q *GuildQueue) Current() (TrackReference, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return TrackReference{}, false
	}
	return *q.current, true
}

// Snapshot copies the queue state for display
func (q *GuildQueue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	itemsCopy := make([]TrackReference, len(q.items))
	copy(itemsCopy, q.items)

	var currentCopy *TrackReference
	if q.current != nil {
		c := *q.current
		currentCopy = &c
	}

	return Snapshot{
		Current: currentCopy,
		Pending: itemsCopy,
	}
}

// Registry owns one GuildQueue per guild, creating them on first access
type Registry struct {
	guilds map[string]*GuildQueue // Maps guild ID to its queue
	mu     sync.Mutex             // Guards the map only, never a guild's queue
}

// NewRegistry returns an empty queue registry
func NewRegistry() *Registry {
	return &Registry{guilds: make(map[string]*GuildQueue)}
}

// Get returns the queue for guildID, creating it if needed
func (r *Registry) Get(guildID string) *GuildQueue {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, exists := r.guilds[guildID]
	if !exists {
		q = &GuildQueue{}
		r.guilds[guildID] = q
	}
	return q
}

// Lookup returns the queue for guildID without creating one
func (r *Registry) Lookup(guildID string) (*GuildQueue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, exists := r.guilds[guildID]
	return q, exists
}

// ClearAll empties every guild queue
func (r *Registry) ClearAll() {
	r.mu.Lock()
	queues := make([]*GuildQueue, 0, len(r.guilds))
	for _, q := range r.guilds {
		queues = append(queues, q)
	}
	r.mu.Unlock()

	for _, q := range queues {
		q.Clear()
	}
}
