package cache

import (
	"context"
	"encoding/json"
	"time"

	"JalebiJams/queue"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached playlist member without its reply target
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Playlists caches playlist enumerations so repeated requests skip the extractor
type Playlists struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPlaylists returns a playlist cache keeping entries for ttl
func NewPlaylists(rdb *redis.Client, ttl time.Duration) *Playlists {
	return &Playlists{rdb: rdb, ttl: ttl}
}

func playlistKey(url, mode string) string {
	return "playlist:" + mode + ":" + url
}

// Get returns the cached entries and playlist title, if present
func (p *Playlists) Get(ctx context.Context, url, mode string) ([]Entry, string, bool) {
	cached, err := p.rdb.Get(ctx, playlistKey(url, mode)).Result()
	if err != nil || cached == "" {
		return nil, "", false
	}

	var payload struct {
		Title   string  `json:"title"`
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(cached), &payload); err != nil {
		return nil, "", false
	}
	return payload.Entries, payload.Title, true
}

// Set stores the enumeration of a playlist
func (p *Playlists) Set(ctx context.Context, url, mode, title string, refs []queue.TrackReference) error {
	entries := make([]Entry, len(refs))
	for i, ref := range refs {
		entries[i] = Entry{URL: ref.SourceURL, Title: ref.Title}
	}

	data, err := json.Marshal(struct {
		Title   string  `json:"title"`
		Entries []Entry `json:"entries"`
	}{title, entries})
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, playlistKey(url, mode), data, p.ttl).Err()
}
