package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"JalebiJams/cache"
	"JalebiJams/queue"
	"JalebiJams/resolver"

	"github.com/Strum355/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultMaxItems caps playlist expansion when no cap is configured
const DefaultMaxItems = 50

// ErrEmptyPlaylist is returned when a playlist yields no playable entries
var ErrEmptyPlaylist = errors.New("playlist has no playable entries")

// Cache stores playlist enumerations between requests
type Cache interface {
	Get(ctx context.Context, url, mode string) ([]cache.Entry, string, bool)
	Set(ctx context.Context, url, mode, title string, refs []queue.TrackReference) error
}

// Playlist is an expanded playlist ready for the queue
type Playlist struct {
	Title  string
	Tracks []queue.TrackReference
}

// Expander enumerates playlists into track references
type Expander struct {
	extractor   resolver.Extractor
	limiter     *rate.Limiter
	cache       Cache
	maxItems    int
	concurrency int
}

// NewExpander returns an Expander. cache and limiter may be nil
func NewExpander(extractor resolver.Extractor, limiter *rate.Limiter, cache Cache, maxItems, concurrency int) *Expander {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Expander{
		extractor:   extractor,
		limiter:     limiter,
		cache:       cache,
		maxItems:    maxItems,
		concurrency: concurrency,
	}
}

// Expand turns a playlist reference into at most maxItems track references
func (e *Expander) Expand(ctx context.Context, reference string, mode resolver.Mode, target queue.ReplyTarget) (*Playlist, error) {
	if e.cache != nil {
		if entries, title, ok := e.cache.Get(ctx, reference, mode.String()); ok && len(entries) > 0 {
			return &Playlist{Title: title, Tracks: fromEntries(entries, target)}, nil
		}
	}

	info, err := e.enumerate(ctx, reference)
	if err != nil {
		return nil, err
	}

	tracks := flatTracks(info.Entries, target, e.maxItems)
	if mode == resolver.Eager {
		tracks, err = e.fetchAll(ctx, tracks)
		if err != nil {
			return nil, err
		}
	}
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}

	title := info.Title
	if title == "" {
		title = "Unknown"
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, reference, mode.String(), title, tracks); err != nil {
			log.WithError(err).Warn("Failed to cache playlist")
		}
	}
	return &Playlist{Title: title, Tracks: tracks}, nil
}

func (e *Expander) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

func (e *Expander) enumerate(ctx context.Context, reference string) (*resolver.Info, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	info, err := e.extractor.Extract(ctx, reference, resolver.ExtractOptions{
		Playlist: true,
		Flat:     true,
		MaxItems: e.maxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating playlist: %w", err)
	}
	return info, nil
}

// fetchAll replaces flat entries with fully extracted ones, keeping order and dropping failures
func (e *Expander) fetchAll(ctx context.Context, tracks []queue.TrackReference) ([]queue.TrackReference, error) {
	fetched := make([]*queue.TrackReference, len(tracks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for idx, track := range tracks {
		g.Go(func() error {
			if err := e.wait(gctx); err != nil {
				return err
			}

			info, err := e.extractor.Extract(gctx, track.SourceURL, resolver.ExtractOptions{})
			if err != nil {
				log.WithFields(log.Fields{
					"entry": track.SourceURL,
					"error": err.Error(),
				}).Warn("Skipping unavailable playlist entry")
				return nil
			}

			full := track
			if first := info.First(); first != nil && first.Title != "" {
				full.Title = first.Title
			}
			fetched[idx] = &full
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []queue.TrackReference
	for _, track := range fetched {
		if track != nil {
			out = append(out, *track)
		}
	}
	return out, nil
}

func flatTracks(entries []*resolver.Info, target queue.ReplyTarget, max int) []queue.TrackReference {
	var tracks []queue.TrackReference
	for _, entry := range entries {
		if len(tracks) >= max {
			break
		}
		if entry == nil || unavailable(entry.Title) {
			continue
		}

		url := canonicalURL(entry)
		if url == "" {
			continue
		}

		title := entry.Title
		if title == "" {
			title = "Unknown"
		}
		tracks = append(tracks, queue.TrackReference{
			SourceURL:   url,
			Title:       title,
			ReplyTarget: target,
		})
	}
	return tracks
}

func canonicalURL(entry *resolver.Info) string {
	if len(entry.ID) == 11 {
		return resolver.WatchURL(entry.ID)
	}
	if entry.URL != "" {
		return entry.URL
	}
	return entry.WebpageURL
}

func unavailable(title string) bool {
	switch strings.ToLower(title) {
	case "[deleted video]", "[private video]", "[unavailable video]":
		return true
	}
	return false
}

func fromEntries(entries []cache.Entry, target queue.ReplyTarget) []queue.TrackReference {
	tracks := make([]queue.TrackReference, len(entries))
	for i, entry := range entries {
		tracks[i] = queue.TrackReference{
			SourceURL:   entry.URL,
			Title:       entry.Title,
			ReplyTarget: target,
		}
	}
	return tracks
}
