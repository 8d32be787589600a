package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsURL reports whether reference looks like a link rather than search text
func IsURL(reference string) bool {
	return strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://")
}

// VideoID normalizes a watch/short/embed URL or a bare identifier into an 11 character video ID
func VideoID(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", ErrNoVideoID
	}
	if !IsURL(reference) && strings.ContainsAny(reference, " \t") {
		return "", ErrNoVideoID
	}

	if u, err := url.Parse(reference); err == nil && u.Query().Get("v") != "" {
		if id := u.Query().Get("v"); videoIDPattern.MatchString(id) {
			return id, nil
		}
	}

	id, err := youtube.ExtractVideoID(reference)
	if err != nil {
		return "", ErrNoVideoID
	}
	if !videoIDPattern.MatchString(id) {
		return "", ErrNoVideoID
	}
	return id, nil
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
