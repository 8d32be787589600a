package playlist

import (
	"net/url"
	"strings"
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// isMixID reports whether a list ID names an auto generated mix or radio
func isMixID(listID string) bool {
	return strings.HasPrefix(listID, "RD")
}

// StripMix drops an auto generated mix from a track URL so only the track itself plays
func StripMix(reference string) string {
	u, err := url.Parse(reference)
	if err != nil || !youtubeHosts[u.Hostname()] {
		return reference
	}

	q := u.Query()
	if !isMixID(q.Get("list")) {
		return reference
	}
	if q.Get("v") == "" && u.Hostname() != "youtu.be" {
		return reference
	}

	q.Del("list")
	q.Del("start_radio")
	q.Del("index")
	q.Del("pp")
	u.RawQuery = q.Encode()
	return u.String()
}

// IsPlaylist reports whether reference names an enumerable playlist.
// Continuous mix and radio lists are never treated as playlists.
func IsPlaylist(reference string) bool {
	u, err := url.Parse(strings.TrimSpace(reference))
	if err != nil || u.Scheme == "" {
		return false
	}

	host := u.Hostname()
	if youtubeHosts[host] {
		listID := u.Query().Get("list")
		return listID != "" && !isMixID(listID)
	}

	if strings.HasSuffix(host, "soundcloud.com") {
		return strings.Contains(u.Path, "/sets/")
	}
	if strings.HasSuffix(host, "bandcamp.com") {
		return strings.HasPrefix(u.Path, "/album/")
	}
	return false
}
