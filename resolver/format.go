package resolver

import (
	"strings"
)

// bestAudioFormat returns the highest bitrate format that carries audio and a URL.
// Ties keep the earliest format in the list.
func bestAudioFormat(formats []Format) (Format, bool) {
	var (
		best  Format
		found bool
	)
	for _, f := range formats {
		if f.URL == "" || f.ACodec == "" || f.ACodec == "none" {
			continue
		}
		if !found || f.Bitrate() > best.Bitrate() {
			best = f
			found = true
		}
	}
	return best, found
}

// streamURL picks the URL to hand to the voice transport.
// Materialized files win when preferLocal is set, matching forced downloads.
func streamURL(info *Info, preferLocal bool) (string, error) {
	local := info.LocalPath()
	if preferLocal && local != "" {
		return local, nil
	}
	if u := strings.TrimSpace(info.URL); u != "" {
		return u, nil
	}
	if f, ok := bestAudioFormat(info.Formats); ok {
		return f.URL, nil
	}
	if local != "" {
		return local, nil
	}
	return "", ErrNoPlayableFormat
}

// trackFromInfo converts extractor metadata into a ResolvedTrack
func trackFromInfo(info *Info, preferLocal bool) (*ResolvedTrack, error) {
	info = info.First()
	if info == nil {
		return nil, ErrNoPlayableFormat
	}

	u, err := streamURL(info, preferLocal)
	if err != nil {
		return nil, err
	}

	title := info.Title
	if title == "" {
		title = "Unknown"
	}

	return &ResolvedTrack{
		Title:     title,
		Duration:  durationPtr(info.Duration),
		StreamURL: u,
	}, nil
}
