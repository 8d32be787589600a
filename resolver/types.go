package resolver

import (
	"time"
)

// Provider names the ladder stage that produced a stream
type Provider int

const (
	Primary Provider = iota
	FallbackClient
	ForceDownload
	SecondaryProvider
)

func (p Provider) String() string {
	switch p {
	case Primary:
		return "primary"
	case FallbackClient:
		return "fallback-client"
	case ForceDownload:
		return "force-download"
	case SecondaryProvider:
		return "secondary"
	default:
		return "unknown"
	}
}

// Mode selects how much work extraction does up front
type Mode int

const (
	// Shallow extracts metadata only and streams from the remote URL
	Shallow Mode = iota
	// Eager materializes the file locally from the first stage on
	Eager
)

// ParseMode maps a config value onto a Mode, defaulting to Shallow
func ParseMode(s string) Mode {
	if s == "eager" {
		return Eager
	}
	return Shallow
}

func (m Mode) String() string {
	if m == Eager {
		return "eager"
	}
	return "shallow"
}

// ResolvedTrack is a playable stream. It is built right before playback and never cached
type ResolvedTrack struct {
	Title     string
	Duration  *time.Duration
	StreamURL string
	Provider  Provider
}

// Info is the subset of yt-dlp's JSON output the bot reads
type Info struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Duration           float64            `json:"duration"`
	URL                string             `json:"url"`
	WebpageURL         string             `json:"webpage_url"`
	Type               string             `json:"_type"`
	Filename           string             `json:"_filename"`
	Formats            []Format           `json:"formats"`
	Entries            []*Info            `json:"entries"`
	RequestedDownloads []RequestedDownload `json:"requested_downloads"`
}

// Format is a single format variant offered by the extractor
type Format struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	ACodec   string  `json:"acodec"`
	ABR      float64 `json:"abr"`
	TBR      float64 `json:"tbr"`
}

// RequestedDownload describes a file yt-dlp wrote to disk
type RequestedDownload struct {
	Filepath string `json:"filepath"`
}

// Bitrate prefers the audio bitrate, falling back to the total bitrate
func (f Format) Bitrate() float64 {
	if f.ABR > 0 {
		return f.ABR
	}
	return f.TBR
}

// LocalPath returns the file the extractor materialized, if any
func (i *Info) LocalPath() string {
	for _, d := range i.RequestedDownloads {
		if d.Filepath != "" {
			return d.Filepath
		}
	}
	return i.Filename
}

// First collapses a playlist shaped result onto its first usable entry
func (i *Info) First() *Info {
	if i == nil || i.Entries == nil {
		return i
	}
	for _, e := range i.Entries {
		if e != nil {
			return e.First()
		}
	}
	return nil
}

// durationPtr converts the extractor's seconds into an optional duration
func durationPtr(seconds float64) *time.Duration {
	if seconds <= 0 {
		return nil
	}
	d := time.Duration(seconds * float64(time.Second))
	return &d
}
