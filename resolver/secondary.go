package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Secondary queries an Invidious compatible read API for a direct audio stream
type Secondary struct {
	Host   string
	Client *http.Client
}

// NewSecondary returns a secondary provider for host
func NewSecondary(host string) *Secondary {
	return &Secondary{
		Host: strings.TrimRight(host, "/"),
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type secondaryStream struct {
	Type    string      `json:"type"`
	URL     string      `json:"url"`
	Bitrate flexBitrate `json:"bitrate"`
}

type secondaryVideo struct {
	Title           string            `json:"title"`
	LengthSeconds   int               `json:"lengthSeconds"`
	AdaptiveFormats []secondaryStream `json:"adaptiveFormats"`
	FormatStreams   []secondaryStream `json:"formatStreams"`
}

// flexBitrate accepts bitrates sent either as numbers or as numeric strings
type flexBitrate float64

func (b *flexBitrate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*b = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*b = flexBitrate(v)
	return nil
}

// bestSecondaryStream prefers adaptive formats, falling back to combined streams
func bestSecondaryStream(video *secondaryVideo) (secondaryStream, bool) {
	candidates := video.AdaptiveFormats
	if len(candidates) == 0 {
		candidates = video.FormatStreams
	}

	var (
		best  secondaryStream
		found bool
	)
	for _, s := range candidates {
		if s.URL == "" || !strings.HasPrefix(s.Type, "audio/") {
			continue
		}
		if !found || s.Bitrate > best.Bitrate {
			best = s
			found = true
		}
	}
	return best, found
}

// Lookup resolves reference through the secondary API
func (s *Secondary) Lookup(ctx context.Context, reference string) (*ResolvedTrack, error) {
	if s.Host == "" {
		return nil, fmt.Errorf("secondary provider not configured")
	}

	videoID, err := VideoID(reference)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Host+"/api/v1/videos/"+videoID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("secondary provider returned status %d", resp.StatusCode)
	}

	var video secondaryVideo
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("decoding secondary response: %w", err)
	}

	stream, ok := bestSecondaryStream(&video)
	if !ok {
		return nil, ErrNoPlayableFormat
	}

	title := video.Title
	if title == "" {
		title = "Unknown"
	}

	return &ResolvedTrack{
		Title:     title,
		Duration:  durationPtr(float64(video.LengthSeconds)),
		StreamURL: stream.URL,
		Provider:  SecondaryProvider,
	}, nil
}
