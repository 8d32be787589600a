package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestAudioFormat_PicksHighestBitrateWithAudio(t *testing.T) {
	formats := []Format{
		{ACodec: "aac", ABR: 64, URL: "A"},
		{ACodec: "none", ABR: 999, URL: "B"},
		{ACodec: "opus", ABR: 128, URL: "C"},
	}

	f, ok := bestAudioFormat(formats)

	require.True(t, ok)
	assert.Equal(t, "C", f.URL)
}

func TestBestAudioFormat_TiesKeepListOrder(t *testing.T) {
	formats := []Format{
		{ACodec: "opus", ABR: 128, URL: "first"},
		{ACodec: "aac", ABR: 128, URL: "second"},
	}

	f, ok := bestAudioFormat(formats)

	require.True(t, ok)
	assert.Equal(t, "first", f.URL)
}

func TestBestAudioFormat_SkipsMissingURLAndCodec(t *testing.T) {
	formats := []Format{
		{ACodec: "opus", ABR: 320},
		{ACodec: "", ABR: 256, URL: "no-codec"},
		{ACodec: "mp4a.40.2", TBR: 96, URL: "tbr-only"},
	}

	f, ok := bestAudioFormat(formats)

	require.True(t, ok)
	assert.Equal(t, "tbr-only", f.URL)

	_, ok = bestAudioFormat([]Format{{ACodec: "none", URL: "video"}})
	assert.False(t, ok)
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		name        string
		info        Info
		preferLocal bool
		expected    string
		err         error
	}{
		{"top level url", Info{URL: "direct", Formats: []Format{{ACodec: "opus", ABR: 999, URL: "fmt"}}}, false, "direct", nil},
		{"best format", Info{Formats: []Format{{ACodec: "opus", ABR: 160, URL: "fmt"}}}, false, "fmt", nil},
		{"local fallback", Info{Filename: "cache/abc.webm"}, false, "cache/abc.webm", nil},
		{"requested download", Info{RequestedDownloads: []RequestedDownload{{Filepath: "cache/x.m4a"}}}, false, "cache/x.m4a", nil},
		{"prefer local", Info{URL: "direct", Filename: "cache/abc.webm"}, true, "cache/abc.webm", nil},
		{"nothing", Info{Formats: []Format{{ACodec: "none", URL: "video"}}}, false, "", ErrNoPlayableFormat},
	}

	for _, tt := range tests {
		u, err := streamURL(&tt.info, tt.preferLocal)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		assert.Equal(t, tt.expected, u, tt.name)
	}
}

func TestTrackFromInfo_CollapsesPlaylistToFirstEntry(t *testing.T) {
	info := &Info{
		Type: "playlist",
		Entries: []*Info{
			nil,
			{Title: "First", Duration: 212, URL: "stream-1"},
			{Title: "Second", URL: "stream-2"},
		},
	}

	track, err := trackFromInfo(info, false)

	require.NoError(t, err)
	assert.Equal(t, "First", track.Title)
	assert.Equal(t, "stream-1", track.StreamURL)
	require.NotNil(t, track.Duration)
	assert.Equal(t, 212*time.Second, *track.Duration)
}

func TestTrackFromInfo_EmptyPlaylist(t *testing.T) {
	_, err := trackFromInfo(&Info{Entries: []*Info{}}, false)

	assert.ErrorIs(t, err, ErrNoPlayableFormat)
}

func TestTrackFromInfo_DefaultsTitleAndDuration(t *testing.T) {
	track, err := trackFromInfo(&Info{URL: "stream"}, false)

	require.NoError(t, err)
	assert.Equal(t, "Unknown", track.Title)
	assert.Nil(t, track.Duration)
}
