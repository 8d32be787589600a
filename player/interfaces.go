package player

import (
	"context"

	"JalebiJams/playlist"
	"JalebiJams/queue"
	"JalebiJams/resolver"
)

// Voice is a live voice connection in one guild
type Voice interface {
	ChannelID() string
	// Alive is false once the connection was torn down underneath us
	Alive() bool
	Move(ctx context.Context, channelID string) error
	Disconnect() error
	// Play starts streaming in the background. onFinish runs exactly once when the
	// stream ends, is stopped, or fails
	Play(streamURL string, onFinish func(error)) error
	Pause() bool
	Resume() bool
	Stop()
	IsPlaying() bool
	IsPaused() bool
	SetVolume(volume float64)
}

// Connector opens voice connections
type Connector interface {
	Connect(ctx context.Context, guildID, channelID string) (Voice, error)
}

// Presence reads voice channel membership
type Presence interface {
	// HumansIn counts the non-bot members in a voice channel
	HumansIn(guildID, channelID string) int
	// BotChannel is the channel the bot currently sits in, empty when it is not connected
	BotChannel(guildID string) string
}

// Replier sends text back to whoever requested a track
type Replier interface {
	Send(target queue.ReplyTarget, text string) error
}

// Resolver turns a reference into a playable stream
type Resolver interface {
	Resolve(ctx context.Context, reference string, mode resolver.Mode) (*resolver.ResolvedTrack, error)
}

// Expander enumerates playlists
type Expander interface {
	Expand(ctx context.Context, reference string, mode resolver.Mode, target queue.ReplyTarget) (*playlist.Playlist, error)
}

// History records played tracks
type History interface {
	Record(ctx context.Context, guildID string, ref queue.TrackReference, track *resolver.ResolvedTrack) error
	Count(ctx context.Context, guildID string) (int64, error)
}
