package voice

import (
	"context"

	"JalebiJams/player"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

// Connector joins Discord voice channels
type Connector struct {
	session *discordgo.Session
	ffmpeg  string
}

// NewConnector returns a Connector decoding audio with the ffmpeg binary at ffmpegPath
func NewConnector(s *discordgo.Session, ffmpegPath string) *Connector {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Connector{session: s, ffmpeg: ffmpegPath}
}

// Connect joins channelID deafened, as the bot never listens
func (c *Connector) Connect(ctx context.Context, guildID, channelID string) (player.Voice, error) {
	type joined struct {
		vc  *discordgo.VoiceConnection
		err error
	}

	result := make(chan joined, 1)
	go func() {
		vc, err := c.session.ChannelVoiceJoin(guildID, channelID, false, true)
		result <- joined{vc, err}
	}()

	select {
	case j := <-result:
		if j.err != nil {
			return nil, j.err
		}
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
		}).Info("Joined voice channel")
		return newConnection(j.vc, channelID, c.ffmpeg), nil
	case <-ctx.Done():
		go func() {
			if j := <-result; j.err == nil {
				j.vc.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}
