package commands

import (
	"errors"

	"JalebiJams/player"
	"JalebiJams/playlist"
	"JalebiJams/resolver"
	"JalebiJams/utils"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
)

type interactionError struct {
	err      error
	message  string
	deferred bool // The interaction was already acknowledged, so the reply is an edit
}

// Handle handles responding to error messages within Discord
func (e *interactionError) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	log.WithError(e.err).Error(e.message)
	if e.deferred {
		content := e.message
		s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
		return
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   1 << 6, // Whisper Flag
			Content: e.message,
		},
	})
}

// userMessage maps a controller error onto the text shown to the user
func userMessage(err error) string {
	var (
		input      *player.UserInputError
		conn       *player.ConnectionError
		extraction *resolver.ExtractionError
	)

	switch {
	case errors.As(err, &input):
		return input.Message
	case errors.As(err, &conn):
		return "I couldn't connect to your voice channel 😵"
	case errors.Is(err, player.ErrNothingPlaying):
		return "Nothing is playing right now 😶"
	case errors.Is(err, player.ErrNotConnected):
		return "I'm not in a voice channel"
	case errors.Is(err, player.ErrStale):
		return "Playback was stopped before that track was ready"
	case errors.Is(err, player.ErrShutdown):
		return "I'm shutting down, try again in a moment"
	case errors.Is(err, playlist.ErrEmptyPlaylist):
		return "That playlist has no playable songs"
	case errors.As(err, &extraction):
		cause := extraction.Error()
		if extraction.Cause != nil {
			cause = extraction.Cause.Error()
		}
		return "I couldn't play that: " + utils.Truncate(cause, 180)
	default:
		return "Something went wrong 😓"
	}
}

func playerError(err error, deferred bool) *interactionError {
	return &interactionError{err: err, message: userMessage(err), deferred: deferred}
}
