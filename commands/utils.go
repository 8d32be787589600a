package commands

import (
	"JalebiJams/queue"

	"github.com/bwmarrin/discordgo"
)

// userVoiceChannel returns the voice channel the user is connected to, or "" when they are not
func userVoiceChannel(s *discordgo.Session, guildID, userID string) string {
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// replyTarget is where asynchronous playback messages for this interaction go
func replyTarget(i *discordgo.InteractionCreate) queue.ReplyTarget {
	return queue.ReplyTarget{
		ChannelID:   i.ChannelID,
		RequestedBy: i.Member.User.Username,
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) *interactionError {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		return &interactionError{err: err, message: "Failed to respond"}
	}
	return nil
}

// deferResponse acknowledges an interaction whose reply takes longer than Discord's deadline
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return &interactionError{err: err, message: "Failed to respond"}
	}
	return nil
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) *interactionError {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		return &interactionError{err: err, message: "Failed to respond", deferred: true}
	}
	return nil
}
