package commands

import (
	"JalebiJams/queue"

	"github.com/bwmarrin/discordgo"
)

// ChannelReplier posts playback messages into the requester's text channel
type ChannelReplier struct {
	session *discordgo.Session
}

func NewChannelReplier(s *discordgo.Session) *ChannelReplier {
	return &ChannelReplier{session: s}
}

func (r *ChannelReplier) Send(target queue.ReplyTarget, text string) error {
	_, err := r.session.ChannelMessageSend(target.ChannelID, text)
	return err
}
