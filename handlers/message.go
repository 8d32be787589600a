package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// prefixCommand returns the command word of a prefixed message, or false when the message
// does not start with prefix
func prefixCommand(content, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", true
	}
	return strings.ToLower(fields[0]), true
}

// MessageHandler handles message commands
func MessageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	// If message is sent from the bot
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	prefix := viper.GetString("prefix")

	command, ok := prefixCommand(m.Content, prefix)
	if !ok {
		return
	}

	switch command {
	case "help":
		HelpEmbedding(s, m)
	case "":
		s.ChannelMessageSend(m.ChannelID, "type `"+prefix+"help` to open help menu.") // invalid prefix command
	default:
		s.ChannelMessageSend(m.ChannelID, "Music commands are slash commands now, type `/` or `"+prefix+"help` to see them.")
	}
}
