package handlers

import (
	"JalebiJams/commands"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// helpFields lists every registered slash command
func helpFields(cmds []*discordgo.ApplicationCommand) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, len(cmds))
	for _, cmd := range cmds {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "/" + cmd.Name,
			Value: cmd.Description,
		})
	}
	return fields
}

// HelpEmbedding creates the embedding for the help menu
func HelpEmbedding(s *discordgo.Session, m *discordgo.MessageCreate) {
	botAvatarURL := s.State.User.AvatarURL("64")
	helpEmbed := &discordgo.MessageEmbed{
		Title:       "JalebiJams Help",
		Description: "Paste a YouTube, SoundCloud or Bandcamp link into `/play`, or just type what you want to hear.",
		Color:       viper.GetInt("theme"),
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: botAvatarURL,
		},
		Fields: helpFields(commands.List()),
	}
	s.ChannelMessageSendEmbed(m.ChannelID, helpEmbed)
}
