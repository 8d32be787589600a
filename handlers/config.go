package handlers

import "github.com/bwmarrin/discordgo"

// AutoLeaver reacts to voice channel membership changes
type AutoLeaver interface {
	// LeaveIfAlone disconnects from a channel the bot is alone in
	LeaveIfAlone(guildID string)
	// Dropped forgets a voice connection Discord closed on the bot's behalf
	Dropped(guildID string)
}

// HandlerConfig handles configs for intents and handlers
func HandlerConfig(s *discordgo.Session, leaver AutoLeaver) {
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsMessageContent
	s.AddHandler(MessageHandler)
	s.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		var botID string
		if s.State != nil && s.State.User != nil {
			botID = s.State.User.ID
		}
		VoiceStateHandler(leaver, botID, v)
	})
}
