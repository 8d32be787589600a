package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// VoiceStateHandler checks whether the bot was left alone whenever someone leaves or moves
// out of a voice channel, and notices when the bot itself was disconnected
func VoiceStateHandler(leaver AutoLeaver, botID string, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil {
		return
	}
	if botID != "" && v.UserID == botID {
		if v.ChannelID == "" {
			leaver.Dropped(v.GuildID)
		}
		return
	}
	if v.BeforeUpdate == nil {
		return
	}
	if v.BeforeUpdate.ChannelID == "" || v.BeforeUpdate.ChannelID == v.ChannelID {
		return
	}
	leaver.LeaveIfAlone(v.GuildID)
}
