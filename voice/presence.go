package voice

import (
	"github.com/bwmarrin/discordgo"
)

// Presence counts channel members from the session's state cache
type Presence struct {
	session *discordgo.Session
}

func NewPresence(s *discordgo.Session) *Presence {
	return &Presence{session: s}
}

// HumansIn returns the number of non-bot users connected to channelID
func (p *Presence) HumansIn(guildID, channelID string) int {
	g, err := p.session.State.Guild(guildID)
	if err != nil {
		return 0
	}

	p.session.State.RLock()
	states := make([]*discordgo.VoiceState, len(g.VoiceStates))
	copy(states, g.VoiceStates)
	p.session.State.RUnlock()

	return humansInChannel(states, channelID, p.isBot)
}

// BotChannel returns the voice channel the bot sits in according to the state cache
func (p *Presence) BotChannel(guildID string) string {
	u := p.session.State.User
	if u == nil {
		return ""
	}
	vs, err := p.session.State.VoiceState(guildID, u.ID)
	if err != nil {
		return ""
	}
	return vs.ChannelID
}

func (p *Presence) isBot(guildID, userID string) bool {
	if u := p.session.State.User; u != nil && u.ID == userID {
		return true
	}
	m, err := p.session.State.Member(guildID, userID)
	if err != nil || m.User == nil {
		return false
	}
	return m.User.Bot
}

func humansInChannel(states []*discordgo.VoiceState, channelID string, isBot func(guildID, userID string) bool) int {
	n := 0
	for _, vs := range states {
		if vs == nil || vs.ChannelID != channelID {
			continue
		}
		if vs.Member != nil && vs.Member.User != nil {
			if vs.Member.User.Bot {
				continue
			}
		} else if isBot(vs.GuildID, vs.UserID) {
			continue
		}
		n++
	}
	return n
}
