package commands

import (
	"context"
	"fmt"

	"JalebiJams/player"
	"JalebiJams/queue"

	"github.com/bwmarrin/discordgo"
)

// Player is the playback surface the music commands drive
type Player interface {
	Play(ctx context.Context, req player.Request) (string, error)
	Pause(ctx context.Context, guildID string) error
	Resume(ctx context.Context, guildID string) error
	Stop(ctx context.Context, guildID string) error
	Skip(ctx context.Context, guildID string) (string, error)
	SetVolume(ctx context.Context, guildID string, percent int) error
	Join(ctx context.Context, guildID, channelID string, target queue.ReplyTarget) error
	Leave(ctx context.Context, guildID string) error
	Queue(guildID string) queue.Snapshot
	Status(ctx context.Context, guildID string) (player.Status, error)
}

// Music holds the handlers of the music slash commands
type Music struct {
	player      Player
	diagnostics *Diagnostics
}

func NewMusic(p Player, d *Diagnostics) *Music {
	return &Music{player: p, diagnostics: d}
}

// joinVoice joins the bot to the user's voice channel
func (m *Music) joinVoice(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	channelID := userVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if channelID == "" {
		return respond(s, i, "Join a voice channel first 😉")
	}

	if err := m.player.Join(ctx, i.GuildID, channelID, replyTarget(i)); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, fmt.Sprintf("Joined <#%s> 🎧", channelID))
}

// leaveVoice clears the queue and disconnects the bot
func (m *Music) leaveVoice(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if err := m.player.Leave(ctx, i.GuildID); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, "👋 Left the voice channel")
}

// playMusic plays a link or search result, adding it to the queue when something is playing
func (m *Music) playMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	channelID := userVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if channelID == "" {
		return respond(s, i, "Join a voice channel first 😉")
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respond(s, i, "Give me a link or something to search for")
	}

	if iErr := deferResponse(s, i); iErr != nil {
		return iErr
	}

	msg, err := m.player.Play(ctx, player.Request{
		GuildID:   i.GuildID,
		ChannelID: channelID,
		Reference: options[0].StringValue(),
		Target:    replyTarget(i),
	})
	if err != nil {
		return playerError(err, true)
	}
	return editResponse(s, i, "🎶 "+msg)
}

// pauseMusic pauses the current music
func (m *Music) pauseMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if err := m.player.Pause(ctx, i.GuildID); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, "⏸️ Paused")
}

// resumeMusic resumes the current music
func (m *Music) resumeMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if err := m.player.Resume(ctx, i.GuildID); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, "▶️ Resumed")
}

// stopMusic clears the queue and stops playback without leaving
func (m *Music) stopMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if err := m.player.Stop(ctx, i.GuildID); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, "⏹️ Stopped and cleared the queue")
}

// skipMusic skips the current music playing and moves on to the next
func (m *Music) skipMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	title, err := m.player.Skip(ctx, i.GuildID)
	if err != nil {
		return playerError(err, false)
	}
	if title == "" {
		return respond(s, i, "⏭️ Skipped")
	}
	return respond(s, i, fmt.Sprintf("⏭️ Skipped **%s**", title))
}

// showQueue lists the current and upcoming tracks
func (m *Music) showQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	return respond(s, i, formatQueue(m.player.Queue(i.GuildID)))
}

// setVolume sets the playback volume in percent
func (m *Music) setVolume(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		st, err := m.player.Status(ctx, i.GuildID)
		if err != nil {
			return playerError(err, false)
		}
		return respond(s, i, fmt.Sprintf("🔊 Volume is %d%%", st.Volume))
	}

	percent := int(options[0].IntValue())
	if err := m.player.SetVolume(ctx, i.GuildID, percent); err != nil {
		return playerError(err, false)
	}
	return respond(s, i, fmt.Sprintf("🔊 Volume set to %d%%", percent))
}

// showStatus reports the player state and the health of the extraction stack
func (m *Music) showStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if iErr := deferResponse(s, i); iErr != nil {
		return iErr
	}

	st, err := m.player.Status(ctx, i.GuildID)
	if err != nil {
		return playerError(err, true)
	}
	return editResponse(s, i, formatStatus(st, m.diagnostics.Collect(ctx)))
}
