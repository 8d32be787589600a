package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// ErrAlreadyPlaying is returned when Play is called while a stream is running
var ErrAlreadyPlaying = errors.New("a stream is already playing")

// Connection streams audio into one Discord voice connection
type Connection struct {
	vc     *discordgo.VoiceConnection // Discord voice connection for this guild
	ffmpeg string                     // Path of the ffmpeg binary

	mu        sync.Mutex
	channelID string
	volume    float64 // Linear gain, 1 is unchanged
	paused    bool
	current   *stream
}

// stream is a single ffmpeg decode feeding the voice connection
type stream struct {
	cmd  *exec.Cmd
	stop chan struct{} // Closed to halt the stream
	done chan struct{} // Closed once the stream goroutine has exited
	once sync.Once
}

func (s *stream) halt() {
	s.once.Do(func() {
		close(s.stop)
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
	})
}

func newConnection(vc *discordgo.VoiceConnection, channelID, ffmpeg string) *Connection {
	return &Connection{
		vc:        vc,
		ffmpeg:    ffmpeg,
		channelID: channelID,
		volume:    1,
	}
}

func (c *Connection) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// Alive reports whether discordgo still considers the connection usable. It turns false once
// the session gives up on a connection closed by Discord
func (c *Connection) Alive() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

// Move switches the connection to another channel in the same guild
func (c *Connection) Move(ctx context.Context, channelID string) error {
	if err := c.vc.ChangeChannel(channelID, false, true); err != nil {
		return err
	}
	c.mu.Lock()
	c.channelID = channelID
	c.mu.Unlock()
	return nil
}

// Disconnect halts playback and leaves the channel
func (c *Connection) Disconnect() error {
	c.Stop()
	return c.vc.Disconnect()
}

// Play starts decoding input in the background. onFinish runs once when the stream ends,
// with nil after a normal end or a Stop
func (c *Connection) Play(input string, onFinish func(error)) error {
	if err := waitReady(c.vc); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return ErrAlreadyPlaying
	}

	cmd := exec.Command(c.ffmpeg, ffmpegArgs(input)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	s := &stream{
		cmd:  cmd,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.current = s
	c.paused = false

	go func() {
		err := c.pump(s, stdout, encoder)
		stopped := false
		select {
		case <-s.stop:
			stopped = true
		default:
		}

		s.halt()
		waitErr := cmd.Wait()
		if err == nil && waitErr != nil && !stopped {
			err = fmt.Errorf("ffmpeg: %w: %s", waitErr, strings.TrimSpace(stderr.String()))
		}
		if stopped {
			err = nil
		}

		c.vc.Speaking(false)
		c.mu.Lock()
		if c.current == s {
			c.current = nil
			c.paused = false
		}
		c.mu.Unlock()
		close(s.done)

		onFinish(err)
	}()
	return nil
}

// pump reads PCM frames from ffmpeg, encodes them to Opus and sends them until EOF or stop
func (c *Connection) pump(s *stream, pcm io.Reader, encoder *gopus.Encoder) error {
	c.vc.Speaking(true)

	buf := make([]byte, frameBytes)
	samples := make([]int16, frameSize*channels)

	for {
		select {
		case <-s.stop:
			return nil
		default:
		}

		c.mu.Lock()
		paused := c.paused
		volume := c.volume
		c.mu.Unlock()

		if paused {
			select {
			case <-s.stop:
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		n, err := io.ReadFull(pcm, buf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			clear(buf[n:])
		} else if err != nil {
			return err
		}

		applyVolume(buf, samples, volume)
		frame, err := encoder.Encode(samples, frameSize, maxOpusSize)
		if err != nil {
			return err
		}

		if len(frame) > 0 {
			select {
			case c.vc.OpusSend <- frame:
			case <-time.After(time.Second):
				return errors.New("timeout sending opus frame")
			case <-s.stop:
				return nil
			}
		}

		if n < frameBytes {
			return nil
		}
	}
}

// Stop halts the current stream and waits for it to wind down
func (c *Connection) Stop() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.halt()
	<-s.done
}

func (c *Connection) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.paused {
		return false
	}
	c.paused = true
	return true
}

func (c *Connection) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || !c.paused {
		return false
	}
	c.paused = false
	return true
}

func (c *Connection) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Connection) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.paused
}

// SetVolume sets the gain applied to every following frame
func (c *Connection) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = volume
}

// waitReady waits for the voice handshake to complete
func waitReady(vc *discordgo.VoiceConnection) error {
	for i := 0; i < 20; i++ {
		vc.RLock()
		ready := vc.Ready
		vc.RUnlock()
		if ready {
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	log.WithFields(log.Fields{
		"guild_id":   vc.GuildID,
		"channel_id": vc.ChannelID,
	}).Warn("Voice connection never became ready")
	return errors.New("voice connection never became ready")
}
