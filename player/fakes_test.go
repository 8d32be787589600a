package player

import (
	"context"
	"errors"
	"strings"
	"sync"

	"JalebiJams/playlist"
	"JalebiJams/queue"
	"JalebiJams/resolver"
)

type fakeVoice struct {
	mu           sync.Mutex
	channelID    string
	playing      bool
	paused       bool
	onFinish     func(error)
	plays        []string
	volume       float64
	disconnected bool
	dead         bool
	playErr      error
}

func (v *fakeVoice) Alive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.dead
}

// kill simulates the connection being closed from the outside
func (v *fakeVoice) kill() {
	v.mu.Lock()
	v.dead = true
	v.mu.Unlock()
	v.end(errors.New("voice connection closed"))
}

func (v *fakeVoice) ChannelID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.channelID
}

func (v *fakeVoice) Move(ctx context.Context, channelID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.channelID = channelID
	return nil
}

func (v *fakeVoice) Disconnect() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disconnected = true
	return nil
}

func (v *fakeVoice) Play(streamURL string, onFinish func(error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playErr != nil {
		return v.playErr
	}
	if v.dead {
		return errors.New("voice connection never became ready")
	}
	v.plays = append(v.plays, streamURL)
	v.playing = true
	v.paused = false
	v.onFinish = onFinish
	return nil
}

func (v *fakeVoice) Pause() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.playing || v.paused {
		return false
	}
	v.paused = true
	return true
}

func (v *fakeVoice) Resume() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.paused {
		return false
	}
	v.paused = false
	return true
}

func (v *fakeVoice) Stop() {
	v.end(nil)
}

// end simulates the stream finishing on its own
func (v *fakeVoice) end(err error) {
	v.mu.Lock()
	cb := v.onFinish
	v.onFinish = nil
	v.playing = false
	v.paused = false
	v.mu.Unlock()

	if cb != nil {
		cb(err)
	}
}

func (v *fakeVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

func (v *fakeVoice) IsPaused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

func (v *fakeVoice) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *fakeVoice) Plays() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.plays...)
}

func (v *fakeVoice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *fakeVoice) Disconnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disconnected
}

type fakeConnector struct {
	mu     sync.Mutex
	voices map[string]*fakeVoice
	err    error
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{voices: map[string]*fakeVoice{}}
}

func (c *fakeConnector) Connect(ctx context.Context, guildID, channelID string) (Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	v := &fakeVoice{channelID: channelID}
	c.voices[guildID] = v
	return v, nil
}

func (c *fakeConnector) voice(guildID string) *fakeVoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voices[guildID]
}

type fakePresence struct {
	mu         sync.Mutex
	humans     int
	botChannel string
}

func (p *fakePresence) BotChannel(guildID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.botChannel
}

func (p *fakePresence) HumansIn(guildID, channelID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.humans
}

type fakeReplier struct {
	mu       sync.Mutex
	messages []string
}

func (r *fakeReplier) Send(target queue.ReplyTarget, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func (r *fakeReplier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *fakeReplier) count(prefix string) int {
	n := 0
	for _, m := range r.Messages() {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

// fakeResolver resolves any reference to "stream:<reference>". References in fail always
// fail, references in block wait until their channel is closed
type fakeResolver struct {
	mu    sync.Mutex
	fail  map[string]bool
	block map[string]chan struct{}
	calls []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{fail: map[string]bool{}, block: map[string]chan struct{}{}}
}

func (r *fakeResolver) Resolve(ctx context.Context, reference string, mode resolver.Mode) (*resolver.ResolvedTrack, error) {
	r.mu.Lock()
	r.calls = append(r.calls, reference)
	gate := r.block[reference]
	fail := r.fail[reference]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, &resolver.ExtractionError{Reference: reference, Cause: errors.New("video unavailable")}
	}
	return &resolver.ResolvedTrack{
		Title:     "title " + reference,
		StreamURL: "stream:" + reference,
		Provider:  resolver.Primary,
	}, nil
}

func (r *fakeResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeExpander struct {
	refs []string
}

func (e *fakeExpander) Expand(ctx context.Context, reference string, mode resolver.Mode, target queue.ReplyTarget) (*playlist.Playlist, error) {
	pl := &playlist.Playlist{Title: "Mixtape"}
	for _, ref := range e.refs {
		pl.Tracks = append(pl.Tracks, queue.TrackReference{SourceURL: ref, Title: ref, ReplyTarget: target})
	}
	return pl, nil
}

type fakeHistory struct {
	mu     sync.Mutex
	played map[string]int64
}

func (h *fakeHistory) Record(ctx context.Context, guildID string, ref queue.TrackReference, track *resolver.ResolvedTrack) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.played == nil {
		h.played = map[string]int64{}
	}
	h.played[guildID]++
	return nil
}

func (h *fakeHistory) Count(ctx context.Context, guildID string) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.played[guildID], nil
}
