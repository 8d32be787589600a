package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"JalebiJams/playlist"
	"JalebiJams/queue"
	"JalebiJams/resolver"
	"JalebiJams/utils"

	"github.com/Strum355/log"
)

// Config tunes the controller
type Config struct {
	Mode        resolver.Mode // Resolution and playlist expansion mode
	Volume      int           // Starting volume in percent
	ErrorLength int           // Longest error text sent back to a requester
}

// Deps are the collaborators the controller drives. History may be nil
type Deps struct {
	Connector Connector
	Presence  Presence
	Replier   Replier
	Resolver  Resolver
	Expander  Expander
	History   History
}

// Request is a play command from a user
type Request struct {
	GuildID   string
	ChannelID string // Voice channel of the requester
	Reference string // URL or search text
	Target    queue.ReplyTarget
}

// Status describes a guild's player at one point in time
type Status struct {
	State     State
	Connected bool
	ChannelID string
	Paused    bool
	Track     *resolver.ResolvedTrack
	Queue     queue.Snapshot
	Pending   int // Tracks waiting behind the current one
	Volume    int
	Mode      resolver.Mode
	Played    int64 // Tracks played in this guild, -1 when history is disabled
}

// Controller runs one actor per guild and drives playback from the guild queues
type Controller struct {
	deps   Deps
	cfg    Config
	queues *queue.Registry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	players  map[string]*guildPlayer
	shutdown bool
}

// NewController returns a Controller using queues for per guild storage
func NewController(deps Deps, queues *queue.Registry, cfg Config) *Controller {
	if cfg.Volume < 0 || cfg.Volume > 100 {
		cfg.Volume = 50
	}
	if cfg.ErrorLength <= 0 {
		cfg.ErrorLength = 180
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		deps:    deps,
		cfg:     cfg,
		queues:  queues,
		ctx:     ctx,
		cancel:  cancel,
		players: map[string]*guildPlayer{},
	}
}

func (c *Controller) player(guildID string) (*guildPlayer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return nil, ErrShutdown
	}
	p, ok := c.players[guildID]
	if !ok {
		p = newGuildPlayer(guildID, c.queues.Get(guildID), float64(c.cfg.Volume)/100)
		c.players[guildID] = p
	}
	return p, nil
}

func (c *Controller) lookup(guildID string) (*guildPlayer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[guildID]
	return p, ok && !c.shutdown
}

// Play connects to the requester's channel and plays or enqueues the reference
func (c *Controller) Play(ctx context.Context, req Request) (string, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return "", &UserInputError{Message: "Give me a link or something to search for"}
	}

	p, err := c.player(req.GuildID)
	if err != nil {
		return "", err
	}

	var (
		gen     uint64
		connErr error
	)
	if err := p.call(ctx, func() {
		connErr = c.ensureVoice(ctx, p, req.ChannelID)
		gen = p.generation
		p.lastTarget = req.Target
	}); err != nil {
		return "", err
	}
	if connErr != nil {
		return "", connErr
	}

	reference = playlist.StripMix(reference)
	if playlist.IsPlaylist(reference) {
		return c.playPlaylist(ctx, p, gen, reference, req.Target)
	}
	return c.playSingle(ctx, p, gen, reference, req.Target)
}

func (c *Controller) playSingle(ctx context.Context, p *guildPlayer, gen uint64, reference string, target queue.ReplyTarget) (string, error) {
	track, err := c.deps.Resolver.Resolve(ctx, reference, c.cfg.Mode)
	if err != nil {
		return "", err
	}

	ref := queue.TrackReference{SourceURL: reference, Title: track.Title, ReplyTarget: target}

	var (
		msg    string
		outErr error
	)
	if err := p.call(ctx, func() {
		if p.generation != gen {
			outErr = ErrStale
			return
		}
		if p.busy() {
			n := p.queue.Add(ref)
			msg = fmt.Sprintf("Added to queue: **%s** (position %d)", track.Title, n)
			return
		}

		p.queue.Add(ref)
		p.queue.PopFront()
		if err := c.startStream(p, ref, track); err != nil {
			p.queue.ClearCurrent()
			p.state = Failed
			outErr = err
			return
		}
		msg = nowPlaying(track)
	}); err != nil {
		return "", err
	}
	return msg, outErr
}

func (c *Controller) playPlaylist(ctx context.Context, p *guildPlayer, gen uint64, reference string, target queue.ReplyTarget) (string, error) {
	pl, err := c.deps.Expander.Expand(ctx, reference, c.cfg.Mode, target)
	if err != nil {
		return "", err
	}

	var outErr error
	if err := p.call(ctx, func() {
		if p.generation != gen {
			outErr = ErrStale
			return
		}
		p.queue.AddAll(pl.Tracks)
		if !p.busy() {
			c.advance(p)
		}
	}); err != nil {
		return "", err
	}
	if outErr != nil {
		return "", outErr
	}
	return fmt.Sprintf("Added **%d** songs from playlist: **%s**", len(pl.Tracks), pl.Title), nil
}

// busy reports whether a stream is playing or about to. Runs on the actor
func (p *guildPlayer) busy() bool {
	if p.draining || p.state == Playing || p.state == Resolving {
		return true
	}
	return p.voice != nil && p.voice.IsPlaying()
}

// ensureVoice joins channelID or moves the existing connection there. Runs on the actor
func (c *Controller) ensureVoice(ctx context.Context, p *guildPlayer, channelID string) error {
	if channelID == "" {
		return &UserInputError{Message: "Join a voice channel first"}
	}

	if p.voice != nil && !p.voice.Alive() {
		log.WithFields(log.Fields{
			"guild_id":   p.guildID,
			"channel_id": p.voice.ChannelID(),
		}).Warn("Replacing dead voice connection")
		c.drop(p)
	}

	if p.voice != nil {
		if p.voice.ChannelID() == channelID {
			return nil
		}
		if err := p.voice.Move(ctx, channelID); err != nil {
			return &ConnectionError{ChannelID: channelID, Err: err}
		}
		return nil
	}

	prev := p.state
	p.state = Connecting
	v, err := c.deps.Connector.Connect(ctx, p.guildID, channelID)
	p.state = prev
	if err != nil {
		return &ConnectionError{ChannelID: channelID, Err: err}
	}

	v.SetVolume(p.volume)
	p.voice = v
	return nil
}

// startStream hands a resolved track to the voice connection. Runs on the actor
func (c *Controller) startStream(p *guildPlayer, ref queue.TrackReference, track *resolver.ResolvedTrack) error {
	if p.voice == nil {
		return ErrNotConnected
	}

	p.streamSeq++
	seq := p.streamSeq
	err := p.voice.Play(track.StreamURL, func(err error) {
		p.submit(func() { c.finished(p, seq, err) })
	})
	if err != nil {
		return err
	}

	p.state = Playing
	p.track = track

	log.WithFields(log.Fields{
		"guild_id": p.guildID,
		"title":    track.Title,
		"provider": track.Provider.String(),
	}).Info("Started stream")

	if c.deps.History != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.deps.History.Record(c.ctx, p.guildID, ref, track); err != nil {
				log.WithError(err).Error("Failed to record play history")
			}
		}()
	}
	return nil
}

// finished handles the end of a stream. Callbacks from a replaced or invalidated stream are ignored
func (c *Controller) finished(p *guildPlayer, seq uint64, err error) {
	if seq != p.streamSeq {
		return
	}

	p.track = nil
	ref, hasRef := p.queue.Current()
	p.queue.ClearCurrent()

	if err != nil {
		p.state = Failed
		log.WithFields(log.Fields{
			"guild_id": p.guildID,
			"error":    err.Error(),
		}).Warn("Stream ended with an error")
		if hasRef {
			c.sendAsync(ref.ReplyTarget, fmt.Sprintf("Playback of **%s** failed: %s", ref.Title, c.errorText(err)))
		}
	} else {
		p.state = Completed
	}

	c.advance(p)
}

// advance starts a drain worker unless one is running or the queue is empty. Runs on the actor
func (c *Controller) advance(p *guildPlayer) {
	if p.draining {
		return
	}
	if p.queue.IsEmpty() {
		p.state = Idle
		return
	}

	p.draining = true
	gen := p.generation
	c.wg.Add(1)
	go c.drain(p, gen)
}

// drain resolves queued tracks one by one until one starts playing, the queue runs
// dry, or the generation changes. Each iteration consumes one queue entry
func (c *Controller) drain(p *guildPlayer, gen uint64) {
	defer c.wg.Done()

	for {
		var (
			ref queue.TrackReference
			ok  bool
		)
		if err := p.call(c.ctx, func() {
			if p.generation != gen {
				return
			}
			ref, ok = p.queue.PopFront()
			if !ok {
				p.draining = false
				p.state = Idle
				return
			}
			p.state = Resolving
		}); err != nil || !ok {
			return
		}

		track, resolveErr := c.deps.Resolver.Resolve(c.ctx, ref.SourceURL, c.cfg.Mode)

		var (
			msg  string
			done bool
		)
		if err := p.call(c.ctx, func() {
			if p.generation != gen {
				done = true
				return
			}

			playErr := resolveErr
			if playErr == nil {
				playErr = c.startStream(p, ref, track)
			}
			if playErr != nil {
				p.state = Failed
				p.queue.ClearCurrent()
				msg = fmt.Sprintf("Skipping **%s**: %s", displayTitle(ref), c.errorText(playErr))
				log.WithFields(log.Fields{
					"guild_id":  p.guildID,
					"reference": ref.SourceURL,
					"error":     playErr.Error(),
				}).Warn("Skipping queued track")
				return
			}

			p.draining = false
			done = true
			msg = nowPlaying(track)
		}); err != nil {
			return
		}

		if msg != "" {
			c.send(ref.ReplyTarget, msg)
		}
		if done {
			return
		}
	}
}

// Pause pauses the current stream
func (c *Controller) Pause(ctx context.Context, guildID string) error {
	return c.control(ctx, guildID, func(p *guildPlayer) error {
		if p.voice == nil || p.state != Playing {
			return ErrNothingPlaying
		}
		if !p.voice.Pause() {
			return &UserInputError{Message: "Playback is already paused"}
		}
		return nil
	})
}

// Resume continues a paused stream
func (c *Controller) Resume(ctx context.Context, guildID string) error {
	return c.control(ctx, guildID, func(p *guildPlayer) error {
		if p.voice == nil || p.state != Playing {
			return ErrNothingPlaying
		}
		if !p.voice.Resume() {
			return &UserInputError{Message: "Playback is not paused"}
		}
		return nil
	})
}

// Stop clears the queue and halts playback. In flight resolutions are discarded
func (c *Controller) Stop(ctx context.Context, guildID string) error {
	return c.control(ctx, guildID, func(p *guildPlayer) error {
		p.queue.Clear()
		p.invalidate()
		if p.voice != nil {
			p.voice.Stop()
		}
		p.state = Idle
		return nil
	})
}

// Skip halts the current stream. Its completion callback advances the queue
func (c *Controller) Skip(ctx context.Context, guildID string) (string, error) {
	var title string
	err := c.control(ctx, guildID, func(p *guildPlayer) error {
		if p.voice == nil || p.state != Playing {
			return ErrNothingPlaying
		}
		if p.track != nil {
			title = p.track.Title
		}
		p.voice.Stop()
		return nil
	})
	return title, err
}

// SetVolume sets the guild's volume in percent
func (c *Controller) SetVolume(ctx context.Context, guildID string, percent int) error {
	if percent < 0 || percent > 100 {
		return &UserInputError{Message: "Volume must be between 0 and 100"}
	}

	p, err := c.player(guildID)
	if err != nil {
		return err
	}
	return p.call(ctx, func() {
		p.volume = float64(percent) / 100
		if p.voice != nil {
			p.voice.SetVolume(p.volume)
		}
	})
}

// Join connects to channelID, moving the existing connection if needed
func (c *Controller) Join(ctx context.Context, guildID, channelID string, target queue.ReplyTarget) error {
	p, err := c.player(guildID)
	if err != nil {
		return err
	}

	var connErr error
	if err := p.call(ctx, func() {
		connErr = c.ensureVoice(ctx, p, channelID)
		p.lastTarget = target
	}); err != nil {
		return err
	}
	return connErr
}

// Leave clears the queue and disconnects from voice
func (c *Controller) Leave(ctx context.Context, guildID string) error {
	return c.control(ctx, guildID, func(p *guildPlayer) error {
		if p.voice == nil {
			return ErrNotConnected
		}
		c.leave(p)
		return nil
	})
}

func (c *Controller) leave(p *guildPlayer) {
	p.queue.Clear()
	p.invalidate()
	p.state = Idle
	if p.voice == nil {
		return
	}

	p.voice.Stop()
	if err := p.voice.Disconnect(); err != nil {
		log.WithError(err).Error("Failed to disconnect from voice")
	}
	p.voice = nil
}

// drop forgets a connection that was closed from the outside. The queue is kept. Runs on the actor
func (c *Controller) drop(p *guildPlayer) {
	p.invalidate()
	p.state = Idle
	p.voice.Stop()
	// Usually already gone, the error only says so
	_ = p.voice.Disconnect()
	p.voice = nil
}

// Dropped handles the bot being removed from voice by someone else, such as a kick or a deleted
// channel. Playback stops and the queue is cleared. Events caused by our own leave, or followed by
// a fresh connection, are ignored
func (c *Controller) Dropped(guildID string) {
	p, ok := c.lookup(guildID)
	if !ok {
		return
	}

	p.submit(func() {
		if p.voice == nil {
			return
		}
		if c.deps.Presence != nil && c.deps.Presence.BotChannel(guildID) != "" {
			return
		}

		channelID := p.voice.ChannelID()
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
		}).Warn("Disconnected from voice externally")
		c.drop(p)
		p.queue.Clear()
		if p.lastTarget.ChannelID != "" {
			c.sendAsync(p.lastTarget, fmt.Sprintf("Got disconnected from <#%s>, queue cleared", channelID))
		}
	})
}

// LeaveIfAlone disconnects when no one but the bot is left in its channel
func (c *Controller) LeaveIfAlone(guildID string) {
	p, ok := c.lookup(guildID)
	if !ok {
		return
	}

	p.submit(func() {
		if p.voice == nil || c.deps.Presence == nil {
			return
		}
		channelID := p.voice.ChannelID()
		if c.deps.Presence.HumansIn(guildID, channelID) > 0 {
			return
		}

		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
		}).Info("Leaving empty voice channel")
		c.leave(p)
		if p.lastTarget.ChannelID != "" {
			c.sendAsync(p.lastTarget, fmt.Sprintf("Left <#%s> since everyone else did", channelID))
		}
	})
}

// Queue returns a copy of the guild's queue
func (c *Controller) Queue(guildID string) queue.Snapshot {
	q, ok := c.queues.Lookup(guildID)
	if !ok {
		return queue.Snapshot{}
	}
	return q.Snapshot()
}

// Status reports the guild's player state
func (c *Controller) Status(ctx context.Context, guildID string) (Status, error) {
	p, err := c.player(guildID)
	if err != nil {
		return Status{}, err
	}

	var st Status
	if err := p.call(ctx, func() {
		st = Status{
			State:   p.state,
			Track:   p.track,
			Volume:  int(p.volume*100 + 0.5),
			Mode:    c.cfg.Mode,
			Queue:   p.queue.Snapshot(),
			Pending: p.queue.Len(),
			Played:  -1,
		}
		if p.voice != nil {
			st.Connected = true
			st.ChannelID = p.voice.ChannelID()
			st.Paused = p.voice.IsPaused()
		}
	}); err != nil {
		return Status{}, err
	}

	if c.deps.History != nil {
		played, err := c.deps.History.Count(ctx, guildID)
		if err != nil {
			log.WithError(err).Error("Failed to count play history")
		} else {
			st.Played = played
		}
	}
	return st, nil
}

// Shutdown stops every guild player and disconnects from voice
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	c.shutdown = true
	players := make([]*guildPlayer, 0, len(c.players))
	for _, p := range c.players {
		players = append(players, p)
	}
	c.mu.Unlock()

	c.cancel()
	for _, p := range players {
		if err := p.call(ctx, func() { c.leave(p) }); err != nil {
			log.WithError(err).Error("Failed to stop guild player")
		}
		p.close()
	}
	c.wg.Wait()
	c.queues.ClearAll()
}

func (c *Controller) control(ctx context.Context, guildID string, fn func(p *guildPlayer) error) error {
	p, err := c.player(guildID)
	if err != nil {
		return err
	}

	var outErr error
	if err := p.call(ctx, func() { outErr = fn(p) }); err != nil {
		return err
	}
	return outErr
}

func (c *Controller) send(target queue.ReplyTarget, text string) {
	if c.deps.Replier == nil || target.ChannelID == "" {
		return
	}
	if err := c.deps.Replier.Send(target, text); err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}

func (c *Controller) sendAsync(target queue.ReplyTarget, text string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.send(target, text)
	}()
}

func (c *Controller) errorText(err error) string {
	var extraction *resolver.ExtractionError
	if errors.As(err, &extraction) && extraction.Cause != nil {
		err = extraction.Cause
	}
	return utils.Truncate(err.Error(), c.cfg.ErrorLength)
}

func nowPlaying(track *resolver.ResolvedTrack) string {
	if track.Duration != nil {
		return fmt.Sprintf("Now playing: **%s** (%s)", track.Title, utils.FormatDuration(*track.Duration))
	}
	return fmt.Sprintf("Now playing: **%s**", track.Title)
}

func displayTitle(ref queue.TrackReference) string {
	if ref.Title != "" {
		return ref.Title
	}
	return ref.SourceURL
}
