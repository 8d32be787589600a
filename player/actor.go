package player

import (
	"context"
	"sync"

	"JalebiJams/queue"
	"JalebiJams/resolver"
)

// guildPlayer owns all playback state of one guild. Fields below the mailbox are only
// touched by tasks running on the actor goroutine
type guildPlayer struct {
	guildID string
	queue   *queue.GuildQueue

	mu     sync.Mutex
	tasks  []func()
	notify chan struct{}
	quit   chan struct{}
	closed bool
	once   sync.Once

	state      State
	voice      Voice
	volume     float64
	generation uint64
	streamSeq  uint64
	draining   bool
	track      *resolver.ResolvedTrack
	lastTarget queue.ReplyTarget
}

func newGuildPlayer(guildID string, q *queue.GuildQueue, volume float64) *guildPlayer {
	p := &guildPlayer{
		guildID: guildID,
		queue:   q,
		notify:  make(chan struct{}, 1),
		quit:    make(chan struct{}),
		volume:  volume,
	}
	go p.run()
	return p
}

func (p *guildPlayer) run() {
	for {
		select {
		case <-p.quit:
			return
		case <-p.notify:
		}

		for {
			task, ok := p.next()
			if !ok {
				break
			}
			task()
		}
	}
}

func (p *guildPlayer) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tasks) == 0 {
		return nil, false
	}
	task := p.tasks[0]
	p.tasks[0] = nil
	p.tasks = p.tasks[1:]
	return task, true
}

// submit enqueues a task on the mailbox without blocking. Tasks must never submit and wait on
// their own actor
func (p *guildPlayer) submit(task func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return true
}

// call runs task on the actor and waits for it to finish. A task whose ctx is done before the
// actor reaches it is skipped; one already running is not interrupted and must check ctx itself
// before any side effect it would not want after the caller gave up
func (p *guildPlayer) call(ctx context.Context, task func()) error {
	var skipped error
	done := make(chan struct{})
	if !p.submit(func() {
		defer close(done)
		if skipped = ctx.Err(); skipped != nil {
			return
		}
		task()
	}) {
		return ErrShutdown
	}

	select {
	case <-done:
		return skipped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the actor after the tasks already in the mailbox have run
func (p *guildPlayer) close() {
	p.once.Do(func() {
		finished := make(chan struct{})
		if p.submit(func() { close(finished) }) {
			<-finished
		}

		p.mu.Lock()
		p.closed = true
		p.tasks = nil
		p.mu.Unlock()
		close(p.quit)
	})
}

// invalidate discards every in flight resolution and pending completion callback
func (p *guildPlayer) invalidate() {
	p.generation++
	p.streamSeq++
	p.draining = false
	p.track = nil
}
