package ratelimit

import (
	"container/list"
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/metrics"
)

// ErrLimiterStopped is returned to tasks still queued when the limiter stops
var ErrLimiterStopped = errors.New("rate limiter stopped")

const (
	// RefillInterval is how often queued tasks are re-examined after tokens were added
	RefillInterval = time.Second
	// FailureCooldown delays surfacing a task error so callers do not hot-loop
	FailureCooldown = 200 * time.Millisecond
)

// Task is a unit of work admitted by the limiter
type Task func(ctx context.Context) error

type pending struct {
	ctx    context.Context
	task   Task
	done   chan error
	elem   *list.Element
	queued bool
}

// Limiter admits tasks in FIFO order while at least one token is available
// and fewer than Concurrency tasks are in flight. The bucket is only read at
// the time of the last tick, so tokens arrive in steps of rate*tick rather
// than continuously.
type Limiter struct {
	name        string
	bucket      *rate.Limiter
	capacity    int
	concurrency int
	cooldown    time.Duration

	mu       sync.Mutex
	lastTick time.Time
	queue    *list.List
	inFlight int
	stopped  bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Stats is a point-in-time view of the limiter state
type Stats struct {
	Tokens   float64
	Capacity int
	InFlight int
	Queued   int
}

// NewLimiter creates a limiter for one upstream source and starts its refill ticker
func NewLimiter(name string, rl config.RateLimit) *Limiter {
	return newLimiter(name, rl, RefillInterval, FailureCooldown)
}

func newLimiter(name string, rl config.RateLimit, tick, cooldown time.Duration) *Limiter {
	rl = rl.WithDefaults()
	perSecond := rate.Limit(float64(rl.RateLimitPerMinute) / 60.0)
	capacity := capacityFor(rl.Burst, perSecond)

	l := &Limiter{
		name:        name,
		bucket:      rate.NewLimiter(perSecond, capacity),
		capacity:    capacity,
		concurrency: rl.Concurrency,
		cooldown:    cooldown,
		lastTick:    time.Now(),
		queue:       list.New(),
		stopCh:      make(chan struct{}),
	}

	l.wg.Add(1)
	go l.refillLoop(tick)

	return l
}

// capacityFor returns max(burst, ceil(tokens per second))
func capacityFor(burst int, perSecond rate.Limit) int {
	perTick := int(math.Ceil(float64(perSecond)))
	if burst > perTick {
		return burst
	}
	if perTick < 1 {
		return 1
	}
	return perTick
}

// Name returns the source the limiter belongs to
func (l *Limiter) Name() string {
	return l.name
}

// Schedule queues task and blocks until it ran or ctx is done while still queued.
// A failed task returns its error after a short cooldown.
func (l *Limiter) Schedule(ctx context.Context, task Task) error {
	p := &pending{ctx: ctx, task: task, done: make(chan error, 1)}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLimiterStopped
	}
	p.elem = l.queue.PushBack(p)
	p.queued = true
	l.mu.Unlock()

	l.drain()

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		l.mu.Lock()
		if p.queued {
			l.queue.Remove(p.elem)
			p.queued = false
			l.mu.Unlock()
			return ctx.Err()
		}
		l.mu.Unlock()
		// Already dispatched; the task observes ctx itself
		return <-p.done
	}
}

// Do schedules fn on l and returns its result. A nil limiter runs fn directly.
func Do[T any](ctx context.Context, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	if l == nil {
		return fn(ctx)
	}

	var result T
	err := l.Schedule(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	return result, err
}

// drain dispatches queued tasks while both constraints allow it
func (l *Limiter) drain() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.queue.Len() > 0 && l.inFlight < l.concurrency && !l.stopped {
		front := l.queue.Front()
		p := front.Value.(*pending)

		if err := p.ctx.Err(); err != nil {
			l.queue.Remove(front)
			p.queued = false
			p.done <- err
			continue
		}

		// Fewer than one token: the task stays at the front until the next refill
		if !l.bucket.AllowN(l.lastTick, 1) {
			return
		}

		l.queue.Remove(front)
		p.queued = false
		l.inFlight++
		go l.run(p)
	}
}

func (l *Limiter) run(p *pending) {
	err := p.task(p.ctx)

	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
	l.drain()

	if err != nil && l.cooldown > 0 {
		time.Sleep(l.cooldown)
	}
	p.done <- err
}

func (l *Limiter) refillLoop(tick time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			l.lastTick = now
			l.mu.Unlock()
			l.drain()
			stats := l.Stats()
			metrics.RecordLimiterStats(l.name, stats.Tokens, stats.InFlight, stats.Queued)
		}
	}
}

// Stop terminates the refill ticker and fails every queued task
func (l *Limiter) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	for e := l.queue.Front(); e != nil; e = e.Next() {
		p := e.Value.(*pending)
		p.queued = false
		p.done <- ErrLimiterStopped
	}
	l.queue.Init()
	l.mu.Unlock()

	close(l.stopCh)
	l.wg.Wait()
}

// Stats returns the current token balance, in-flight and queued task counts
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Tokens:   l.bucket.TokensAt(l.lastTick),
		Capacity: l.capacity,
		InFlight: l.inFlight,
		Queued:   l.queue.Len(),
	}
}
