package session

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
)

// DefaultTickInterval is how often a running clock is refreshed.
const DefaultTickInterval = 100 * time.Millisecond

// ErrStopped is returned by Send once the runner has exited.
var ErrStopped = errors.New("session runner stopped")

// Listener receives every update from the runner goroutine. OnUpdate must
// not block and must not call back into the runner.
type Listener interface {
	OnUpdate(u Update)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(u Update)

// OnUpdate calls f(u).
func (f ListenerFunc) OnUpdate(u Update) { f(u) }

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithTickInterval sets the refresh period of a running clock.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithListener registers a listener for every update.
func WithListener(l Listener) Option {
	return func(r *Runner) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// request is one mailbox entry.
type request struct {
	ev    Event
	reply chan result
}

// result is the answer to a request.
type result struct {
	update Update
	err    error
}

// Runner serialises every input and tick for one Controller.
type Runner struct {
	// ctrl is owned by the Run goroutine.
	ctrl *Controller
	// clock supplies tickers and the current time.
	clock clockwork.Clock
	// interval is the tick period while running.
	interval time.Duration
	// listeners are called synchronously with every update.
	listeners []Listener
	// hub fans updates out to asynchronous subscribers.
	hub *Hub
	// mailbox carries input events into the Run goroutine.
	mailbox chan request
	// done is closed when Run returns.
	done chan struct{}

	// ticker is non-nil exactly while the clock is running.
	ticker clockwork.Ticker
	// lastTick is when elapsed time was last charged.
	lastTick time.Time
}

// NewRunner wraps ctrl. Call Run to start processing.
func NewRunner(ctrl *Controller, opts ...Option) *Runner {
	r := &Runner{
		ctrl:     ctrl,
		clock:    clockwork.NewRealClock(),
		interval: DefaultTickInterval,
		hub:      NewHub(),
		mailbox:  make(chan request),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Hub returns the hub receiving every update.
func (r *Runner) Hub() *Hub {
	return r.hub
}

// Subscribe registers an asynchronous subscriber on the runner's hub.
func (r *Runner) Subscribe() (<-chan Update, func()) {
	return r.hub.Subscribe()
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Send delivers ev to the runner and waits for the resulting update.
func (r *Runner) Send(ctx context.Context, ev Event) (Update, error) {
	req := request{
		ev:    ev,
		reply: make(chan result, 1),
	}

	select {
	case r.mailbox <- req:
	case <-r.done:
		return Update{}, ErrStopped
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.update, res.err
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}
}

// Run processes events until ctx is cancelled. It must be called once.
func (r *Runner) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "session")

	defer close(r.done)
	defer r.hub.Close()
	defer r.stopTicker()

	initial, _ := r.ctrl.Handle(Query{}) //nolint:errcheck // Query never fails.
	r.publish(ctx, initial)
	r.syncTicker(initial.State)

	logger.InfoKV(ctx, "Session runner started",
		"session_id", initial.State.SessionID,
		"phase", initial.State.Phase,
		"tick_interval", r.interval.String(),
	)

	for {
		var tickC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.Chan()
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Session runner stopped")

			return nil
		case <-tickC:
			r.handle(ctx, r.elapsedEvent())
		case req := <-r.mailbox:
			// Charge the time since the last tick before the input takes effect,
			// so a switch never hands that slice to the wrong side.
			if r.ticker != nil {
				r.handle(ctx, r.elapsedEvent())
			}

			update, err := r.handle(ctx, req.ev)
			req.reply <- result{update: update, err: err}
		}
	}
}

// handle runs ev through the controller and publishes the update.
func (r *Runner) handle(ctx context.Context, ev Event) (Update, error) {
	before := r.ctrl.State()

	update, err := r.ctrl.Handle(ev)
	if err != nil {
		logger.WarnKV(ctx, "Event rejected", "event", ev, "error", err)

		return update, err
	}

	after := update.State
	if before.Phase != after.Phase || before.SessionID != after.SessionID {
		logger.InfoKV(ctx, "Clock phase changed",
			"session_id", after.SessionID,
			"from", before.Phase,
			"to", after.Phase,
			"active_side", after.ActiveSide,
			"remaining1", clock.FormatRemaining(after.Remaining1),
			"remaining2", clock.FormatRemaining(after.Remaining2),
		)
	}

	if update.Has(SignalAlarm) {
		logger.InfoKV(ctx, "Time is up", "session_id", after.SessionID, "moves", after.Moves)
	}

	r.syncTicker(after)
	r.publish(ctx, update)

	return update, nil
}

// elapsedEvent measures the wall time since the previous tick.
func (r *Runner) elapsedEvent() Event {
	now := r.clock.Now()
	elapsed := now.Sub(r.lastTick)
	r.lastTick = now

	return TickElapsed{Elapsed: elapsed}
}

// syncTicker keeps a ticker alive exactly while the clock runs.
func (r *Runner) syncTicker(s clock.State) {
	running := s.Phase == clock.Running

	switch {
	case running && r.ticker == nil:
		r.ticker = r.clock.NewTicker(r.interval)
		r.lastTick = r.clock.Now()
	case !running && r.ticker != nil:
		r.stopTicker()
	}
}

func (r *Runner) stopTicker() {
	if r.ticker == nil {
		return
	}

	r.ticker.Stop()
	r.ticker = nil
}

func (r *Runner) publish(ctx context.Context, u Update) {
	for _, l := range r.listeners {
		l.OnUpdate(u)
	}

	r.hub.Publish(u)

	logger.DebugKV(ctx, "Clock update",
		"phase", u.State.Phase,
		"active_side", u.State.ActiveSide,
		"remaining1", u.State.Remaining1.String(),
		"remaining2", u.State.Remaining2.String(),
	)
}
