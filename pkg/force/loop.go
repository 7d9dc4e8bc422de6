package force

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/observability"
)

// DefaultInterval is the tick period of a [Loop], about one animation frame.
const DefaultInterval = 16 * time.Millisecond

// ErrStopped is returned by [Loop.Submit] once the loop has exited.
var ErrStopped = errors.New(errors.ErrCodeInternal, "simulation loop stopped")

// LoopOptions configures a [Loop].
type LoopOptions struct {
	Interval time.Duration
	Logger   *log.Logger
}

// Loop owns a simulation and performs every mutation of it on one
// goroutine: ticks on a timer while the simulation runs, and commands
// submitted from other goroutines in arrival order.
type Loop struct {
	sim      *Simulation
	interval time.Duration
	logger   *log.Logger

	cmds    chan command
	stopped chan struct{}
}

type command struct {
	fn   func(*Simulation)
	done chan struct{}
}

// NewLoop wraps sim. Run must be called to start ticking.
func NewLoop(sim *Simulation, opts LoopOptions) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Loop{
		sim:      sim,
		interval: opts.Interval,
		logger:   opts.Logger,
		cmds:     make(chan command),
		stopped:  make(chan struct{}),
	}
}

// Run drives the simulation until ctx is done and returns ctx.Err().
// Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)

	hooks := observability.Simulation()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var (
		running    bool
		started    time.Time
		startTicks int
	)
	observe := func() {
		if l.sim.Running() && !running {
			started, startTicks = time.Now(), l.sim.Ticks()
			hooks.OnStart(ctx, len(l.sim.Nodes()), l.linkCount())
			l.logger.Debug("simulation started", "alpha", l.sim.Alpha(), "target", l.sim.AlphaTarget())
		}
		running = l.sim.Running()
	}
	observe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-l.cmds:
			c.fn(l.sim)
			close(c.done)
			observe()
		case <-ticker.C:
			if !l.sim.Running() {
				continue
			}
			still := l.sim.Step()
			hooks.OnTick(ctx, l.sim.Ticks(), l.sim.Alpha())
			if !still {
				ticks, elapsed := l.sim.Ticks()-startTicks, time.Since(started)
				hooks.OnEnd(ctx, ticks, elapsed)
				l.logger.Debug("simulation settled", "ticks", ticks, "elapsed", elapsed.Round(time.Millisecond))
			}
			running = still
		}
	}
}

// Submit runs fn on the loop goroutine and waits for it to return.
// It fails if ctx is done first or the loop has exited.
func (l *Loop) Submit(ctx context.Context, fn func(*Simulation)) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case l.cmds <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case <-c.done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.stopped }

func (l *Loop) linkCount() int {
	if f, ok := l.sim.Force("link").(*Link); ok {
		return len(f.Links())
	}
	return 0
}
