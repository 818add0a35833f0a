// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bench runs testbench tasks against a circuit in simulated time.
//
// A Bench drives a divsim.Circuit. Tasks are plain Go functions running
// on their own goroutine, but the bench lets only one of them run at a time:
// a task runs until it blocks in one of the Task wait methods or returns, then
// the bench wakes the next task whose wait condition is met. Simulated time
// only advances while all tasks are blocked. This gives tasks the semantics of
// HDL testbench processes while keeping every run deterministic.
//
// Tasks waiting for the same simulation step are woken in a fixed order:
// timers first, then edge waiters, each group in wait order.
package bench

import (
	"context"
	"log/slog"
	"sort"

	"github.com/db47h/divsim"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrStalledSignal is returned by bounded waits when the awaited signal
// transition did not occur in time.
var ErrStalledSignal = errors.New("stalled signal")

// A Signal is a wire whose level can be sampled between simulation steps.
type Signal interface {
	Level() bool
}

// SignalFunc adapts a function to the Signal interface.
type SignalFunc func() bool

// Level implements Signal.
func (f SignalFunc) Level() bool { return f() }

// A TaskFn is the body of a task. The context is cancelled once the task has
// lost a race; pending waits then return the context error.
type TaskFn func(ctx context.Context, t *Task) error

// Bench drives a circuit in simulated time.
type Bench struct {
	c     *divsim.Circuit
	clock divsim.Clock
	log   *slog.Logger
}

// Option configures a Bench.
type Option func(*Bench)

// WithLogger sets the logger used by the bench.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bench) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns a new Bench driving circuit c, clocked by clk. The circuit
// remains owned by the caller.
func New(c *divsim.Circuit, clk divsim.Clock, opts ...Option) (*Bench, error) {
	if c == nil {
		return nil, errors.New("nil circuit")
	}
	if c.SPC() != clk.StepsPerCycle {
		return nil, errors.Errorf("clock has %d steps per cycle, circuit has %d", clk.StepsPerCycle, c.SPC())
	}
	if clk.Period <= 0 {
		return nil, errors.Errorf("invalid clock period %v", clk.Period)
	}
	b := &Bench{c: c, clock: clk, log: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Now returns the current simulated time.
func (b *Bench) Now() divsim.Time {
	return b.clock.At(b.c.Steps())
}

// Clock returns the bench clock.
func (b *Bench) Clock() divsim.Clock { return b.clock }

// Cycles runs the circuit for n whole clock cycles. It must not be called from
// a task.
func (b *Bench) Cycles(n int) {
	for ; n > 0; n-- {
		b.c.TickTock()
	}
}

// Run runs a single task until it returns.
func (b *Bench) Run(ctx context.Context, fn TaskFn) error {
	_, err := b.Race(ctx, fn)
	return err
}

type prio int

const (
	prioTimer prio = iota
	prioEdge
)

type waiter struct {
	t        *Task
	prio     prio
	ready    func(now divsim.Time) bool
	deadline divsim.Time // zero for none
	expired  error       // returned to the task once the deadline is reached
	at       divsim.Time // time at which the wait completed
	err      error
}

// an event is sent by a task when it blocks (w != nil) or returns.
type event struct {
	t   *Task
	w   *waiter
	err error
}

// Race runs the given tasks concurrently until one of them returns. The other
// tasks are then cancelled: their pending wait returns the context error
// without them being allowed to observe any later simulation step. Race only
// returns once every task has returned.
//
// It returns the index of the first task to return together with the error it
// returned. If ctx is cancelled before any task returns, Race returns -1 and
// the context error.
func (b *Bench) Race(ctx context.Context, tasks ...TaskFn) (int, error) {
	if len(tasks) == 0 {
		return -1, errors.New("no task to run")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		evs     = make(chan event)
		live    int
		pending []*waiter
		winner  = -1
		werr    error
	)
	handle := func(ev event) {
		if ev.w != nil {
			pending = append(pending, ev.w)
			return
		}
		live--
		if winner < 0 {
			winner, werr = ev.t.id, ev.err
			cancel()
		}
	}

	// tasks are started one at a time so that their first waits are
	// registered in argument order.
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range tasks {
		if winner >= 0 {
			break
		}
		fn := fn
		t := &Task{id: i, b: b, wake: make(chan error, 1), evs: evs}
		live++
		g.Go(func() error {
			err := fn(gctx, t)
			evs <- event{t: t, err: err}
			return err
		})
		handle(<-evs)
	}
	for winner < 0 {
		due, err := b.advance(ctx, &pending)
		if err != nil {
			werr = err
			cancel()
			break
		}
		for i, w := range due {
			if winner >= 0 {
				pending = append(pending, due[i:]...)
				break
			}
			w.t.wake <- w.err
			handle(<-evs)
		}
	}

	if winner >= 0 {
		b.log.Debug("race decided",
			slog.Int("winner", winner),
			slog.String("at", b.Now().String()),
			slog.Int("cancelled", len(pending)))
	}

	// cancel the remaining tasks one at a time.
	for _, w := range pending {
		for {
			w.t.wake <- ctx.Err()
			ev := <-evs
			if ev.w == nil {
				live--
				break
			}
			w = ev.w
		}
	}
	if live != 0 {
		panic("bench: live tasks after race")
	}
	_ = g.Wait()
	return winner, werr
}

// advance steps the circuit until at least one of the pending waiters is due.
// Due waiters are removed from pending and returned in wake-up order.
func (b *Bench) advance(ctx context.Context, pending *[]*waiter) ([]*waiter, error) {
	if len(*pending) == 0 {
		return nil, errors.New("no task waiting")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "simulation aborted at %v", b.Now())
		}
		b.c.Step()
		now := b.Now()
		var due []*waiter
		keep := (*pending)[:0]
		for _, w := range *pending {
			switch {
			case w.ready(now):
			case w.deadline > 0 && now >= w.deadline:
				w.err = w.expired
			default:
				keep = append(keep, w)
				continue
			}
			w.at = now
			due = append(due, w)
		}
		*pending = keep
		if len(due) > 0 {
			sort.SliceStable(due, func(i, j int) bool { return due[i].prio < due[j].prio })
			return due, nil
		}
	}
}
