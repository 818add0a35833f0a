// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package bench

import (
	"github.com/db47h/divsim"
	"github.com/pkg/errors"
)

// A Task is the handle through which a task body waits on simulated time or
// signal transitions. Its methods must only be called from the task's own
// goroutine.
type Task struct {
	id   int
	b    *Bench
	wake chan error
	evs  chan<- event
}

// Now returns the current simulated time.
func (t *Task) Now() divsim.Time { return t.b.Now() }

func (t *Task) wait(w *waiter) error {
	w.t = t
	t.evs <- event{t: t, w: w}
	return <-t.wake
}

// Delay blocks for d units of simulated time. The actual delay is rounded up
// to the next simulation step.
func (t *Task) Delay(d divsim.Time) error {
	if d <= 0 {
		return nil
	}
	at := t.b.Now() + d
	return t.wait(&waiter{
		prio:  prioTimer,
		ready: func(now divsim.Time) bool { return now >= at },
	})
}

// WaitEdge blocks until the next e transition of s and returns the time at
// which it was observed. There is no time limit.
func (t *Task) WaitEdge(s Signal, e divsim.Edge) (divsim.Time, error) {
	return t.WaitEdgeWithin(s, e, 0)
}

// WaitEdgeWithin is like WaitEdge but gives up after limit units of simulated
// time, returning an error wrapping ErrStalledSignal. A zero limit means no
// limit.
func (t *Task) WaitEdgeWithin(s Signal, e divsim.Edge, limit divsim.Time) (divsim.Time, error) {
	last := s.Level()
	want := e == divsim.Rising
	w := &waiter{
		prio: prioEdge,
		ready: func(divsim.Time) bool {
			l := s.Level()
			hit := l != last && l == want
			last = l
			return hit
		},
	}
	if limit > 0 {
		w.deadline = t.b.Now() + limit
		w.expired = errors.Wrapf(ErrStalledSignal, "no %v edge within %v", e, limit)
	}
	if err := t.wait(w); err != nil {
		return w.at, err
	}
	return w.at, nil
}
