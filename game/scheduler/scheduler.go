package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/richman/game/engine"
	"github.com/wricardo/mcp-training/richman/internal/logger"
)

// DefaultMaxInlineSteps bounds a synchronous drive so an all-computer table cannot spin forever
const DefaultMaxInlineSteps = 100000

// Machine is the part of the engine the scheduler drives
type Machine interface {
	Pending() (engine.Transition, bool)
	AdvanceIf(ctx context.Context, seq uint64) error
}

// Options configures a Scheduler
type Options struct {
	// Inline fires transitions synchronously inside Kick, ignoring delays
	Inline bool
	// DelayScale multiplies every transition delay in async mode. 0 fires immediately.
	DelayScale float64
	// OnAdvance is called after every fired transition, without the session lock held
	OnAdvance func(id string)
	// MaxInlineSteps caps one inline drive. 0 means DefaultMaxInlineSteps.
	MaxInlineSteps int
}

// Scheduler owns every delayed transition of every session. A session has at
// most one driver at a time, so its transitions are strictly ordered.
type Scheduler struct {
	opts    Options
	mu      sync.Mutex
	drivers map[string]*driver
	wg      sync.WaitGroup
	closed  bool
}

type driver struct {
	cancel context.CancelFunc
}

// New creates a scheduler
func New(opts Options) *Scheduler {
	if opts.DelayScale < 0 {
		opts.DelayScale = 0
	}
	if opts.MaxInlineSteps <= 0 {
		opts.MaxInlineSteps = DefaultMaxInlineSteps
	}
	return &Scheduler{opts: opts, drivers: make(map[string]*driver)}
}

// Inline reports whether transitions fire synchronously
func (s *Scheduler) Inline() bool {
	return s.opts.Inline
}

// Kick makes sure the session's pending transitions will fire. Callers must not
// hold lock. In inline mode Kick returns once nothing is pending.
func (s *Scheduler) Kick(id string, lock sync.Locker, m Machine) {
	if s.opts.Inline {
		s.drive(context.Background(), id, lock, m)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, running := s.drivers[id]; running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &driver{cancel: cancel}
	s.drivers[id] = d
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, d, id, lock, m)
	}()
}

// drive fires transitions back to back until none is pending
func (s *Scheduler) drive(ctx context.Context, id string, lock sync.Locker, m Machine) {
	for i := 0; i < s.opts.MaxInlineSteps; i++ {
		lock.Lock()
		t, ok := m.Pending()
		if !ok {
			lock.Unlock()
			return
		}
		err := m.AdvanceIf(ctx, t.Seq)
		lock.Unlock()
		if err != nil {
			logger.With("session", id).Warnf("transition %s failed: %v", t.Kind, err)
		}
		s.notify(id)
	}
	logger.With("session", id).Warnf("inline drive stopped after %d transitions", s.opts.MaxInlineSteps)
}

// run is the async driver loop: sleep for the pending transition's delay, then fire it
// if it is still current
func (s *Scheduler) run(ctx context.Context, d *driver, id string, lock sync.Locker, m Machine) {
	log := logger.With("session", id)
	for {
		t, ok := s.next(d, id, lock, m)
		if !ok {
			return
		}

		delay := time.Duration(float64(t.Delay) * s.opts.DelayScale)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		lock.Lock()
		err := m.AdvanceIf(ctx, t.Seq)
		lock.Unlock()
		switch {
		case errors.Is(err, engine.ErrStaleTransition):
			log.Debugf("dropped stale %s transition #%d", t.Kind, t.Seq)
			continue
		case err != nil:
			log.Warnf("transition %s failed: %v", t.Kind, err)
		}
		s.notify(id)
	}
}

// next returns the pending transition, or retires the driver when there is none.
// Holding s.mu here pairs with Kick so a transition scheduled right after the
// check still gets a driver.
func (s *Scheduler) next(d *driver, id string, lock sync.Locker, m Machine) (engine.Transition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drivers[id] != d {
		return engine.Transition{}, false
	}
	lock.Lock()
	t, ok := m.Pending()
	lock.Unlock()
	if !ok {
		d.cancel()
		delete(s.drivers, id)
	}
	return t, ok
}

func (s *Scheduler) notify(id string) {
	if s.opts.OnAdvance != nil {
		s.opts.OnAdvance(id)
	}
}

// Stop cancels the session's driver, if any
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drivers[id]; ok {
		d.cancel()
		delete(s.drivers, id)
	}
}

// Running reports whether a driver is active for the session
func (s *Scheduler) Running(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drivers[id]
	return ok
}

// Close stops every driver and waits for them to exit
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for id, d := range s.drivers {
		d.cancel()
		delete(s.drivers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
