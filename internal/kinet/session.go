package kinet

import "fmt"

// Session drives a bound integrator from an external tick source (a
// timer, a TUI frame loop) instead of a fixed iteration count. Each
// tick advances simulated time by exactly dt regardless of wall-clock
// drift. A single goroutine must own the session; everything it
// publishes is a copy.
type Session struct {
	g           *Integrator
	policy      Policy
	checkpoints []float64
	series      *Series
	t           float64
	paused      bool
	stopped     bool
}

// NewSession prepares an externally ticked run over a bound integrator.
func NewSession(g *Integrator, checkpoints []float64, policy Policy) (*Session, error) {
	if !g.bound {
		return nil, ErrNotBound
	}
	if !policy.valid() {
		return nil, fmt.Errorf("%w: unknown policy %d", ErrInvalidArgument, int(policy))
	}
	return &Session{
		g:           g,
		policy:      policy,
		checkpoints: append([]float64(nil), checkpoints...),
		series:      &Series{Labels: g.Labels()},
	}, nil
}

// Tick processes one step. While paused it is a no-op: neither the
// concentrations nor the clock move. After Stop it reports ErrStopped.
func (s *Session) Tick() error {
	if s.stopped {
		return ErrStopped
	}
	if s.paused {
		return nil
	}
	s.g.advance(s.t, s.checkpoints, s.policy, s.series)
	s.t += s.g.dt
	return nil
}

// Pause gates future ticks. Takes effect between ticks only; a tick in
// flight on the owning goroutine always completes its full update.
func (s *Session) Pause() { s.paused = true }

func (s *Session) Resume() { s.paused = false }

func (s *Session) Paused() bool { return s.paused }

func (s *Session) Time() float64 { return s.t }

func (s *Session) Labels() []string { return s.g.Labels() }

// Concentrations returns a snapshot of the current vector.
func (s *Session) Concentrations() Concentrations {
	return s.g.Concentrations()
}

// Stop seals the run with the end sentinel and returns the series.
// Further calls return the same sealed series.
func (s *Session) Stop() *Series {
	if !s.stopped {
		s.stopped = true
		s.series.Final = Snapshot{Time: s.t, Conc: s.g.Concentrations()}
		s.series.Stopped = true
	}
	return s.series
}
