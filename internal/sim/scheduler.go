package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/logging"
)

// Process is an entity woken once every Period of simulated time while its
// wake time is below Runtime.
type Process interface {
	Period() float64
	Runtime() float64
	Tick(now float64) error
}

type entry struct {
	proc  Process
	ticks int
}

// wake is computed as ticks*period so long runs do not accumulate
// rounding error.
func (e *entry) wake() float64 {
	return float64(e.ticks) * e.proc.Period()
}

func (e *entry) pending() bool {
	return e.wake() < e.proc.Runtime()
}

// Scheduler drives registered processes in lock-step on a shared clock.
// Every process due at an instant is ticked, in registration order, before
// the clock moves on.
type Scheduler struct {
	clock   Clock
	entries []*entry
	log     *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		entries: make([]*entry, 0),
		log:     logging.OrDiscard(logger),
	}
}

func (s *Scheduler) Register(p Process) error {
	cfg := dynamo.Config{Dt: p.Period(), Runtime: p.Runtime()}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("register process: %w", err)
	}
	s.entries = append(s.entries, &entry{proc: p})
	return nil
}

func (s *Scheduler) Now() float64 { return s.clock.Now() }

// Pending reports whether any process still has a tick to run.
func (s *Scheduler) Pending() bool {
	_, ok := s.nextWake()
	return ok
}

func (s *Scheduler) nextWake() (float64, bool) {
	next, ok := math.Inf(1), false
	for _, e := range s.entries {
		if e.pending() && e.wake() < next {
			next, ok = e.wake(), true
		}
	}
	return next, ok
}

// Run executes ticks until no process has one pending and returns the number
// of process ticks executed.
func (s *Scheduler) Run(ctx context.Context) (int, error) {
	s.log.Debug("scheduler run", "processes", len(s.entries), "start", s.clock.Now())
	ticks, err := s.run(ctx, math.Inf(1))
	if err != nil {
		return ticks, err
	}
	s.log.Debug("scheduler finished", "ticks", ticks, "now", s.clock.Now())
	return ticks, nil
}

// RunUntil executes every tick scheduled strictly before until, then moves
// the clock to until.
func (s *Scheduler) RunUntil(ctx context.Context, until float64) (int, error) {
	ticks, err := s.run(ctx, until)
	if err != nil {
		return ticks, err
	}
	if until > s.clock.Now() {
		s.clock.advanceTo(until)
	}
	return ticks, nil
}

func (s *Scheduler) run(ctx context.Context, until float64) (int, error) {
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return ticks, ctx.Err()
		default:
		}

		now, ok := s.nextWake()
		if !ok || now >= until {
			return ticks, nil
		}
		s.clock.advanceTo(now)

		for _, e := range s.entries {
			if !e.pending() || e.wake() != now {
				continue
			}
			if s.log.Enabled(ctx, logging.LevelTrace) {
				s.log.Log(ctx, logging.LevelTrace, "tick", "t", now, "step", e.ticks)
			}
			if err := e.proc.Tick(now); err != nil {
				return ticks, err
			}
			e.ticks++
			ticks++
		}
	}
}
