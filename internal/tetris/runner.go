package tetris

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// DefaultTickRate is the runner's step rate when none is given.
const DefaultTickRate = 60

// MaxTickRate bounds the step rate so one step stays a usable duration.
const MaxTickRate = 1000

// Event is one journaled command and the runner tick it was applied on.
type Event struct {
	Tick    uint64  `json:"tick" yaml:"tick"`
	Command Command `json:"command" yaml:"command"`
}

// Recording is everything needed to re-run a session exactly.
type Recording struct {
	Seed     int64   `json:"seed" yaml:"seed"`
	TickRate int     `json:"tick_rate" yaml:"tick_rate"`
	Ticks    uint64  `json:"ticks" yaml:"ticks"`
	Rules    Rules   `json:"rules" yaml:"rules"`
	Events   []Event `json:"events" yaml:"events"`
}

// Runner drives a Session on a fixed-step clock. Each Advance is one tick:
// the simulated time moves forward by 1/tickRate, pending commands are
// applied and then gravity is polled. Commands are journaled so the run can
// be replayed.
type Runner struct {
	session  *Session
	seed     int64
	tickRate int
	step     time.Duration
	origin   time.Time
	tick     uint64
	events   []Event
}

// NewRunner creates a runner with a freshly started session.
func NewRunner(rules Rules, seed int64, tickRate int) *Runner {
	switch {
	case tickRate <= 0:
		tickRate = DefaultTickRate
	case tickRate > MaxTickRate:
		tickRate = MaxTickRate
	}
	r := &Runner{
		seed:     seed,
		tickRate: tickRate,
		step:     time.Second / time.Duration(tickRate),
		origin:   time.Unix(0, 0).UTC(),
	}
	r.session = NewSession(rules, rand.New(rand.NewSource(seed)))
	r.session.Start(r.origin)
	return r
}

// Advance runs one tick with the given commands. Returns true if gravity
// moved the piece this tick.
func (r *Runner) Advance(cmds ...Command) bool {
	r.tick++
	now := r.Now()
	for _, cmd := range cmds {
		if r.session.GameOver() {
			break
		}
		r.events = append(r.events, Event{Tick: r.tick, Command: cmd})
		r.session.HandleCommand(cmd, now)
	}
	return r.session.OnTick(now)
}

// Now returns the simulated time of the current tick.
func (r *Runner) Now() time.Time {
	return r.origin.Add(time.Duration(r.tick) * r.step)
}

// Session returns the driven session.
func (r *Runner) Session() *Session {
	return r.session
}

// Tick returns the number of ticks advanced so far.
func (r *Runner) Tick() uint64 {
	return r.tick
}

// Seed returns the seed of the session's random source.
func (r *Runner) Seed() int64 {
	return r.seed
}

// TickRate returns the number of ticks per simulated second.
func (r *Runner) TickRate() int {
	return r.tickRate
}

// Recording returns a copy of the journal so far.
func (r *Runner) Recording() Recording {
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return Recording{
		Seed:     r.seed,
		TickRate: r.tickRate,
		Ticks:    r.tick,
		Rules:    r.session.Rules(),
		Events:   events,
	}
}

// ErrInvalidRecording is returned by Replay for recordings that cannot be
// re-run.
var ErrInvalidRecording = errors.New("tetris: invalid recording")

// Player steps through a recording one tick at a time.
type Player struct {
	runner *Runner
	events []Event
	end    uint64
	next   int
	cmds   []Command
}

// NewPlayer validates a recording and prepares it for playback.
func NewPlayer(rec Recording) (*Player, error) {
	if err := rec.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecording, err)
	}
	if rec.TickRate <= 0 || rec.TickRate > MaxTickRate {
		return nil, fmt.Errorf("%w: tick rate must be in 1..%d, got %d", ErrInvalidRecording, MaxTickRate, rec.TickRate)
	}

	events := make([]Event, len(rec.Events))
	copy(events, rec.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Tick < events[j].Tick
	})
	// Ticks are 1-based; an event on tick 0 would never be reached.
	if len(events) > 0 && events[0].Tick < 1 {
		return nil, fmt.Errorf("%w: event at tick 0", ErrInvalidRecording)
	}
	if n := len(events); n > 0 && events[n-1].Tick > rec.Ticks {
		return nil, fmt.Errorf("%w: event at tick %d after end tick %d", ErrInvalidRecording, events[n-1].Tick, rec.Ticks)
	}

	return &Player{
		runner: NewRunner(rec.Rules, rec.Seed, rec.TickRate),
		events: events,
		end:    rec.Ticks,
	}, nil
}

// Step advances one recorded tick. Returns false once the recording is
// exhausted.
func (p *Player) Step() bool {
	if p.Done() {
		return false
	}
	tick := p.runner.Tick() + 1
	p.cmds = p.cmds[:0]
	for p.next < len(p.events) && p.events[p.next].Tick == tick {
		p.cmds = append(p.cmds, p.events[p.next].Command)
		p.next++
	}
	p.runner.Advance(p.cmds...)
	return true
}

// Done reports whether every recorded tick has been played.
func (p *Player) Done() bool {
	return p.runner.Tick() >= p.end
}

// Runner returns the runner being driven.
func (p *Player) Runner() *Runner {
	return p.runner
}

// Ticks returns the length of the recording in ticks.
func (p *Player) Ticks() uint64 {
	return p.end
}

// Replay re-runs a recording from the start and returns the runner in its
// final state.
func Replay(rec Recording) (*Runner, error) {
	p, err := NewPlayer(rec)
	if err != nil {
		return nil, err
	}
	for p.Step() {
	}
	return p.Runner(), nil
}
