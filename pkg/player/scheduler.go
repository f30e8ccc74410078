// Package player schedules decoded MIDI events against a Sink in real time.
package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/james-see/smfplay/pkg/smf"
)

// Strategy selects how multiple tracks are played.
type Strategy int

const (
	// Merged plays one tick ordered timeline with a single shared tempo.
	Merged Strategy = iota
	// Independent plays every track concurrently with its own tempo.
	Independent
)

func (s Strategy) String() string {
	switch s {
	case Merged:
		return "merged"
	case Independent:
		return "independent"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Strategies lists the accepted strategy names.
func Strategies() []string {
	return []string{Merged.String(), Independent.String()}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "merged", "merge":
		return Merged, nil
	case "independent", "concurrent":
		return Independent, nil
	default:
		return Merged, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(Strategies(), ", "))
	}
}

// Dispatched describes one event handed to the scheduler's output.
type Dispatched struct {
	Track int
	Tick  uint64        // absolute tick inside the track
	At    time.Duration // scheduled offset from the start of playback
	Tempo uint32        // tempo in effect after the event
	Event smf.Event
}

// Scheduler converts delta ticks into waits and dispatches events to a Sink.
type Scheduler struct {
	sink     Sink
	clock    Clock
	strategy Strategy
	logger   *log.Logger
	observer func(Dispatched)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithStrategy selects the multi-track strategy.
func WithStrategy(st Strategy) Option {
	return func(s *Scheduler) { s.strategy = st }
}

// WithLogger sets the scheduler logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithObserver registers fn to be called after every event. Under the
// independent strategy fn is called from several goroutines.
func WithObserver(fn func(Dispatched)) Option {
	return func(s *Scheduler) { s.observer = fn }
}

// NewScheduler creates a scheduler writing to sink.
func NewScheduler(sink Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		sink:     sink,
		clock:    WallClock{},
		strategy: Merged,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy returns the configured strategy.
func (s *Scheduler) Strategy() Strategy {
	return s.strategy
}

// Play dispatches every event of f and returns when playback finishes or ctx
// is done.
func (s *Scheduler) Play(ctx context.Context, f *smf.File) error {
	s.logger.Info("playback started",
		"strategy", s.strategy, "tracks", len(f.Tracks), "division", f.Division)

	var err error
	switch s.strategy {
	case Independent:
		err = s.playIndependent(ctx, f)
	default:
		err = s.playMerged(ctx, f)
	}
	if err != nil {
		return err
	}
	s.logger.Info("playback finished")
	return nil
}

func (s *Scheduler) playMerged(ctx context.Context, f *smf.File) error {
	tempo := NewTempoMap()
	var (
		at   time.Duration
		prev uint64
	)
	for _, ev := range Merge(f.Tracks) {
		d := Delay(ev.Tick-prev, tempo.Current(), f.Division)
		if err := s.wait(ctx, d); err != nil {
			return err
		}
		at += d
		prev = ev.Tick
		s.emit(ev.Track, ev.Tick, at, ev.Event, tempo)
	}
	return nil
}

func (s *Scheduler) playIndependent(ctx context.Context, f *smf.File) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, tr := range f.Tracks {
		tr := tr
		g.Go(func() error {
			return s.playTrack(gctx, f.Division, tr, NewTempoMap())
		})
	}
	return g.Wait()
}

// playTrack plays a single track in decode order against its own tempo map.
func (s *Scheduler) playTrack(ctx context.Context, division uint16, tr smf.Track, tempo *TempoMap) error {
	var (
		at   time.Duration
		tick uint64
	)
	for _, ev := range tr.Events {
		d := Delay(uint64(ev.Delta), tempo.Current(), division)
		if err := s.wait(ctx, d); err != nil {
			return err
		}
		at += d
		tick += uint64(ev.Delta)
		s.emit(tr.Index, tick, at, ev.Event, tempo)
	}
	return nil
}

func (s *Scheduler) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return s.clock.Wait(ctx, d)
}

func (s *Scheduler) emit(track int, tick uint64, at time.Duration, ev smf.Event, tempo *TempoMap) {
	switch e := ev.(type) {
	case smf.ChannelVoice:
		Dispatch(s.sink, e)
	case smf.Meta:
		if tempo.Apply(e) {
			s.logger.Debug("tempo change", "track", track, "tick", tick, "bpm", fmt.Sprintf("%.2f", tempo.BPM()))
		}
	}
	s.logger.Debug("event", "track", track, "tick", tick, "event", ev)

	if s.observer != nil {
		s.observer(Dispatched{
			Track: track,
			Tick:  tick,
			At:    at,
			Tempo: tempo.Current(),
			Event: ev,
		})
	}
}
