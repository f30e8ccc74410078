package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/james-see/smfplay/pkg/smf"
)

// Session errors.
var (
	ErrSinkUnavailable = errors.New("player: synthesizer sink unavailable")
	ErrNotOpen         = errors.New("player: session not opened")
	ErrBusy            = errors.New("player: playback already running")
)

// Session owns a sink for the duration of one or more playbacks: it loads the
// instrument bank, initialises channels and stops playback on request.
type Session struct {
	sink  Sink
	sched *Scheduler

	mu     sync.Mutex
	opened bool
	cancel context.CancelFunc
}

// NewSession creates a session playing through sink.
func NewSession(sink Sink, opts ...Option) *Session {
	return &Session{
		sink:  sink,
		sched: NewScheduler(sink, opts...),
	}
}

// Open loads the instrument bank and selects program 0 on every channel.
func (s *Session) Open(bankPath string) error {
	if err := s.sink.LoadBank(bankPath); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	for ch := 0; ch < Channels; ch++ {
		s.sink.ProgramChange(uint8(ch), 0)
	}
	s.sched.logger.Info("instrument bank loaded", "path", bankPath)

	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()
	return nil
}

// Play runs f to completion. When playback is cancelled through ctx or Stop,
// every note is silenced and the context error is returned.
func (s *Session) Play(ctx context.Context, f *smf.File) error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	err := s.sched.Play(ctx, f)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.sink.AllNotesOff()
		s.sched.logger.Info("playback stopped", "reason", err)
	}
	return err
}

// Stop cancels a running playback. It is a no-op when nothing is playing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Playing reports whether a playback is in progress.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
