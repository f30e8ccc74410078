// Package synth is a software Sink that renders notes from a SoundFont and
// streams them to the default audio device.
package synth

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate = 44100

const outputBuffer = 100 * time.Millisecond

// Only one audio context may exist per process.
var (
	audioContext     *audio.Context
	audioContextOnce sync.Once
)

func sharedContext(sampleRate int) *audio.Context {
	audioContextOnce.Do(func() {
		audioContext = audio.NewContext(sampleRate)
	})
	return audioContext
}

// Synth renders MIDI commands with meltysynth. All methods are safe for
// concurrent use; commands received before a bank is loaded are dropped.
type Synth struct {
	sampleRate int
	logger     *log.Logger

	mu     sync.Mutex
	synth  *meltysynth.Synthesizer
	player *audio.Player
	left   []float32
	right  []float32
}

// New creates a synthesizer rendering at sampleRate.
func New(sampleRate int, logger *log.Logger) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Synth{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// SampleRate returns the output sample rate.
func (s *Synth) SampleRate() int {
	return s.sampleRate
}

// LoadBank parses the SoundFont at path and starts audio output.
func (s *Synth) LoadBank(path string) error {
	if err := s.loadSoundFont(path); err != nil {
		return err
	}
	return s.startOutput()
}

func (s *Synth) loadSoundFont(path string) error {
	if path == "" {
		return fmt.Errorf("no soundfont given")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open soundfont: %w", err)
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return fmt.Errorf("failed to parse soundfont %s: %w", path, err)
	}
	settings := meltysynth.NewSynthesizerSettings(int32(s.sampleRate))
	syn, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	s.mu.Lock()
	s.synth = syn
	s.mu.Unlock()
	s.logger.Debug("soundfont parsed", "path", path, "sampleRate", s.sampleRate)
	return nil
}

func (s *Synth) startOutput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		return nil
	}

	player, err := sharedContext(s.sampleRate).NewPlayer(&stream{synth: s})
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	player.SetBufferSize(outputBuffer)
	player.Play()
	s.player = player
	return nil
}

// with runs fn with the synthesizer locked, if one is loaded.
func (s *Synth) with(fn func(*meltysynth.Synthesizer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.synth != nil {
		fn(s.synth)
	}
}

// NoteOn starts a note.
func (s *Synth) NoteOn(channel, note, velocity uint8) {
	s.with(func(m *meltysynth.Synthesizer) {
		m.NoteOn(int32(channel), int32(note), int32(velocity))
	})
}

// NoteOff releases a note.
func (s *Synth) NoteOff(channel, note uint8) {
	s.with(func(m *meltysynth.Synthesizer) {
		m.NoteOff(int32(channel), int32(note))
	})
}

// ProgramChange selects the instrument of a channel.
func (s *Synth) ProgramChange(channel, program uint8) {
	s.message(channel, 0xC0, program, 0)
}

// ControlChange sets a controller value.
func (s *Synth) ControlChange(channel, controller, value uint8) {
	s.message(channel, 0xB0, controller, value)
}

// PitchBend bends a channel; value is centred on zero.
func (s *Synth) PitchBend(channel uint8, value int16) {
	raw := int32(value) + 8192
	s.with(func(m *meltysynth.Synthesizer) {
		m.ProcessMidiMessage(int32(channel), 0xE0, raw&0x7F, (raw>>7)&0x7F)
	})
}

// ChannelPressure is forwarded to the synthesizer, which may ignore it.
func (s *Synth) ChannelPressure(channel, pressure uint8) {
	s.message(channel, 0xD0, pressure, 0)
}

// PolyAftertouch is forwarded to the synthesizer, which may ignore it.
func (s *Synth) PolyAftertouch(channel, note, pressure uint8) {
	s.message(channel, 0xA0, note, pressure)
}

// AllNotesOff releases every voice immediately.
func (s *Synth) AllNotesOff() {
	s.with(func(m *meltysynth.Synthesizer) {
		m.NoteOffAll(true)
	})
}

func (s *Synth) message(channel uint8, command int32, data1, data2 uint8) {
	s.with(func(m *meltysynth.Synthesizer) {
		m.ProcessMidiMessage(int32(channel), command, int32(data1), int32(data2))
	})
}

// Close stops audio output.
func (s *Synth) Close() error {
	s.AllNotesOff()

	s.mu.Lock()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		return player.Close()
	}
	return nil
}
