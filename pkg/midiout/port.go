// Package midiout is a Sink that sends commands to a MIDI output port, for
// playback through hardware or another synthesizer.
package midiout

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// SendFunc delivers one message to a port.
type SendFunc func(midi.Message) error

// Port sends playback commands to a MIDI output. Send failures are logged and
// playback continues.
type Port struct {
	name   string
	send   SendFunc
	out    drivers.Out
	logger *log.Logger
	mu     sync.Mutex
}

// Ports lists the names of the available output ports.
func Ports() []string {
	var names []string
	for _, p := range midi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// Open connects to the output port whose name contains name. A driver must be
// registered, usually through a blank import of rtmididrv.
func Open(name string, logger *log.Logger) (*Port, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find MIDI output %q: %w", name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI output %q: %w", name, err)
	}
	p := NewPort(send, logger)
	p.name = out.String()
	p.out = out
	return p, nil
}

// NewPort wraps an arbitrary send function.
func NewPort(send SendFunc, logger *log.Logger) *Port {
	if logger == nil {
		logger = log.Default()
	}
	return &Port{send: send, logger: logger}
}

// Name returns the port name, empty for ports built with NewPort.
func (p *Port) Name() string {
	return p.name
}

// LoadBank uploads a .syx dump to the port. An empty path leaves the
// instrument's current state untouched.
func (p *Port) LoadBank(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read syx file: %w", err)
	}
	msgs, err := SplitSysEx(data)
	if err != nil {
		return err
	}
	for i, msg := range msgs {
		if err := ValidateSysEx(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	for i, msg := range msgs {
		if err := p.write(midi.Message(msg)); err != nil {
			return fmt.Errorf("failed to send bank message %d: %w", i, err)
		}
	}
	if id, err := ManufacturerID(msgs[0]); err == nil {
		p.logger.Debug("bank uploaded", "path", path, "messages", len(msgs), "manufacturer", fmt.Sprintf("% X", id))
	}
	return nil
}

func (p *Port) NoteOn(channel, note, velocity uint8) {
	p.emit(midi.NoteOn(channel, note, velocity))
}

func (p *Port) NoteOff(channel, note uint8) {
	p.emit(midi.NoteOff(channel, note))
}

func (p *Port) ProgramChange(channel, program uint8) {
	p.emit(midi.ProgramChange(channel, program))
}

func (p *Port) ControlChange(channel, controller, value uint8) {
	p.emit(midi.ControlChange(channel, controller, value))
}

func (p *Port) PitchBend(channel uint8, value int16) {
	p.emit(midi.Pitchbend(channel, value))
}

func (p *Port) ChannelPressure(channel, pressure uint8) {
	p.emit(midi.AfterTouch(channel, pressure))
}

func (p *Port) PolyAftertouch(channel, note, pressure uint8) {
	p.emit(midi.PolyAfterTouch(channel, note, pressure))
}

// AllNotesOff sends controller 123 on every channel.
func (p *Port) AllNotesOff() {
	for ch := uint8(0); ch < 16; ch++ {
		p.emit(midi.ControlChange(ch, 123, 0))
	}
}

func (p *Port) emit(msg midi.Message) {
	if err := p.write(msg); err != nil {
		p.logger.Warn("MIDI send failed", "msg", msg.String(), "err", err)
	}
}

func (p *Port) write(msg midi.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.send(msg)
}

// Close closes the underlying port, if any.
func (p *Port) Close() error {
	if p.out == nil {
		return nil
	}
	return p.out.Close()
}
