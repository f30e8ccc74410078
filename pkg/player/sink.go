package player

import (
	"github.com/james-see/smfplay/pkg/smf"
)

// Channels is the number of MIDI channels initialised at session start.
const Channels = 16

// Sink produces sound from channel voice commands. Implementations must be safe
// for concurrent calls when used with the independent strategy.
type Sink interface {
	// LoadBank loads the instrument bank at path before playback.
	LoadBank(path string) error
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note uint8)
	ProgramChange(channel, program uint8)
	ControlChange(channel, controller, value uint8)
	PitchBend(channel uint8, value int16)
	ChannelPressure(channel, pressure uint8)
	PolyAftertouch(channel, note, pressure uint8)
	// AllNotesOff silences every sounding note on every channel.
	AllNotesOff()
}

// Dispatch forwards a channel voice event to the sink. Note-on with zero
// velocity is sent as note-off.
func Dispatch(s Sink, ev smf.ChannelVoice) {
	switch ev.Kind {
	case smf.NoteOff:
		s.NoteOff(ev.Channel, ev.Data1)
	case smf.NoteOn:
		if ev.Data2 == 0 {
			s.NoteOff(ev.Channel, ev.Data1)
			return
		}
		s.NoteOn(ev.Channel, ev.Data1, ev.Data2)
	case smf.PolyAftertouch:
		s.PolyAftertouch(ev.Channel, ev.Data1, ev.Data2)
	case smf.ControlChange:
		s.ControlChange(ev.Channel, ev.Data1, ev.Data2)
	case smf.ProgramChange:
		s.ProgramChange(ev.Channel, ev.Data1)
	case smf.ChannelPressure:
		s.ChannelPressure(ev.Channel, ev.Data1)
	case smf.PitchBend:
		s.PitchBend(ev.Channel, ev.Bend())
	}
}

// NopSink discards every command. It is useful for dry runs.
type NopSink struct{}

func (NopSink) LoadBank(string) error              { return nil }
func (NopSink) NoteOn(uint8, uint8, uint8)         {}
func (NopSink) NoteOff(uint8, uint8)               {}
func (NopSink) ProgramChange(uint8, uint8)         {}
func (NopSink) ControlChange(uint8, uint8, uint8)  {}
func (NopSink) PitchBend(uint8, int16)             {}
func (NopSink) ChannelPressure(uint8, uint8)       {}
func (NopSink) PolyAftertouch(uint8, uint8, uint8) {}
func (NopSink) AllNotesOff()                       {}
