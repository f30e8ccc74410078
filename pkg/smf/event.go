package smf

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Kind is the high nibble of a channel-voice status byte.
type Kind uint8

// Channel voice kinds.
const (
	NoteOff         Kind = 0x80
	NoteOn          Kind = 0x90
	PolyAftertouch  Kind = 0xA0
	ControlChange   Kind = 0xB0
	ProgramChange   Kind = 0xC0
	ChannelPressure Kind = 0xD0
	PitchBend       Kind = 0xE0
)

// Status bytes outside the channel voice range.
const (
	StatusSysEx       = 0xF0
	StatusSysExEscape = 0xF7
	StatusMeta        = 0xFF
)

// Meta event types with playback meaning.
const (
	MetaTrackName  = 0x03
	MetaEndOfTrack = 0x2F
	MetaTempo      = 0x51
)

// DataLen returns the number of data bytes that follow a status byte of this kind.
func (k Kind) DataLen() int {
	if k == ProgramChange || k == ChannelPressure {
		return 1
	}
	return 2
}

func (k Kind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyAftertouch:
		return "PolyAftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchBend:
		return "PitchBend"
	default:
		return fmt.Sprintf("Kind(0x%02X)", uint8(k))
	}
}

// Event is one of ChannelVoice, Meta or SysEx.
type Event interface {
	fmt.Stringer
	isEvent()
}

// TimedEvent is an event with its delta time relative to the previous event of the same track.
type TimedEvent struct {
	Delta uint32
	Event Event
}

// ChannelVoice is a note, controller or program message addressed to one channel.
type ChannelVoice struct {
	Kind    Kind
	Channel uint8 // 0-15
	Data1   uint8
	Data2   uint8 // unused for ProgramChange and ChannelPressure
}

func (ChannelVoice) isEvent() {}

// Status returns the status byte the event was encoded with.
func (e ChannelVoice) Status() byte {
	return byte(e.Kind) | e.Channel&0x0F
}

// Bytes returns the wire encoding with an explicit status byte.
func (e ChannelVoice) Bytes() []byte {
	if e.Kind.DataLen() == 1 {
		return []byte{e.Status(), e.Data1}
	}
	return []byte{e.Status(), e.Data1, e.Data2}
}

// Message converts the event to a gomidi message.
func (e ChannelVoice) Message() midi.Message {
	return midi.Message(e.Bytes())
}

// Bend returns the signed pitch bend amount, centred on zero.
func (e ChannelVoice) Bend() int16 {
	return int16(uint16(e.Data2)<<7|uint16(e.Data1)) - 8192
}

func (e ChannelVoice) String() string {
	return e.Message().String()
}

// Meta is a non-MIDI event carrying file level information.
type Meta struct {
	Type   uint8
	Length uint32 // declared payload length
	Data   []byte // captured payload, at most the decoder's capture limit
}

func (Meta) isEvent() {}

// IsEndOfTrack reports whether this is the terminal event of a track.
func (m Meta) IsEndOfTrack() bool {
	return m.Type == MetaEndOfTrack
}

// Tempo returns the microseconds per quarter note carried by a set-tempo event.
// Only a 3 byte payload is a valid tempo.
func (m Meta) Tempo() (uint32, bool) {
	if m.Type != MetaTempo || m.Length != 3 || len(m.Data) != 3 {
		return 0, false
	}
	return uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2]), true
}

// IsText reports whether the payload is one of the text meta events (0x01-0x0F).
func (m Meta) IsText() bool {
	return m.Type >= 0x01 && m.Type <= 0x0F
}

// Text returns the captured payload of a text meta event.
func (m Meta) Text() string {
	if !m.IsText() {
		return ""
	}
	return string(m.Data)
}

var metaNames = map[uint8]string{
	0x00: "SequenceNumber",
	0x01: "Text",
	0x02: "Copyright",
	0x03: "TrackName",
	0x04: "Instrument",
	0x05: "Lyric",
	0x06: "Marker",
	0x07: "CuePoint",
	0x20: "ChannelPrefix",
	0x21: "Port",
	0x2F: "EndOfTrack",
	0x51: "Tempo",
	0x54: "SMPTEOffset",
	0x58: "TimeSignature",
	0x59: "KeySignature",
	0x7F: "SequencerSpecific",
}

// Name returns a readable name for the meta type.
func (m Meta) Name() string {
	if name, ok := metaNames[m.Type]; ok {
		return name
	}
	return fmt.Sprintf("Meta(0x%02X)", m.Type)
}

func (m Meta) String() string {
	if t, ok := m.Tempo(); ok {
		return fmt.Sprintf("Tempo %d us/qn (%.2f BPM)", t, 60000000.0/float64(t))
	}
	if m.IsText() {
		return fmt.Sprintf("%s %q", m.Name(), m.Text())
	}
	return fmt.Sprintf("%s len: %d", m.Name(), m.Length)
}

// SysEx is a system exclusive message. Its payload is skipped while decoding.
type SysEx struct {
	Status uint8 // 0xF0 or 0xF7
	Length uint32
}

func (SysEx) isEvent() {}

func (s SysEx) String() string {
	return fmt.Sprintf("SysEx 0x%02X len: %d", s.Status, s.Length)
}
