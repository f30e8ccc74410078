package smf

import (
	"fmt"
)

// DefaultMaxMetaCapture bounds how many payload bytes of a meta event are kept.
const DefaultMaxMetaCapture = 255

// Decoder turns a track payload into timed events.
type Decoder struct {
	maxMetaCapture int
}

// NewDecoder creates a decoder that keeps at most maxMetaCapture bytes of each
// meta payload. A non-positive value selects DefaultMaxMetaCapture.
func NewDecoder(maxMetaCapture int) *Decoder {
	if maxMetaCapture <= 0 {
		maxMetaCapture = DefaultMaxMetaCapture
	}
	return &Decoder{maxMetaCapture: maxMetaCapture}
}

// DecodeTrack decodes events until an end-of-track meta event or the end of the
// payload. On a malformed event it returns the events decoded so far and a
// *TrackError wrapping ErrCorruptTrack.
func (d *Decoder) DecodeTrack(track int, payload []byte) ([]TimedEvent, error) {
	c := NewCursor(payload)
	var (
		events  []TimedEvent
		running byte
	)
	for c.Remaining() > 0 {
		start := c.Pos()

		delta, err := c.ReadVLQ()
		if err != nil {
			return events, corrupt(track, start, fmt.Errorf("delta time: %v", err))
		}

		var ev Event
		ev, running, err = d.decodeEvent(c, running)
		if err != nil {
			return events, corrupt(track, start, err)
		}
		events = append(events, TimedEvent{Delta: delta, Event: ev})

		if m, ok := ev.(Meta); ok && m.IsEndOfTrack() {
			break
		}
	}
	return events, nil
}

// decodeEvent reads one event after its delta time. running is the track's
// running status on entry; the returned byte is the running status on exit.
func (d *Decoder) decodeEvent(c *Cursor, running byte) (Event, byte, error) {
	status, err := c.ReadByte()
	if err != nil {
		return nil, running, err
	}

	switch {
	case status == StatusMeta:
		ev, err := d.decodeMeta(c)
		return ev, running, err
	case status == StatusSysEx || status == StatusSysExEscape:
		ev, err := decodeSysEx(c, status)
		return ev, running, err
	case status >= 0xF0:
		return nil, running, fmt.Errorf("unexpected system status 0x%02X", status)
	case status&0x80 == 0:
		if running == 0 {
			return nil, running, fmt.Errorf("data byte 0x%02X without running status", status)
		}
		c.Unread()
		status = running
	default:
		running = status
	}

	ev, err := decodeChannelVoice(c, status)
	return ev, running, err
}

func decodeChannelVoice(c *Cursor, status byte) (Event, error) {
	ev := ChannelVoice{
		Kind:    Kind(status & 0xF0),
		Channel: status & 0x0F,
	}
	data, err := c.ReadFixed(ev.Kind.DataLen())
	if err != nil {
		return nil, fmt.Errorf("%s data: %v", ev.Kind, err)
	}
	ev.Data1 = data[0] & 0x7F
	if len(data) == 2 {
		ev.Data2 = data[1] & 0x7F
	}
	return ev, nil
}

func (d *Decoder) decodeMeta(c *Cursor) (Event, error) {
	typ, err := c.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("meta type: %v", err)
	}
	length, err := c.ReadVLQ()
	if err != nil {
		return nil, fmt.Errorf("meta 0x%02X length: %v", typ, err)
	}
	payload, err := c.ReadFixed(int(length))
	if err != nil {
		return nil, fmt.Errorf("meta 0x%02X payload: %v", typ, err)
	}
	// Tempo drives playback, so its payload is kept whole whatever the cap.
	limit := d.maxMetaCapture
	if typ == MetaTempo && length == 3 {
		limit = max(limit, 3)
	}
	if len(payload) > limit {
		payload = payload[:limit]
	}
	return Meta{
		Type:   typ,
		Length: length,
		Data:   append([]byte(nil), payload...),
	}, nil
}

func decodeSysEx(c *Cursor, status byte) (Event, error) {
	length, err := c.ReadVLQ()
	if err != nil {
		return nil, fmt.Errorf("sysex length: %v", err)
	}
	if err := c.Skip(int(length)); err != nil {
		return nil, fmt.Errorf("sysex payload: %v", err)
	}
	return SysEx{Status: status, Length: length}, nil
}

func corrupt(track, offset int, err error) error {
	return &TrackError{
		Track:  track,
		Offset: offset,
		Err:    fmt.Errorf("%w: %v", ErrCorruptTrack, err),
	}
}
