package smf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleNoteOn(t *testing.T) {
	payload := track([]byte{0x00, 0x93, 0x3C, 0x64}, endOfTrack)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, TimedEvent{Delta: 0, Event: ChannelVoice{Kind: NoteOn, Channel: 3, Data1: 60, Data2: 100}}, events[0])
	eot, ok := events[1].Event.(Meta)
	require.True(t, ok)
	assert.True(t, eot.IsEndOfTrack())
}

func TestDecodeRunningStatus(t *testing.T) {
	payload := track(
		[]byte{0x00, 0x90, 0x3C, 0x64},
		[]byte{0x10, 0x40, 0x50},
		[]byte{0x10, 0x43, 0x60},
		endOfTrack,
	)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 4)

	want := []ChannelVoice{
		{Kind: NoteOn, Channel: 0, Data1: 0x3C, Data2: 0x64},
		{Kind: NoteOn, Channel: 0, Data1: 0x40, Data2: 0x50},
		{Kind: NoteOn, Channel: 0, Data1: 0x43, Data2: 0x60},
	}
	for i, w := range want {
		assert.Equal(t, w, events[i].Event)
	}
	assert.Equal(t, uint32(0x10), events[2].Delta)
}

func TestDecodeRunningStatusSurvivesMeta(t *testing.T) {
	payload := track(
		[]byte{0x00, 0xC5, 0x07},
		[]byte{0x00, 0xFF, 0x06, 0x01, 'A'},
		[]byte{0x00, 0x09},
		endOfTrack,
	)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, ChannelVoice{Kind: ProgramChange, Channel: 5, Data1: 7}, events[0].Event)
	assert.Equal(t, ChannelVoice{Kind: ProgramChange, Channel: 5, Data1: 9}, events[2].Event)
}

func TestDecodeDataLengths(t *testing.T) {
	payload := track(
		[]byte{0x00, 0xC1, 0x05},
		[]byte{0x00, 0xD2, 0x40},
		[]byte{0x00, 0xE3, 0x00, 0x40},
		[]byte{0x00, 0xB4, 0x07, 0x64},
		[]byte{0x00, 0xA5, 0x3C, 0x20},
		[]byte{0x00, 0x86, 0x3C, 0x00},
		endOfTrack,
	)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 7)

	kinds := []Kind{ProgramChange, ChannelPressure, PitchBend, ControlChange, PolyAftertouch, NoteOff}
	for i, k := range kinds {
		cv, ok := events[i].Event.(ChannelVoice)
		require.True(t, ok)
		assert.Equal(t, k, cv.Kind)
		assert.Equal(t, uint8(i+1), cv.Channel)
	}
	assert.Equal(t, int16(0), events[2].Event.(ChannelVoice).Bend())
}

func TestDecodeTempoMeta(t *testing.T) {
	payload := track([]byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, endOfTrack)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)

	m, ok := events[0].Event.(Meta)
	require.True(t, ok)
	tempo, ok := m.Tempo()
	require.True(t, ok)
	assert.Equal(t, uint32(500000), tempo)
}

func TestDecodeTempoWrongLengthIgnored(t *testing.T) {
	payload := track([]byte{0x00, 0xFF, 0x51, 0x02, 0x07, 0xA1}, endOfTrack)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	_, ok := events[0].Event.(Meta).Tempo()
	assert.False(t, ok)
}

func TestDecodeTempoSurvivesSmallCapture(t *testing.T) {
	payload := track(
		[]byte{0x00, 0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40},
		[]byte{0x00, 0xFF, 0x01, 0x03, 'a', 'b', 'c'},
		endOfTrack,
	)

	events, err := NewDecoder(1).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 3)

	tempo, ok := events[0].Event.(Meta).Tempo()
	require.True(t, ok)
	assert.Equal(t, uint32(1000000), tempo)
	assert.Equal(t, "a", events[1].Event.(Meta).Text())
}

func TestDecodeMetaCaptureIsCapped(t *testing.T) {
	text := make([]byte, 300)
	for i := range text {
		text[i] = 'x'
	}
	meta := []byte{0x00, 0xFF, 0x01, 0x82, 0x2C} // length 300
	payload := track(meta, text, []byte{0x00, 0x90, 0x3C, 0x64}, endOfTrack)

	events, err := NewDecoder(16).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 3)

	m := events[0].Event.(Meta)
	assert.Equal(t, uint32(300), m.Length)
	assert.Len(t, m.Data, 16)
	assert.Equal(t, ChannelVoice{Kind: NoteOn, Data1: 0x3C, Data2: 0x64}, events[1].Event)
}

func TestDecodeSysExSkipped(t *testing.T) {
	payload := track(
		[]byte{0x00, 0xF0, 0x05, 0x7E, 0x7F, 0x09, 0x01, 0xF7},
		[]byte{0x20, 0x90, 0x3C, 0x64},
		endOfTrack,
	)

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, SysEx{Status: 0xF0, Length: 5}, events[0].Event)
	assert.Equal(t, uint32(0x20), events[1].Delta)
}

func TestDecodeStopsAtEndOfTrack(t *testing.T) {
	payload := track(endOfTrack, []byte{0x00, 0x90, 0x3C, 0x64})

	events, err := NewDecoder(0).DecodeTrack(0, payload)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDecodeWithoutEndOfTrack(t *testing.T) {
	events, err := NewDecoder(0).DecodeTrack(0, []byte{0x00, 0x90, 0x3C, 0x64})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDecodeCorruptTrack(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		kept    int
		offset  int
	}{
		{"overlong delta", track([]byte{0x00, 0x90, 0x3C, 0x64}, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}), 1, 4},
		{"truncated meta length", []byte{0x00, 0xFF, 0x03, 0x81}, 0, 0},
		{"meta past end", []byte{0x00, 0xFF, 0x03, 0x10, 'a'}, 0, 0},
		{"sysex past end", []byte{0x00, 0xF0, 0x10, 0x01}, 0, 0},
		{"data without status", []byte{0x00, 0x3C, 0x64}, 0, 0},
		{"system common", []byte{0x00, 0xF2, 0x00, 0x00}, 0, 0},
		{"missing data byte", []byte{0x00, 0x90, 0x3C}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := NewDecoder(0).DecodeTrack(2, tt.payload)
			require.ErrorIs(t, err, ErrCorruptTrack)
			assert.NotErrorIs(t, err, ErrTruncated)

			var te *TrackError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, 2, te.Track)
			assert.Equal(t, tt.offset, te.Offset)
			assert.Len(t, events, tt.kept)
		})
	}
}

func TestChannelVoiceMessage(t *testing.T) {
	cv := ChannelVoice{Kind: NoteOn, Channel: 3, Data1: 60, Data2: 100}
	assert.Equal(t, []byte{0x93, 60, 100}, []byte(cv.Message()))
	assert.Equal(t, []byte{0xC2, 5}, ChannelVoice{Kind: ProgramChange, Channel: 2, Data1: 5}.Bytes())
	assert.Equal(t, int16(8191), ChannelVoice{Kind: PitchBend, Data1: 0x7F, Data2: 0x7F}.Bend())
	assert.Equal(t, int16(-8192), ChannelVoice{Kind: PitchBend}.Bend())
}
