package smf

import (
	"encoding/binary"
)

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

// buildSMF assembles a file from raw track payloads.
func buildSMF(format, division uint16, tracks ...[]byte) []byte {
	out := []byte(HeaderTag)
	out = binary.BigEndian.AppendUint32(out, 6)
	out = binary.BigEndian.AppendUint16(out, format)
	out = binary.BigEndian.AppendUint16(out, uint16(len(tracks)))
	out = binary.BigEndian.AppendUint16(out, division)
	for _, tr := range tracks {
		out = append(out, chunk(TrackTag, tr)...)
	}
	return out
}

func chunk(tag string, payload []byte) []byte {
	out := []byte(tag)
	out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

func track(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
