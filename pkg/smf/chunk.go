package smf

import (
	"fmt"
)

// Chunk tags.
const (
	HeaderTag = "MThd"
	TrackTag  = "MTrk"

	chunkPrefixSize = 8
	minHeaderLength = 6
	smpteBit        = 0x8000
)

// Header is the decoded "MThd" chunk.
type Header struct {
	Length   uint32 // declared header length, 6 for conforming files
	Format   uint16 // 0, 1 or 2
	Tracks   uint16 // number of track chunks that follow
	Division uint16 // raw division word
}

// TicksPerQuarter returns the metrical resolution of the file.
func (h Header) TicksPerQuarter() (uint16, error) {
	if h.Division&smpteBit != 0 {
		return 0, fmt.Errorf("%w: division 0x%04X", ErrSMPTEDivision, h.Division)
	}
	if h.Division == 0 {
		return 0, ErrZeroDivision
	}
	return h.Division, nil
}

// Size returns the number of bytes the header chunk occupies, tag and length included.
func (h Header) Size() int {
	return chunkPrefixSize + int(h.Length)
}

// TrackChunk is a raw "MTrk" chunk.
type TrackChunk struct {
	Offset  int    // offset of the chunk tag in the file
	Length  uint32 // declared payload length
	Payload []byte
}

// ParseHeader decodes the header chunk at the start of data.
func ParseHeader(data []byte) (Header, error) {
	c := NewCursor(data)

	tag, err := c.ReadFixed(4)
	if err != nil {
		return Header{}, fmt.Errorf("reading header tag: %w", err)
	}
	if string(tag) != HeaderTag {
		return Header{}, fmt.Errorf("%w: expected %q, got %q", ErrInvalidMagic, HeaderTag, tag)
	}

	var h Header
	if h.Length, err = c.ReadUint32(); err != nil {
		return Header{}, fmt.Errorf("reading header length: %w", err)
	}
	if h.Length < minHeaderLength {
		return Header{}, fmt.Errorf("%w: header length %d, need %d", ErrTruncated, h.Length, minHeaderLength)
	}
	if h.Format, err = c.ReadUint16(); err != nil {
		return Header{}, fmt.Errorf("reading format: %w", err)
	}
	if h.Tracks, err = c.ReadUint16(); err != nil {
		return Header{}, fmt.Errorf("reading track count: %w", err)
	}
	if h.Division, err = c.ReadUint16(); err != nil {
		return Header{}, fmt.Errorf("reading division: %w", err)
	}
	if h.Size() > len(data) {
		return Header{}, fmt.Errorf("%w: header declares %d bytes, file has %d", ErrTruncated, h.Size(), len(data))
	}
	return h, nil
}

// ParseTrack decodes the track chunk at offset and returns it together with the
// offset of the following chunk.
func ParseTrack(data []byte, offset int) (TrackChunk, int, error) {
	tag, length, err := readChunkPrefix(data, offset)
	if err != nil {
		return TrackChunk{}, offset, err
	}
	if tag != TrackTag {
		return TrackChunk{}, offset, fmt.Errorf("%w: expected %q at offset %d, got %q", ErrInvalidMagic, TrackTag, offset, tag)
	}
	start := offset + chunkPrefixSize
	end := start + int(length)
	if end > len(data) || end < start {
		return TrackChunk{}, offset, fmt.Errorf("%w: track at offset %d declares %d bytes, %d available",
			ErrTruncated, offset, length, len(data)-start)
	}
	return TrackChunk{
		Offset:  offset,
		Length:  length,
		Payload: data[start:end],
	}, end, nil
}

// skipChunk returns the offset after the chunk at offset without checking its tag.
func skipChunk(data []byte, offset int) (string, int, error) {
	tag, length, err := readChunkPrefix(data, offset)
	if err != nil {
		return "", offset, err
	}
	end := offset + chunkPrefixSize + int(length)
	if end > len(data) || end < offset {
		return tag, offset, fmt.Errorf("%w: chunk %q at offset %d declares %d bytes", ErrTruncated, tag, offset, length)
	}
	return tag, end, nil
}

func readChunkPrefix(data []byte, offset int) (string, uint32, error) {
	c := NewCursor(data)
	if err := c.Seek(offset); err != nil {
		return "", 0, err
	}
	tag, err := c.ReadFixed(4)
	if err != nil {
		return "", 0, fmt.Errorf("reading chunk tag: %w", err)
	}
	length, err := c.ReadUint32()
	if err != nil {
		return "", 0, fmt.Errorf("reading chunk length: %w", err)
	}
	return string(tag), length, nil
}
