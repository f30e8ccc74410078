package smf

import (
	"errors"
	"fmt"
)

// Parse errors. Header and chunk level failures abort the whole load; track level
// failures are reported through TrackError and leave sibling tracks playable.
var (
	ErrInvalidMagic  = errors.New("smf: invalid chunk magic")
	ErrTruncated     = errors.New("smf: truncated input")
	ErrCorruptTrack  = errors.New("smf: corrupt track")
	ErrVLQTooLong    = errors.New("smf: variable-length quantity exceeds 4 bytes")
	ErrSMPTEDivision = errors.New("smf: SMPTE time division is not supported")
	ErrZeroDivision  = errors.New("smf: zero ticks per quarter note")
)

// TrackError records where decoding of a single track stopped.
type TrackError struct {
	Track  int // zero-based track index
	Offset int // byte offset inside the track payload
	Err    error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}
