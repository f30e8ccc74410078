package midiout

import (
	"errors"
	"fmt"
)

// SysEx framing bytes.
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// ErrInvalidSysEx is returned for malformed .syx banks.
var ErrInvalidSysEx = errors.New("invalid SysEx")

// SplitSysEx cuts a .syx dump into complete F0..F7 messages. Bytes between
// messages are ignored; an unterminated message is an error.
func SplitSysEx(data []byte) ([][]byte, error) {
	var msgs [][]byte
	start := -1
	for i, b := range data {
		switch {
		case b == SysExStart:
			if start >= 0 {
				return nil, fmt.Errorf("%w: message at offset %d is not terminated", ErrInvalidSysEx, start)
			}
			start = i
		case b == SysExEnd && start >= 0:
			msgs = append(msgs, data[start:i+1])
			start = -1
		}
	}
	if start >= 0 {
		return nil, fmt.Errorf("%w: message at offset %d is not terminated", ErrInvalidSysEx, start)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: no messages found", ErrInvalidSysEx)
	}
	return msgs, nil
}

// ValidateSysEx checks the framing of one message and that its body is 7-bit.
func ValidateSysEx(msg []byte) error {
	if len(msg) < 2 {
		return fmt.Errorf("%w: message too short", ErrInvalidSysEx)
	}
	if msg[0] != SysExStart {
		return fmt.Errorf("%w: expected start byte 0x%02X, got 0x%02X", ErrInvalidSysEx, SysExStart, msg[0])
	}
	if msg[len(msg)-1] != SysExEnd {
		return fmt.Errorf("%w: expected end byte 0x%02X, got 0x%02X", ErrInvalidSysEx, SysExEnd, msg[len(msg)-1])
	}
	for i := 1; i < len(msg)-1; i++ {
		if msg[i] > 127 {
			return fmt.Errorf("%w: byte at position %d is > 127 (0x%02X)", ErrInvalidSysEx, i, msg[i])
		}
	}
	return nil
}

// ManufacturerID returns the one or three byte manufacturer ID of a message.
func ManufacturerID(msg []byte) ([]byte, error) {
	if len(msg) < 3 || msg[0] != SysExStart {
		return nil, fmt.Errorf("%w: too short for manufacturer ID", ErrInvalidSysEx)
	}
	// Extended IDs start with 0x00.
	if msg[1] == 0x00 {
		if len(msg) < 5 {
			return nil, fmt.Errorf("%w: too short for extended manufacturer ID", ErrInvalidSysEx)
		}
		return msg[1:4], nil
	}
	return msg[1:2], nil
}
