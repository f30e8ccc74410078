package smf

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a sequential, seekable reader over an in-memory buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor creates a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Seek moves the cursor to an absolute offset. Seeking to the end is allowed.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("%w: seek to %d in %d bytes", ErrTruncated, pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Remaining() {
		return fmt.Errorf("%w: skip %d with %d remaining", ErrTruncated, n, c.Remaining())
	}
	c.pos += n
	return nil
}

// Unread steps back one byte.
func (c *Cursor) Unread() {
	if c.pos > 0 {
		c.pos--
	}
}

// ReadFixed returns the next n bytes. The returned slice aliases the buffer.
func (c *Cursor) ReadFixed(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, c.pos, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, fmt.Errorf("%w: need 1 byte at offset %d", ErrTruncated, c.pos)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadUint16 reads a big-endian 16-bit value.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.ReadFixed(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads a big-endian 32-bit value.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadVLQ reads a variable-length quantity.
func (c *Cursor) ReadVLQ() (uint32, error) {
	v, n, err := DecodeVLQ(c.buf[c.pos:])
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", c.pos, err)
	}
	c.pos += n
	return v, nil
}
