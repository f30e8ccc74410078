// Package smf parses Standard MIDI Files into timed event streams.
package smf

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// File is a fully loaded Standard MIDI File.
type File struct {
	Header   Header
	Division uint16 // ticks per quarter note
	Tracks   []Track
}

// Track is the decoded content of one track chunk.
type Track struct {
	Index  int
	Name   string
	Offset int // file offset of the chunk
	Length uint32
	Events []TimedEvent
	Err    error // non-nil when decoding stopped early
}

// Ticks returns the track length in ticks.
func (t Track) Ticks() uint64 {
	var total uint64
	for _, ev := range t.Events {
		total += uint64(ev.Delta)
	}
	return total
}

type options struct {
	maxMetaCapture    int
	skipUnknownChunks bool
	logger            *log.Logger
}

// Option configures Parse and ReadFile.
type Option func(*options)

// WithMaxMetaCapture bounds the number of meta payload bytes kept per event.
func WithMaxMetaCapture(n int) Option {
	return func(o *options) { o.maxMetaCapture = n }
}

// WithSkipUnknownChunks skips chunks that are not "MTrk" instead of failing.
func WithSkipUnknownChunks() Option {
	return func(o *options) { o.skipUnknownChunks = true }
}

// WithLogger sets the logger used for per-track diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ReadFile loads and parses the file at path.
func ReadFile(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes a complete file. Header and chunk errors are returned without a
// partial result. A corrupt track is logged, kept with its Err set, and the
// next chunk is located through the declared length.
func Parse(data []byte, opts ...Option) (*File, error) {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	division, err := h.TicksPerQuarter()
	if err != nil {
		return nil, err
	}

	f := &File{
		Header:   h,
		Division: division,
		Tracks:   make([]Track, 0, h.Tracks),
	}
	dec := NewDecoder(o.maxMetaCapture)
	offset := h.Size()

	for i := 0; i < int(h.Tracks); i++ {
		chunk, next, err := ParseTrack(data, offset)
		for err != nil && o.skipUnknownChunks && errors.Is(err, ErrInvalidMagic) {
			tag, after, serr := skipChunk(data, offset)
			if serr != nil {
				err = serr
				break
			}
			o.logger.Warn("skipping unknown chunk", "tag", tag, "offset", offset)
			offset = after
			chunk, next, err = ParseTrack(data, offset)
		}
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}

		events, derr := dec.DecodeTrack(i, chunk.Payload)
		if derr != nil {
			var te *TrackError
			if errors.As(derr, &te) {
				o.logger.Warn("track decode aborted", "track", i, "offset", te.Offset, "err", te.Err)
			} else {
				o.logger.Warn("track decode aborted", "track", i, "err", derr)
			}
		}

		f.Tracks = append(f.Tracks, Track{
			Index:  i,
			Name:   trackName(events),
			Offset: chunk.Offset,
			Length: chunk.Length,
			Events: events,
			Err:    derr,
		})
		offset = next
	}
	return f, nil
}

func trackName(events []TimedEvent) string {
	for _, ev := range events {
		if m, ok := ev.Event.(Meta); ok && m.Type == MetaTrackName {
			return m.Text()
		}
	}
	return ""
}
