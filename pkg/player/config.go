package player

import (
	"github.com/charmbracelet/log"

	"github.com/james-see/smfplay/pkg/smf"
)

// Config collects the playback settings exposed by the command line.
type Config struct {
	Strategy          Strategy
	MaxMetaCapture    int
	SkipUnknownChunks bool
	SampleRate        int
	Port              string // MIDI output port; empty selects the synthesizer
}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Strategy:       Merged,
		MaxMetaCapture: smf.DefaultMaxMetaCapture,
		SampleRate:     44100,
	}
}

// ParseOptions returns the file loader options for c.
func (c Config) ParseOptions(logger *log.Logger) []smf.Option {
	opts := []smf.Option{smf.WithMaxMetaCapture(c.MaxMetaCapture)}
	if c.SkipUnknownChunks {
		opts = append(opts, smf.WithSkipUnknownChunks())
	}
	if logger != nil {
		opts = append(opts, smf.WithLogger(logger))
	}
	return opts
}

// SchedulerOptions returns the scheduler options for c.
func (c Config) SchedulerOptions(logger *log.Logger) []Option {
	opts := []Option{WithStrategy(c.Strategy)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}
