package player

import (
	"sync"
	"time"

	"github.com/james-see/smfplay/pkg/smf"
)

// DefaultTempo is 120 BPM expressed in microseconds per quarter note.
const DefaultTempo uint32 = 500000

// TempoMap holds the active tempo. It is safe for concurrent use.
type TempoMap struct {
	mu    sync.RWMutex
	tempo uint32
}

// NewTempoMap returns a tempo map seeded with DefaultTempo.
func NewTempoMap() *TempoMap {
	return &TempoMap{tempo: DefaultTempo}
}

// Current returns the active microseconds per quarter note.
func (t *TempoMap) Current() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tempo
}

// Set replaces the active tempo.
func (t *TempoMap) Set(microsPerQuarter uint32) {
	t.mu.Lock()
	t.tempo = microsPerQuarter
	t.mu.Unlock()
}

// Apply updates the tempo when ev is a valid set-tempo meta event and reports
// whether it did.
func (t *TempoMap) Apply(ev smf.Event) bool {
	m, ok := ev.(smf.Meta)
	if !ok {
		return false
	}
	tempo, ok := m.Tempo()
	if !ok {
		return false
	}
	t.Set(tempo)
	return true
}

// BPM returns the active tempo in beats per minute.
func (t *TempoMap) BPM() float64 {
	tempo := t.Current()
	if tempo == 0 {
		return 0
	}
	return 60000000.0 / float64(tempo)
}

// DelayFor converts delta ticks to microseconds: deltaTicks * tempo / division,
// truncated, with 64-bit intermediates.
func DelayFor(deltaTicks uint64, tempo uint32, division uint16) uint64 {
	if division == 0 {
		return 0
	}
	return deltaTicks * uint64(tempo) / uint64(division)
}

// Delay is DelayFor as a time.Duration.
func Delay(deltaTicks uint64, tempo uint32, division uint16) time.Duration {
	return time.Duration(DelayFor(deltaTicks, tempo, division)) * time.Microsecond
}
