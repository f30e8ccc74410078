package player

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/james-see/smfplay/pkg/smf"
)

// recordingSink records every command as a string.
type recordingSink struct {
	mu       sync.Mutex
	calls    []string
	bankErr  error
	bankPath string
}

func (r *recordingSink) add(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recordingSink) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingSink) LoadBank(path string) error {
	r.bankPath = path
	return r.bankErr
}
func (r *recordingSink) NoteOn(ch, note, vel uint8) { r.add("noteOn(%d,%d,%d)", ch, note, vel) }
func (r *recordingSink) NoteOff(ch, note uint8)     { r.add("noteOff(%d,%d)", ch, note) }
func (r *recordingSink) ProgramChange(ch, p uint8)  { r.add("program(%d,%d)", ch, p) }
func (r *recordingSink) ControlChange(ch, c, v uint8) {
	r.add("cc(%d,%d,%d)", ch, c, v)
}
func (r *recordingSink) PitchBend(ch uint8, v int16)      { r.add("bend(%d,%d)", ch, v) }
func (r *recordingSink) ChannelPressure(ch, p uint8)      { r.add("pressure(%d,%d)", ch, p) }
func (r *recordingSink) PolyAftertouch(ch, note, p uint8) { r.add("poly(%d,%d,%d)", ch, note, p) }
func (r *recordingSink) AllNotesOff()                     { r.add("allNotesOff") }

// fakeClock records waits without sleeping.
type fakeClock struct {
	mu    sync.Mutex
	waits []time.Duration
	// onWait, when set, runs before the wait returns.
	onWait func(n int)
}

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	n := len(c.waits)
	c.mu.Unlock()
	if c.onWait != nil {
		c.onWait(n)
	}
	return ctx.Err()
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

func quiet() *log.Logger {
	return log.New(io.Discard)
}

func ev(delta uint32, e smf.Event) smf.TimedEvent {
	return smf.TimedEvent{Delta: delta, Event: e}
}

func noteOn(ch, note, vel uint8) smf.ChannelVoice {
	return smf.ChannelVoice{Kind: smf.NoteOn, Channel: ch, Data1: note, Data2: vel}
}

func tempoMeta(us uint32) smf.Meta {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], us)
	return smf.Meta{Type: smf.MetaTempo, Length: 3, Data: b[1:]}
}

var eot = smf.Meta{Type: smf.MetaEndOfTrack}

func file(division uint16, tracks ...[]smf.TimedEvent) *smf.File {
	f := &smf.File{Division: division}
	for i, events := range tracks {
		f.Tracks = append(f.Tracks, smf.Track{Index: i, Events: events})
	}
	return f
}
