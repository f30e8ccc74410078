package player

import (
	"sort"
	"time"

	"github.com/james-see/smfplay/pkg/smf"
)

// Scheduled is an event placed at an absolute tick of the merged timeline.
type Scheduled struct {
	Tick  uint64
	Track int
	Index int // position of the event inside its track
	Event smf.Event
}

// Timeline is a tick ordered sequence of events from every track.
type Timeline []Scheduled

// Merge converts each track's delta times to absolute ticks and merges all
// tracks into one timeline. Events at the same tick keep track order, then
// decode order.
func Merge(tracks []smf.Track) Timeline {
	var n int
	for _, tr := range tracks {
		n += len(tr.Events)
	}

	tl := make(Timeline, 0, n)
	for _, tr := range tracks {
		var tick uint64
		for i, ev := range tr.Events {
			tick += uint64(ev.Delta)
			tl = append(tl, Scheduled{
				Tick:  tick,
				Track: tr.Index,
				Index: i,
				Event: ev.Event,
			})
		}
	}
	tl.Sort()
	return tl
}

// Sort orders the timeline by tick. The sort is stable, so sorting an already
// sorted timeline leaves it unchanged.
func (tl Timeline) Sort() {
	sort.SliceStable(tl, func(i, j int) bool {
		return tl[i].Tick < tl[j].Tick
	})
}

// Ticks returns the tick of the last event.
func (tl Timeline) Ticks() uint64 {
	if len(tl) == 0 {
		return 0
	}
	return tl[len(tl)-1].Tick
}

// Offsets returns the wall-clock offset of every event from the start of
// playback, honouring tempo changes in timeline order.
func (tl Timeline) Offsets(division uint16) []time.Duration {
	out := make([]time.Duration, len(tl))
	tempo := NewTempoMap()

	var (
		at   time.Duration
		prev uint64
	)
	for i, s := range tl {
		at += Delay(s.Tick-prev, tempo.Current(), division)
		prev = s.Tick
		out[i] = at
		tempo.Apply(s.Event)
	}
	return out
}

// Duration returns the total playing time of the timeline.
func (tl Timeline) Duration(division uint16) time.Duration {
	offsets := tl.Offsets(division)
	if len(offsets) == 0 {
		return 0
	}
	return offsets[len(offsets)-1]
}
