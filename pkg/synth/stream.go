package synth

import (
	"encoding/binary"
	"math"
)

const bytesPerFrame = 4 // 16-bit stereo

// stream feeds rendered PCM to the audio player.
type stream struct {
	synth *Synth
}

// Read renders len(p)/4 stereo frames as little-endian int16. It never ends.
func (st *stream) Read(p []byte) (int, error) {
	return st.synth.render(p), nil
}

func (s *Synth) render(p []byte) int {
	frames := len(p) / bytesPerFrame
	n := frames * bytesPerFrame

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synth == nil {
		clear(p[:n])
		return n
	}
	if cap(s.left) < frames {
		s.left = make([]float32, frames)
		s.right = make([]float32, frames)
	}
	left, right := s.left[:frames], s.right[:frames]
	s.synth.Render(left, right)

	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame:], uint16(toPCM(left[i])))
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame+2:], uint16(toPCM(right[i])))
	}
	return n
}

// toPCM converts a float sample to int16, clamping out of range values.
func toPCM(v float32) int16 {
	x := float64(v) * math.MaxInt16
	switch {
	case x > math.MaxInt16:
		return math.MaxInt16
	case x < math.MinInt16:
		return math.MinInt16
	default:
		return int16(x)
	}
}
