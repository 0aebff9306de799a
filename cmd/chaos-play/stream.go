package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-chaososc/plugin"
)

const streamBlock = 256

// stream adapts the plugin to the interleaved float32 little-endian byte
// stream the audio device reads.
type stream struct {
	plug   *plugin.Plugin
	left   []float32
	right  []float32
	frames atomic.Int64
}

func newStream(plug *plugin.Plugin) *stream {
	return &stream{
		plug:  plug,
		left:  make([]float32, streamBlock),
		right: make([]float32, streamBlock),
	}
}

// Read renders as many whole stereo frames as fit in p.
func (s *stream) Read(p []byte) (int, error) {
	frames := len(p) / 8
	out := p
	for frames > 0 {
		n := min(frames, streamBlock)
		s.plug.Process([][]float32{s.left[:n], s.right[:n]})
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(s.left[i]))
			binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(s.right[i]))
		}
		out = out[n*8:]
		frames -= n
		s.frames.Add(int64(n))
	}
	return len(p) - len(out), nil
}
