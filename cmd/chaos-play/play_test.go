package main

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cwbudde/algo-chaososc/chaososc"
	"github.com/cwbudde/algo-chaososc/plugin"
)

func TestStreamMatchesPluginOutput(t *testing.T) {
	s := newStream(plugin.New())
	buf := make([]byte, 600*8+5)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 600*8 {
		t.Fatalf("Read returned %d bytes, want whole frames only", n)
	}
	if s.frames.Load() != 600 {
		t.Fatalf("frame counter = %d", s.frames.Load())
	}

	want := chaososc.NewOscillator().Render(600)
	for i := 0; i < 600*2; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != want[i] {
			t.Fatalf("sample %d = %g, want %g", i, got, want[i])
		}
	}
}

func TestStreamShortRead(t *testing.T) {
	s := newStream(plugin.New())
	if n, err := s.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("Read(7 bytes) = %d, %v", n, err)
	}
}

func TestCCMapAppliesControllers(t *testing.T) {
	m, err := newCCMap(20, -1)
	if err != nil {
		t.Fatalf("newCCMap: %v", err)
	}
	params := chaososc.NewParams()

	idx, ok := m.apply([]byte{0xB3, 21, 127}, params)
	if !ok || idx != chaososc.Scale || params.Get(chaososc.Scale) != 1 {
		t.Fatalf("CC 21 -> %d,%v scale=%g", idx, ok, params.Get(chaososc.Scale))
	}
	if _, ok := m.apply([]byte{0xB0, 29, 0}, params); !ok || params.Get(chaososc.Mod1To2) != 0 {
		t.Fatalf("CC 29 did not reach mod1to2")
	}

	for _, msg := range [][]byte{
		{0x90, 21, 100}, // note on
		{0xB0, 19, 100}, // unmapped controller
		{0xB0, 30, 100},
		{0xB0, 21},
	} {
		if _, ok := m.apply(msg, params); ok {
			t.Fatalf("message % x should be ignored", msg)
		}
	}
}

func TestCCMapChannelFilter(t *testing.T) {
	m, err := newCCMap(0, 2)
	if err != nil {
		t.Fatalf("newCCMap: %v", err)
	}
	params := chaososc.NewParams()
	if _, ok := m.apply([]byte{0xB1, 0, 64}, params); ok {
		t.Fatalf("accepted message on the wrong channel")
	}
	if _, ok := m.apply([]byte{0xB2, 0, 64}, params); !ok {
		t.Fatalf("rejected message on the selected channel")
	}
	if got := params.Get(chaososc.LenRatio); got != float32(64)/127 {
		t.Fatalf("len_ratio = %g", got)
	}
}

func TestNewCCMapRejectsBadRanges(t *testing.T) {
	if _, err := newCCMap(120, -1); err == nil {
		t.Fatalf("expected error for cc range past 127")
	}
	if _, err := newCCMap(0, 16); err == nil {
		t.Fatalf("expected error for channel 16")
	}
}
