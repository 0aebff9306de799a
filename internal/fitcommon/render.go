package fitcommon

import (
	"fmt"

	"github.com/cwbudde/algo-chaososc/chaososc"
	"github.com/cwbudde/algo-chaososc/dsp"
	"github.com/cwbudde/algo-chaososc/room"
)

// RenderOptions configures an offline render.
type RenderOptions struct {
	SampleRate int
	Frames     int
	// GainDB is applied after the oscillator and before the room.
	GainDB     float32
	HighpassHz float64
	IRWavPath  string
	IRWet      float32
	// RoomDecayS > 0 synthesizes a room when IRWavPath is empty.
	RoomDecayS float64
}

// RenderStereo runs a fresh oscillator with the given knobs.
func RenderStereo(knobs chaososc.Snapshot, opt RenderOptions) ([]float32, []float32, error) {
	if opt.SampleRate <= 0 {
		return nil, nil, fmt.Errorf("invalid sample rate %d", opt.SampleRate)
	}
	if opt.Frames < 0 {
		return nil, nil, fmt.Errorf("invalid frame count %d", opt.Frames)
	}

	osc := chaososc.NewOscillator()
	osc.SetSampleRate(float32(opt.SampleRate))
	osc.Params().Store(knobs)

	left := make([]float32, opt.Frames)
	right := make([]float32, opt.Frames)
	for pos := 0; pos < opt.Frames; pos += room.BlockSize {
		end := min(pos+room.BlockSize, opt.Frames)
		osc.Process(left[pos:end], right[pos:end], end-pos)
	}

	if opt.HighpassHz > 0 {
		hpL := dsp.NewHighpass(float32(opt.HighpassHz), float32(opt.SampleRate), 0.707)
		hpR := dsp.NewHighpass(float32(opt.HighpassHz), float32(opt.SampleRate), 0.707)
		hpL.ProcessBlock(left)
		hpR.ProcessBlock(right)
	}

	if g := DBToGain(opt.GainDB); g != 1 {
		for i := range left {
			left[i] *= g
			right[i] *= g
		}
	}

	if opt.IRWavPath != "" || opt.RoomDecayS > 0 {
		conv := room.New(opt.SampleRate)
		if opt.IRWavPath != "" {
			if err := conv.SetIRFromWAV(opt.IRWavPath); err != nil {
				return nil, nil, fmt.Errorf("load ir: %w", err)
			}
		} else {
			cfg := room.DefaultSynthConfig(opt.SampleRate)
			cfg.DecayS = opt.RoomDecayS
			cfg.DurationS = max(cfg.DurationS, 1.3*opt.RoomDecayS)
			if err := conv.SetSyntheticIR(cfg); err != nil {
				return nil, nil, err
			}
		}
		conv.SetWet(opt.IRWet)
		if err := conv.Process(left, right); err != nil {
			return nil, nil, err
		}
	}
	return left, right, nil
}
