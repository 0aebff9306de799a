package main

import (
	"context"
	"fmt"
	"log"

	"github.com/cwbudde/algo-chaososc/chaososc"
	"gitlab.com/gomidi/rtmididrv"
)

// ccMap routes MIDI control changes to parameters. Channel -1 accepts any channel.
type ccMap struct {
	channel int
	params  map[uint8]int
}

// newCCMap maps NumParams consecutive controller numbers starting at first
// to the parameters in index order.
func newCCMap(first int, channel int) (*ccMap, error) {
	if first < 0 || first+chaososc.NumParams > 128 {
		return nil, fmt.Errorf("cc range %d..%d outside 0..127", first, first+chaososc.NumParams-1)
	}
	if channel < -1 || channel > 15 {
		return nil, fmt.Errorf("midi channel %d outside -1..15", channel)
	}
	m := &ccMap{channel: channel, params: make(map[uint8]int, chaososc.NumParams)}
	for i := 0; i < chaososc.NumParams; i++ {
		m.params[uint8(first+i)] = i
	}
	return m, nil
}

// apply decodes one MIDI message and writes a mapped controller to params.
// It reports the parameter index that changed.
func (m *ccMap) apply(data []byte, params *chaososc.Params) (int, bool) {
	if len(data) < 3 || data[0]&0xF0 != 0xB0 {
		return 0, false
	}
	if m.channel >= 0 && int(data[0]&0x0F) != m.channel {
		return 0, false
	}
	idx, ok := m.params[data[1]&0x7F]
	if !ok {
		return 0, false
	}
	params.Set(idx, float32(data[2]&0x7F)/127)
	return idx, true
}

func listMIDIInputs() error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("initialize MIDI driver: %w", err)
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("list MIDI IN: %w", err)
	}
	for i, in := range ins {
		fmt.Printf("%d: %s\n", i, in.String())
	}
	return nil
}

// listenMIDI applies controller messages from MIDI input port until ctx is done.
func listenMIDI(ctx context.Context, port int, m *ccMap, params *chaososc.Params, verbose bool) {
	drv, err := rtmididrv.New()
	if err != nil {
		log.Printf("failed to initialize MIDI driver: %v", err)
		return
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Printf("failed to close MIDI driver: %v", err)
		}
	}()

	ins, err := drv.Ins()
	if err != nil {
		log.Printf("failed to get MIDI IN: %v", err)
		return
	}
	if port < 0 || port >= len(ins) {
		log.Printf("WARN: MIDI IN port %d not found (%d available)", port, len(ins))
		return
	}
	in := ins[port]
	if err := in.Open(); err != nil {
		log.Printf("failed to open MIDI IN: %v", err)
		return
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Printf("failed to close MIDI IN: %v", err)
		}
	}()
	log.Printf("listening on %s", in.String())

	if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
		idx, ok := m.apply(data, params)
		if ok && verbose {
			log.Printf("%s = %.3f", chaososc.ParamKey(idx), params.Get(idx))
		}
	}); err != nil {
		log.Printf("failed to set listener: %v", err)
		return
	}
	defer func() {
		if err := in.StopListening(); err != nil {
			log.Printf("failed to stop listening: %v", err)
		}
	}()
	<-ctx.Done()
}
