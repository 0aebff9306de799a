package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cwbudde/algo-chaososc/plugin"
	"github.com/cwbudde/algo-chaososc/preset"
	"github.com/ebitengine/oto/v3"
)

type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	var params overrides
	sampleRate := flag.Int("sample-rate", 48000, "Device sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	flag.Var(&params, "param", "Knob override key=value, repeatable")
	bufferMs := flag.Int("buffer-ms", 40, "Device buffer length in milliseconds")
	midiPort := flag.Int("midi-in", -1, "MIDI input port index for CC control, -1 disables")
	listMIDI := flag.Bool("list-midi", false, "List MIDI input ports and exit")
	ccFirst := flag.Int("cc-first", 20, "First CC number; the ten parameters follow in index order")
	ccChannel := flag.Int("cc-channel", -1, "MIDI channel 0..15 to accept, -1 for any")
	verbose := flag.Bool("verbose", false, "Log every mapped CC change")
	duration := flag.Duration("duration", 0, "Stop after this long, 0 plays until interrupted")
	flag.Parse()

	if *listMIDI {
		if err := listMIDIInputs(); err != nil {
			die("%v", err)
		}
		return
	}

	p := preset.Default()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		p = loaded
	}
	for _, o := range params {
		if err := preset.ParseOverride(p, o); err != nil {
			die("Error in -param: %v", err)
		}
	}

	plug := plugin.New()
	if err := plug.SetSampleRate(float32(*sampleRate)); err != nil {
		die("%v", err)
	}
	plug.Params().Store(p.Knobs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if *midiPort >= 0 {
		m, err := newCCMap(*ccFirst, *ccChannel)
		if err != nil {
			die("%v", err)
		}
		go listenMIDI(ctx, *midiPort, m, plug.Params(), *verbose)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(*bufferMs) * time.Millisecond,
	})
	if err != nil {
		die("Error opening audio device: %v", err)
	}
	<-ready

	s := newStream(plug)
	player := otoCtx.NewPlayer(s)
	player.Play()
	info := plug.Info()
	fmt.Printf("%s by %s playing at %d Hz (Ctrl-C to stop)\n", info.Name, info.Vendor, *sampleRate)

	<-ctx.Done()
	if err := player.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing player: %v\n", err)
	}
	fmt.Printf("Stopped after %.1f s of audio\n", float64(s.frames.Load())/float64(*sampleRate))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
