// Command discs renders or plays a spatial effect graph described by a Lua
// scene.
//
// Usage:
//
//	discs [flags]
//
// Without -play or -jack it renders offline. Without -scene it runs a
// built-in demo.
//
// Examples:
//
//	discs -out demo.wav -seconds 10
//	discs -scene room.lua -in guitar.flac -out wet.wav
//	discs -play -keys
//	discs -jack -scene live.lua
//	discs -list
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-discs/audio/audiofile"
	"github.com/cwbudde/algo-discs/audio/device"
	"github.com/cwbudde/algo-discs/audio/stream"
	"github.com/cwbudde/algo-discs/dsp/graph"
	"github.com/cwbudde/algo-discs/dsp/ugen"
	"github.com/cwbudde/algo-discs/internal/scene"
	"github.com/cwbudde/algo-discs/measure/level"
)

//go:embed demo.lua
var demoScene string

type options struct {
	scenePath    string
	inPath       string
	outPath      string
	seconds      float64
	rate         int
	block        int
	rebuildEvery int
	bits         int
	play         bool
	jack         bool
	keys         bool
	list         bool
}

func main() {
	var opts options
	flag.StringVar(&opts.scenePath, "scene", "", "Lua scene script (default: built-in demo)")
	flag.StringVar(&opts.inPath, "in", "", "WAV or FLAC file fed to input discs")
	flag.StringVar(&opts.outPath, "out", "", "write the offline render to this WAV file")
	flag.Float64Var(&opts.seconds, "seconds", 8, "render or play duration in seconds (0 plays until interrupted)")
	flag.IntVar(&opts.rate, "rate", 44100, "sample rate in Hz")
	flag.IntVar(&opts.block, "block", 512, "buffer size in frames")
	flag.IntVar(&opts.rebuildEvery, "rebuild", 8, "rebuild the topology every N buffers (0 disables)")
	flag.IntVar(&opts.bits, "bits", 16, "WAV output bit depth (16 or 24)")
	flag.BoolVar(&opts.play, "play", false, "play through the default audio device")
	flag.BoolVar(&opts.jack, "jack", false, "run as a JACK client (needs -tags jack)")
	flag.BoolVar(&opts.keys, "keys", false, "use the terminal keyboard as a MIDI keyboard (with -play or -jack)")
	flag.BoolVar(&opts.list, "list", false, "list disc kinds and their parameters")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: discs [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders or plays a spatial effect graph driven by a Lua scene.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  discs -out demo.wav -seconds 10\n")
		fmt.Fprintf(os.Stderr, "  discs -scene room.lua -in guitar.flac -out wet.wav\n")
		fmt.Fprintf(os.Stderr, "  discs -play -keys\n")
		fmt.Fprintf(os.Stderr, "  discs -list\n")
	}
	flag.Parse()

	if opts.list {
		printKinds()
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printKinds() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Kind\tClass\tParam 1\tRange\tParam 2\tRange\n")
	fmt.Fprintf(tw, "----\t-----\t-------\t-----\t-------\t-----\n")
	for _, k := range ugen.Kinds() {
		class := "effect"
		switch {
		case k.IsInput():
			class = "input"
		case k.IsMIDI():
			class = "midi"
		case k.IsLooper():
			class = "looper"
		}
		l1, l2 := k.Labels()
		b1, b2 := k.Bounds()
		fmt.Fprintf(tw, "%s\t%s\t%s\t[%g, %g]\t%s\t[%g, %g]\n",
			k, class, orDash(l1), b1.Min, b1.Max, orDash(l2), b2.Min, b2.Max)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func run(opts options) error {
	if opts.play && opts.jack {
		return fmt.Errorf("-play and -jack are exclusive")
	}
	if opts.keys && !opts.play && !opts.jack {
		return fmt.Errorf("-keys needs -play or -jack")
	}
	if opts.jack && opts.inPath != "" {
		return fmt.Errorf("-in is not used with -jack; input comes from the audio_in port")
	}

	rate := float64(opts.rate)
	var jc *device.JackClient
	if opts.jack {
		// The server decides the rate, so the client comes first.
		var err error
		jc, err = device.NewJackClient("discs")
		if err != nil {
			return err
		}
		defer jc.Close()
		rate = float64(jc.SampleRate())
	}

	b, err := graph.New(graph.WithSampleRate(rate), graph.WithBlockSize(opts.block))
	if err != nil {
		return err
	}
	defer b.Close()

	s, err := newSession(b, opts, rate)
	if err != nil {
		return err
	}
	if s.scene != nil {
		defer s.scene.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.play:
		return playLive(ctx, s, opts)
	case opts.jack:
		return runJack(ctx, s, jc, opts)
	default:
		return renderToFile(s, opts)
	}
}

func newSession(b *graph.Builder, opts options, rate float64) (*session, error) {
	s := &session{
		builder:      b,
		rebuildEvery: opts.rebuildEvery,
		sampleRate:   rate,
		loopInput:    opts.play || opts.jack,
	}

	var err error
	if opts.scenePath != "" {
		s.scene, err = scene.Load(b, opts.scenePath)
	} else {
		s.scene, err = scene.LoadString(b, "demo", demoScene)
	}
	if err != nil {
		return nil, err
	}

	if opts.inPath != "" {
		if s.input, err = loadInput(opts.inPath, rate); err != nil {
			s.scene.Close()
			return nil, err
		}
	}
	return s, nil
}

func renderToFile(s *session, opts options) error {
	if opts.seconds <= 0 {
		return fmt.Errorf("offline render needs -seconds > 0")
	}
	frames := int(math.Round(opts.seconds * s.sampleRate))
	meter := level.NewMeter()
	out := make([]float64, 0, frames)

	start := time.Now()
	err := s.render(frames, opts.block, func(block []float64) {
		meter.Update(block)
		out = append(out, block...)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := s.builder.Stats()
	fmt.Printf("rendered %.2f s in %v (%.1fx realtime)\n",
		float64(frames)/s.sampleRate, elapsed.Round(time.Millisecond),
		float64(frames)/s.sampleRate/math.Max(elapsed.Seconds(), 1e-9))
	fmt.Printf("graph: %d nodes, %d wires, %d sinks, %d islands, %d rebuilds\n",
		st.Nodes, st.Wires, st.Sinks, st.Islands, st.Rebuilds)
	fmt.Printf("peak %.1f dBFS, %d clipped samples\n", meter.PeakDB(), meter.Clipped())

	if opts.outPath == "" {
		return nil
	}
	return audiofile.WriteWAV(opts.outPath, out, int(s.sampleRate), opts.bits)
}

func playLive(ctx context.Context, s *session, opts options) error {
	var hookErr firstError
	var limit int64
	if opts.seconds > 0 {
		limit = int64(math.Round(opts.seconds * s.sampleRate))
	}
	r, err := stream.NewReader(s.builder, opts.block,
		stream.WithLimit(limit),
		stream.WithBlockHook(func(frames int) { hookErr.set(s.prepare(frames)) }))
	if err != nil {
		return err
	}

	period := blockPeriod(opts.block, s.sampleRate)
	out, err := device.NewOtoOutput(int(s.sampleRate), 2*period, r)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.keys {
		kb, err := startKeyboard(s.builder, cancel)
		if err != nil {
			return err
		}
		defer kb.Close()
	}

	if err := out.Start(); err != nil {
		return err
	}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for out.IsPlaying() || r.Frames() == 0 {
		select {
		case <-ctx.Done():
			_ = r.Close()
			return report(r.Peak(), r.Clipped(), hookErr.get())
		case <-ticker.C:
			if err := hookErr.get(); err != nil {
				return err
			}
		}
	}
	return report(r.Peak(), r.Clipped(), hookErr.get())
}

// runJack lets the JACK callback own the audio while the scene and the
// rebuild schedule advance on a timer at the block rate.
func runJack(ctx context.Context, s *session, jc *device.JackClient, opts options) error {
	meter := &meteredEngine{Builder: s.builder, meter: level.NewMeter()}
	if err := jc.Start(meter); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.seconds > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, time.Duration(opts.seconds*float64(time.Second)))
		defer stop()
	}
	if opts.keys {
		kb, err := startKeyboard(s.builder, cancel)
		if err != nil {
			return err
		}
		defer kb.Close()
	}

	ticker := time.NewTicker(blockPeriod(opts.block, s.sampleRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			peak, clipped := meter.levels()
			return report(peak, clipped, nil)
		case <-ticker.C:
			if err := s.prepare(opts.block); err != nil {
				return err
			}
		}
	}
}

func startKeyboard(b *graph.Builder, quit func()) (*keyboard, error) {
	kb, err := openKeyboard(b.HandoffMIDI)
	if err != nil {
		return nil, err
	}
	go kb.run(quit)
	fmt.Print("keys: a-k play, z/x octave, q quits\r\n")
	return kb, nil
}

func blockPeriod(block int, sampleRate float64) time.Duration {
	return time.Duration(float64(block) / sampleRate * float64(time.Second))
}

func report(peak float64, clipped int, err error) error {
	fmt.Printf("peak %.1f dBFS, %d clipped samples\r\n", level.ToDB(peak), clipped)
	return err
}

// meteredEngine meters every buffer the JACK callback renders.
type meteredEngine struct {
	*graph.Builder

	mu    sync.Mutex
	meter *level.Meter
}

func (m *meteredEngine) LoadBuffer(out []float64) {
	m.Builder.LoadBuffer(out)
	m.mu.Lock()
	m.meter.Update(out)
	m.mu.Unlock()
}

func (m *meteredEngine) levels() (float64, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meter.Peak(), m.meter.Clipped()
}

// firstError keeps the first non-nil error set from any goroutine.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
