package audiofile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

var debug = debuggo.Debug("discs:audiofile")

// ErrUnsupportedFormat is returned for file extensions other than .wav and
// .flac, and for bit depths the encoder does not write.
var ErrUnsupportedFormat = errors.New("audiofile: unsupported format")

// Clip is decoded audio downmixed to mono.
type Clip struct {
	Path       string
	Samples    []float64
	SampleRate int
	// Channels is the channel count of the source file.
	Channels int
	BitDepth int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load decodes a .wav or .flac file by extension.
func Load(path string) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		clip, err = loadWAV(path)
	case ".flac":
		clip, err = loadFLAC(path)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .wav, .flac)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	debug("loaded %s: %d Hz, %d ch, %d bit, %d frames",
		path, clip.SampleRate, clip.Channels, clip.BitDepth, len(clip.Samples))
	return clip, nil
}

func loadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open WAV %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read WAV %s: %w", path, err)
	}

	channels := int(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bits := int(dec.BitDepth)
	scale := fullScale(bits)
	// 8-bit WAV data is unsigned with silence at the midpoint.
	var offset float64
	if bits == 8 {
		offset = scale
	}

	frames := downmix(len(buf.Data), channels, func(i int) float64 {
		return (float64(buf.Data[i]) - offset) / scale
	})
	return &Clip{
		Path:       path,
		Samples:    frames,
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bits,
	}, nil
}

func loadFLAC(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FLAC %s: %w", path, err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decode FLAC %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.NChannels == 0 {
		return nil, fmt.Errorf("no stream info in FLAC file: %s", path)
	}
	channels := int(info.NChannels)
	bits := int(info.BitsPerSample)
	scale := fullScale(bits)

	var samples []float64
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read FLAC frame %s: %w", path, err)
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) / scale
			}
			samples = append(samples, sum/float64(channels))
		}
	}

	return &Clip{
		Path:       path,
		Samples:    samples,
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		BitDepth:   bits,
	}, nil
}

// fullScale returns the magnitude of the most negative code for bits.
func fullScale(bits int) float64 {
	if bits <= 0 || bits > 32 {
		bits = 16
	}
	return math.Exp2(float64(bits - 1))
}

// downmix averages interleaved channels of n samples read through at.
func downmix(n, channels int, at func(int) float64) []float64 {
	if channels < 1 {
		channels = 1
	}
	out := make([]float64, n/channels)
	for i := range out {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += at(i*channels + ch)
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// WriteWAV encodes samples as mono PCM at 16 or 24 bits. Samples outside
// [-1, 1] are clipped.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("WAV sample rate must be > 0: %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create WAV %s: %w", path, err)
	}

	if err := encodeWAV(f, samples, sampleRate, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("write WAV %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close WAV %s: %w", path, err)
	}

	debug("wrote %s: %d Hz, %d bit, %d frames", path, sampleRate, bitDepth, len(samples))
	return nil
}

func encodeWAV(w io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	const pcm = 1
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, pcm)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           Quantize(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// Quantize converts samples to signed integer codes of bitDepth bits,
// clipping to [-1, 1].
func Quantize(samples []float64, bitDepth int) []int {
	peak := fullScale(bitDepth) - 1
	out := make([]int, len(samples))
	for i, x := range samples {
		if math.IsNaN(x) {
			x = 0
		}
		x = math.Max(-1, math.Min(1, x))
		out[i] = int(math.Round(x * peak))
	}
	return out
}
