package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/audio/audiofile"
	"github.com/cwbudde/algo-discs/dsp/graph"
	"github.com/cwbudde/algo-discs/dsp/interp"
	"github.com/cwbudde/algo-discs/internal/scene"
)

// session feeds one engine from an input clip and a scene, block by block.
type session struct {
	builder      *graph.Builder
	scene        *scene.Scene
	input        []float64
	inputPos     int
	silence      []float64
	loopInput    bool
	rebuildEvery int
	sampleRate   float64

	blocks int
	frames int64
}

// prepare runs before frames are rendered: it hands off the next input
// block, steps the scene and rebuilds on schedule.
func (s *session) prepare(frames int) error {
	if len(s.input) > 0 {
		if err := s.builder.HandoffAudio(s.nextInput(frames)); err != nil {
			return err
		}
	}
	if s.scene != nil {
		if err := s.scene.Step(float64(s.frames) / s.sampleRate); err != nil {
			return err
		}
	}
	if s.rebuildEvery > 0 && s.blocks%s.rebuildEvery == 0 {
		if err := s.builder.Rebuild(); err != nil {
			return err
		}
	}
	s.blocks++
	s.frames += int64(frames)
	return nil
}

func (s *session) nextInput(frames int) []float64 {
	if s.inputPos >= len(s.input) {
		if !s.loopInput {
			if cap(s.silence) < frames {
				s.silence = make([]float64, frames)
			}
			return s.silence[:frames]
		}
		s.inputPos = 0
	}
	end := min(s.inputPos+frames, len(s.input))
	chunk := s.input[s.inputPos:end]
	s.inputPos = end
	return chunk
}

// render produces frames of output in blocks of block frames, calling fn on
// each rendered block.
func (s *session) render(frames, block int, fn func([]float64)) error {
	buf := make([]float64, block)
	for done := 0; done < frames; done += block {
		n := min(block, frames-done)
		if err := s.prepare(n); err != nil {
			return err
		}
		s.builder.LoadBuffer(buf[:n])
		fn(buf[:n])
	}
	return nil
}

// loadInput decodes path and resamples it to sampleRate.
func loadInput(path string, sampleRate float64) ([]float64, error) {
	clip, err := audiofile.Load(path)
	if err != nil {
		return nil, err
	}
	if clip.SampleRate <= 0 {
		return nil, fmt.Errorf("input %s has no sample rate", path)
	}
	if float64(clip.SampleRate) == sampleRate {
		return clip.Samples, nil
	}
	n := int(math.Round(float64(len(clip.Samples)) * sampleRate / float64(clip.SampleRate)))
	out := make([]float64, n)
	interp.ResampleLinear(out, clip.Samples)
	return out, nil
}
