package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
)

const (
	minDistortionPre  = 1.0
	maxDistortionPre  = 50.0
	minDistortionPost = 0.0
	maxDistortionPost = 1.0
)

// Distortion is an arctangent soft clipper: post * atan(pre * x).
type Distortion struct {
	sampleRate float64
	pre        float64
	post       float64
}

// NewDistortion creates a distortion with pre=1 and post=1.
func NewDistortion(sampleRate float64) (*Distortion, error) {
	if err := core.ValidateSampleRate("distortion", sampleRate); err != nil {
		return nil, err
	}
	return &Distortion{sampleRate: sampleRate, pre: 1, post: 1}, nil
}

// SetPre sets the drive applied before the clipper, in [1, 50].
func (d *Distortion) SetPre(pre float64) error {
	if pre < minDistortionPre || pre > maxDistortionPre || math.IsNaN(pre) {
		return fmt.Errorf("distortion pre gain must be in [%g, %g]: %f",
			minDistortionPre, maxDistortionPre, pre)
	}
	d.pre = pre
	return nil
}

// SetPost sets the output gain, in [0, 1].
func (d *Distortion) SetPost(post float64) error {
	if post < minDistortionPost || post > maxDistortionPost || math.IsNaN(post) {
		return fmt.Errorf("distortion post gain must be in [%g, %g]: %f",
			minDistortionPost, maxDistortionPost, post)
	}
	d.post = post
	return nil
}

// ProcessSample processes one sample.
func (d *Distortion) ProcessSample(x float64) float64 {
	return d.post * math.Atan(d.pre*x)
}

// ProcessBlock processes src into dst. dst and src may alias.
func (d *Distortion) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = d.post * math.Atan(d.pre*x)
	}
}

// Reset is a no-op; the clipper is memoryless.
func (d *Distortion) Reset() {}

// Pre returns the drive.
func (d *Distortion) Pre() float64 { return d.pre }

// Post returns the output gain.
func (d *Distortion) Post() float64 { return d.post }
