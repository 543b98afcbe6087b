// Package effects provides the single-input effect kernels a disc can host:
//
//   - BitCrusher: sample-and-hold plus amplitude requantization.
//   - Delay: feedback delay line with click-free time changes.
//   - Distortion: arctangent soft clipper.
//   - Looper: beat-synced record-and-loop state machine.
//
// Subpackages:
//   - github.com/cwbudde/algo-discs/dsp/effects/modulation
//   - github.com/cwbudde/algo-discs/dsp/effects/reverb
//
// Every kernel validates its sample rate at construction, exposes a setter
// per parameter and processes without allocating.
package effects
