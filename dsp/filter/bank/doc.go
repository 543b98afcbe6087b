// Package bank runs a set of filters in parallel and sums their outputs.
//
// The summed signal's squared magnitude feeds a slow, unity-gain lowpass that
// acts as an envelope follower, so a Bank doubles as a running power
// estimate of its own output:
//
//	b, _ := bank.New(44100, combs...)
//	y := b.Tick(x)
//	power := b.GainEstimate()
package bank
