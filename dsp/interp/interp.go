package interp

// Linear2 interpolates from x0 (t=0) to x1 (t=1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// ResampleLinear stretches src over the whole of dst with linear
// interpolation. The first and last samples of src map onto the first and
// last samples of dst.
func ResampleLinear(dst, src []float64) {
	switch {
	case len(dst) == 0:
		return
	case len(src) == 0:
		clear(dst)
		return
	case len(src) == 1 || len(dst) == 1:
		for i := range dst {
			dst[i] = src[0]
		}
		return
	}

	step := float64(len(src)-1) / float64(len(dst)-1)
	last := len(src) - 1
	for i := range dst {
		pos := float64(i) * step
		p := int(pos)
		if p >= last {
			dst[i] = src[last]
			continue
		}
		dst[i] = Linear2(pos-float64(p), src[p], src[p+1])
	}
}
