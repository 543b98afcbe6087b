package core

// Zero sets every sample of buf to 0.
func Zero(buf []float64) {
	clear(buf)
}
