package ebm

import "math"

// buildGrid samples [-1, 1] in x = sin(latitude) at band centers,
// x[i] = -1 + 2(i+0.5)/n. Uniform spacing in x gives equal-area bands
// on the sphere, so area weighting is built into the grid itself.
func buildGrid(n int) (x, lat []float64) {
	x = make([]float64, n)
	lat = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = -1 + 2*(float64(i)+0.5)/float64(n)
		lat[i] = math.Asin(x[i]) * 180 / math.Pi
	}
	return x, lat
}
