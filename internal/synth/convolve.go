package synth

import "math"

// gaussianWindow returns a Gaussian window of n points with the given
// standard deviation in points, peak value 1 at the center.
func gaussianWindow(n int, sigma float64) []float64 {
	w := make([]float64, n)
	center := float64(n-1) / 2
	for i := range w {
		d := (float64(i) - center) / sigma
		w[i] = math.Exp(-0.5 * d * d)
	}
	return w
}

// Convolve smooths the spectrum with a Gaussian instrument-response kernel of
// width sigmaNM. The kernel spans six sigma rounded to an odd number of grid
// points; edges are padded by replicating the boundary samples so the output
// keeps the input length. This models finite spectral resolution independent
// of per-line broadening.
func Convolve(spectrum, grid []float64, sigmaNM float64) []float64 {
	n := len(spectrum)
	if n == 0 {
		return nil
	}

	step := (grid[len(grid)-1] - grid[0]) / float64(len(grid)-1)
	sigmaPoints := sigmaNM / step
	kernelSize := int(6*sigmaPoints) | 1
	if kernelSize < 1 {
		kernelSize = 1
	}

	kernel := gaussianWindow(kernelSize, sigmaPoints)
	var norm float64
	for _, k := range kernel {
		norm += k
	}
	for i := range kernel {
		kernel[i] /= norm
	}

	half := kernelSize / 2
	out := make([]float64, n)
	for i := range out {
		var sum float64
		for k, kv := range kernel {
			j := i + k - half
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			sum += spectrum[j] * kv
		}
		out[i] = sum
	}
	return out
}

// Normalize scales the spectrum so its maximum absolute value equals
// targetMax. A spectrum with zero maximum is returned unchanged.
func Normalize(spectrum []float64, targetMax float64) []float64 {
	var maxAbs float64
	for _, v := range spectrum {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return spectrum
	}

	out := make([]float64, len(spectrum))
	scale := targetMax / maxAbs
	for i, v := range spectrum {
		out[i] = v * scale
	}
	return out
}
