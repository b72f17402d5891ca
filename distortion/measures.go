package distortion

import "math"

func mse(i, j int) float64 {
	d := float64(i - j)
	return d * d
}

func manhattan(i, j int) float64 {
	d := i - j
	if d < 0 {
		d = -d
	}
	return float64(d)
}

func lorentz(i, j int) float64 {
	d := i - j
	if d < 0 {
		d = -d
	}
	return math.Log2(1 + float64(d))
}
