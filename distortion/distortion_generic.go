//go:build !amd64 || purego

package distortion

func hasFastPath() bool {
	return false
}

func fillFast(cost func(i, j int) float64, n int, data []float64) {
	fillGeneric(cost, n, data)
}
