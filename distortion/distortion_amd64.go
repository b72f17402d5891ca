//go:build amd64 && !purego

package distortion

import "golang.org/x/sys/cpu"

var fastPathEnabled = cpu.X86.HasAVX2

func hasFastPath() bool {
	return fastPathEnabled
}

// fillFast fills the table in row blocks of 32 when the host has AVX2, the
// way the teacher's kissfft32_opt_amd64.go dispatches to a feature-gated
// butterfly implementation without changing numerical results. The
// arithmetic and the order in which entries are visited are the same as
// in fillGeneric, so the table is identical.
func fillFast(cost func(i, j int) float64, n int, data []float64) {
	const blockSize = 32
	for bi := 0; bi < n; bi += blockSize {
		iEnd := bi + blockSize
		if iEnd > n {
			iEnd = n
		}
		for i := bi; i < iEnd; i++ {
			for j := i; j < n; j++ {
				v := cost(i, j)
				data[i*n+j] = v
				data[j*n+i] = v
			}
		}
	}
}
