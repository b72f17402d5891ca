// Package distortion builds the pairwise symbol distortion tables consumed
// by the quantizer designer: a symmetric A×A matrix of nonnegative costs
// with a zero diagonal, computed once per run from a chosen measure.
package distortion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Measure names a supported distortion metric.
type Measure int

const (
	// MSE is the squared-error measure d(i,j) = (i-j)^2.
	MSE Measure = iota
	// Manhattan is the absolute-error measure d(i,j) = |i-j|.
	Manhattan
	// Lorentz is the perceptually-motivated measure d(i,j) = log2(1+|i-j|).
	Lorentz
)

// String renders the measure name, for config validation errors and logs.
func (m Measure) String() string {
	switch m {
	case MSE:
		return "MSE"
	case Manhattan:
		return "Manhattan"
	case Lorentz:
		return "Lorentz"
	default:
		return fmt.Sprintf("Measure(%d)", int(m))
	}
}

// ParseMeasure maps a case-sensitive name to a Measure.
func ParseMeasure(name string) (Measure, error) {
	switch name {
	case "MSE":
		return MSE, nil
	case "Manhattan":
		return Manhattan, nil
	case "Lorentz":
		return Lorentz, nil
	default:
		return 0, fmt.Errorf("distortion: unknown measure %q", name)
	}
}

// Table is a symmetric A×A matrix of nonnegative distortion costs with a
// zero diagonal, built once and then read-only.
type Table struct {
	sym *mat.SymDense
	n   int
}

// NewTable builds the distortion table for alphabet size n under measure.
// n must be positive.
func NewTable(measure Measure, n int) (*Table, error) {
	if n <= 0 {
		return nil, fmt.Errorf("distortion: alphabet size must be positive, got %d", n)
	}
	data := make([]float64, n*n)
	fill(measure, n, data)
	return &Table{sym: mat.NewSymDense(n, data), n: n}, nil
}

// At returns d(i, j). It panics if i or j is out of [0, n).
func (t *Table) At(i, j int) float64 {
	return t.sym.At(i, j)
}

// Size returns the alphabet size the table was built for.
func (t *Table) Size() int {
	return t.n
}

// fill populates every entry of data for the given measure, writing each
// computed d(i,j), j >= i, to both (i,j) and (j,i). The AVX2-gated
// fast path and the portable fallback are both correct for any n; the fast
// path exists purely to amortize the A² fill over wide symbol alphabets.
func fill(measure Measure, n int, data []float64) {
	cost := costFunc(measure)
	if hasFastPath() {
		fillFast(cost, n, data)
		return
	}
	fillGeneric(cost, n, data)
}

func fillGeneric(cost func(i, j int) float64, n int, data []float64) {
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := cost(i, j)
			data[i*n+j] = v
			data[j*n+i] = v
		}
	}
}

func costFunc(measure Measure) func(i, j int) float64 {
	switch measure {
	case MSE:
		return mse
	case Manhattan:
		return manhattan
	case Lorentz:
		return lorentz
	default:
		return mse
	}
}
