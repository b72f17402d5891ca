// Package pmf implements probability mass functions over an alphabet.Alphabet,
// the statistical currency passed between the conditional PMF store, the bit
// allocator, and the quantizer designer.
package pmf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/qvgen/qvcodec/alphabet"
)

// ErrEmptyDistribution is returned by Normalize when the accumulated mass
// is zero (or near enough that normalization is numerically meaningless).
var ErrEmptyDistribution = errors.New("pmf: empty distribution")

// ErrAlreadyNormalized is returned by Increment once Normalize has been
// called; counting and normalized-probability use are mutually exclusive
// phases of a PMF's lifetime.
var ErrAlreadyNormalized = errors.New("pmf: already normalized")

// ErrLookupMiss is returned by Increment and IncrementBy when the symbol is
// outside the PMF's support alphabet.
var ErrLookupMiss = errors.New("pmf: symbol not in support")

// readyTolerance is the floating slack allowed when checking that a
// normalized PMF's mass sums to 1.
const readyTolerance = 1e-9

// PMF is a vector of nonnegative reals over an Alphabet. It starts in a
// "counting" phase (Increment only) and transitions to "ready" on a
// successful Normalize, after which Probability/Entropy/Combine operate on
// true probabilities. The zero value is not useful; construct with New.
type PMF struct {
	domain alphabet.Alphabet
	mass   []float64
	ready  bool
}

// New returns an all-zero, not-ready PMF over domain.
func New(domain alphabet.Alphabet) *PMF {
	return &PMF{domain: domain, mass: make([]float64, domain.Size())}
}

// Domain returns the alphabet this PMF is defined over (not to be confused
// with NonzeroSupport, the subset of the domain with positive mass).
func (p *PMF) Domain() alphabet.Alphabet {
	return p.domain
}

// NonzeroSupport returns the subset of the domain alphabet with strictly
// positive mass, ascending-ordered. This is "support(P)" as used by the
// quantizer designer.
func (p *PMF) NonzeroSupport() alphabet.Alphabet {
	syms := make([]alphabet.Symbol, 0, len(p.mass))
	for i, v := range p.mass {
		if v > 0 {
			syms = append(syms, p.domain.At(i))
		}
	}
	return alphabet.New(syms)
}

// Ready reports whether Normalize has been called successfully.
func (p *PMF) Ready() bool {
	return p.ready
}

// Increment bumps the raw count at symbol s by one. It requires the PMF
// to not yet be normalized.
func (p *PMF) Increment(s alphabet.Symbol) error {
	if p.ready {
		return ErrAlreadyNormalized
	}
	idx := p.domain.IndexOf(s)
	if idx == alphabet.NotFound {
		return fmt.Errorf("pmf: symbol %d not in support %s: %w", s, p.domain.String(), ErrLookupMiss)
	}
	p.mass[idx]++
	return nil
}

// IncrementBy adds weight w (which may be fractional, unlike Increment's
// fixed count of one) to the raw mass at symbol s. Used by the generator's
// Bayes-chain accumulation, where contributions are probability-weighted
// rather than literal training-line counts. It requires the PMF to not yet
// be normalized, and silently accepts w == 0 as a no-op.
func (p *PMF) IncrementBy(s alphabet.Symbol, w float64) error {
	if p.ready {
		return ErrAlreadyNormalized
	}
	idx := p.domain.IndexOf(s)
	if idx == alphabet.NotFound {
		return fmt.Errorf("pmf: symbol %d not in support %s: %w", s, p.domain.String(), ErrLookupMiss)
	}
	p.mass[idx] += w
	return nil
}

// Normalize divides every component by the total mass, transitioning the
// PMF into the ready state. It fails with ErrEmptyDistribution if the
// total mass is zero.
func (p *PMF) Normalize() error {
	total := floats.Sum(p.mass)
	if total == 0 {
		return ErrEmptyDistribution
	}
	floats.Scale(1/total, p.mass)
	p.ready = true
	return nil
}

// Probability returns P(s). It does not require the PMF to be ready; it
// simply reads the current (possibly unnormalized) mass.
func (p *PMF) Probability(s alphabet.Symbol) float64 {
	idx := p.domain.IndexOf(s)
	if idx == alphabet.NotFound {
		return 0
	}
	return p.mass[idx]
}

// ProbabilityAt returns the mass at ascending position idx directly,
// bypassing the symbol->index lookup; used in hot loops that already
// iterate by position.
func (p *PMF) ProbabilityAt(idx int) float64 {
	return p.mass[idx]
}

// Entropy returns -sum p*log2(p) in bits, with the convention 0*log2(0) = 0.
func (p *PMF) Entropy() float64 {
	nats := stat.Entropy(p.mass)
	if math.IsNaN(nats) {
		return 0
	}
	return nats / math.Ln2
}

// TotalMass returns the current sum of components, useful while still in
// the counting phase.
func (p *PMF) TotalMass() float64 {
	return floats.Sum(p.mass)
}

// Combine computes out[s] = alpha*a[s] + beta*b[s] for every symbol s in
// the shared support. out, a and b must share the same alphabet. Aliasing
// out with a or b is permitted; the caller is responsible for calling
// Normalize afterward if a true PMF is required.
func Combine(out, a, b *PMF, alpha, beta float64) error {
	if !out.domain.Equal(a.domain) || !out.domain.Equal(b.domain) {
		return fmt.Errorf("pmf: combine requires matching alphabets")
	}
	for i := range out.mass {
		out.mass[i] = alpha*a.mass[i] + beta*b.mass[i]
	}
	out.ready = false
	return nil
}

// CheckReadyInvariant verifies the testable property that a ready PMF's
// mass sums to 1 within tolerance and has no negative components. Only
// tests call it; normal control flow never does.
func (p *PMF) CheckReadyInvariant() error {
	if !p.ready {
		return nil
	}
	total := floats.Sum(p.mass)
	if math.Abs(total-1) > readyTolerance {
		return fmt.Errorf("pmf: ready PMF mass sums to %.12f, want 1±%g", total, readyTolerance)
	}
	for i, v := range p.mass {
		if v < 0 {
			return fmt.Errorf("pmf: ready PMF has negative component %.12f at position %d", v, i)
		}
	}
	return nil
}
