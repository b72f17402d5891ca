// Package quantizer implements the scalar quantizer type and the designer
// that builds optimal fixed-rate quantizers from a source PMF and a
// distortion table. A Quantizer maps every symbol of its domain alphabet
// to a reproduction symbol drawn from a (usually smaller) output alphabet.
package quantizer

import (
	"github.com/qvgen/qvcodec/alphabet"
)

// Quantizer is a deterministic map q: [0,A) -> [0,A) plus its image
// alphabet and design metadata. The zero value is not valid; build with
// Design or FromMapping.
type Quantizer struct {
	domain  alphabet.Alphabet // the full input alphabet A
	mapping []alphabet.Symbol // mapping[domain index] = reproduction symbol
	output  alphabet.Alphabet // sorted unique image of mapping
	ratio   float64           // design-target mixing ratio, record-only
	distExp float64           // expected distortion under the design PMF
}

// Domain returns the input alphabet the quantizer is defined over.
func (q *Quantizer) Domain() alphabet.Alphabet {
	return q.domain
}

// OutputAlphabet returns the sorted unique image of the quantizer.
func (q *Quantizer) OutputAlphabet() alphabet.Alphabet {
	return q.output
}

// Ratio returns the design-target ratio recorded at construction time.
func (q *Quantizer) Ratio() float64 {
	return q.ratio
}

// ExpectedDistortion returns E[D(X, q(X))] over the PMF the quantizer was
// designed for.
func (q *Quantizer) ExpectedDistortion() float64 {
	return q.distExp
}

// Apply returns q(x). It panics if x is outside the quantizer's domain,
// which is an internal-invariant violation rather than a user error (every
// caller already validated x against the same alphabet the quantizer was
// built from).
func (q *Quantizer) Apply(x alphabet.Symbol) alphabet.Symbol {
	idx := q.domain.MustIndexOf(x)
	return q.mapping[idx]
}

// ApplyAt applies the quantizer by domain position rather than symbol
// value, for hot loops that already iterate positionally.
func (q *Quantizer) ApplyAt(idx int) alphabet.Symbol {
	return q.mapping[idx]
}

// FromMapping rebuilds a Quantizer from an already-computed domain-indexed
// mapping, with no design PMF available. It is used by codebookio.Read to
// reconstruct quantizers from the persisted wire format, which carries the
// mapping and ratio but not the PMF the original design optimized against;
// ExpectedDistortion on the result is always zero, since recomputing it
// would require data the format does not retain.
func FromMapping(domain alphabet.Alphabet, mapping []alphabet.Symbol, ratio float64) *Quantizer {
	out := make([]alphabet.Symbol, len(mapping))
	copy(out, mapping)
	return &Quantizer{
		domain:  domain,
		mapping: out,
		output:  alphabet.New(mapping),
		ratio:   ratio,
		distExp: 0,
	}
}
