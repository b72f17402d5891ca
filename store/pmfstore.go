// Package store holds the two read-models the codebook generator is built
// around: the conditional PMF store (empirical, read-only once built) and
// the conditional quantizer store (built column-by-column, the generator's
// sole output). Keeping both behind indexed, alphabet-owning tables rather
// than flat pointer arithmetic follows the teacher's own "pointer-heavy
// conditional tables -> indexed storage" design note.
package store

import (
	"errors"
	"fmt"

	"github.com/qvgen/qvcodec/alphabet"
	"github.com/qvgen/qvcodec/corpus"
	"github.com/qvgen/qvcodec/pmf"
)

// ErrAlphabetLookupMiss is returned by the quantizer store when a context
// symbol is absent from a column's input alphabet or has no stored triple.
// PMFStore.Conditional reports an unseen context with a false result
// instead.
var ErrAlphabetLookupMiss = errors.New("store: alphabet lookup miss")

// PMFStore holds the empirical conditional and marginal PMFs derived from
// a training corpus: one unconditional PMF for column 0, one conditional
// PMF per (column >= 1, previous symbol) pair actually observed in
// training, and the derived marginal PMF of every column. It is built
// once by NewPMFStore and is read-only thereafter.
type PMFStore struct {
	domain        alphabet.Alphabet
	columns       int
	unconditional *pmf.PMF
	// conditional[c-1][s] is P(X_c | X_{c-1}=s) for c in [1, columns).
	// A nil entry means the context s was never observed at column c-1.
	conditional [][]*pmf.PMF
	marginal    []*pmf.PMF
}

// NewPMFStore builds the empirical PMF store from a training corpus over
// an alphabet of the given size. The corpus must be non-empty (checked by
// corpus.NewSlice already, but any Corpus implementation is accepted).
func NewPMFStore(c corpus.Corpus, alphabetSize int) (*PMFStore, error) {
	if c.LineCount() == 0 || c.Columns() == 0 {
		return nil, fmt.Errorf("store: training corpus is empty")
	}
	domain := alphabet.Trivial(alphabetSize)
	columns := c.Columns()

	unconditional := pmf.New(domain)
	conditional := make([][]*pmf.PMF, columns-1)
	for i := range conditional {
		conditional[i] = make([]*pmf.PMF, alphabetSize)
	}

	for i := 0; i < c.LineCount(); i++ {
		line := c.Line(i)
		if len(line) != columns {
			return nil, fmt.Errorf("store: line %d has length %d, want %d", i, len(line), columns)
		}
		if err := unconditional.Increment(int(line[0])); err != nil {
			return nil, fmt.Errorf("store: accumulating column 0: %w", err)
		}
		for col := 1; col < columns; col++ {
			prev := int(line[col-1])
			cur := int(line[col])
			if prev < 0 || prev >= alphabetSize {
				return nil, fmt.Errorf("store: line %d column %d: previous symbol %d out of alphabet [0,%d)", i, col, prev, alphabetSize)
			}
			bucket := conditional[col-1]
			if bucket[prev] == nil {
				bucket[prev] = pmf.New(domain)
			}
			if err := bucket[prev].Increment(cur); err != nil {
				return nil, fmt.Errorf("store: accumulating column %d context %d: %w", col, prev, err)
			}
		}
	}

	if err := unconditional.Normalize(); err != nil {
		return nil, fmt.Errorf("store: normalizing column 0: %w", err)
	}
	for col := 1; col < columns; col++ {
		for s, p := range conditional[col-1] {
			if p == nil {
				continue
			}
			if err := p.Normalize(); err != nil {
				return nil, fmt.Errorf("store: normalizing column %d context %d: %w", col, s, err)
			}
		}
	}

	marginal, err := deriveMarginals(domain, columns, unconditional, conditional)
	if err != nil {
		return nil, err
	}

	return &PMFStore{
		domain:        domain,
		columns:       columns,
		unconditional: unconditional,
		conditional:   conditional,
		marginal:      marginal,
	}, nil
}

// deriveMarginals computes marg[c] = sum_s marg[c-1](s) * cond[c|s],
// skipping unseen contexts (contexts with zero training mass cannot occur
// when encoding data drawn from the same distribution; see DESIGN.md).
func deriveMarginals(domain alphabet.Alphabet, columns int, unconditional *pmf.PMF, conditional [][]*pmf.PMF) ([]*pmf.PMF, error) {
	marginal := make([]*pmf.PMF, columns)
	marginal[0] = unconditional
	for col := 1; col < columns; col++ {
		acc := pmf.New(domain)
		prevMarginal := marginal[col-1]
		for s := 0; s < domain.Size(); s++ {
			weight := prevMarginal.Probability(s)
			if weight == 0 {
				continue
			}
			cond := conditional[col-1][s]
			if cond == nil {
				continue
			}
			if err := pmf.Combine(acc, acc, cond, 1, weight); err != nil {
				return nil, fmt.Errorf("store: deriving marginal for column %d: %w", col, err)
			}
		}
		if err := acc.Normalize(); err != nil {
			return nil, fmt.Errorf("store: marginal for column %d has no mass: %w", col, err)
		}
		marginal[col] = acc
	}
	return marginal, nil
}

// Domain returns the alphabet every PMF in the store is defined over.
func (s *PMFStore) Domain() alphabet.Alphabet {
	return s.domain
}

// Columns returns the number of columns the store was built for.
func (s *PMFStore) Columns() int {
	return s.columns
}

// Unconditional returns P(X_0), the column-0 PMF.
func (s *PMFStore) Unconditional() *pmf.PMF {
	return s.unconditional
}

// Conditional returns P(X_c | X_{c-1}=prev) for c >= 1, and false if that
// context was never observed in training.
func (s *PMFStore) Conditional(c int, prev alphabet.Symbol) (*pmf.PMF, bool) {
	if c < 1 || c >= s.columns {
		return nil, false
	}
	if prev < 0 || prev >= s.domain.Size() {
		return nil, false
	}
	p := s.conditional[c-1][prev]
	return p, p != nil
}

// Marginal returns the derived marginal PMF of column c.
func (s *PMFStore) Marginal(c int) *pmf.PMF {
	return s.marginal[c]
}
