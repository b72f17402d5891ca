package store

import (
	"fmt"

	"github.com/qvgen/qvcodec/alphabet"
	"github.com/qvgen/qvcodec/quantizer"
	"github.com/qvgen/qvcodec/rng"
)

// Context is the (low-state quantizer, high-state quantizer, mixing
// ratio) triple stored at one context symbol of one column.
type Context struct {
	Lo, Hi *quantizer.Quantizer
	Ratio  float64
}

// quantizerColumn holds one column's input alphabet and its per-context
// triples, indexed by the input alphabet's own symbol->position map so
// Get is O(1). A column is append-only until CloseColumn is called, after which
// it is read-only for the remainder of the store's lifetime.
type quantizerColumn struct {
	inputAlphabet alphabet.Alphabet
	entries       []*Context // entries[inputAlphabet index] = stored context, or nil
	closed        bool
}

// QuantizerStore is the conditional quantizer store: the codebook
// generator's sole output. Columns are opened and populated strictly left
// to right; a closed column is never mutated again. It additionally owns
// the deterministic WELL1024a PRNG used by Choose, so independent stores
// (e.g. independent per-cluster codebooks, or tests) never share PRNG
// state.
type QuantizerStore struct {
	domain  alphabet.Alphabet
	columns []*quantizerColumn
	prng    *rng.WELL1024a
}

// NewQuantizerStore returns an empty store over domain, with its PRNG
// seeded from seed. The PRNG is not advanced during codebook generation
// (per the spec's concurrency model); it only advances via Choose, called
// at encode/decode time.
func NewQuantizerStore(domain alphabet.Alphabet, seed uint64) *QuantizerStore {
	return &QuantizerStore{domain: domain, prng: rng.NewWELL1024a(seed)}
}

// Domain returns the full symbol alphabet the store's quantizers operate
// over.
func (s *QuantizerStore) Domain() alphabet.Alphabet {
	return s.domain
}

// Columns returns the number of columns opened so far.
func (s *QuantizerStore) Columns() int {
	return len(s.columns)
}

// OpenColumn appends a new column with the given input alphabet (the set
// of left-context symbols the column must answer for) and returns its
// index. Columns must be opened in order; the generator never reopens an
// index.
func (s *QuantizerStore) OpenColumn(inputAlphabet alphabet.Alphabet) int {
	s.columns = append(s.columns, &quantizerColumn{
		inputAlphabet: inputAlphabet,
		entries:       make([]*Context, inputAlphabet.Size()),
	})
	return len(s.columns) - 1
}

// InputAlphabet returns the input alphabet of column c.
func (s *QuantizerStore) InputAlphabet(c int) alphabet.Alphabet {
	return s.columns[c].inputAlphabet
}

// Store records the (lo, hi, ratio) triple at context symbol in column c.
// It fails with ErrAlphabetLookupMiss if context is not in column c's
// input alphabet, and with a closed-column error if the column has
// already been closed.
func (s *QuantizerStore) Store(c int, context alphabet.Symbol, lo, hi *quantizer.Quantizer, ratio float64) error {
	if c < 0 || c >= len(s.columns) {
		return fmt.Errorf("store: column %d not open", c)
	}
	col := s.columns[c]
	if col.closed {
		return fmt.Errorf("store: column %d is closed", c)
	}
	if ratio < 0 || ratio > 1 {
		return fmt.Errorf("store: ratio %v out of [0,1] at column %d context %d", ratio, c, context)
	}
	idx := col.inputAlphabet.IndexOf(context)
	if idx == alphabet.NotFound {
		return fmt.Errorf("store: context %d not in column %d input alphabet %s: %w", context, c, col.inputAlphabet.String(), ErrAlphabetLookupMiss)
	}
	col.entries[idx] = &Context{Lo: lo, Hi: hi, Ratio: ratio}
	return nil
}

// CloseColumn marks column c read-only. The generator calls this once it
// has stored every context of that column.
func (s *QuantizerStore) CloseColumn(c int) {
	s.columns[c].closed = true
}

// Get fetches the stored context triple for column c, context symbol
// prev. It returns ErrAlphabetLookupMiss if prev is outside column c's
// input alphabet, or if no triple was ever stored there.
func (s *QuantizerStore) Get(c int, prev alphabet.Symbol) (Context, error) {
	if c < 0 || c >= len(s.columns) {
		return Context{}, fmt.Errorf("store: column %d does not exist: %w", c, ErrAlphabetLookupMiss)
	}
	col := s.columns[c]
	idx := col.inputAlphabet.IndexOf(prev)
	if idx == alphabet.NotFound || col.entries[idx] == nil {
		return Context{}, fmt.Errorf("store: no quantizer stored at column %d context %d: %w", c, prev, ErrAlphabetLookupMiss)
	}
	return *col.entries[idx], nil
}

// GetAt fetches the stored context triple by raw input-alphabet position
// rather than symbol value, for callers (such as codebookio) that iterate
// a column's full input alphabet in order.
func (s *QuantizerStore) GetAt(c, idx int) (alphabet.Symbol, Context, bool) {
	col := s.columns[c]
	sym := col.inputAlphabet.At(idx)
	entry := col.entries[idx]
	if entry == nil {
		return sym, Context{}, false
	}
	return sym, *entry, true
}

// Choose implements the encoder-facing selector: draws a uniform value
// from the store's PRNG and returns the low-state quantizer when the draw
// is less than the stored ratio, else the high-state quantizer. Encoder
// and decoder must call Choose in the same column order for their PRNGs
// to stay in lockstep.
func (s *QuantizerStore) Choose(c int, prev alphabet.Symbol) (*quantizer.Quantizer, error) {
	ctx, err := s.Get(c, prev)
	if err != nil {
		return nil, err
	}
	draw := s.prng.NextFloat64()
	if draw < ctx.Ratio {
		return ctx.Lo, nil
	}
	return ctx.Hi, nil
}
