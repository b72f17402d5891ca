// Package alphabet provides the ordered symbol-set type used throughout
// qvcodec. A Symbol is a small non-negative integer; an Alphabet is an
// immutable, ascending-ordered sequence of unique symbols with O(1)
// membership and index lookup.
package alphabet

import (
	"fmt"
	"sort"
)

// Symbol is an integer quality value in [0, A) for some alphabet size A.
type Symbol = int

// NotFound is returned by IndexOf when the symbol is absent.
const NotFound = -1

// Alphabet is an immutable, ascending-ordered set of unique symbols.
// The zero value is not valid; construct with Trivial, New, or Union.
type Alphabet struct {
	symbols []Symbol
	index   map[Symbol]int // symbol -> position in symbols
}

// Trivial returns the alphabet {0, ..., n-1}.
func Trivial(n int) Alphabet {
	symbols := make([]Symbol, n)
	index := make(map[Symbol]int, n)
	for i := 0; i < n; i++ {
		symbols[i] = i
		index[i] = i
	}
	return Alphabet{symbols: symbols, index: index}
}

// New builds an alphabet from an arbitrary slice of symbols, deduplicating
// and sorting them ascending. The input slice is not retained.
func New(symbols []Symbol) Alphabet {
	seen := make(map[Symbol]struct{}, len(symbols))
	out := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return buildFrom(out)
}

// Duplicate returns a deep, independent copy of a.
func (a Alphabet) Duplicate() Alphabet {
	return buildFrom(append([]Symbol(nil), a.symbols...))
}

// Union returns the ascending-ordered union of a and b. Shared symbols
// appear once.
func Union(a, b Alphabet) Alphabet {
	merged := make([]Symbol, 0, len(a.symbols)+len(b.symbols))
	merged = append(merged, a.symbols...)
	merged = append(merged, b.symbols...)
	return New(merged)
}

func buildFrom(sorted []Symbol) Alphabet {
	index := make(map[Symbol]int, len(sorted))
	for i, s := range sorted {
		index[s] = i
	}
	return Alphabet{symbols: sorted, index: index}
}

// Size returns the number of symbols in the alphabet.
func (a Alphabet) Size() int {
	return len(a.symbols)
}

// Contains reports whether s is a member of a.
func (a Alphabet) Contains(s Symbol) bool {
	_, ok := a.index[s]
	return ok
}

// IndexOf returns the position of s within the ascending order, or
// NotFound if s is absent.
func (a Alphabet) IndexOf(s Symbol) int {
	if i, ok := a.index[s]; ok {
		return i
	}
	return NotFound
}

// At returns the symbol at ascending position i. It panics if i is out of
// range; callers iterating 0..Size()-1 are always safe.
func (a Alphabet) At(i int) Symbol {
	return a.symbols[i]
}

// Symbols returns the ascending symbols as a fresh slice; callers may
// mutate the result freely.
func (a Alphabet) Symbols() []Symbol {
	return append([]Symbol(nil), a.symbols...)
}

// MustIndexOf returns IndexOf(s) but panics with diagnostic context if s
// is absent. Used where presence is a documented invariant rather than a
// user-triggerable condition.
func (a Alphabet) MustIndexOf(s Symbol) int {
	i := a.IndexOf(s)
	if i == NotFound {
		panic(fmt.Sprintf("alphabet: symbol %d not present (invariant violation)", s))
	}
	return i
}

// Equal reports whether a and b contain exactly the same symbol set.
func (a Alphabet) Equal(b Alphabet) bool {
	if len(a.symbols) != len(b.symbols) {
		return false
	}
	for i, s := range a.symbols {
		if b.symbols[i] != s {
			return false
		}
	}
	return true
}

// String renders the alphabet as its ascending symbol list, for logging.
func (a Alphabet) String() string {
	return fmt.Sprintf("%v", a.symbols)
}
