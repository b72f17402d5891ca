// Package corpus defines the training-corpus input boundary consumed by
// the codebook generator: a handle over fixed-width lines of quality
// symbols. The streaming FASTQ-backed implementation that produces such a
// handle from real sequencer output is an external collaborator and is
// not implemented here; Slice is the in-memory adapter used by tests, the
// CLI's simplest mode, and any caller that has already parsed its lines.
package corpus

import "fmt"

// Corpus is the training-data handle the generator consumes. Line is
// expected to be inexpensive to call repeatedly (store.NewPMFStore calls it
// once for every line of the corpus).
type Corpus interface {
	// LineCount returns the number of training lines.
	LineCount() int
	// Columns returns the fixed line width (number of columns).
	Columns() int
	// Line returns the symbols of line i, a slice of length Columns().
	// The returned slice must not be mutated by the caller.
	Line(i int) []uint8
}

// Slice is an in-memory Corpus backed by a dense [][]uint8. All lines must
// share the same length.
type Slice struct {
	lines   [][]uint8
	columns int
}

// NewSlice validates that every line has the same length and returns a
// Slice over them. The input is not copied; callers must not mutate lines
// after constructing a Slice.
func NewSlice(lines [][]uint8) (*Slice, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("corpus: training corpus has zero lines")
	}
	columns := len(lines[0])
	if columns == 0 {
		return nil, fmt.Errorf("corpus: training lines have zero columns")
	}
	for i, line := range lines {
		if len(line) != columns {
			return nil, fmt.Errorf("corpus: line %d has length %d, want %d (lines must be fixed-width)", i, len(line), columns)
		}
	}
	return &Slice{lines: lines, columns: columns}, nil
}

// LineCount implements Corpus.
func (s *Slice) LineCount() int { return len(s.lines) }

// Columns implements Corpus.
func (s *Slice) Columns() int { return s.columns }

// Line implements Corpus.
func (s *Slice) Line(i int) []uint8 { return s.lines[i] }
