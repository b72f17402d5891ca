// Package codebookio implements streaming io.Reader and io.Writer-based
// persistence for a conditional quantizer store, in the fixed-width text
// format kept for compatibility with the legacy on-disk codebook layout:
// every symbol and ratio value is encoded as a single printable byte.
//
// The legacy layout reserves exactly one ratio byte per column, while the
// store itself carries an independent ratio per context within a column.
// Write encodes each column's mean ratio across its stored contexts; Read
// applies that single decoded ratio uniformly to every context it
// rebuilds. Round-tripping a store with heterogeneous per-context ratios
// through this format therefore loses that fine-grained ratio information
// by construction — a limitation of the wire format itself, not of this
// implementation.
package codebookio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/qvgen/qvcodec/alphabet"
	"github.com/qvgen/qvcodec/quantizer"
	"github.com/qvgen/qvcodec/store"
)

// byteOffset is the printable-byte bias applied to every encoded symbol
// and ratio value, per the wire format's (value + 33) convention.
const byteOffset = 33

// padByte fills reserved header bytes and the blocks of a column line
// where no quantizer is stored at that context.
const padByte byte = ' '

func encodeSymbol(s alphabet.Symbol) byte { return byte(s + byteOffset) }
func decodeSymbol(b byte) alphabet.Symbol { return int(b) - byteOffset }
func encodeRatio(r float64) byte          { return byte(int(r*100) + byteOffset) }
func decodeRatio(b byte) float64          { return float64(int(b)-byteOffset) / 100 }

// Write serializes s to w in the legacy fixed-width codebook format.
func Write(w io.Writer, s *store.QuantizerStore) error {
	bw := bufio.NewWriter(w)
	columns := s.Columns()
	a := s.Domain().Size()

	if err := writeLine(bw, filled(padByte, columns)); err != nil {
		return fmt.Errorf("codebookio: writing reserved line 1: %w", err)
	}
	if err := writeLine(bw, filled(padByte, columns)); err != nil {
		return fmt.Errorf("codebookio: writing reserved line 2: %w", err)
	}

	ratios := make([]byte, columns)
	for c := 0; c < columns; c++ {
		r, err := columnMeanRatio(s, c)
		if err != nil {
			return fmt.Errorf("codebookio: column %d: %w", c, err)
		}
		ratios[c] = encodeRatio(r)
	}
	if err := writeLine(bw, ratios); err != nil {
		return fmt.Errorf("codebookio: writing ratio line: %w", err)
	}

	for c := 0; c < columns; c++ {
		if c == 0 {
			ctx, err := s.Get(0, s.InputAlphabet(0).At(0))
			if err != nil {
				return fmt.Errorf("codebookio: column 0 has no stored context: %w", err)
			}
			if err := writeLine(bw, encodeQuantizer(ctx.Lo, a)); err != nil {
				return fmt.Errorf("codebookio: writing column 0 low line: %w", err)
			}
			if err := writeLine(bw, encodeQuantizer(ctx.Hi, a)); err != nil {
				return fmt.Errorf("codebookio: writing column 0 high line: %w", err)
			}
			continue
		}

		low := make([]byte, 0, a*a)
		high := make([]byte, 0, a*a)
		ia := s.InputAlphabet(c)
		for j := 0; j < a; j++ {
			if !ia.Contains(j) {
				low = append(low, filled(padByte, a)...)
				high = append(high, filled(padByte, a)...)
				continue
			}
			ctx, err := s.Get(c, j)
			if err != nil {
				return fmt.Errorf("codebookio: column %d context %d: %w", c, j, err)
			}
			low = append(low, encodeQuantizer(ctx.Lo, a)...)
			high = append(high, encodeQuantizer(ctx.Hi, a)...)
		}
		if err := writeLine(bw, low); err != nil {
			return fmt.Errorf("codebookio: writing column %d low line: %w", c, err)
		}
		if err := writeLine(bw, high); err != nil {
			return fmt.Errorf("codebookio: writing column %d high line: %w", c, err)
		}
	}

	return bw.Flush()
}

// Read rebuilds a QuantizerStore from the fixed-width codebook format,
// over the trivial alphabet {0, ..., alphabetSize-1}.
func Read(r io.Reader, alphabetSize int) (*store.QuantizerStore, error) {
	domain := alphabet.Trivial(alphabetSize)
	a := domain.Size()
	br := bufio.NewReader(r)

	if _, err := readLine(br, -1); err != nil {
		return nil, fmt.Errorf("codebookio: reading reserved line 1: %w", err)
	}
	if _, err := readLine(br, -1); err != nil {
		return nil, fmt.Errorf("codebookio: reading reserved line 2: %w", err)
	}

	ratioLine, err := readLine(br, -1)
	if err != nil {
		return nil, fmt.Errorf("codebookio: reading ratio line: %w", err)
	}
	columns := len(ratioLine)
	ratios := make([]float64, columns)
	for c, b := range ratioLine {
		ratios[c] = decodeRatio(b)
	}

	s := store.NewQuantizerStore(domain, 1)

	low0, err := readLine(br, a)
	if err != nil {
		return nil, fmt.Errorf("codebookio: reading column 0 low line: %w", err)
	}
	high0, err := readLine(br, a)
	if err != nil {
		return nil, fmt.Errorf("codebookio: reading column 0 high line: %w", err)
	}
	col0 := s.OpenColumn(alphabet.New([]alphabet.Symbol{0}))
	lo0 := decodeQuantizer(domain, low0)
	hi0 := decodeQuantizer(domain, high0)
	if err := s.Store(col0, 0, lo0, hi0, ratios[0]); err != nil {
		return nil, fmt.Errorf("codebookio: restoring column 0: %w", err)
	}
	s.CloseColumn(col0)

	for c := 1; c < columns; c++ {
		lowLine, err := readLine(br, a*a)
		if err != nil {
			return nil, fmt.Errorf("codebookio: reading column %d low line: %w", c, err)
		}
		highLine, err := readLine(br, a*a)
		if err != nil {
			return nil, fmt.Errorf("codebookio: reading column %d high line: %w", c, err)
		}

		present := make([]alphabet.Symbol, 0, a)
		for j := 0; j < a; j++ {
			if !isBlank(lowLine[j*a:(j+1)*a]) || !isBlank(highLine[j*a:(j+1)*a]) {
				present = append(present, j)
			}
		}
		ia := alphabet.New(present)
		col := s.OpenColumn(ia)
		for _, j := range present {
			lo := decodeQuantizer(domain, lowLine[j*a:(j+1)*a])
			hi := decodeQuantizer(domain, highLine[j*a:(j+1)*a])
			if err := s.Store(col, j, lo, hi, ratios[c]); err != nil {
				return nil, fmt.Errorf("codebookio: restoring column %d context %d: %w", c, j, err)
			}
		}
		s.CloseColumn(col)
	}

	return s, nil
}

func encodeQuantizer(q *quantizer.Quantizer, a int) []byte {
	out := make([]byte, a)
	for i := 0; i < a; i++ {
		out[i] = encodeSymbol(q.ApplyAt(i))
	}
	return out
}

func decodeQuantizer(domain alphabet.Alphabet, line []byte) *quantizer.Quantizer {
	mapping := make([]alphabet.Symbol, len(line))
	for i, b := range line {
		mapping[i] = decodeSymbol(b)
	}
	return quantizer.FromMapping(domain, mapping, 0)
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != padByte {
			return false
		}
	}
	return true
}

func columnMeanRatio(s *store.QuantizerStore, c int) (float64, error) {
	ia := s.InputAlphabet(c)
	if ia.Size() == 0 {
		return 0, fmt.Errorf("column %d has an empty input alphabet", c)
	}
	var sum float64
	var n int
	for i := 0; i < ia.Size(); i++ {
		_, ctx, ok := s.GetAt(c, i)
		if !ok {
			continue
		}
		sum += ctx.Ratio
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("column %d has no stored contexts", c)
	}
	return sum / float64(n), nil
}

func filled(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func writeLine(w *bufio.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// readLine reads one newline-terminated record and validates its width
// against want, unless want is negative (no width check, used for the
// reserved header lines whose content is never interpreted).
func readLine(r *bufio.Reader, want int) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	line = trimNewline(line)
	if want >= 0 && len(line) != want {
		return nil, fmt.Errorf("codebookio: line has width %d, want %d", len(line), want)
	}
	return line, nil
}

func trimNewline(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return line[:n]
}
