// Package rangecoder is a stub seam marking where a bit-exact arithmetic
// entropy coder plugs in downstream of the quantizer codebooks this module
// produces. Encoder and Decoder here are a byte-oriented placeholder, NOT
// an RFC-style range coder: each symbol costs a full byte regardless of
// its alphabet's actual entropy. They exist only so this package's own
// round-trip tests can exercise the Encode/Decode boundary; a production
// bitstream needs a real bit-exact implementation wired in at this seam.
package rangecoder

import (
	"errors"
	"fmt"
)

// ErrSymbolOutOfRange is returned by Encode when sym does not fit in
// [0, alphabetSize), and by Decode when the stream is exhausted.
var ErrSymbolOutOfRange = errors.New("rangecoder: symbol out of range")

// Encoder accumulates symbols into a byte buffer, one byte per symbol.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode appends sym, which must satisfy 0 <= sym < alphabetSize <= 256.
func (e *Encoder) Encode(sym, alphabetSize int) error {
	if alphabetSize <= 0 || alphabetSize > 256 {
		return fmt.Errorf("rangecoder: alphabet size %d out of (0,256]", alphabetSize)
	}
	if sym < 0 || sym >= alphabetSize {
		return fmt.Errorf("rangecoder: symbol %d out of [0,%d): %w", sym, alphabetSize, ErrSymbolOutOfRange)
	}
	e.buf = append(e.buf, byte(sym))
	return nil
}

// Bytes returns the encoded stream accumulated so far. The caller must not
// mutate the returned slice.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder replays a stream produced by Encoder.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Decode reads the next symbol, validating it against alphabetSize.
func (d *Decoder) Decode(alphabetSize int) (int, error) {
	if alphabetSize <= 0 || alphabetSize > 256 {
		return 0, fmt.Errorf("rangecoder: alphabet size %d out of (0,256]", alphabetSize)
	}
	if d.pos >= len(d.buf) {
		return 0, fmt.Errorf("rangecoder: stream exhausted: %w", ErrSymbolOutOfRange)
	}
	sym := int(d.buf[d.pos])
	d.pos++
	if sym >= alphabetSize {
		return 0, fmt.Errorf("rangecoder: decoded symbol %d out of [0,%d): %w", sym, alphabetSize, ErrSymbolOutOfRange)
	}
	return sym, nil
}
