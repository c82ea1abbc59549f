package fontdict

import (
	"errors"
	"fmt"
)

// Sentinel errors for invariant violations detected at encode, decode,
// or sampling time. Callers compare with errors.Is.
var (
	// ErrGlyphLengthMismatch indicates a glyph's bitstring length does
	// not equal MaxWidth*MaxHeight.
	ErrGlyphLengthMismatch = errors.New("fontdict: glyph length does not match font info")
	// ErrInvalidRLERun indicates an RLE byte with a zero run length,
	// which the format never produces and never accepts.
	ErrInvalidRLERun = errors.New("fontdict: RLE byte has zero run length")
	// ErrRefIndexOutOfRange indicates a decode-time code byte indexes
	// past the end of both dictionary halves.
	ErrRefIndexOutOfRange = errors.New("fontdict: reference code out of range")
	// ErrNoGlyphs indicates an operator needed to sample a random
	// substring from a DataFile with no glyphs.
	ErrNoGlyphs = errors.New("fontdict: random substring sampler requires at least one glyph")
)

// TreeError reports a longest-match walk that found no eligible
// terminal. The construction in tree.go makes this unreachable (the
// two literal-bit terminals at depth 1 are always eligible and always
// match a non-empty bitstring), so seeing one means the tree was built
// incorrectly. It is returned rather than panicked, so a caller can
// log-and-abort a whole optimization run without losing the
// last-committed DataFile.
type TreeError struct {
	Op string // the operation that detected the failure, e.g. "walk"
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("fontdict: %s: no eligible terminal found (corrupt dictionary tree)", e.Op)
}
