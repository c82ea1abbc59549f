// Package fontdict encodes monochrome bitmap fonts into a compact,
// dictionary-referenced byte representation for embedded devices, and
// searches for dictionaries that minimize the encoded size.
//
// The package is organized the way the original tool was: a
// Dictionary Tree (tree.go) supports longest-match lookups for the
// Encoder (encoder.go), a Decoder (decoder.go) exists purely as a
// correctness oracle, and an Optimizer (optimizer.go) drives a
// randomized local search over Encoder output sizes. Model (model.go)
// wraps that pipeline for callers who just want a trained DataFile,
// and archive.go gives the result a serializable snapshot form.
package fontdict

// DictSize is the default number of slots in a Dictionary (see
// NewDictionary, which accepts any size). The spec recommends
// 96, matching the tool this package is modeled on.
const DictSize = 96

// Bitstring is an ordered sequence of boolean pixels. false is
// background, true is foreground.
type Bitstring []bool

// Clone returns an independent copy of b.
func (b Bitstring) Clone() Bitstring {
	if b == nil {
		return nil
	}
	out := make(Bitstring, len(b))
	copy(out, b)
	return out
}

// FontInfo describes the fixed glyph box shared by every glyph in a
// DataFile.
type FontInfo struct {
	MaxWidth  int
	MaxHeight int
}

// GlyphEntry is one character's bitmap plus its proportional-layout
// width. Data always has length MaxWidth*MaxHeight. Glyphs are
// immutable during optimization.
type GlyphEntry struct {
	Data  Bitstring
	Width uint8
}

// DictEntry is one slot of a Dictionary.
//
// An entry with an empty Replacement is "unused" and always has a
// Score of 0. RefEncode selects how a non-empty entry is encoded: RLE
// (false) or by reference into other RLE-only entries (true, see
// encoder.go for the no-ref-to-ref rule this implies).
type DictEntry struct {
	Replacement Bitstring
	RefEncode   bool
	Score       int
}

// Empty reports whether the entry currently holds no replacement.
func (d DictEntry) Empty() bool {
	return len(d.Replacement) == 0
}

// Dictionary is a fixed-size, ordered table of dictionary entries.
// Entries are replaced in place; a Dictionary is never grown or
// shrunk once created. Represented as a slice (rather than a
// [DictSize]DictEntry array) so a run can pin its own entry count via
// NewDictionary while still defaulting to the spec's recommended 96.
type Dictionary []DictEntry

// NewDictionary returns a Dictionary with size empty entries. Most
// callers want size == DictSize.
func NewDictionary(size int) Dictionary {
	return make(Dictionary, size)
}

// Clone returns an independent copy of the dictionary.
func (d Dictionary) Clone() Dictionary {
	out := make(Dictionary, len(d))
	for i, entry := range d {
		out[i] = DictEntry{
			Replacement: entry.Replacement.Clone(),
			RefEncode:   entry.RefEncode,
			Score:       entry.Score,
		}
	}
	return out
}

// DataFile is the unit the Optimizer mutates: a font's glyph table plus
// its current dictionary and the PRNG seed that continues across
// Optimize calls.
//
// Glyphs are immutable during optimization and are shared by reference
// across clones; only Dictionary is copied per mutation trial, a
// copy-on-write cloning strategy that keeps each speculative trial
// cheap.
type DataFile struct {
	Info       FontInfo
	Glyphs     []GlyphEntry
	Dictionary Dictionary
	Seed       uint32
}

// Clone returns a DataFile suitable for a speculative mutation trial:
// the dictionary is deep-copied, the glyph table is shared.
func (df *DataFile) Clone() *DataFile {
	return &DataFile{
		Info:       df.Info,
		Glyphs:     df.Glyphs,
		Dictionary: df.Dictionary.Clone(),
		Seed:       df.Seed,
	}
}

// RefString is a sequence of codes produced by reference encoding: a
// glyph's encoded form, or a ref-encoded dictionary entry's encoded
// form. See the code alphabet in encoder.go.
type RefString []byte

// RLEString is the run-length-encoded form of an RLE dictionary entry.
// Each byte packs a pixel value in bit 7 and a run length 1..127 in
// bits 0..6.
type RLEString []byte

// EncodedFont is the output of EncodeFont: the dictionary split into
// its RLE and reference halves (in the order the §4.2 sort produces),
// plus one reference string per glyph. It is the object an external
// writer would serialize to the on-device format; this package does
// not perform that serialization.
type EncodedFont struct {
	RLEDictionary []RLEString
	RefDictionary []RefString
	Glyphs        []RefString
}
