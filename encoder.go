package fontdict

import (
	"fmt"
	"sort"
)

// sortDictionary returns a stably-sorted copy of d's entries: non-empty
// entries before empty ones, and among non-empty entries, RLE-coded
// (RefEncode == false) before ref-coded. Original relative order within
// each class is preserved, which is what makes the resulting code
// assignment deterministic given a fixed dictionary.
func sortDictionary(d Dictionary) []DictEntry {
	sorted := make([]DictEntry, len(d))
	copy(sorted, d[:])

	rank := func(e DictEntry) int {
		switch {
		case e.Empty():
			return 2
		case !e.RefEncode:
			return 0
		default:
			return 1
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) < rank(sorted[j])
	})
	return sorted
}

// encodeRLE run-length encodes bits: each output byte packs the pixel
// value in bit 7 and a run length of 1..127 in bits 0..6. Equal-bit
// runs are merged greedily up to 127; a run length of 0 is never
// produced.
func encodeRLE(bits Bitstring) RLEString {
	var out RLEString
	pos := 0
	for pos < len(bits) {
		bit := bits[pos]
		count := 1
		for pos+count < len(bits) && count < 127 && bits[pos+count] == bit {
			count++
		}
		var b byte
		if bit {
			b = 0x80
		}
		b |= byte(count)
		out = append(out, b)
		pos += count
	}
	return out
}

// encodeRef reference-encodes bits against tree. When isGlyph is true,
// trailing background pixels are stripped before
// matching and a fill code (2) is appended if the cursor still falls
// short of the original (pre-trim) length once matching stops; ref
// dictionary entries (isGlyph == false) are encoded in full and never
// receive a fill code, which is what keeps a ref entry's byte string
// free of code 2 and therefore decodable without knowing its own
// length ahead of time.
func encodeRef(bits Bitstring, tree *dictTree, isGlyph bool) (RefString, error) {
	end := len(bits)
	if isGlyph {
		for end > 0 && !bits[end-1] {
			end--
		}
	}

	var out RefString
	pos := 0
	for pos < end {
		length, code, err := tree.walk(bits, pos, isGlyph)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(code))
		pos += length
	}

	if pos < len(bits) {
		out = append(out, fillCode)
	}

	return out, nil
}

// Code alphabet: the two literal-bit terminals, the fill code, a
// reserved code, and the first code available for dictionary entries.
const (
	codeLiteralFalse = 0
	codeLiteralTrue  = 1
	fillCode         = 2
	reservedCode     = 3
	firstDictCode    = 4
)

// EncodeFont produces the encoded form of df: RLE byte strings for RLE
// dictionary entries, reference byte strings for ref-encoded dictionary
// entries and for every glyph. It is a pure function of df's contents:
// identical DataFiles produce byte-identical EncodedFonts.
//
// Each call builds and discards its own dictionary tree; nothing about
// the encode is shared across calls or goroutines. Callers who
// repeatedly encode the same unchanging dictionary and want to skip
// rebuilding the tree each time should use EncodeFontWithCache instead.
func EncodeFont(df *DataFile) (*EncodedFont, error) {
	for i, g := range df.Glyphs {
		if len(g.Data) != df.Info.MaxWidth*df.Info.MaxHeight {
			return nil, fmt.Errorf("fontdict: glyph %d: %w", i, ErrGlyphLengthMismatch)
		}
	}

	sorted := sortDictionary(df.Dictionary)
	tree := buildTree(sorted)
	return encodeWithTree(df, sorted, tree)
}

// EncodeFontWithCache behaves like EncodeFont but fetches the
// dictionary tree from cache, building it only if df's current
// (sorted) dictionary contents have not been seen recently. Intended
// for repeated encodes of a dictionary that is not being mutated
// between calls; the optimizer itself never uses this.
func EncodeFontWithCache(df *DataFile, cache *TreeCache) (*EncodedFont, error) {
	for i, g := range df.Glyphs {
		if len(g.Data) != df.Info.MaxWidth*df.Info.MaxHeight {
			return nil, fmt.Errorf("fontdict: glyph %d: %w", i, ErrGlyphLengthMismatch)
		}
	}

	sorted := sortDictionary(df.Dictionary)
	tree := cache.getTree(sorted)
	return encodeWithTree(df, sorted, tree)
}

func encodeWithTree(df *DataFile, sorted []DictEntry, tree *dictTree) (*EncodedFont, error) {
	result := &EncodedFont{}
	for _, d := range sorted {
		if d.Empty() {
			continue
		}
		if d.RefEncode {
			ref, err := encodeRef(d.Replacement, tree, false)
			if err != nil {
				return nil, err
			}
			result.RefDictionary = append(result.RefDictionary, ref)
		} else {
			result.RLEDictionary = append(result.RLEDictionary, encodeRLE(d.Replacement))
		}
	}

	result.Glyphs = make([]RefString, len(df.Glyphs))
	for i, g := range df.Glyphs {
		ref, err := encodeRef(g.Data, tree, true)
		if err != nil {
			return nil, err
		}
		result.Glyphs[i] = ref
	}

	return result, nil
}

// Size returns the encoded font's total size in bytes, the optimizer's
// objective function: each non-empty dictionary entry costs its byte
// length plus 2 (an offset-table slot), and each glyph costs its byte
// length plus 2 (offset) plus 1 (its width byte).
func (ef *EncodedFont) Size() int {
	total := 0
	for _, r := range ef.RLEDictionary {
		if len(r) != 0 {
			total += len(r) + 2
		}
	}
	for _, r := range ef.RefDictionary {
		if len(r) != 0 {
			total += len(r) + 2
		}
	}
	for _, r := range ef.Glyphs {
		total += len(r) + 2 + 1
	}
	return total
}

// EncodedSize encodes df and returns the resulting size, for callers
// that only need the number and not the encoded form.
func EncodedSize(df *DataFile) (int, error) {
	ef, err := EncodeFont(df)
	if err != nil {
		return 0, err
	}
	return ef.Size(), nil
}
