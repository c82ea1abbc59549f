package fontdict

// DecodeGlyph reconstructs glyph index's bitstring from an encoded
// font, padded back out to MaxWidth*MaxHeight bits. It exists only as
// a correctness oracle for the encoder; nothing in the optimizer's hot
// path calls it.
func DecodeGlyph(ef *EncodedFont, index int, info FontInfo) (Bitstring, error) {
	if index < 0 || index >= len(ef.Glyphs) {
		return nil, ErrRefIndexOutOfRange
	}
	return DecodeRef(ef, ef.Glyphs[index], info)
}

// DecodeRef reconstructs the bitstring a single reference byte string
// expands to: a glyph's own ref string, or a ref dictionary entry's.
// Recursion only ever descends one level, since a ref dictionary entry
// can never itself contain a ref-dictionary code (the Dictionary Tree
// enforces this at encode time, see tree.go).
func DecodeRef(ef *EncodedFont, ref RefString, info FontInfo) (Bitstring, error) {
	var out Bitstring
	nRLE := len(ef.RLEDictionary)

	for _, c := range ref {
		switch {
		case c == codeLiteralFalse:
			out = append(out, false)
		case c == codeLiteralTrue:
			out = append(out, true)
		case c == fillCode:
			total := info.MaxWidth * info.MaxHeight
			if len(out) > total {
				return nil, ErrGlyphLengthMismatch
			}
			for len(out) < total {
				out = append(out, false)
			}
		case c == reservedCode:
			// Reserved: no-op, matching the encoder which never emits it.
		case int(c)-firstDictCode < nRLE:
			rle := ef.RLEDictionary[int(c)-firstDictCode]
			for _, b := range rle {
				bit := b&0x80 != 0
				count := int(b & 0x7F)
				if count == 0 {
					return nil, ErrInvalidRLERun
				}
				for i := 0; i < count; i++ {
					out = append(out, bit)
				}
			}
		default:
			idx := int(c) - firstDictCode - nRLE
			if idx < 0 || idx >= len(ef.RefDictionary) {
				return nil, ErrRefIndexOutOfRange
			}
			part, err := DecodeRef(ef, ef.RefDictionary[idx], info)
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
		}
	}

	return out, nil
}
