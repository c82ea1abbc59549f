package fontdict

import "testing"

func TestDecodeRefHandlesFillCode(t *testing.T) {
	ef := &EncodedFont{}
	info := FontInfo{MaxWidth: 4, MaxHeight: 2}

	out, err := DecodeRef(ef, RefString{codeLiteralTrue, fillCode}, info)
	if err != nil {
		t.Fatalf("DecodeRef failed: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("len(out) = %d, want 8", len(out))
	}
	if !out[0] {
		t.Errorf("out[0] = false, want true")
	}
	for i := 1; i < 8; i++ {
		if out[i] {
			t.Errorf("out[%d] = true, want false (fill pads with background)", i)
		}
	}
}

func TestDecodeRefRejectsOverlongFill(t *testing.T) {
	ef := &EncodedFont{}
	info := FontInfo{MaxWidth: 1, MaxHeight: 1}

	ref := RefString{codeLiteralTrue, codeLiteralTrue, fillCode}
	if _, err := DecodeRef(ef, ref, info); err == nil {
		t.Error("DecodeRef accepted a fill code after the bitstring was already longer than MaxWidth*MaxHeight")
	}
}

func TestDecodeRefTreatsReservedCodeAsNoOp(t *testing.T) {
	ef := &EncodedFont{}
	info := FontInfo{MaxWidth: 2, MaxHeight: 1}

	out, err := DecodeRef(ef, RefString{reservedCode, codeLiteralTrue, codeLiteralFalse}, info)
	if err != nil {
		t.Fatalf("DecodeRef failed: %v", err)
	}
	if len(out) != 2 || !out[0] || out[1] {
		t.Errorf("DecodeRef = %v, want [true false]", out)
	}
}

func TestDecodeRefExpandsRLEEntry(t *testing.T) {
	ef := &EncodedFont{
		RLEDictionary: []RLEString{{0x83}}, // 3 true bits
	}
	info := FontInfo{MaxWidth: 3, MaxHeight: 1}

	out, err := DecodeRef(ef, RefString{firstDictCode}, info)
	if err != nil {
		t.Fatalf("DecodeRef failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	for i, b := range out {
		if !b {
			t.Errorf("out[%d] = false, want true", i)
		}
	}
}

func TestDecodeRefRejectsZeroRunLength(t *testing.T) {
	ef := &EncodedFont{
		RLEDictionary: []RLEString{{0x00}},
	}
	info := FontInfo{MaxWidth: 1, MaxHeight: 1}

	if _, err := DecodeRef(ef, RefString{firstDictCode}, info); err == nil {
		t.Error("DecodeRef accepted an RLE byte with a zero run length")
	}
}

func TestDecodeRefExpandsOneLevelOfRefDictionary(t *testing.T) {
	ef := &EncodedFont{
		RLEDictionary: []RLEString{{0x82}}, // 2 true bits
		RefDictionary: []RefString{{firstDictCode, codeLiteralFalse}},
	}
	info := FontInfo{MaxWidth: 3, MaxHeight: 1}

	// firstDictCode+1 selects the ref dictionary entry, which itself
	// expands to the RLE entry followed by a literal false bit.
	out, err := DecodeRef(ef, RefString{firstDictCode + 1}, info)
	if err != nil {
		t.Fatalf("DecodeRef failed: %v", err)
	}
	want := []bool{true, true, false}
	if len(out) != len(want) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDecodeRefRejectsOutOfRangeReference(t *testing.T) {
	ef := &EncodedFont{}
	info := FontInfo{MaxWidth: 1, MaxHeight: 1}

	if _, err := DecodeRef(ef, RefString{firstDictCode}, info); err == nil {
		t.Error("DecodeRef accepted a code indexing past both dictionary halves")
	}
}

func TestDecodeGlyphRejectsOutOfRangeIndex(t *testing.T) {
	ef := &EncodedFont{Glyphs: []RefString{{codeLiteralFalse}}}
	info := FontInfo{MaxWidth: 1, MaxHeight: 1}

	if _, err := DecodeGlyph(ef, 1, info); err == nil {
		t.Error("DecodeGlyph accepted an out-of-range index")
	}
}
