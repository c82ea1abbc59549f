package fontdict

import "testing"

func bits(s string) Bitstring {
	out := make(Bitstring, len(s))
	for i, c := range s {
		out[i] = c == '1'
	}
	return out
}

// ============================================================================
// Literal Terminal Tests
// ============================================================================

func TestBuildTreeAlwaysHasLiteralTerminals(t *testing.T) {
	tree := buildTree(nil)

	length, code, err := tree.walk(bits("0"), 0, true)
	if err != nil {
		t.Fatalf("walk(0) failed: %v", err)
	}
	if length != 1 || code != codeLiteralFalse {
		t.Errorf("walk(0) = (%d, %d), want (1, %d)", length, code, codeLiteralFalse)
	}

	length, code, err = tree.walk(bits("1"), 0, true)
	if err != nil {
		t.Fatalf("walk(1) failed: %v", err)
	}
	if length != 1 || code != codeLiteralTrue {
		t.Errorf("walk(1) = (%d, %d), want (1, %d)", length, code, codeLiteralTrue)
	}
}

// ============================================================================
// Longest Match Tests
// ============================================================================

func TestWalkPrefersLongestEligibleMatch(t *testing.T) {
	sorted := []DictEntry{
		{Replacement: bits("101")},
		{Replacement: bits("10110")},
	}
	tree := buildTree(sorted)

	length, code, err := tree.walk(bits("1011001"), 0, true)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if length != 5 || code != firstDictCode+1 {
		t.Errorf("walk = (%d, %d), want (5, %d)", length, code, firstDictCode+1)
	}
}

func TestWalkSkipsIneligibleRefTerminal(t *testing.T) {
	sorted := []DictEntry{
		{Replacement: bits("10")},
		{Replacement: bits("1011"), RefEncode: true},
	}
	tree := buildTree(sorted)

	// When encoding a ref dictionary entry, ref terminals are
	// ineligible, so the walk must fall back to the shorter non-ref
	// match even though a longer ref match exists.
	length, code, err := tree.walk(bits("1011"), 0, false)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if length != 2 || code != firstDictCode {
		t.Errorf("walk = (%d, %d), want (2, %d)", length, code, firstDictCode)
	}

	// The same input, encoding a glyph, may use the ref terminal.
	length, code, err = tree.walk(bits("1011"), 0, true)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if length != 4 || code != firstDictCode+1 {
		t.Errorf("walk = (%d, %d), want (4, %d)", length, code, firstDictCode+1)
	}
}

func TestBuildTreeFirstWinsOnDuplicateReplacement(t *testing.T) {
	sorted := []DictEntry{
		{Replacement: bits("110")},
		{Replacement: bits("110"), RefEncode: true},
	}
	tree := buildTree(sorted)

	_, code, err := tree.walk(bits("110"), 0, false)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if code != firstDictCode {
		t.Errorf("code = %d, want %d (first entry wins)", code, firstDictCode)
	}
}

func TestWalkAlwaysMatchesAtLeastOneBit(t *testing.T) {
	tree := buildTree(nil)
	for _, input := range []Bitstring{bits("0000"), bits("1111"), bits("01")} {
		length, _, err := tree.walk(input, 0, true)
		if err != nil {
			t.Fatalf("walk(%v) failed: %v", input, err)
		}
		if length < 1 {
			t.Errorf("walk(%v) matched %d bits, want >= 1", input, length)
		}
	}
}
