package fontdict

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTreeCacheSize is a reasonable default for NewTreeCache: enough
// distinct dictionaries for a handful of fonts without unbounded
// growth.
const DefaultTreeCacheSize = 32

// TreeCache memoizes built dictionary trees by dictionary contents. It
// is an opt-in alternative to EncodeFont's default per-call rebuild,
// for callers who repeatedly encode against a dictionary that is not
// changing from one call to the next, such as re-encoding a trained
// Model's final dictionary against several glyph sets. The optimizer's
// own hot path never shares a tree across calls: it mutates the
// dictionary on nearly every trial, so a cache would almost never hit
// while still paying for a fingerprint of every trial's full bit
// content and a lock per lookup.
//
// A TreeCache owns its own lock internally (via the underlying LRU);
// it is not a package-level resource, so independent callers never
// contend with each other.
type TreeCache struct {
	trees *lru.Cache[string, *dictTree]
}

// NewTreeCache returns a TreeCache holding up to size built trees.
func NewTreeCache(size int) (*TreeCache, error) {
	trees, err := lru.New[string, *dictTree](size)
	if err != nil {
		return nil, err
	}
	return &TreeCache{trees: trees}, nil
}

// getTree returns the dictionary tree for sorted, building and caching
// it if this exact dictionary's contents have not been seen recently.
func (c *TreeCache) getTree(sorted []DictEntry) *dictTree {
	key := dictionaryFingerprint(sorted)
	if t, ok := c.trees.Get(key); ok {
		return t
	}
	t := buildTree(sorted)
	c.trees.Add(key, t)
	return t
}

// dictionaryFingerprint builds an exact (not hashed) byte-string
// encoding of sorted's contents, suitable as a map key: each entry
// contributes its RefEncode flag, a varint bit count, and its bits
// packed 8-to-a-byte. Because the bit count is explicit, no two
// distinct dictionaries can produce the same fingerprint, so a cache
// hit is always a genuine match rather than a hash collision.
func dictionaryFingerprint(sorted []DictEntry) string {
	buf := make([]byte, 0, len(sorted)*4)
	for _, e := range sorted {
		if e.RefEncode {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = appendBitsKey(buf, e.Replacement)
	}
	return string(buf)
}

// bitstringKey returns an exact (collision-free), comparable encoding
// of bits: a varint bit count followed by the bits packed 8-to-a-byte.
// The explicit length prefix means two different-length bitstrings can
// never collide even if their packed bytes happen to match.
func bitstringKey(bits Bitstring) string {
	return string(appendBitsKey(nil, bits))
}

func appendBitsKey(buf []byte, bits Bitstring) []byte {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(bits)))
	buf = append(buf, scratch[:n]...)
	return appendPackedBits(buf, bits)
}

func appendPackedBits(buf []byte, bits Bitstring) []byte {
	var cur byte
	n := 0
	for _, b := range bits {
		if b {
			cur |= 1 << n
		}
		n++
		if n == 8 {
			buf = append(buf, cur)
			cur = 0
			n = 0
		}
	}
	if n > 0 {
		buf = append(buf, cur)
	}
	return buf
}
