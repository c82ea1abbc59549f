// Command fontbench reports the encoded size of a synthetic font
// before and after dictionary optimization. It exists to exercise the
// package end-to-end and to give a quick before/after number when
// experimenting with optimizer settings; it does not read or write any
// real font format.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/embedfont/fontdict"
)

func main() {
	var (
		glyphCount  = flag.Int("glyphs", 128, "number of synthetic glyphs")
		width       = flag.Int("width", 8, "glyph width in pixels")
		height      = flag.Int("height", 16, "glyph height in pixels")
		dictSize    = flag.Int("dict-size", fontdict.DictSize, "dictionary entry count")
		iterations  = flag.Int("iterations", 2000, "optimizer iterations")
		seed        = flag.Uint64("seed", 1, "PRNG seed")
		bigJump     = flag.Bool("bigjump", false, "enable the optional bigjump operator")
		verbose     = flag.Bool("verbose", false, "log each committed mutation")
		randomSeed  = flag.Int64("random-seed", 1, "seed for synthetic glyph generation")
	)
	flag.Parse()

	info := fontdict.FontInfo{MaxWidth: *width, MaxHeight: *height}
	glyphs := syntheticGlyphs(*glyphCount, info, *randomSeed)

	df := &fontdict.DataFile{
		Info:       info,
		Glyphs:     glyphs,
		Dictionary: fontdict.NewDictionary(*dictSize),
		Seed:       uint32(*seed),
	}

	before, err := fontdict.EncodedSize(df)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fontbench: initial encode:", err)
		os.Exit(1)
	}

	if err := fontdict.InitDictionary(df); err != nil {
		fmt.Fprintln(os.Stderr, "fontbench: init dictionary:", err)
		os.Exit(1)
	}

	var opts []fontdict.Option
	opts = append(opts, fontdict.WithBigJump(*bigJump))
	if *verbose {
		opts = append(opts, fontdict.WithVerbose(log.New(os.Stderr, "", 0)))
	}

	if err := fontdict.Optimize(df, *iterations, opts...); err != nil {
		fmt.Fprintln(os.Stderr, "fontbench: optimize:", err)
		os.Exit(1)
	}

	after, err := fontdict.EncodedSize(df)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fontbench: final encode:", err)
		os.Exit(1)
	}

	fmt.Printf("glyphs=%d dict=%d iterations=%d\n", *glyphCount, *dictSize, *iterations)
	fmt.Printf("before=%d after=%d saved=%d (%.1f%%)\n", before, after, before-after, 100*float64(before-after)/float64(before))
}

// syntheticGlyphs builds pseudo-random glyph bitmaps with repeated
// structure (stripes of a random period) so that a real dictionary has
// something to find, rather than pure noise where no substring recurs.
func syntheticGlyphs(count int, info fontdict.FontInfo, seed int64) []fontdict.GlyphEntry {
	rng := rand.New(rand.NewSource(seed))
	total := info.MaxWidth * info.MaxHeight

	glyphs := make([]fontdict.GlyphEntry, count)
	for i := range glyphs {
		period := 2 + rng.Intn(6)
		pattern := make(fontdict.Bitstring, period)
		for j := range pattern {
			pattern[j] = rng.Intn(2) == 1
		}

		data := make(fontdict.Bitstring, total)
		for j := range data {
			data[j] = pattern[j%period]
		}
		glyphs[i] = fontdict.GlyphEntry{Data: data, Width: uint8(info.MaxWidth)}
	}
	return glyphs
}
