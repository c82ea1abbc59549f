package fontdict

import (
	"fmt"
	"log"
)

// Config holds the Optimizer's behavior knobs, set via functional
// options in the teacher's style (onpair.Config/Option/With...).
type Config struct {
	// BigJump enables the optional operator 7, which is off by default:
	// the original tool shipped it commented out.
	BigJump bool
	// InnerRounds is the number of inner operator rounds optimize_bigjump
	// runs per trial. Defaults to 25, matching the source.
	InnerRounds int
	// Verbose, if non-nil, receives one line per committed mutation:
	// operator name, indices involved, and score delta.
	Verbose *log.Logger
}

// Option configures the Optimizer.
type Option func(*Config)

// WithBigJump enables or disables optimize_bigjump.
func WithBigJump(enabled bool) Option {
	return func(c *Config) { c.BigJump = enabled }
}

// WithInnerRounds overrides optimize_bigjump's inner round count.
func WithInnerRounds(n int) Option {
	return func(c *Config) { c.InnerRounds = n }
}

// WithVerbose attaches a logger that receives one line per committed
// mutation.
func WithVerbose(logger *log.Logger) Option {
	return func(c *Config) { c.Verbose = logger }
}

func resolveConfig(opts ...Option) Config {
	cfg := Config{InnerRounds: 25}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.InnerRounds <= 0 {
		cfg.InnerRounds = 25
	}
	return cfg
}

func logCommit(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// randomSubstring samples a uniform random glyph, then a uniform
// random length in [2, glyph length], then a uniform random start
// offset, and returns that slice. The result is an independent copy,
// safe to mutate.
func randomSubstring(df *DataFile, rng *mt19937) (Bitstring, error) {
	if len(df.Glyphs) == 0 {
		return nil, ErrNoGlyphs
	}
	glyph := df.Glyphs[rng.IntN(len(df.Glyphs))].Data
	maxLen := len(glyph)
	minLen := 2
	if maxLen < minLen {
		minLen = maxLen
	}
	length := rng.Range(minLen, maxLen)
	start := rng.Range(0, len(glyph)-length)

	out := make(Bitstring, length)
	copy(out, glyph[start:start+length])
	return out, nil
}

// lowScoreIndex returns the index of the lowest-score dictionary
// entry, breaking ties toward the lowest index so replays under a
// fixed seed are reproducible.
func lowScoreIndex(d Dictionary) int {
	best := 0
	for i := 1; i < len(d); i++ {
		if d[i].Score < d[best].Score {
			best = i
		}
	}
	return best
}

// trimBits removes up to start bits from the front and, separately, up
// to end-1 bits from the back (keeping the very last bit). This is
// pinned here exactly as original_source/optimize.cc implements it:
// `erase(end()-end, end()-1)` removes end-1 elements, not end.
func trimBits(bits Bitstring, start, end int) Bitstring {
	if start > 0 {
		if start > len(bits) {
			start = len(bits)
		}
		trimmed := make(Bitstring, len(bits)-start)
		copy(trimmed, bits[start:])
		bits = trimmed
	}
	if end > 0 {
		n := len(bits)
		lo := n - end
		if lo < 0 {
			lo = 0
		}
		hi := n - 1
		if hi < lo {
			hi = lo
		}
		out := make(Bitstring, 0, n-(hi-lo))
		out = append(out, bits[:lo]...)
		out = append(out, bits[hi:]...)
		bits = out
	}
	return bits
}

// optimizeWorst replaces the lowest-score dictionary entry with a
// fresh random substring, keeping RefEncode as-is.
func optimizeWorst(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	worst := lowScoreIndex(trial.Dictionary)
	entry := trial.Dictionary[worst]

	sub, err := randomSubstring(df, rng)
	if err != nil {
		return err
	}
	entry.Replacement = sub
	trial.Dictionary[worst] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[worst] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_worst: replaced %d score %d", worst, entry.Score)
	}
	return nil
}

// optimizeAny replaces a uniform random dictionary entry's replacement
// with a fresh random substring.
func optimizeAny(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	idx := rng.IntN(len(trial.Dictionary))
	entry := trial.Dictionary[idx]

	sub, err := randomSubstring(df, rng)
	if err != nil {
		return err
	}
	entry.Replacement = sub
	trial.Dictionary[idx] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[idx] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_any: replaced %d score %d", idx, entry.Score)
	}
	return nil
}

// optimizeExpand grows a uniform random dictionary entry's replacement
// by a random count of bits in [1, 10], each prepended or appended
// independently.
func optimizeExpand(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	idx := rng.IntN(len(trial.Dictionary))
	entry := trial.Dictionary[idx]

	count := rng.Range(1, 10)
	repl := entry.Replacement
	for i := 0; i < count; i++ {
		bit := rng.Bool()
		prepend := rng.Bool()
		if prepend {
			grown := make(Bitstring, len(repl)+1)
			grown[0] = bit
			copy(grown[1:], repl)
			repl = grown
		} else {
			repl = append(repl, bit)
		}
	}
	entry.Replacement = repl
	trial.Dictionary[idx] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[idx] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_expand: expanded %d by %d bits score %d", idx, count, entry.Score)
	}
	return nil
}

// optimizeTrim shortens a uniform random dictionary entry from both
// ends, per trimBits. No-ops if the entry's replacement has length <= 2.
func optimizeTrim(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	idx := rng.IntN(len(trial.Dictionary))
	entry := trial.Dictionary[idx]

	if len(entry.Replacement) <= 2 {
		return nil
	}
	limit := len(entry.Replacement) / 2
	if limit > 5 {
		limit = 5
	}
	start := rng.Range(0, limit)
	end := rng.Range(0, limit)

	entry.Replacement = trimBits(entry.Replacement, start, end)
	trial.Dictionary[idx] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[idx] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_trim: trimmed %d by %d bits from start and %d bits from end score %d", idx, start, end, entry.Score)
	}
	return nil
}

// optimizeRefdict flips a uniform random dictionary entry's RefEncode
// bit.
func optimizeRefdict(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	idx := rng.IntN(len(trial.Dictionary))
	entry := trial.Dictionary[idx]
	entry.RefEncode = !entry.RefEncode
	trial.Dictionary[idx] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[idx] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		mode := "RLE"
		if entry.RefEncode {
			mode = "ref"
		}
		logCommit(logger, "optimize_refdict: switched %d to %s score %d", idx, mode, entry.Score)
	}
	return nil
}

// optimizeCombine concatenates two uniform random dictionary entries'
// replacements and installs the result, ref-encoded, at the lowest-
// score slot.
func optimizeCombine(df *DataFile, size *int, rng *mt19937, logger *log.Logger) error {
	trial := df.Clone()
	worst := lowScoreIndex(df.Dictionary)
	idx1 := rng.IntN(len(df.Dictionary))
	idx2 := rng.IntN(len(df.Dictionary))

	part1 := df.Dictionary[idx1].Replacement
	part2 := df.Dictionary[idx2].Replacement
	combined := make(Bitstring, 0, len(part1)+len(part2))
	combined = append(combined, part1...)
	combined = append(combined, part2...)

	entry := DictEntry{Replacement: combined, RefEncode: true}
	trial.Dictionary[worst] = entry

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}
	if newSize < *size {
		entry.Score = *size - newSize
		trial.Dictionary[worst] = entry
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_combine: combined %d and %d to replace %d score %d", idx1, idx2, worst, entry.Score)
	}
	return nil
}

// optimizeBigjump clears the Replacement and Score of a random number
// (1..20) of dictionary entries, leaving RefEncode untouched so a
// later refill can still land as a ref entry, and runs cfg.InnerRounds
// silent rounds of operators 1, 2, 3, 5, 6 (notably not optimize_trim)
// on the trial, committing the whole trial if it ends up smaller than
// the original. Only reachable when Config.BigJump is true.
func optimizeBigjump(df *DataFile, size *int, rng *mt19937, cfg Config, logger *log.Logger) error {
	origSize := *size
	trial := df.Clone()

	dropCount := rng.Range(1, 20)
	for i := 0; i < dropCount; i++ {
		idx := rng.IntN(len(trial.Dictionary))
		e := trial.Dictionary[idx]
		e.Replacement = nil
		e.Score = 0
		trial.Dictionary[idx] = e
	}

	newSize, err := EncodedSize(trial)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.InnerRounds; i++ {
		if err := optimizeWorst(trial, &newSize, rng, nil); err != nil {
			return err
		}
		if err := optimizeAny(trial, &newSize, rng, nil); err != nil {
			return err
		}
		if err := optimizeExpand(trial, &newSize, rng, nil); err != nil {
			return err
		}
		if err := optimizeRefdict(trial, &newSize, rng, nil); err != nil {
			return err
		}
		if err := optimizeCombine(trial, &newSize, rng, nil); err != nil {
			return err
		}
	}

	if newSize < origSize {
		df.Dictionary = trial.Dictionary
		*size = newSize
		logCommit(logger, "optimize_bigjump: replaced %d entries score %d", dropCount, origSize-newSize)
	}
	return nil
}

// UpdateScores re-scores every dictionary slot: it clones df with that
// slot emptied, re-encodes, and records how many bytes that slot was
// saving (newSize - oldSize). Entries whose score is not strictly
// positive are not pulling their weight and are permanently zeroed.
func UpdateScores(df *DataFile, logger *log.Logger) error {
	oldSize, err := EncodedSize(df)
	if err != nil {
		return err
	}

	for i := range df.Dictionary {
		trial := df.Clone()
		trial.Dictionary[i] = DictEntry{}
		newSize, err := EncodedSize(trial)
		if err != nil {
			return err
		}

		score := newSize - oldSize
		entry := df.Dictionary[i]
		if score > 0 {
			entry.Score = score
			df.Dictionary[i] = entry
		} else {
			wasNonEmpty := !entry.Empty()
			df.Dictionary[i] = DictEntry{}
			if wasNonEmpty {
				logCommit(logger, "update_scores: dropped %d score %d", i, -score)
			}
		}
	}
	return nil
}

// InitDictionary seeds every dictionary slot before optimization
// begins. It repeatedly samples random substrings, tracking which it
// has seen once and which it has already installed; the second time a
// substring is seen (and it is not already installed), it is placed in
// the next free slot. This biases initialization toward substrings
// that recur, since a substring that appears only once has no
// compression potential. Installed entries have RefEncode == false and
// Score == 0.
func InitDictionary(df *DataFile) error {
	rng := newMT19937(df.Seed)
	seen := make(map[string]bool)
	added := make(map[string]bool)

	i := 0
	for i < len(df.Dictionary) {
		sub, err := randomSubstring(df, rng)
		if err != nil {
			return err
		}
		key := bitstringKey(sub)

		if !seen[key] {
			seen[key] = true
			continue
		}
		if added[key] {
			continue
		}
		df.Dictionary[i] = DictEntry{Replacement: sub}
		added[key] = true
		i++
	}
	return nil
}

// Optimize runs a first-improvement randomized local search over df's
// dictionary for the given number of iterations, mutating df in place.
// Each iteration runs operators 1 through 6, in a fixed order, for
// determinism given df.Seed. optimize_bigjump (operator 7) runs once
// afterward, only if WithBigJump(true) was passed.
//
// On return, df.Seed has been replaced with a freshly drawn value, so a
// later call on the same DataFile continues a single pseudo-random
// trajectory rather than repeating this one.
func Optimize(df *DataFile, iterations int, opts ...Option) error {
	cfg := resolveConfig(opts...)
	rng := newMT19937(df.Seed)

	if err := UpdateScores(df, cfg.Verbose); err != nil {
		return fmt.Errorf("fontdict: optimize: %w", err)
	}

	size, err := EncodedSize(df)
	if err != nil {
		return fmt.Errorf("fontdict: optimize: %w", err)
	}

	for i := 0; i < iterations; i++ {
		for _, op := range []func(*DataFile, *int, *mt19937, *log.Logger) error{
			optimizeWorst, optimizeAny, optimizeExpand, optimizeTrim, optimizeRefdict, optimizeCombine,
		} {
			if err := op(df, &size, rng, cfg.Verbose); err != nil {
				return fmt.Errorf("fontdict: optimize: %w", err)
			}
		}
	}

	if cfg.BigJump {
		if err := optimizeBigjump(df, &size, rng, cfg, cfg.Verbose); err != nil {
			return fmt.Errorf("fontdict: optimize: %w", err)
		}
	}

	df.Seed = rng.Next()
	return nil
}
