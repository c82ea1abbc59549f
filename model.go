package fontdict

import (
	"io"
	"log"
)

// Model is a reusable, trained DataFile: a glyph set paired with a
// dictionary that has already been through one or more rounds of
// optimization. It gives callers who just want "encode this font well"
// a narrower surface than calling InitDictionary/Optimize/EncodeFont
// directly, in the shape of the teacher's Model/TrainModel facade over
// its lower-level Encoder.
type Model struct {
	data  *DataFile
	cache *TreeCache
}

// NewModel wraps an already-built DataFile without optimizing it.
func NewModel(df *DataFile) *Model {
	return &Model{data: df}
}

// TrainModel builds a DataFile for glyphs sized per info, seeds its
// dictionary with NewDictionary(dictSize) and InitDictionary, runs
// Optimize for the given number of iterations, and wraps the result.
func TrainModel(info FontInfo, glyphs []GlyphEntry, seed uint32, dictSize, iterations int, opts ...Option) (*Model, error) {
	df := &DataFile{
		Info:       info,
		Glyphs:     glyphs,
		Dictionary: NewDictionary(dictSize),
		Seed:       seed,
	}
	if err := InitDictionary(df); err != nil {
		return nil, err
	}
	if err := Optimize(df, iterations, opts...); err != nil {
		return nil, err
	}
	return &Model{data: df}, nil
}

// Retrain runs additional optimization rounds over the model's current
// dictionary, continuing its pseudo-random trajectory (see Optimize).
func (m *Model) Retrain(iterations int, opts ...Option) error {
	return Optimize(m.data, iterations, opts...)
}

// Encode produces the EncodedFont for the model's current DataFile.
func (m *Model) Encode() (*EncodedFont, error) {
	return EncodeFont(m.data)
}

// EncodeCached behaves like Encode but reuses a dictionary tree across
// calls when the model's dictionary has not changed since the last
// call, via an LRU owned by this Model. Worthwhile for a finalized
// model that gets encoded repeatedly (e.g. once per glyph subset
// exported), not for a model still under Retrain.
func (m *Model) EncodeCached() (*EncodedFont, error) {
	if m.cache == nil {
		cache, err := NewTreeCache(DefaultTreeCacheSize)
		if err != nil {
			return nil, err
		}
		m.cache = cache
	}
	return EncodeFontWithCache(m.data, m.cache)
}

// Size reports the model's current encoded size without keeping the
// EncodedFont around.
func (m *Model) Size() (int, error) {
	return EncodedSize(m.data)
}

// DataFile returns the model's underlying DataFile. Callers that
// mutate it directly bypass Model's bookkeeping; prefer Retrain.
func (m *Model) DataFile() *DataFile {
	return m.data
}

// WriteTo serializes the model's current encoded form via WriteFont.
func (m *Model) WriteTo(w io.Writer, logger *log.Logger) (int64, error) {
	ef, err := m.Encode()
	if err != nil {
		return 0, err
	}
	n, err := WriteFont(w, ef)
	if err != nil && logger != nil {
		logger.Printf("model: write failed after %d bytes: %v", n, err)
	}
	return n, err
}
