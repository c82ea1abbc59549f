package fontdict

import (
	"bytes"
	"testing"
)

func TestTrainModelProducesSmallerEncodingThanUntrained(t *testing.T) {
	info := FontInfo{MaxWidth: 8, MaxHeight: 8}
	glyphs := repeatingGlyphs(16, info, 4, true)

	untrained := &DataFile{Info: info, Glyphs: glyphs, Dictionary: NewDictionary(6)}
	baseline, err := EncodedSize(untrained)
	if err != nil {
		t.Fatalf("EncodedSize failed: %v", err)
	}

	model, err := TrainModel(info, glyphs, 11, 6, 40)
	if err != nil {
		t.Fatalf("TrainModel failed: %v", err)
	}
	trained, err := model.Size()
	if err != nil {
		t.Fatalf("Model.Size failed: %v", err)
	}

	if trained >= baseline {
		t.Errorf("trained size %d is not smaller than untrained baseline %d", trained, baseline)
	}
}

func TestModelWriteToRoundTrips(t *testing.T) {
	info := FontInfo{MaxWidth: 4, MaxHeight: 4}
	glyphs := repeatingGlyphs(4, info, 2, true)

	model, err := TrainModel(info, glyphs, 3, 4, 10)
	if err != nil {
		t.Fatalf("TrainModel failed: %v", err)
	}

	var buf bytes.Buffer
	if _, err := model.WriteTo(&buf, nil); err != nil {
		t.Fatalf("Model.WriteTo failed: %v", err)
	}

	ef, err := ReadFont(&buf)
	if err != nil {
		t.Fatalf("ReadFont failed: %v", err)
	}
	want, err := model.Encode()
	if err != nil {
		t.Fatalf("Model.Encode failed: %v", err)
	}
	if len(ef.Glyphs) != len(want.Glyphs) {
		t.Errorf("round-tripped glyph count = %d, want %d", len(ef.Glyphs), len(want.Glyphs))
	}
}

func TestModelEncodeCachedMatchesEncode(t *testing.T) {
	info := FontInfo{MaxWidth: 4, MaxHeight: 4}
	glyphs := repeatingGlyphs(4, info, 2, true)

	model, err := TrainModel(info, glyphs, 5, 4, 10)
	if err != nil {
		t.Fatalf("TrainModel failed: %v", err)
	}

	want, err := model.Encode()
	if err != nil {
		t.Fatalf("Model.Encode failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := model.EncodeCached()
		if err != nil {
			t.Fatalf("Model.EncodeCached call %d failed: %v", i, err)
		}
		if len(got.Glyphs) != len(want.Glyphs) {
			t.Errorf("EncodeCached call %d glyph count = %d, want %d", i, len(got.Glyphs), len(want.Glyphs))
		}
	}
}
