package fontdict

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
)

// Archive serialization gives EncodedFont a round-trippable snapshot
// format, grounded on the teacher's OnPair archive: the same
// magic/version/stage-table framing and the same "store the smaller of
// raw or flate" rule per stage, retargeted from OnPair's token-ID
// fields onto EncodedFont's three dictionary-reference fields. This is
// not the on-device font format (still out of scope); it exists so a
// caller can cache a trained dictionary's encoded form, or a test can
// assert a round trip, without reaching for encoding/gob.
const (
	fontArchiveMagic   = "FDIC"
	fontArchiveVersion = uint16(1)

	stageRLEDictionary = "rle_dictionary"
	stageRefDictionary = "ref_dictionary"
	stageGlyphs        = "glyphs"

	stageParamRaw   = uint8(0)
	stageParamFlate = uint8(1)

	maxArchiveStages     = 8
	maxStagePayloadBytes = 1 << 28
)

// WriteFont writes ef to w in the archive format described above,
// returning the number of bytes written.
func WriteFont(w io.Writer, ef *EncodedFont) (int64, error) {
	var total int64

	if err := binary.Write(w, binary.LittleEndian, []byte(fontArchiveMagic)); err != nil {
		return total, err
	}
	total += int64(len(fontArchiveMagic))
	if err := binary.Write(w, binary.LittleEndian, fontArchiveVersion); err != nil {
		return total, err
	}
	total += 2

	stages := []struct {
		name string
		raw  []byte
	}{
		{stageRLEDictionary, encodeByteStringList(rleStringsToBytes(ef.RLEDictionary))},
		{stageRefDictionary, encodeByteStringList(refStringsToBytes(ef.RefDictionary))},
		{stageGlyphs, encodeByteStringList(refStringsToBytes(ef.Glyphs))},
	}

	if err := binary.Write(w, binary.LittleEndian, uint16(len(stages))); err != nil {
		return total, err
	}
	total += 2

	for _, s := range stages {
		payload, param := bestStagePayload(s.raw)
		n, err := writeStage(w, s.name, []byte{param}, payload)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFont reads an archive written by WriteFont.
func ReadFont(r io.Reader) (*EncodedFont, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != fontArchiveMagic {
		return nil, fmt.Errorf("fontdict: bad archive magic %q", magic[:])
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != fontArchiveVersion {
		return nil, fmt.Errorf("fontdict: unsupported archive version %d", version)
	}

	var stageCount uint16
	if err := binary.Read(r, binary.LittleEndian, &stageCount); err != nil {
		return nil, err
	}
	if int(stageCount) > maxArchiveStages {
		return nil, fmt.Errorf("fontdict: archive declares %d stages, max %d", stageCount, maxArchiveStages)
	}

	ef := &EncodedFont{}
	for i := uint16(0); i < stageCount; i++ {
		header, _, err := readStageHeader(r)
		if err != nil {
			return nil, err
		}
		params := make([]byte, header.paramLen)
		if _, err := io.ReadFull(r, params); err != nil {
			return nil, err
		}
		payload := make([]byte, header.dataLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		if len(params) == 1 && params[0] == stageParamFlate {
			payload, err = decodeFlatePayload(payload)
			if err != nil {
				return nil, err
			}
		}

		list, err := decodeByteStringList(payload)
		if err != nil {
			return nil, fmt.Errorf("fontdict: stage %q: %w", header.name, err)
		}
		switch header.name {
		case stageRLEDictionary:
			ef.RLEDictionary = bytesToRLEStrings(list)
		case stageRefDictionary:
			ef.RefDictionary = bytesToRefStrings(list)
		case stageGlyphs:
			ef.Glyphs = bytesToRefStrings(list)
		}
	}
	return ef, nil
}

func bestStagePayload(raw []byte) ([]byte, uint8) {
	flatePayload, err := encodeFlatePayload(raw)
	if err != nil || len(flatePayload) >= len(raw) {
		return raw, stageParamRaw
	}
	return flatePayload, stageParamFlate
}

func writeStage(w io.Writer, name string, params []byte, payload []byte) (int64, error) {
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("fontdict: invalid stage name length: %d", len(name))
	}
	if len(payload) > maxStagePayloadBytes {
		return 0, fmt.Errorf("fontdict: stage payload too large for %q: %d", name, len(payload))
	}

	var total int64
	add := func(n int64) { total += n }

	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return total, err
	}
	add(1)
	if err := binary.Write(w, binary.LittleEndian, uint16(len(params))); err != nil {
		return total, err
	}
	add(2)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return total, err
	}
	add(4)

	n, err := w.Write([]byte(name))
	add(int64(n))
	if err != nil {
		return total, err
	}
	n, err = w.Write(params)
	add(int64(n))
	if err != nil {
		return total, err
	}
	n, err = w.Write(payload)
	add(int64(n))
	return total, err
}

type stageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

func readStageHeader(r io.Reader) (stageHeader, int64, error) {
	var total int64

	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return stageHeader{}, total, err
	}
	total++
	if nameLen == 0 {
		return stageHeader{}, total, fmt.Errorf("fontdict: stage name length must be > 0")
	}

	var paramLen uint16
	if err := binary.Read(r, binary.LittleEndian, &paramLen); err != nil {
		return stageHeader{}, total, err
	}
	total += 2

	var dataLen uint32
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return stageHeader{}, total, err
	}
	total += 4
	if dataLen > uint32(maxStagePayloadBytes) {
		return stageHeader{}, total, fmt.Errorf("fontdict: stage payload too large: %d", dataLen)
	}

	nameBytes := make([]byte, nameLen)
	n, err := io.ReadFull(r, nameBytes)
	total += int64(n)
	if err != nil {
		return stageHeader{}, total, err
	}

	return stageHeader{name: string(nameBytes), paramLen: paramLen, dataLen: dataLen}, total, nil
}

func encodeFlatePayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFlatePayload(payload []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(payload))
	defer r.Close()

	limited := io.LimitReader(r, maxStagePayloadBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(raw) > maxStagePayloadBytes {
		return nil, fmt.Errorf("fontdict: flate payload expands beyond limit")
	}
	return raw, nil
}

// encodeByteStringList packs a list of byte strings as a varint count
// followed by, for each entry, a varint length and its bytes.
func encodeByteStringList(list [][]byte) []byte {
	var scratch [binary.MaxVarintLen64]byte
	buf := make([]byte, 0, 4*len(list))

	n := binary.PutUvarint(scratch[:], uint64(len(list)))
	buf = append(buf, scratch[:n]...)

	for _, entry := range list {
		n = binary.PutUvarint(scratch[:], uint64(len(entry)))
		buf = append(buf, scratch[:n]...)
		buf = append(buf, entry...)
	}
	return buf
}

func decodeByteStringList(payload []byte) ([][]byte, error) {
	buf := bytes.NewReader(payload)

	count, err := binary.ReadUvarint(buf)
	if err != nil {
		return nil, err
	}
	list := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		length, err := binary.ReadUvarint(buf)
		if err != nil {
			return nil, err
		}
		entry := make([]byte, length)
		if _, err := io.ReadFull(buf, entry); err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, nil
}

func rleStringsToBytes(rs []RLEString) [][]byte {
	out := make([][]byte, len(rs))
	for i, r := range rs {
		out[i] = []byte(r)
	}
	return out
}

func refStringsToBytes(rs []RefString) [][]byte {
	out := make([][]byte, len(rs))
	for i, r := range rs {
		out[i] = []byte(r)
	}
	return out
}

func bytesToRLEStrings(list [][]byte) []RLEString {
	out := make([]RLEString, len(list))
	for i, b := range list {
		out[i] = RLEString(b)
	}
	return out
}

func bytesToRefStrings(list [][]byte) []RefString {
	out := make([]RefString, len(list))
	for i, b := range list {
		out[i] = RefString(b)
	}
	return out
}
