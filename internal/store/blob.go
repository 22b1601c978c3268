package store

import (
	"bytes"
	"encoding/binary"
)

// encodeFloat32SliceToBlob encodes a float32 slice as a little-endian
// binary blob for storage in SQLite. Matches the layout sqlite-vec
// expects for float[] columns.
func encodeFloat32SliceToBlob(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		// Should never happen with bytes.Buffer
		return nil
	}
	return buf.Bytes()
}

// decodeFloat32SliceFromBlob decodes a binary blob back to a float32 slice.
func decodeFloat32SliceFromBlob(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}

	vec := make([]float32, len(blob)/4)
	reader := bytes.NewReader(blob)
	if err := binary.Read(reader, binary.LittleEndian, &vec); err != nil {
		return nil
	}
	return vec
}
