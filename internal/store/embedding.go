package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeEmbedding packs a float32 vector into a little-endian byte BLOB
// (adapted from the teacher's float32SliceToBytes, using math.Float32bits
// instead of an unsafe pointer cast).
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a BLOB into a float32 vector, rejecting any
// length that isn't a multiple of 4 bytes or that doesn't match dim (spec
// §9: "reject at load time if length != dimension * 4").
func decodeEmbedding(buf []byte, dim int) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	if dim > 0 && len(buf) != dim*4 {
		return nil, fmt.Errorf("embedding blob length %d does not match dimension %d", len(buf), dim)
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}
