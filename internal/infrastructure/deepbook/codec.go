package deepbook

import (
	"encoding/binary"
	"fmt"
)

// Strict BCS u64 codec. Dry-run return shapes depend on an external
// program's ABI and are never assumed stable: anything that is not exactly
// what we expect is an error, not a best-effort destructure.

const u64Size = 8

// DecodeU64 decodes one little-endian u64 from exactly 8 bytes.
func DecodeU64(b []byte) (uint64, error) {
	if len(b) != u64Size {
		return 0, fmt.Errorf("expected %d bytes for u64, got %d", u64Size, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// EncodeU64 is the inverse of DecodeU64.
func EncodeU64(v uint64) []byte {
	b := make([]byte, u64Size)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// DecodeU64Triple decodes exactly three u64 return values, in order.
func DecodeU64Triple(values [][]byte) (a, b, c uint64, err error) {
	if len(values) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 return values, got %d", len(values))
	}
	if a, err = DecodeU64(values[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("value 0: %w", err)
	}
	if b, err = DecodeU64(values[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("value 1: %w", err)
	}
	if c, err = DecodeU64(values[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("value 2: %w", err)
	}
	return a, b, c, nil
}
