package canonhash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Sum hashes the canonical JSON encoding of v: json.Marshal bytes through
// SHA256. Struct field order fixes the serialization, so equal inputs always
// produce equal digests.
func Sum(v any) ([]byte, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	sum := sha256.Sum256(b)
	return sum[:], b, nil
}

// Hex returns the canonical digest of v rendered as prefix + lowercase hex.
func Hex(prefix string, v any) (string, error) {
	sum, _, err := Sum(v)
	if err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(sum), nil
}

// HexString hashes a raw string with SHA256 and renders prefix + hex.
func HexString(prefix, s string) string {
	sum := sha256.Sum256([]byte(s))
	return prefix + hex.EncodeToString(sum[:])
}
