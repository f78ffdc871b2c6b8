// Package seal encrypts constraint payloads before they are handed to the
// ledger as opaque bytes. The ledger never sees budget or quality floors in
// the clear; only a holder of the key can open them again.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ivSize  = 16
	tagSize = 16
)

// ErrInvalidCiphertext covers short buffers and authentication failures.
// The open path fails closed: no partial plaintext is ever returned.
var ErrInvalidCiphertext = errors.New("seal: invalid ciphertext")

// Sealer is an AES-256-GCM seal/open pair with a fixed key.
type Sealer struct {
	key []byte
}

// New derives the AES key as SHA256(secret).
func New(secret string) *Sealer {
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}
}

func (s *Sealer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

// Seal JSON-encodes v and produces the wire layout:
// [iv (16 bytes)] [auth tag (16 bytes)] [ciphertext].
func (s *Sealer) Seal(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := s.gcm()
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	// GCM appends the tag to the ciphertext; the wire format wants it
	// between the IV and the ciphertext.
	sealed := aead.Seal(nil, iv, plaintext, nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, ivSize+tagSize+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)
	return out, nil
}

// Open validates the authentication tag and decodes the plaintext into dst.
func (s *Sealer) Open(buf []byte, dst any) error {
	if len(buf) < ivSize+tagSize {
		return ErrInvalidCiphertext
	}
	iv := buf[:ivSize]
	tag := buf[ivSize : ivSize+tagSize]
	ct := buf[ivSize+tagSize:]

	aead, err := s.gcm()
	if err != nil {
		return err
	}

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return ErrInvalidCiphertext
	}
	return json.Unmarshal(plaintext, dst)
}
