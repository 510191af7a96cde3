package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	version  = "v1"
	nonceLen = 12
	tagLen   = 16
)

var (
	ErrMissingSecret = errors.New("sealer: password and salt are required")
	ErrBadPayload    = errors.New("sealer: bad payload")
)

// Sealer encrypts short texts at rest with AES-256-GCM. Sealed values have
// the form v1:<iv>:<tag>:<ciphertext>, each part base64 encoded.
type Sealer struct {
	aead cipher.AEAD
}

// New derives the key from password and salt with scrypt
func New(password, salt string) (*Sealer, error) {
	if password == "" || salt == "" {
		return nil, ErrMissingSecret
	}
	key, err := scrypt.Key([]byte(password), []byte(salt), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nil, nonce, []byte(plaintext), nil)
	data, tag := out[:len(out)-tagLen], out[len(out)-tagLen:]

	enc := base64.StdEncoding.EncodeToString
	return strings.Join([]string{version, enc(nonce), enc(tag), enc(data)}, ":"), nil
}

// Open decrypts a value produced by Seal
func (s *Sealer) Open(payload string) (string, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 4 || parts[0] != version {
		return "", ErrBadPayload
	}
	var raw [3][]byte
	for i, p := range parts[1:] {
		b, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return "", ErrBadPayload
		}
		raw[i] = b
	}
	nonce, tag, data := raw[0], raw[1], raw[2]
	if len(nonce) != nonceLen || len(tag) != tagLen {
		return "", ErrBadPayload
	}

	plain, err := s.aead.Open(nil, nonce, append(data, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("sealer: open: %w", err)
	}
	return string(plain), nil
}

// IsSealed reports whether v looks like a value produced by Seal
func IsSealed(v string) bool {
	return strings.HasPrefix(v, version+":") && strings.Count(v, ":") == 3
}
