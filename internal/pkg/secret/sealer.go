package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:v1:"

var ErrOpen = errors.New("sealed value cannot be opened")

// Sealer encrypts values at rest with NaCl secretbox.
// A Sealer built without a passphrase stores values as plain text.
type Sealer struct {
	key     *[32]byte
	enabled bool
}

func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return &Sealer{}
	}
	key := sha256.Sum256([]byte(passphrase))
	return &Sealer{key: &key, enabled: true}
}

func (s *Sealer) Enabled() bool {
	return s.enabled
}

func (s *Sealer) Seal(plain string) (string, error) {
	if !s.enabled || plain == "" {
		return plain, nil
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal. Values without the sealed prefix are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if !s.enabled {
		return "", fmt.Errorf("%w: no passphrase configured", ErrOpen)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", ErrOpen
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
