package storage

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealer encrypts the persisted password with a per-install key so the
// credentials record never carries it in the clear.
type sealer struct {
	key [32]byte
}

// newSealer loads the install key from path, generating it on first run.
func newSealer(path string) (*sealer, error) {
	s := &sealer{}

	raw, err := os.ReadFile(path)
	if err == nil {
		if len(raw) != len(s.key) {
			return nil, fmt.Errorf("storage: key file %s is corrupt", path)
		}
		copy(s.key[:], raw)
		return s, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	if _, err := rand.Read(s.key[:]); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, s.key[:], 0o600); err != nil {
		return nil, err
	}
	return s, nil
}

// Seal encrypts plaintext and returns it base64-encoded.
func (s *sealer) Seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
func (s *sealer) Open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(box) < 24 {
		return "", errors.New("storage: sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plaintext, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", errors.New("storage: sealed value did not open")
	}
	return string(plaintext), nil
}
