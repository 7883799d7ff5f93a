// Package auth implements the optional password authentication of the API
// server: key stretching, the nonce handshake and the encrypted connection
// used once a handshake succeeds.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

// GeneratedKeyLength is the length of passwords produced by GenerateKey.
const GeneratedKeyLength = 16

const (
	keyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// bytes at or above this value are rejected so every character of
	// keyAlphabet is equally likely.
	alphabetCutoff = 256 - 256%len(keyAlphabet)

	kdfSalt      = "VINJECT-Key-v1"
	kdfRounds    = 100000
	keySize      = 32
	sessionLabel = "VINJECT-Session-v1"
)

// ErrEmptyPassword is returned by DeriveKey for an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// GenerateKey returns a random base62 password of GeneratedKeyLength characters.
func GenerateKey() (string, error) {
	key := make([]byte, 0, GeneratedKeyLength)
	buf := make([]byte, GeneratedKeyLength)
	for len(key) < GeneratedKeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		for _, b := range buf {
			if int(b) >= alphabetCutoff {
				continue
			}
			key = append(key, keyAlphabet[int(b)%len(keyAlphabet)])
			if len(key) == GeneratedKeyLength {
				break
			}
		}
	}
	return string(key), nil
}

// DeriveKey stretches password into the 32-byte key shared by client and server.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key(sha256.New, password, []byte(kdfSalt), kdfRounds, keySize)
}

// DeriveSessionKey mixes key with both handshake nonces. A plain hash keeps
// third-party clients simple to write.
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	for _, part := range [][]byte{key, serverNonce, clientNonce, []byte(sessionLabel)} {
		h.Write(part)
	}
	return h.Sum(nil)
}
