package auth

import (
	"bufio"
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	apitypes "github.com/Alia5/vinject/apitypes"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// Magic opens every authenticated connection. A plain request path can
// never start with it because of the embedded NUL.
const Magic = "eVI1\x00"

const (
	nonceLen    = 32
	proofLen    = sha256.Size
	proofLabel  = "VINJECT-Auth-v1"
	acceptReply = "OK\x00"
)

// Nonces are the random values both sides contribute to a handshake.
type Nonces struct {
	Client []byte
	Server []byte
}

// SessionKey derives the key that encrypts the rest of the connection.
func (n Nonces) SessionKey(key []byte) []byte {
	return DeriveSessionKey(key, n.Server, n.Client)
}

// Hello is the client's first message: Magic, the client nonce and an
// HMAC over the nonce proving knowledge of key.
func Hello(key, clientNonce []byte) []byte {
	msg := make([]byte, 0, len(Magic)+nonceLen+proofLen)
	msg = append(msg, Magic...)
	msg = append(msg, clientNonce...)
	return append(msg, proof(key, clientNonce)...)
}

func proof(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(proofLabel))
	mac.Write(clientNonce)
	return mac.Sum(nil)
}

func newNonce() ([]byte, error) {
	n := make([]byte, nonceLen)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return n, nil
}

// IsHandshake reports whether r starts with Magic. It peeks one byte at a
// time and stops at the first mismatch, so a short plain request never
// blocks waiting for bytes the client will not send.
func IsHandshake(r *bufio.Reader) (bool, error) {
	for n := 1; n <= len(Magic); n++ {
		b, err := r.Peek(n)
		if err != nil {
			return false, err
		}
		if b[n-1] != Magic[n-1] {
			return false, nil
		}
	}
	return true, nil
}

// ServerHandshake consumes a client hello from r, checks its proof against
// key and answers with "OK\0" and the server nonce.
func ServerHandshake(r *bufio.Reader, w io.Writer, key []byte) (Nonces, error) {
	if len(key) == 0 {
		return Nonces{}, errors.New("handshake: missing key")
	}
	if _, err := r.Discard(len(Magic)); err != nil {
		return Nonces{}, fmt.Errorf("read handshake magic: %w", err)
	}
	hello := make([]byte, nonceLen+proofLen)
	if _, err := io.ReadFull(r, hello); err != nil {
		return Nonces{}, fmt.Errorf("read client hello: %w", err)
	}
	clientNonce, got := hello[:nonceLen], hello[nonceLen:]
	if !hmac.Equal(got, proof(key, clientNonce)) {
		return Nonces{}, apierror.ErrUnauthorized("invalid password")
	}

	serverNonce, err := newNonce()
	if err != nil {
		return Nonces{}, err
	}
	if w == nil {
		return Nonces{}, errors.New("write handshake reply: nil writer")
	}
	if _, err := w.Write(append([]byte(acceptReply), serverNonce...)); err != nil {
		return Nonces{}, fmt.Errorf("write handshake reply: %w", err)
	}
	return Nonces{Client: clientNonce, Server: serverNonce}, nil
}

// ClientHandshake sends a hello for key and reads the server's reply. A
// server that rejects the hello answers with a problem JSON line, which is
// returned as *apitypes.ApiError.
func ClientHandshake(r io.Reader, w io.Writer, key []byte) (Nonces, error) {
	if len(key) == 0 {
		return Nonces{}, errors.New("handshake: missing key")
	}
	clientNonce, err := newNonce()
	if err != nil {
		return Nonces{}, err
	}
	if _, err := w.Write(Hello(key, clientNonce)); err != nil {
		return Nonces{}, fmt.Errorf("write client hello: %w", err)
	}

	status := make([]byte, len(acceptReply))
	if _, err := io.ReadFull(r, status); err != nil {
		return Nonces{}, fmt.Errorf("read handshake reply: %w", err)
	}
	if string(status) != acceptReply {
		rest, _ := io.ReadAll(r)
		return Nonces{}, rejection(append(status, rest...))
	}
	serverNonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return Nonces{}, fmt.Errorf("read server nonce: %w", err)
	}
	return Nonces{Client: clientNonce, Server: serverNonce}, nil
}

func rejection(raw []byte) error {
	line := bytes.TrimSuffix(raw, []byte("\n"))
	var apiErr apitypes.ApiError
	if err := json.Unmarshal(line, &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
		return &apiErr
	}
	return fmt.Errorf("invalid handshake reply from server: %q", line)
}
