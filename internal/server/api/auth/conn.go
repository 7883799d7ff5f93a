package auth

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Role selects which half of the nonce space a Conn writes with.
type Role uint32

const (
	RoleClient Role = 1
	RoleServer Role = 2
)

const (
	headerLen = 4
	maxFrame  = 2 << 20
)

var (
	errFrameTooShort = errors.New("encrypted frame shorter than nonce and tag")
	errFrameTooLarge = errors.New("encrypted frame exceeds size limit")
	errFrameOrder    = errors.New("encrypted frame out of sequence")
)

// Conn seals every Write into one frame: a 4-byte big-endian length, the
// 12-byte nonce and the ChaCha20-Poly1305 ciphertext. A nonce is the
// writer's Role followed by a 64-bit frame counter, so both directions can
// share the session key. Frames must arrive in order.
type Conn struct {
	net.Conn
	aead cipher.AEAD
	role Role

	wmu     sync.Mutex
	sendSeq uint64

	recvSeq uint64
	pending []byte
}

// WrapConn encrypts conn with sessionKey. role is the side conn belongs to.
func WrapConn(conn net.Conn, sessionKey []byte, role Role) (*Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead, role: role}, nil
}

func (c *Conn) peer() Role {
	if c.role == RoleClient {
		return RoleServer
	}
	return RoleClient
}

func nonceFor(role Role, seq uint64) []byte {
	n := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint32(n[:4], uint32(role))
	binary.BigEndian.PutUint64(n[4:], seq)
	return n
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	nonce := nonceFor(c.role, c.sendSeq)
	frame := make([]byte, headerLen, headerLen+len(nonce)+len(p)+c.aead.Overhead())
	frame = append(frame, nonce...)
	frame = c.aead.Seal(frame, nonce, p, nil)
	binary.BigEndian.PutUint32(frame[:headerLen], uint32(len(frame)-headerLen))

	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	c.sendSeq++
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		pt, err := c.readFrame()
		if err != nil {
			return 0, err
		}
		c.pending = pt
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Conn) readFrame() ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(hdr[:])
	switch {
	case size > maxFrame:
		return nil, errFrameTooLarge
	case size < uint32(chacha20poly1305.NonceSize+c.aead.Overhead()):
		return nil, errFrameTooShort
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.Conn, body); err != nil {
		return nil, fmt.Errorf("read encrypted frame: %w", err)
	}
	nonce, ct := body[:chacha20poly1305.NonceSize], body[chacha20poly1305.NonceSize:]
	if string(nonce) != string(nonceFor(c.peer(), c.recvSeq)) {
		return nil, errFrameOrder
	}
	pt, err := c.aead.Open(ct[:0], nonce, ct, nil)
	if err != nil {
		return nil, err
	}
	c.recvSeq++
	return pt, nil
}
