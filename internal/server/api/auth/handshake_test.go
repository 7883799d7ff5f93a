package auth_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apitypes "github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/internal/server/api/auth"
)

func mustKey(t *testing.T, password string) []byte {
	t.Helper()
	key, err := auth.DeriveKey(password)
	require.NoError(t, err)
	return key
}

func TestIsHandshake(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr error
	}{
		{name: "magic", input: auth.Magic + "rest", want: true},
		{name: "plain request", input: "mouse/position\x00", want: false},
		{name: "short plain request", input: "p\x00", want: false},
		{name: "shares first byte", input: "events\x00", want: false},
		{name: "empty", input: "", wantErr: io.EOF},
		{name: "truncated magic", input: "eV", wantErr: io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			got, err := auth.IsHandshake(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			peeked, _ := r.Peek(min(len(tt.input), len(auth.Magic)))
			assert.Equal(t, tt.input[:len(peeked)], string(peeked), "nothing consumed")
		})
	}
}

func TestServerHandshake(t *testing.T) {
	key := mustKey(t, "test123")
	clientNonce := bytes.Repeat([]byte{7}, 32)
	hello := auth.Hello(key, clientNonce)

	closedPipe := func() io.Writer {
		_, w := io.Pipe()
		_ = w.Close()
		return w
	}

	tests := []struct {
		name    string
		input   []byte
		w       io.Writer
		key     []byte
		wantErr string
	}{
		{name: "accepted", input: hello, w: &bytes.Buffer{}, key: key},
		{name: "wrong password", input: hello, w: &bytes.Buffer{}, key: mustKey(t, "wrongpass"), wantErr: "401 Unauthorized"},
		{name: "tampered nonce", input: append(append([]byte(auth.Magic), bytes.Repeat([]byte{8}, 32)...), hello[len(auth.Magic)+32:]...), w: &bytes.Buffer{}, key: key, wantErr: "invalid password"},
		{name: "truncated magic", input: []byte("eV"), w: &bytes.Buffer{}, key: key, wantErr: "read handshake magic: EOF"},
		{name: "truncated hello", input: append([]byte(auth.Magic), "short"...), w: &bytes.Buffer{}, key: key, wantErr: "read client hello: unexpected EOF"},
		{name: "missing key", input: hello, w: &bytes.Buffer{}, wantErr: "missing key"},
		{name: "nil writer", input: hello, key: key, wantErr: "nil writer"},
		{name: "closed writer", input: hello, w: closedPipe(), key: key, wantErr: "write handshake reply: io: read/write on closed pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nonces, err := auth.ServerHandshake(bufio.NewReader(bytes.NewReader(tt.input)), tt.w, tt.key)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, clientNonce, nonces.Client)
			require.Len(t, nonces.Server, 32)

			reply := tt.w.(*bytes.Buffer).Bytes()
			assert.Equal(t, append([]byte("OK\x00"), nonces.Server...), reply)
		})
	}
}

func TestClientHandshake(t *testing.T) {
	key := mustKey(t, "test123")

	t.Run("accepted", func(t *testing.T) {
		serverNonce := bytes.Repeat([]byte{9}, 32)
		var sent bytes.Buffer
		reply := bytes.NewReader(append([]byte("OK\x00"), serverNonce...))

		nonces, err := auth.ClientHandshake(reply, &sent, key)
		require.NoError(t, err)
		assert.Equal(t, serverNonce, nonces.Server)
		assert.Equal(t, auth.Hello(key, nonces.Client), sent.Bytes())
	})

	tests := []struct {
		name    string
		reply   string
		wantErr string
	}{
		{name: "problem json", reply: `{"status":401,"title":"Unauthorized","detail":"invalid password"}` + "\n", wantErr: "401 Unauthorized"},
		{name: "garbage", reply: "NO\x00whatever", wantErr: "invalid handshake reply"},
		{name: "hang up", reply: "", wantErr: "read handshake reply: EOF"},
		{name: "short nonce", reply: "OK\x00abc", wantErr: "read server nonce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ClientHandshake(strings.NewReader(tt.reply), io.Discard, key)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	t.Run("problem json is an ApiError", func(t *testing.T) {
		_, err := auth.ClientHandshake(strings.NewReader(`{"status":401,"title":"Unauthorized"}`+"\n"), io.Discard, key)
		var apiErr *apitypes.ApiError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 401, apiErr.Status)
	})
}

func TestHandshakeOverPipe(t *testing.T) {
	key := mustKey(t, "test123")
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	type result struct {
		n   auth.Nonces
		err error
	}
	srv := make(chan result, 1)
	go func() {
		n, err := auth.ServerHandshake(bufio.NewReader(server), server, key)
		srv <- result{n, err}
	}()

	got, err := auth.ClientHandshake(client, client, key)
	require.NoError(t, err)
	res := <-srv
	require.NoError(t, res.err)
	assert.Equal(t, res.n, got)
	assert.Equal(t, res.n.SessionKey(key), got.SessionKey(key))
}
