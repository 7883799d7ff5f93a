package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// Direction marks which side of an API connection sent a chunk.
type Direction bool

const (
	Inbound  Direction = true  // client to server
	Outbound Direction = false // server to client
)

func (d Direction) String() string {
	if d == Inbound {
		return "C->S"
	}
	return "S->C"
}

// RawLogger records raw API traffic.
type RawLogger interface {
	Log(dir Direction, peer string, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log writes one line per chunk with a timestamp and a hex dump.
func (r *rawLogger) Log(dir Direction, peer string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}
	line := fmt.Sprintf("%s %s %s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		peer,
		dir,
		len(data),
		hex.EncodeToString(data))

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
