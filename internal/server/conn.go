package server

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
)

// ErrFrameTooLarge reports a framed message exceeding maxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// SyncConn wraps a net.Conn with independent read and write locks so one
// connection can be shared between the request loop and broadcast pushes.
// Each connection carries a server-assigned identifier, used as the owner
// reference for entries submitted over it.
type SyncConn struct {
	Conn     net.Conn
	Id       string
	rmu, wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{
		Conn: conn,
		Id:   uuid.NewString(),
	}
}

func (s *SyncConn) Write(b []byte) error {
	return write(&s.wmu, s.Conn, b)
}

func (s *SyncConn) Read() ([]byte, error) {
	return read(&s.rmu, s.Conn)
}
