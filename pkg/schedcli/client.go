// Package schedcli is the client library for the shiftdl daemon socket.
// It frames JSON requests, decodes responses, and dispatches pushed
// schedule updates on watch connections.
package schedcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/shiftdl/shiftdl/common"
)

type Client struct {
	mu   sync.RWMutex
	d    *Dispatcher
	conn net.Conn
}

// NewClient connects to the daemon's Unix socket, falling back to the TCP
// loopback port when the socket cannot be reached.
func NewClient() (*Client, error) {
	conn, err := net.Dial("unix", socketPath())
	if err != nil {
		tcpConn, tcpErr := net.Dial("tcp", fmt.Sprintf("%s:%d", common.TCPHost, common.DefaultPort))
		if tcpErr != nil {
			return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
		}
		conn = tcpConn
	}
	return NewClientFromConn(conn), nil
}

// NewClientFromConn wraps an existing connection; used in tests.
func NewClientFromConn(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		d:    &Dispatcher{},
	}
}

// Close closes the daemon connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Dispatcher returns the push dispatcher for registering update handlers
// before calling Listen.
func (c *Client) Dispatcher() *Dispatcher {
	return c.d
}

// Listen consumes pushed updates until the connection closes or a handler
// returns ErrDisconnect. Call after Watch.
func (c *Client) Listen() (err error) {
	defer c.conn.Close()
	for {
		c.mu.RLock()
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RUnlock()
			return fmt.Errorf("error reading: %s", err.Error())
		}
		err = c.d.process(buf)
		c.mu.RUnlock()
		if err != nil {
			if err == ErrDisconnect {
				return nil
			}
			return fmt.Errorf("error processing: %s", err.Error())
		}
	}
}

func (c *Client) invoke(method common.Method, message any) (json.RawMessage, error) {
	// block the updates listener while invoking a method so the reply is
	// consumed here rather than by Listen
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	if err := write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	if err := json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	if res.Update == nil {
		return nil, nil
	}
	return res.Update.Message, nil
}
