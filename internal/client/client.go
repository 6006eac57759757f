// Package client provides a client for communicating with the daemon.
package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/d2verb/glue/internal/protocol"
)

// NotFoundError indicates the daemon socket does not exist, which means the
// daemon is not running.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("daemon socket %s not found", e.Path)
}

// ConnectError indicates the socket exists but the connection failed.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to daemon at %s: %v", e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err indicates a missing daemon socket.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnreachable reports whether err means the daemon could not be reached at
// all, either because the socket is missing or because connecting failed.
func IsUnreachable(err error) bool {
	var ce *ConnectError
	return IsNotFound(err) || errors.As(err, &ce)
}

// Client is a single connection to the daemon. It carries exactly one
// command and at most one response.
type Client struct {
	conn net.Conn
}

// Connect opens a connection to the daemon socket at path.
func Connect(path string) (*Client, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &ConnectError{Path: path, Err: err}
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, &ConnectError{Path: path, Err: err}
	}
	return &Client{conn: conn}, nil
}

// Send encodes cmd and writes it as one frame.
func (c *Client) Send(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return protocol.WriteMessage(c.conn, data)
}

// Read reads the response frame. An empty payload means the daemon
// acknowledged the request without a status.
func (c *Client) Read() ([]byte, error) {
	return protocol.ReadMessage(c.conn)
}

// SetDeadline bounds the remaining Send and Read calls.
func (c *Client) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Request sends cmd over a fresh connection and returns the raw response
// payload. A zero timeout waits indefinitely.
func Request(path string, cmd protocol.Command, timeout time.Duration) ([]byte, error) {
	c, err := Connect(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if timeout > 0 {
		if err := c.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}

	if err := c.Send(cmd); err != nil {
		return nil, err
	}
	return c.Read()
}

// Coffee sends a coffee command and decodes the reported status.
// The returned state is nil when the daemon answered with an empty frame.
func Coffee(path string, action protocol.CoffeeAction, timeout time.Duration) (*protocol.IdleState, error) {
	resp, err := Request(path, protocol.CoffeeCommand{Action: action}, timeout)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeStatus(resp)
}
