package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/d2verb/glue/internal/protocol"
)

// Handler serves one decoded command. It may write at most one response
// frame to w; the connection is closed when Handle returns.
type Handler[S any] interface {
	Handle(ctx context.Context, cmd protocol.Command, state S, w io.Writer)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[S any] func(ctx context.Context, cmd protocol.Command, state S, w io.Writer)

func (f HandlerFunc[S]) Handle(ctx context.Context, cmd protocol.Command, state S, w io.Writer) {
	f(ctx, cmd, state, w)
}

// BindError indicates the server could not listen on its socket.
type BindError struct {
	Path string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Path, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server accepts one-shot command connections on a unix socket and hands
// each decoded command to a Handler together with the shared state S.
// Connections are served concurrently; the server does no serialization.
type Server[S any] struct {
	path     string
	listener net.Listener
	logger   *slog.Logger

	conns     sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Bind removes a stale socket file at path and listens on it with
// owner-only permissions.
func Bind[S any](path string, logger *slog.Logger) (*Server[S], error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, &BindError{Path: path, Err: fmt.Errorf("remove stale socket: %w", err)}
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, &BindError{Path: path, Err: err}
	}

	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		return nil, &BindError{Path: path, Err: err}
	}

	return &Server[S]{path: path, listener: listener, logger: logger}, nil
}

// Addr returns the socket path.
func (s *Server[S]) Addr() string {
	return s.path
}

// Serve accepts connections until ctx is cancelled or the server is closed,
// returning nil in both cases. A non-temporary accept failure is returned.
func (s *Server[S]) Serve(ctx context.Context, h Handler[S], state S) error {
	stop := context.AfterFunc(ctx, func() { s.listener.Close() })
	defer stop()

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if !isTemporary(err) {
				return fmt.Errorf("accept on %s: %w", s.path, err)
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			s.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		s.conns.Add(1)
		go s.serveConn(ctx, conn, h, state)
	}
}

func (s *Server[S]) serveConn(ctx context.Context, conn net.Conn, h Handler[S], state S) {
	defer s.conns.Done()
	defer conn.Close()
	// Reads have no deadline; shutdown unblocks them.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	payload, err := protocol.ReadMessageLimit(conn, protocol.MaxRequestSize)
	if err != nil {
		s.logger.Warn("read request failed", "error", err)
		return
	}

	cmd, err := protocol.DecodeCommand(payload)
	if err != nil {
		s.logger.Warn("dropping malformed request", "error", err, "size", len(payload))
		return
	}

	s.logger.Debug("request", "command", cmd)
	h.Handle(ctx, cmd, state, conn)
}

// Close stops accepting, waits for in-flight connections and removes the
// socket file. It is safe to call more than once.
func (s *Server[S]) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.closeErr = err
		}
		s.conns.Wait()
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}

func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}
