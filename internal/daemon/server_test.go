package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/d2verb/glue/internal/client"
	"github.com/d2verb/glue/internal/protocol"
)

// testSocket returns a short socket path under /tmp; unix socket paths are
// limited to 108 bytes.
func testSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "glue-test")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "glue.sock")
}

func serve[S any](t *testing.T, h Handler[S], state S) (*Server[S], context.CancelFunc, <-chan error) {
	t.Helper()
	srv, err := Bind[S](testSocket(t), nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, h, state) }()
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, cancel, done
}

func echoAction(ctx context.Context, cmd protocol.Command, prefix string, w io.Writer) {
	protocol.WriteMessage(w, []byte(prefix+cmd.String()))
}

func TestServer_RoundTrip(t *testing.T) {
	// Arrange
	h := HandlerFunc[string](func(ctx context.Context, cmd protocol.Command, state string, w io.Writer) {
		echoAction(ctx, cmd, state, w)
	})
	srv, _, _ := serve[string](t, h, "state:")

	// Act
	resp, err := client.Request(srv.Addr(), protocol.Toggle(), time.Second)

	// Assert
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	want := "state:" + protocol.Toggle().String()
	if string(resp) != want {
		t.Errorf("response = %q, want %q", resp, want)
	}
}

func TestServer_SocketPermissions(t *testing.T) {
	srv, err := Bind[int](testSocket(t), nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer srv.Close()

	info, err := os.Stat(srv.Addr())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket mode = %o, want 600", perm)
	}
}

func TestServer_EmptyResponse(t *testing.T) {
	// Arrange
	h := HandlerFunc[int](func(ctx context.Context, cmd protocol.Command, state int, w io.Writer) {
		protocol.WriteMessage(w, nil)
	})
	srv, _, _ := serve[int](t, h, 0)

	// Act
	resp, err := client.Request(srv.Addr(), protocol.TestNotification("hi"), time.Second)

	// Assert
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("response = %q, want empty", resp)
	}
}

func TestServer_MalformedRequestsDoNotStopServer(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	h := HandlerFunc[int](func(ctx context.Context, cmd protocol.Command, state int, w io.Writer) {
		calls.Add(1)
		protocol.WriteMessage(w, nil)
	})
	srv, _, _ := serve[int](t, h, 0)

	bad := [][]byte{
		{0x00, 0x00},             // truncated prefix
		{0x00, 0x00, 0x00, 0x05}, // prefix without payload
		{0x00, 0x00, 0x00, 0x02, 0xff, 0xff},
		{0xff, 0xff, 0xff, 0xff}, // over the request limit
	}

	// Act
	for _, raw := range bad {
		conn, err := net.Dial("unix", srv.Addr())
		if err != nil {
			t.Fatalf("Dial() error = %v", err)
		}
		conn.Write(raw)
		conn.(*net.UnixConn).CloseWrite()
		io.ReadAll(conn)
		conn.Close()
	}
	_, err := client.Request(srv.Addr(), protocol.Get(), time.Second)

	// Assert
	if err != nil {
		t.Fatalf("valid request after malformed ones failed: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("handler calls = %d, want 1", got)
	}
}

func TestServer_HandlerPanicIsRecovered(t *testing.T) {
	// Arrange
	h := HandlerFunc[int](func(ctx context.Context, cmd protocol.Command, state int, w io.Writer) {
		if cmd == protocol.Drink() {
			panic("boom")
		}
		protocol.WriteMessage(w, nil)
	})
	srv, _, _ := serve[int](t, h, 0)

	// Act
	_, panicErr := client.Request(srv.Addr(), protocol.Drink(), time.Second)
	_, err := client.Request(srv.Addr(), protocol.Get(), time.Second)

	// Assert
	if panicErr == nil {
		t.Error("expected the panicking request to get no response")
	}
	if err != nil {
		t.Errorf("server stopped serving after a panic: %v", err)
	}
}

func TestServer_ConcurrentConnections(t *testing.T) {
	// Arrange
	release := make(chan struct{})
	var inFlight atomic.Int32
	h := HandlerFunc[int](func(ctx context.Context, cmd protocol.Command, state int, w io.Writer) {
		inFlight.Add(1)
		<-release
		protocol.WriteMessage(w, nil)
	})
	srv, _, _ := serve[int](t, h, 0)

	// Act
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := client.Request(srv.Addr(), protocol.Get(), 5*time.Second)
			errs <- err
		}()
	}
	deadline := time.Now().Add(2 * time.Second)
	for inFlight.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(release)

	// Assert
	if got := inFlight.Load(); got != 3 {
		t.Fatalf("handlers in flight = %d, want 3", got)
	}
	for i := 0; i < 3; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Request() error = %v", err)
		}
	}
}

func TestServer_ServeReturnsOnCancel(t *testing.T) {
	// Arrange
	h := HandlerFunc[int](func(context.Context, protocol.Command, int, io.Writer) {})
	srv, cancel, done := serve[int](t, h, 0)

	// Act
	cancel()

	// Assert
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := os.Stat(srv.Addr()); !os.IsNotExist(err) {
		t.Error("socket file should be removed after Close")
	}
}

func TestServer_CloseIsIdempotent(t *testing.T) {
	srv, err := Bind[int](testSocket(t), nil)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestBind_ReplacesStaleSocket(t *testing.T) {
	// Arrange
	path := testSocket(t)
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Act
	srv, err := Bind[int](path, nil)

	// Assert
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	srv.Close()
}

func TestBind_Error(t *testing.T) {
	path := filepath.Join("/tmp", "glue-no-such-dir", fmt.Sprint(os.Getpid()), "glue.sock")

	_, err := Bind[int](path, nil)

	var be *BindError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BindError", err)
	}
	if be.Path != path {
		t.Errorf("BindError.Path = %q, want %q", be.Path, path)
	}
}
