package hyprland

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"time"
)

const requestTimeout = 2 * time.Second

// Workspace is the subset of a j/workspaces entry glue uses.
type Workspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Monitor string `json:"monitor"`
	Windows int    `json:"windows"`
}

// Client sends requests on the request socket.
type Client struct {
	// Path overrides the request socket location.
	Path string
}

// Workspaces lists the existing workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var ws []Workspace
	if err := c.requestJSON(ctx, "workspaces", &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// ActiveWorkspace returns the focused workspace.
func (c *Client) ActiveWorkspace(ctx context.Context) (Workspace, error) {
	var ws Workspace
	err := c.requestJSON(ctx, "activeworkspace", &ws)
	return ws, err
}

// Exec asks the compositor to launch command.
func (c *Client) Exec(ctx context.Context, command string) error {
	reply, err := c.Request(ctx, "dispatch exec "+command)
	if err != nil {
		return err
	}
	if r := strings.TrimSpace(string(reply)); r != "ok" {
		return fmt.Errorf("dispatch exec %q: %s", command, r)
	}
	return nil
}

func (c *Client) requestJSON(ctx context.Context, what string, v any) error {
	reply, err := c.Request(ctx, "j/"+what)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(reply, v); err != nil {
		return fmt.Errorf("parse %s reply: %w", what, err)
	}
	return nil
}

// Request writes one raw request and returns the full reply.
func (c *Client) Request(ctx context.Context, req string) ([]byte, error) {
	path, err := c.path()
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect hyprland request socket %s: %w", path, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if _, err := io.WriteString(conn, req); err != nil {
		return nil, fmt.Errorf("send %q: %w", req, err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read reply to %q: %w", req, err)
	}
	return reply, nil
}

func (c *Client) path() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := SocketDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, requestSocketName), nil
}
