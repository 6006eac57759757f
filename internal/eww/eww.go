// Package eww drives the eww widget daemon through its command line.
package eww

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBin is the eww executable looked up on PATH.
const DefaultBin = "eww"

// CommandError reports a failed eww invocation.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("eww %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// runFunc runs a command and returns its combined output.
type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Client runs eww subcommands against one configuration directory.
type Client struct {
	// Bin is the eww executable. Empty means DefaultBin.
	Bin string
	// ConfigDir is passed as -c when set.
	ConfigDir string

	run runFunc
}

// NewClient creates a client for bin and configDir.
func NewClient(bin, configDir string) *Client {
	return &Client{Bin: bin, ConfigDir: configDir}
}

// Update sets variable name to value. Strings are passed through as is so
// yuck literals reach eww unquoted; everything else is JSON encoded.
func (c *Client) Update(ctx context.Context, name string, value any) error {
	encoded, err := Encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return c.exec(ctx, "update", name+"="+encoded)
}

// Open opens windows.
func (c *Client) Open(ctx context.Context, windows ...string) error {
	if len(windows) == 0 {
		return nil
	}
	return c.exec(ctx, append([]string{"open-many"}, windows...)...)
}

// Close closes windows.
func (c *Client) Close(ctx context.Context, windows ...string) error {
	if len(windows) == 0 {
		return nil
	}
	return c.exec(ctx, append([]string{"close"}, windows...)...)
}

func (c *Client) exec(ctx context.Context, args ...string) error {
	bin := c.Bin
	if bin == "" {
		bin = DefaultBin
	}
	run := c.run
	if run == nil {
		run = runCommand
	}

	full := args
	if c.ConfigDir != "" {
		full = append([]string{"-c", c.ConfigDir}, args...)
	}
	out, err := run(ctx, bin, full...)
	if err != nil {
		return &CommandError{Args: full, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}

// Encode renders value the way eww expects it on the command line.
func Encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
