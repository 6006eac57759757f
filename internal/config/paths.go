// Package config handles glue's paths and configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketEnv overrides the daemon socket path.
const SocketEnv = "GLUE_SOCKET"

// Paths holds the locations glue reads and writes.
type Paths struct {
	ConfigDir string
	Config    string
	StateDir  string
	Socket    string
	PID       string
	DaemonLog string
}

// GetPaths returns the paths for the current user, following the XDG base
// directory conventions.
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	configDir := filepath.Join(configHome, "glue")
	stateDir := filepath.Join(stateHome, "glue")
	return &Paths{
		ConfigDir: configDir,
		Config:    filepath.Join(configDir, "config.yaml"),
		StateDir:  stateDir,
		Socket:    socketPath(),
		PID:       pidPath(),
		DaemonLog: filepath.Join(stateDir, "daemon.log"),
	}, nil
}

// EnsureDirectories creates the state directory and the socket's directory.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.StateDir, filepath.Dir(p.Socket), filepath.Dir(p.PID)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}

func socketPath() string {
	if p := os.Getenv(SocketEnv); p != "" {
		return p
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "glue.sock")
	}
	return fmt.Sprintf("/tmp/glue-%d.sock", os.Getuid())
}

func pidPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "glue.pid")
	}
	return fmt.Sprintf("/tmp/glue-%d.pid", os.Getuid())
}
