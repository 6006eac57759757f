// Package editor opens files in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoEditor is returned by Find when neither the environment nor PATH
// provides an editor.
var ErrNoEditor = errors.New("no editor found: set $VISUAL or $EDITOR")

var fallbackEditors = []string{"nvim", "vim", "vi", "nano"}

// Find returns the editor command: $VISUAL, then $EDITOR, then the first of
// nvim, vim, vi and nano found on PATH.
func Find() (string, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			return ed, nil
		}
	}
	for _, ed := range fallbackEditors {
		if path, err := exec.LookPath(ed); err == nil {
			return path, nil
		}
	}
	return "", ErrNoEditor
}

// Open runs editor on filePath in the foreground. The editor string is split
// on whitespace so values like "code --wait" work.
func Open(editor, filePath string) error {
	args := strings.Fields(editor)
	if len(args) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	args = append(args, filePath)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}
	return nil
}

// Edit opens filePath in the editor returned by Find.
func Edit(filePath string) error {
	ed, err := Find()
	if err != nil {
		return err
	}
	return Open(ed, filePath)
}
