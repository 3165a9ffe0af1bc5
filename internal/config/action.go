package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Action names what happens to an input file after handling.
type Action string

const (
	ActionDelete Action = "delete"
	ActionLeave  Action = "leave"
	ActionMove   Action = "move"
)

// FileAction is an Action plus the target directory for moves.
type FileAction struct {
	On   Action `yaml:"on"`
	Path string `yaml:"path,omitempty"`
}

// Validate checks the action name and that a move has a target.
func (a FileAction) Validate() error {
	switch a.On {
	case ActionDelete, ActionLeave:
		return nil
	case ActionMove:
		if a.Path == "" {
			return errors.New("move requires a path")
		}
		return nil
	}
	return fmt.Errorf("unknown file action %q", a.On)
}

// Apply performs the action on the file at path. Moves create the target
// directory and fall back to copy and remove across filesystems.
func (a FileAction) Apply(path string) error {
	switch a.On {
	case ActionLeave:
		return nil
	case ActionDelete:
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	case ActionMove:
		return move(path, a.Path)
	}
	return fmt.Errorf("unknown file action %q", a.On)
}

func move(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	dst := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dst); err == nil {
		return nil
	}

	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", path, dir, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s after copy: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
