// Package trash moves runtime data to the desktop trash so a purge can be
// undone, deleting it outright when no trash is available.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout bounds each trash helper invocation.
const commandTimeout = 30 * time.Second

// Method says how a path was disposed of.
type Method string

const (
	// Trashed means the path went to the desktop trash.
	Trashed Method = "trash"
	// Deleted means the path was removed permanently.
	Deleted Method = "delete"
)

// Func disposes of a path. Move and Delete satisfy it.
type Func func(ctx context.Context, path string) (Method, error)

// Move sends path to the system trash: Finder on macOS, gio or trash-put
// on Linux. Anything else, or a failing helper, falls back to Delete.
func Move(ctx context.Context, path string) (Method, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot trash %q: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	for _, args := range helpers(abs) {
		bin, err := exec.LookPath(args[0])
		if err != nil {
			continue
		}
		if exec.CommandContext(ctx, bin, args[1:]...).Run() == nil {
			if _, err := os.Lstat(abs); os.IsNotExist(err) {
				return Trashed, nil
			}
		}
	}
	return Delete(ctx, abs)
}

// helpers lists trash commands to try, in order, for the current OS.
func helpers(abs string) [][]string {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"osascript", "-e", fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, abs)}}
	case "linux":
		return [][]string{{"gio", "trash", abs}, {"trash-put", abs}}
	default:
		return nil
	}
}

// Delete removes path and everything under it.
func Delete(_ context.Context, path string) (Method, error) {
	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return Deleted, nil
}
