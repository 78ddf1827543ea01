package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/merge"
)

// fsops is the only place the installer mutates the filesystem. With dry
// set every mutation is logged and skipped; reads always go through.
type fsops struct {
	root string
	dry  bool
}

// path resolves a slash-separated project-relative path.
func (f *fsops) path(rel string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

func (f *fsops) exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func (f *fsops) mkdirAll(p string) error {
	if f.dry {
		logger.Debug("would create directory", "path", p)
		return nil
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", p, err)
	}
	return nil
}

func (f *fsops) writeFile(p string, data []byte, perm fs.FileMode) error {
	if f.dry {
		logger.Debug("would write file", "path", p, "bytes", len(data))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", p, err)
	}
	if err := os.WriteFile(p, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// chmod applies perm explicitly since WriteFile keeps the mode of an
// existing file.
func (f *fsops) chmod(p string, perm fs.FileMode) error {
	if f.dry {
		logger.Debug("would chmod", "path", p, "mode", perm)
		return nil
	}
	if err := os.Chmod(p, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", p, err)
	}
	return nil
}

func (f *fsops) writeSettings(p string, s *merge.Settings) error {
	if f.dry {
		logger.Debug("would write settings", "path", p)
		return nil
	}
	return merge.WriteSettings(p, s)
}

// remove deletes a file or an empty directory. A missing path is fine.
func (f *fsops) remove(p string) error {
	if f.dry {
		logger.Debug("would remove", "path", p)
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// removeIfEmpty deletes directory p when it has no entries and reports
// whether it did (or, dry, would).
func (f *fsops) removeIfEmpty(p string) bool {
	entries, err := os.ReadDir(p)
	if err != nil || len(entries) > 0 {
		return false
	}
	return f.remove(p) == nil
}

// backup copies a malformed file aside before it is overwritten.
func (f *fsops) backup(p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read %s for backup: %w", p, err)
	}
	bak := p + ".bak"
	if err := f.writeFile(bak, data, 0o644); err != nil {
		return "", err
	}
	return bak, nil
}
