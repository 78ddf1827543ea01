package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/catalog"
	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
)

var logger = logging.Get("manifest")

// now stamps manifest times in UTC.
var now = func() time.Time { return time.Now().UTC() }

// Path returns the manifest location inside root.
func Path(root string) string {
	return filepath.Join(root, filepath.FromSlash(catalog.ManifestFile))
}

// Create returns a manifest for a fresh install.
func Create(version string, files Files) *Manifest {
	t := now()
	return &Manifest{
		Version:     version,
		InstalledAt: t,
		UpdatedAt:   t,
		Files:       files,
	}
}

// Update returns a copy of existing stamped with the new version and file
// list. InstalledAt and the permission record carry over.
func Update(existing *Manifest, version string, files Files) *Manifest {
	m := *existing
	m.Version = version
	m.UpdatedAt = now()
	m.Files = files
	if existing.Permissions != nil {
		p := *existing.Permissions
		m.Permissions = &p
	}
	return &m
}

// IsInstalled reports whether root holds a manifest file. The file is not
// parsed.
func IsInstalled(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

// Read loads the manifest under root. A missing or malformed manifest
// yields (nil, nil); only an unreadable file is an error.
func Read(root string) (*Manifest, error) {
	p := Path(root)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("ignoring malformed manifest", "path", p, "err", err)
		return nil, nil
	}
	return &m, nil
}

// Write persists m under root, replacing any previous manifest atomically.
func Write(root string, m *Manifest) error {
	p := Path(root)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	data = append(data, '\n')

	tmpPath := p + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Remove deletes the manifest under root. A missing manifest is not an
// error.
func Remove(root string) error {
	if err := os.Remove(Path(root)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove manifest: %w", err)
	}
	return nil
}

// RuleLang returns the single language rule set recorded in the manifest,
// or "" unless exactly one language was installed.
func (m *Manifest) RuleLang() string {
	if langs := m.Langs(); len(langs) == 1 {
		return langs[0]
	}
	return ""
}

// Langs returns the sorted language rule sets recorded in the manifest.
func (m *Manifest) Langs() []string {
	seen := make(map[string]struct{})
	prefix := catalog.DirRules + "/"
	for _, f := range m.Files.Rules {
		rel, ok := strings.CutPrefix(path.Clean(f), prefix)
		if !ok {
			continue
		}
		if dir, _, found := strings.Cut(rel, "/"); found && dir != "common" {
			seen[dir] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
