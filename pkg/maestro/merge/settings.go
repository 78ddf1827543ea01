// Package merge implements the idempotent read-modify-write operations
// maestro applies to files it shares with the user: Claude Code settings
// (hooks and permission allow-lists), the delimited CLAUDE.md section, and
// the .gitignore block. Every merge tolerates a missing or empty input,
// never duplicates its own entries, and leaves unrelated content intact.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/logging"
)

var logger = logging.Get("merge")

// Settings is a Claude Code settings document. Only hooks and permissions
// are modeled; every other key is carried through untouched and in order.
type Settings struct {
	// Hooks is nil when the document has no "hooks" key.
	Hooks *HookConfig
	// Permissions is nil when the document has no "permissions" key.
	Permissions *PermissionList

	doc *object
	// unusable lists top-level keys present with a shape maestro cannot
	// merge into. They pass through until an Ensure call replaces them.
	unusable []string
}

// NewSettings returns an empty document.
func NewSettings() *Settings {
	return &Settings{doc: newObject()}
}

// ParseSettings decodes a settings document. Only a document that is not
// a single JSON object is an error; hooks and permissions values of an
// unexpected shape are carried through and reported by Unusable.
func ParseSettings(data []byte) (*Settings, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	s := &Settings{doc: doc}

	if raw, ok := doc.get("hooks"); ok && !isNull(raw) {
		var hc HookConfig
		if err := json.Unmarshal(raw, &hc); err != nil {
			s.unusable = append(s.unusable, "hooks")
		} else {
			s.Hooks = &hc
		}
	}
	if raw, ok := doc.get("permissions"); ok && !isNull(raw) {
		var pl PermissionList
		if err := json.Unmarshal(raw, &pl); err != nil {
			s.unusable = append(s.unusable, "permissions")
		} else {
			s.Permissions = &pl
		}
	}
	return s, nil
}

// Unusable returns the paths of values whose shape maestro cannot merge
// into, such as a "hooks" array or a hook event holding a string. A merge
// that touches one of them replaces it.
func (s *Settings) Unusable() []string {
	out := append([]string(nil), s.unusable...)
	if s.Hooks != nil {
		for _, event := range s.Hooks.Opaque() {
			out = append(out, "hooks."+event)
		}
	}
	if p := s.Permissions; p != nil && p.Allow == nil && p.raw != nil {
		if raw, ok := p.raw.get("allow"); ok && !isNull(raw) {
			out = append(out, "permissions.allow")
		}
	}
	return out
}

// MarshalJSON writes the document with the original key order.
func (s *Settings) MarshalJSON() ([]byte, error) {
	o := s.document().clone()
	if s.Hooks != nil {
		if err := o.setValue("hooks", s.Hooks); err != nil {
			return nil, err
		}
	}
	if s.Permissions != nil {
		if err := o.setValue("permissions", s.Permissions); err != nil {
			return nil, err
		}
	}
	return o.MarshalJSON()
}

// Encode renders the document for writing to disk.
func (s *Settings) Encode() ([]byte, error) {
	return EncodeIndent(s)
}

// EnsureHooks returns the hook config, creating it if absent.
func (s *Settings) EnsureHooks() *HookConfig {
	if s.Hooks == nil {
		s.Hooks = &HookConfig{}
	}
	return s.Hooks
}

// EnsurePermissions returns the permission list, creating it if absent.
func (s *Settings) EnsurePermissions() *PermissionList {
	if s.Permissions == nil {
		s.Permissions = &PermissionList{}
	}
	return s.Permissions
}

// Len returns the number of top-level keys the document would be written with.
func (s *Settings) Len() int {
	n := s.document().len()
	if s.Hooks != nil && !s.document().has("hooks") {
		n++
	}
	if s.Permissions != nil && !s.document().has("permissions") {
		n++
	}
	return n
}

func (s *Settings) document() *object {
	if s.doc == nil {
		s.doc = newObject()
	}
	return s.doc
}

// FileState describes what ReadSettings found on disk.
type FileState int

const (
	// FileMissing means there was no file; the document is empty.
	FileMissing FileState = iota
	// FileLoaded means the file parsed.
	FileLoaded
	// FileInvalid means the file exists but could not be read or parsed;
	// the document is empty.
	FileInvalid
)

// ReadSettings loads a settings file. It never fails: a missing, unreadable
// or malformed file yields an empty document and the matching state.
func ReadSettings(path string) (*Settings, FileState) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSettings(), FileMissing
		}
		logger.Warn("unreadable settings file", "path", path, "err", err)
		return NewSettings(), FileInvalid
	}
	s, err := ParseSettings(data)
	if err != nil {
		logger.Warn("malformed settings file treated as empty", "path", path, "err", err)
		return NewSettings(), FileInvalid
	}
	return s, FileLoaded
}

// WriteSettings encodes s and writes it to path, creating parent
// directories as needed.
func WriteSettings(path string, s *Settings) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IsEffectivelyEmpty reports whether the document has no keys, or only keys
// holding null, empty containers, or objects whose members are all empty
// containers. Such files are shells maestro created and may delete.
func IsEffectivelyEmpty(s *Settings) bool {
	data, err := s.MarshalJSON()
	if err != nil {
		return false
	}
	var top map[string]any
	if err := json.Unmarshal(data, &top); err != nil {
		return false
	}
	for _, v := range top {
		if v == nil || isEmptyContainer(v) {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for _, inner := range m {
			if !isEmptyContainer(inner) {
				return false
			}
		}
	}
	return true
}

func isEmptyContainer(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
