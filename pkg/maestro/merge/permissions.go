package merge

import "encoding/json"

// PermissionList is the "permissions" object of a settings file. Allow is
// modeled; deny, ask, defaultMode and anything else pass through.
type PermissionList struct {
	// Allow holds the string entries of the allow list. It is nil when the
	// list is absent or is not an array.
	Allow []string

	raw *object
	// foreign holds allow entries that are not strings; they are written
	// back after the string entries.
	foreign []json.RawMessage
}

// UnmarshalJSON decodes the permissions object, keeping unknown fields.
// An allow value that is not an array is left in place untouched.
func (p *PermissionList) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*p = PermissionList{raw: o}
	raw, ok := o.get("allow")
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	p.Allow = make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) != nil {
			p.foreign = append(p.foreign, item)
			continue
		}
		p.Allow = append(p.Allow, s)
	}
	return nil
}

// MarshalJSON encodes the object in its original key order.
func (p PermissionList) MarshalJSON() ([]byte, error) {
	o := newObject()
	if p.raw != nil {
		o = p.raw.clone()
	}
	if p.Allow != nil {
		items := make([]json.RawMessage, 0, len(p.Allow)+len(p.foreign))
		for _, a := range p.Allow {
			raw, err := encode(a)
			if err != nil {
				return nil, err
			}
			items = append(items, raw)
		}
		items = append(items, p.foreign...)
		if err := o.setValue("allow", items); err != nil {
			return nil, err
		}
	}
	return o.MarshalJSON()
}

// MergePermissions makes sure permissions.allow exists and appends every
// pattern not already present (exact, case-sensitive match). It returns
// the patterns it added; none added means the file need not be rewritten.
func MergePermissions(s *Settings, patterns []string) []string {
	pl := s.EnsurePermissions()
	if pl.Allow == nil {
		pl.Allow = []string{}
	}
	present := make(map[string]struct{}, len(pl.Allow))
	for _, p := range pl.Allow {
		present[p] = struct{}{}
	}
	var added []string
	for _, p := range patterns {
		if _, ok := present[p]; ok {
			continue
		}
		present[p] = struct{}{}
		pl.Allow = append(pl.Allow, p)
		added = append(added, p)
	}
	return added
}

// RemovePermissions drops every allow entry that exactly matches one of
// strip and returns how many were dropped. Documents without an allow list
// are left as they are.
func RemovePermissions(s *Settings, strip []string) int {
	if s.Permissions == nil || s.Permissions.Allow == nil {
		return 0
	}
	drop := make(map[string]struct{}, len(strip))
	for _, p := range strip {
		drop[p] = struct{}{}
	}
	kept := make([]string, 0, len(s.Permissions.Allow))
	for _, p := range s.Permissions.Allow {
		if _, ok := drop[p]; ok {
			continue
		}
		kept = append(kept, p)
	}
	removed := len(s.Permissions.Allow) - len(kept)
	s.Permissions.Allow = kept
	return removed
}

// AllowList returns the allow entries, or nil.
func AllowList(s *Settings) []string {
	if s.Permissions == nil {
		return nil
	}
	return append([]string(nil), s.Permissions.Allow...)
}

var _ json.Marshaler = PermissionList{}
