package merge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Hook is one command record inside a hook group.
type Hook struct {
	Type    string
	Command string
	// Timeout is nil when absent or not a whole number of seconds; a
	// fractional value stays in the record as written.
	Timeout *int
	// Tag marks records maestro injected ("maestro:<name>").
	Tag string

	raw *object
	// opaque holds a record that is not a JSON object, written back as is.
	opaque json.RawMessage
}

// UnmarshalJSON decodes a hook record, keeping unknown fields. Fields of an
// unexpected type are left in the record and read as zero values.
func (h *Hook) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		*h = Hook{opaque: append(json.RawMessage(nil), data...)}
		return nil
	}
	*h = Hook{raw: o}
	h.Type = lenientString(o, "type")
	h.Command = lenientString(o, "command")
	h.Tag = lenientString(o, "tag")
	if raw, ok := o.get("timeout"); ok && !isNull(raw) {
		var t int
		if json.Unmarshal(raw, &t) == nil {
			h.Timeout = &t
		}
	}
	return nil
}

// MarshalJSON encodes the record in its original key order.
func (h Hook) MarshalJSON() ([]byte, error) {
	if h.opaque != nil {
		return h.opaque, nil
	}
	o := newObject()
	if h.raw != nil {
		o = h.raw.clone()
	}
	if err := setString(o, "type", h.Type); err != nil {
		return nil, err
	}
	if err := setString(o, "command", h.Command); err != nil {
		return nil, err
	}
	if h.Timeout != nil {
		if err := o.setValue("timeout", *h.Timeout); err != nil {
			return nil, err
		}
	}
	if err := setString(o, "tag", h.Tag); err != nil {
		return nil, err
	}
	return o.MarshalJSON()
}

// HookGroup is an entry in an event's list: an optional tool matcher and
// the commands it triggers.
type HookGroup struct {
	Matcher string
	// Hooks is nil when the group has no usable "hooks" array.
	Hooks []Hook

	raw    *object
	opaque json.RawMessage
}

// UnmarshalJSON decodes a group, keeping unknown fields and passing
// through anything that is not shaped like a group.
func (g *HookGroup) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		*g = HookGroup{opaque: append(json.RawMessage(nil), data...)}
		return nil
	}
	*g = HookGroup{raw: o}
	g.Matcher = lenientString(o, "matcher")
	raw, ok := o.get("hooks")
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	g.Hooks = make([]Hook, len(items))
	for i, item := range items {
		if err := g.Hooks[i].UnmarshalJSON(item); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the group in its original key order.
func (g HookGroup) MarshalJSON() ([]byte, error) {
	if g.opaque != nil {
		return g.opaque, nil
	}
	o := newObject()
	if g.raw != nil {
		o = g.raw.clone()
	}
	if err := setString(o, "matcher", g.Matcher); err != nil {
		return nil, err
	}
	if g.Hooks != nil {
		if err := o.setValue("hooks", g.Hooks); err != nil {
			return nil, err
		}
	}
	return o.MarshalJSON()
}

// HookConfig maps event names to their ordered groups, preserving the
// order events appear in the file.
type HookConfig struct {
	events []string
	groups map[string][]HookGroup
	// opaque holds events whose value is not a list, written back as is
	// until maestro replaces them.
	opaque map[string]json.RawMessage
}

// UnmarshalJSON decodes the "hooks" object.
func (c *HookConfig) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*c = HookConfig{groups: make(map[string][]HookGroup, o.len())}
	for _, event := range o.keys {
		var gs []HookGroup
		if raw := o.vals[event]; !isNull(raw) {
			if err := json.Unmarshal(raw, &gs); err != nil {
				if c.opaque == nil {
					c.opaque = make(map[string]json.RawMessage)
				}
				c.opaque[event] = raw
				gs = nil
			}
		}
		c.events = append(c.events, event)
		c.groups[event] = gs
	}
	return nil
}

// MarshalJSON encodes events in order.
func (c HookConfig) MarshalJSON() ([]byte, error) {
	o := newObject()
	for _, event := range c.events {
		if raw, ok := c.opaque[event]; ok {
			o.set(event, raw)
			continue
		}
		gs := c.groups[event]
		if gs == nil {
			gs = []HookGroup{}
		}
		if err := o.setValue(event, gs); err != nil {
			return nil, err
		}
	}
	return o.MarshalJSON()
}

// Events returns the event names in file order.
func (c *HookConfig) Events() []string {
	return append([]string(nil), c.events...)
}

// Groups returns the groups registered for event.
func (c *HookConfig) Groups(event string) []HookGroup {
	return c.groups[event]
}

// Opaque returns the events whose value is not a list of groups.
func (c *HookConfig) Opaque() []string {
	var out []string
	for _, event := range c.events {
		if _, ok := c.opaque[event]; ok {
			out = append(out, event)
		}
	}
	return out
}

// Set replaces the groups for event, appending the event if new.
func (c *HookConfig) Set(event string, gs []HookGroup) {
	if c.groups == nil {
		c.groups = make(map[string][]HookGroup)
	}
	delete(c.opaque, event)
	if _, ok := c.groups[event]; !ok {
		c.events = append(c.events, event)
	}
	c.groups[event] = gs
}

// Delete removes an event key.
func (c *HookConfig) Delete(event string) {
	if _, ok := c.groups[event]; !ok {
		return
	}
	delete(c.groups, event)
	delete(c.opaque, event)
	for i, e := range c.events {
		if e == event {
			c.events = append(c.events[:i], c.events[i+1:]...)
			break
		}
	}
}

// EventHooks pairs an event name with the groups maestro registers for it.
type EventHooks struct {
	Event  string
	Groups []HookGroup
}

// Owner decides whether a hook record belongs to maestro.
type Owner func(Hook) bool

// TaggedOwner claims records whose tag starts with prefix.
func TaggedOwner(prefix string) Owner {
	return func(h Hook) bool {
		return h.Tag != "" && strings.HasPrefix(h.Tag, prefix)
	}
}

// LegacyOwner claims records whose command contains any of markers. It is
// meant for cleaning installs written before records were tagged; a user
// command that happens to mention the same paths is claimed too.
func LegacyOwner(markers []string) Owner {
	return func(h Hook) bool {
		for _, m := range markers {
			if strings.Contains(h.Command, m) {
				return true
			}
		}
		return false
	}
}

// AnyOwner claims a record if any of owners does.
func AnyOwner(owners ...Owner) Owner {
	return func(h Hook) bool {
		for _, o := range owners {
			if o != nil && o(h) {
				return true
			}
		}
		return false
	}
}

// stripOwned removes owned records from each group. A group disappears only
// if it held at least one owned record and nothing else; groups that were
// already empty are the user's and stay.
func stripOwned(gs []HookGroup, owned Owner) ([]HookGroup, int) {
	removed := 0
	out := make([]HookGroup, 0, len(gs))
	for _, g := range gs {
		if len(g.Hooks) == 0 {
			out = append(out, g)
			continue
		}
		kept := make([]Hook, 0, len(g.Hooks))
		for _, h := range g.Hooks {
			if owned(h) {
				removed++
				continue
			}
			kept = append(kept, h)
		}
		if len(kept) == 0 {
			continue
		}
		g.Hooks = kept
		out = append(out, g)
	}
	return out, removed
}

// MergeHooks replaces maestro's records for every event in set: owned
// records are stripped from that event's groups, then set's groups are
// appended. Events not named in set are left alone. It returns one action
// line per event.
func MergeHooks(c *HookConfig, set []EventHooks, owned Owner) []string {
	var actions []string
	for _, eh := range set {
		if _, ok := c.opaque[eh.Event]; ok {
			logger.Warn("replacing hook event that is not a list", "event", eh.Event)
		}
		kept, _ := stripOwned(c.Groups(eh.Event), owned)
		c.Set(eh.Event, append(kept, cloneGroups(eh.Groups)...))
		actions = append(actions, fmt.Sprintf("merged %d %s hook group(s)", len(eh.Groups), eh.Event))
	}
	return actions
}

// RemoveHooks strips owned records from every event and deletes events
// left with no groups. It returns the number of records removed.
func RemoveHooks(c *HookConfig, owned Owner) int {
	total := 0
	for _, event := range c.Events() {
		if _, ok := c.opaque[event]; ok {
			continue
		}
		kept, removed := stripOwned(c.Groups(event), owned)
		total += removed
		if len(kept) == 0 {
			c.Delete(event)
			continue
		}
		c.Set(event, kept)
	}
	return total
}

// CountOwned returns how many records owned claims across all events.
func CountOwned(c *HookConfig, owned Owner) int {
	n := 0
	for _, event := range c.events {
		for _, g := range c.groups[event] {
			for _, h := range g.Hooks {
				if owned(h) {
					n++
				}
			}
		}
	}
	return n
}

func cloneGroups(gs []HookGroup) []HookGroup {
	out := make([]HookGroup, len(gs))
	for i, g := range gs {
		g.Hooks = append([]Hook(nil), g.Hooks...)
		out[i] = g
	}
	return out
}

// lenientString returns the string stored under key, or "" when the key is
// absent or holds another type.
func lenientString(o *object, key string) string {
	raw, ok := o.get(key)
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// setString stores s under key. An empty s leaves the key alone when it was
// absent or held a value that is not a string.
func setString(o *object, key, s string) error {
	if s == "" {
		raw, ok := o.get(key)
		if !ok {
			return nil
		}
		var cur string
		if json.Unmarshal(raw, &cur) != nil {
			return nil
		}
	}
	return o.setValue(key, s)
}
