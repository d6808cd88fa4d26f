package domain

import "net/textproto"

// headerEntry holds the values for a single canonicalized header key.
type headerEntry struct {
	key    string
	values []string
}

// Headers is an ordered, case-insensitive header multimap.
//
// Keys are canonicalized on every operation, iteration yields keys in the
// order they were first written, Set replaces any existing values for a key
// in place, and Add appends an additional value.
type Headers struct {
	entries []headerEntry
}

// CanonicalKey normalizes a header key (e.g. "x-api-key" -> "X-Api-Key").
func CanonicalKey(key string) string {
	return textproto.CanonicalMIMEHeaderKey(key)
}

func (h *Headers) find(key string) *headerEntry {
	for i := range h.entries {
		if h.entries[i].key == key {
			return &h.entries[i]
		}
	}
	return nil
}

// Set replaces all values for key with value. The key keeps its original
// position if it already exists, otherwise it is appended at the end.
func (h *Headers) Set(key, value string) {
	key = CanonicalKey(key)
	if e := h.find(key); e != nil {
		e.values = []string{value}
		return
	}
	h.entries = append(h.entries, headerEntry{key: key, values: []string{value}})
}

// Add appends value to the values already stored for key.
func (h *Headers) Add(key, value string) {
	key = CanonicalKey(key)
	if e := h.find(key); e != nil {
		e.values = append(e.values, value)
		return
	}
	h.entries = append(h.entries, headerEntry{key: key, values: []string{value}})
}

// Get returns the first value stored for key, or "" if the key is absent.
func (h *Headers) Get(key string) string {
	if e := h.find(CanonicalKey(key)); e != nil && len(e.values) > 0 {
		return e.values[0]
	}
	return ""
}

// Values returns a copy of all values stored for key.
func (h *Headers) Values(key string) []string {
	e := h.find(CanonicalKey(key))
	if e == nil {
		return nil
	}
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// Has reports whether key is present.
func (h *Headers) Has(key string) bool {
	return h.find(CanonicalKey(key)) != nil
}

// Del removes key and all its values. It reports whether the key existed.
func (h *Headers) Del(key string) bool {
	key = CanonicalKey(key)
	for i := range h.entries {
		if h.entries[i].key == key {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of distinct keys.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Each invokes fn for every key in first-write order with that key's values.
// The values slice must not be retained or mutated by fn.
func (h *Headers) Each(fn func(key string, values []string)) {
	for i := range h.entries {
		fn(h.entries[i].key, h.entries[i].values)
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() Headers {
	out := Headers{entries: make([]headerEntry, len(h.entries))}
	for i := range h.entries {
		values := make([]string, len(h.entries[i].values))
		copy(values, h.entries[i].values)
		out.entries[i] = headerEntry{key: h.entries[i].key, values: values}
	}
	return out
}
