package record

import "strings"

// Field is a single header entry.
type Field struct {
	Key   string
	Value string
}

// Header is an ordered set of key/value pairs. Lookups are case-insensitive;
// the original key spelling and order are preserved on render.
type Header struct {
	fields []Field
}

// NewHeader builds a header from alternating key/value strings.
func NewHeader(kv ...string) Header {
	var h Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func (h Header) index(key string) int {
	for i, f := range h.fields {
		if strings.EqualFold(f.Key, key) {
			return i
		}
	}
	return -1
}

// Lookup returns the value for key and whether it was present.
func (h Header) Lookup(key string) (string, bool) {
	if i := h.index(key); i >= 0 {
		return h.fields[i].Value, true
	}
	return "", false
}

// Get returns the trimmed value for key, or "".
func (h Header) Get(key string) string {
	v, _ := h.Lookup(key)
	return strings.TrimSpace(v)
}

// Set replaces the value of an existing key in place, or appends a new key.
func (h *Header) Set(key, value string) {
	if i := h.index(key); i >= 0 {
		h.fields[i].Value = value
		return
	}
	h.fields = append(h.fields, Field{Key: key, Value: value})
}

// SetDefault sets key only when it is absent.
func (h *Header) SetDefault(key, value string) {
	if h.index(key) < 0 {
		h.fields = append(h.fields, Field{Key: key, Value: value})
	}
}

// Delete removes key if present.
func (h *Header) Delete(key string) {
	if i := h.index(key); i >= 0 {
		h.fields = append(h.fields[:i], h.fields[i+1:]...)
	}
}

// Fields returns a copy of the ordered fields.
func (h Header) Fields() []Field {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Values returns all values in order.
func (h Header) Values() []string {
	out := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		out = append(out, f.Value)
	}
	return out
}

// Len returns the number of fields.
func (h Header) Len() int {
	return len(h.fields)
}

// Clone returns an independent copy.
func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}
