// Package style parses and serializes interchange-format style strings.
//
// A style string is a semicolon-delimited sequence of key=value pairs,
// e.g. "rounded=0;whiteSpace=wrap;html=1". Keys without a value act as
// bare flags ("ellipse;whiteSpace=wrap"). The package preserves entry
// order and unknown keys so that a record parsed from a file and never
// mutated serializes back to the exact input bytes.
//
// # Round-trip guarantee
//
// [Parse] keeps the verbatim source text alongside the decoded entries.
// [Style.String] returns that text until the first mutation, after which
// serialization is driven by the entry list. This makes
// String(Parse(s)) == s a strict contract, not a best effort.
//
// # Malformed input
//
// Input that cannot be decoded (dangling escape, empty key) fails with
// [ErrMalformedStyle]. Callers that must not lose data (the codec) keep
// such records via [Opaque], which serializes the raw text verbatim and
// exposes no entries.
package style

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedStyle is returned by [Parse] when the input cannot be
// decoded into entries: a dangling escape at the end of the string, an
// escape sequence in key position, or an empty key before '='.
var ErrMalformedStyle = errors.New("malformed style")

// Entry is a single style property in source order.
// Flag entries carry no value and serialize as the bare key.
// Key and Value hold the wire text, escape sequences intact.
type Entry struct {
	Key   string
	Value string
	Flag  bool
}

// Style is an ordered mapping of style properties.
//
// The zero value is an empty, valid style. Duplicate keys in the source
// collapse to a single entry: the last occurrence wins the value, the
// first occurrence keeps its position. Style values are copied cheaply;
// use [Style.Clone] before mutating a shared instance.
type Style struct {
	entries []Entry
	raw     string // verbatim source, authoritative until first mutation
	dirty   bool   // entries drive serialization once set
	opaque  bool   // raw-only fallback for malformed source
}

// Parse decodes a style string into an ordered Style.
// The empty string parses to an empty style. Returns a wrapped
// [ErrMalformedStyle] when the input cannot be decoded; use [Opaque]
// to retain such input verbatim instead of dropping it.
func Parse(s string) (Style, error) {
	st := Style{raw: s}
	if s == "" {
		return st, nil
	}

	segs, err := splitEscaped(s)
	if err != nil {
		return Style{}, err
	}

	for _, seg := range segs {
		if seg == "" {
			continue
		}
		key, value, hasValue, err := splitEntry(seg)
		if err != nil {
			return Style{}, err
		}
		if i := indexOf(st.entries, key); i >= 0 {
			// Last occurrence wins, first position is kept.
			st.entries[i].Value = value
			st.entries[i].Flag = !hasValue
			continue
		}
		st.entries = append(st.entries, Entry{Key: key, Value: value, Flag: !hasValue})
	}
	return st, nil
}

// Opaque wraps a raw style string that failed to parse. The returned
// style exposes no entries and serializes the input verbatim, so no
// data is lost on re-encode.
func Opaque(s string) Style {
	return Style{raw: s, opaque: true}
}

// String serializes the style. Unmutated parsed styles reproduce their
// source bytes exactly; mutated styles serialize from the entry list in
// stored order.
func (s Style) String() string {
	if s.opaque || !s.dirty {
		return s.raw
	}
	var b strings.Builder
	for i, e := range s.entries {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(e.Key)
		if !e.Flag {
			b.WriteByte('=')
			b.WriteString(e.Value)
		}
	}
	return b.String()
}

// IsOpaque reports whether the style is a raw fallback for input that
// could not be parsed.
func (s Style) IsOpaque() bool { return s.opaque }

// Len returns the number of entries. Opaque styles have no entries.
func (s Style) Len() int { return len(s.entries) }

// Get returns the value stored under key and whether the key exists.
// Bare flags report ("", true); distinguish them with [Style.IsFlag].
func (s Style) Get(key string) (string, bool) {
	if i := indexOf(s.entries, key); i >= 0 {
		return s.entries[i].Value, true
	}
	return "", false
}

// Has reports whether key is present, as a pair or a bare flag.
func (s Style) Has(key string) bool { return indexOf(s.entries, key) >= 0 }

// IsFlag reports whether key is present as a bare flag (no value).
func (s Style) IsFlag(key string) bool {
	i := indexOf(s.entries, key)
	return i >= 0 && s.entries[i].Flag
}

// Entries returns a copy of the entry list in stored order.
func (s Style) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Set stores value under key, appending a new entry when the key is
// absent and keeping the existing position otherwise. Semicolons in
// value are escaped so the entry survives re-parsing. Set panics on an
// opaque style; mutate the raw text instead.
func (s *Style) Set(key, value string) {
	s.mutate(Entry{Key: key, Value: escape(value)})
}

// SetFlag stores key as a bare flag.
func (s *Style) SetFlag(key string) {
	s.mutate(Entry{Key: key, Flag: true})
}

// Delete removes key and reports whether it was present.
func (s *Style) Delete(key string) bool {
	if s.opaque {
		panic("style: mutate on opaque style")
	}
	i := indexOf(s.entries, key)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.dirty = true
	return true
}

// Clone returns an independent copy of the style.
func (s Style) Clone() Style {
	c := s
	c.entries = make([]Entry, len(s.entries))
	copy(c.entries, s.entries)
	return c
}

// Equal reports whether two styles serialize identically.
func (s Style) Equal(o Style) bool { return s.String() == o.String() }

func (s *Style) mutate(e Entry) {
	if s.opaque {
		panic("style: mutate on opaque style")
	}
	if i := indexOf(s.entries, e.Key); i >= 0 {
		s.entries[i].Value = e.Value
		s.entries[i].Flag = e.Flag
	} else {
		s.entries = append(s.entries, e)
	}
	s.dirty = true
}

func indexOf(entries []Entry, key string) int {
	for i := range entries {
		if entries[i].Key == key {
			return i
		}
	}
	return -1
}

// splitEscaped splits on ';' honoring backslash escapes. The escape
// character and the escaped byte stay in the output untouched so that
// segments keep their wire form.
func splitEscaped(s string) ([]string, error) {
	var segs []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return nil, fmt.Errorf("dangling escape: %w", ErrMalformedStyle)
			}
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
		case ';':
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	segs = append(segs, cur.String())
	return segs, nil
}

// splitEntry splits one segment into key and value at the first '='.
// Escape sequences are only legal in value position: a key is a plain
// identifier, so an escape before '=' means the delimiter handling of
// the source is broken.
func splitEntry(seg string) (key, value string, hasValue bool, err error) {
	for i := 0; i < len(seg); i++ {
		switch seg[i] {
		case '\\':
			return "", "", false, wrapMalformed(seg, "escape in key")
		case '=':
			if i == 0 {
				return "", "", false, wrapMalformed(seg, "empty key")
			}
			return seg[:i], seg[i+1:], true, nil
		}
	}
	return seg, "", false, nil
}

func wrapMalformed(seg, reason string) error {
	return fmt.Errorf("%s in segment %q: %w", reason, seg, ErrMalformedStyle)
}

func escape(v string) string {
	if !strings.ContainsAny(v, ";\\") {
		return v
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == ';' || v[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(v[i])
	}
	return b.String()
}
