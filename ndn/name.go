package ndn

import (
	"bytes"
	"strings"
)

// Name is an ordered sequence of opaque byte-string components.
// Component typing and wire encoding are a codec concern, out of
// scope for this package (spec §1) — a Name here is nothing more than
// []byte slices plus the comparison operations the forwarding core
// needs (componentwise lexicographic equality/ordering and the prefix
// relation).
type Name struct {
	components [][]byte
}

// NewName builds a Name from already-split components. The caller
// retains ownership of the slices; Name does not copy them.
func NewName(components ...[]byte) *Name {
	return &Name{components: components}
}

// NameFromString splits a "/"-delimited URI-style string into a Name.
// A leading slash is optional; empty components (from "//" or a
// trailing slash) are dropped.
func NameFromString(uri string) *Name {
	parts := strings.Split(uri, "/")
	n := &Name{components: make([][]byte, 0, len(parts))}
	for _, p := range parts {
		if p == "" {
			continue
		}
		n.components = append(n.components, []byte(p))
	}
	return n
}

// String renders the Name back to "/"-delimited form.
func (n *Name) String() string {
	if n == nil || len(n.components) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range n.components {
		b.WriteByte('/')
		b.Write(c)
	}
	return b.String()
}

// Size returns the number of components.
func (n *Name) Size() int {
	if n == nil {
		return 0
	}
	return len(n.components)
}

// At returns the i-th component, supporting negative indices counted
// from the end (as the teacher's Name.At does).
func (n *Name) At(i int) []byte {
	if i < 0 {
		i += len(n.components)
	}
	if i < 0 || i >= len(n.components) {
		return nil
	}
	return n.components[i]
}

// Append returns a new Name with component appended.
func (n *Name) Append(component []byte) *Name {
	out := make([][]byte, len(n.components)+1)
	copy(out, n.components)
	out[len(n.components)] = component
	return &Name{components: out}
}

// Prefix returns the first i components as a new Name.
func (n *Name) Prefix(i int) *Name {
	if i > len(n.components) {
		i = len(n.components)
	}
	out := make([][]byte, i)
	copy(out, n.components[:i])
	return &Name{components: out}
}

// DeepCopy returns a Name that shares no backing storage with n.
func (n *Name) DeepCopy() *Name {
	out := make([][]byte, len(n.components))
	for i, c := range n.components {
		cc := make([]byte, len(c))
		copy(cc, c)
		out[i] = cc
	}
	return &Name{components: out}
}

// Compare implements componentwise lexicographic ordering: negative
// if n < other, zero if equal, positive if n > other.
func (n *Name) Compare(other *Name) int {
	a, b := n.components, other.components
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := bytes.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// Equals reports whether n and other have identical components.
func (n *Name) Equals(other *Name) bool {
	return n.Compare(other) == 0
}

// PrefixOf reports whether n is a prefix of other: |n| <= |other| and
// their first |n| components agree.
func (n *Name) PrefixOf(other *Name) bool {
	if n.Size() > other.Size() {
		return false
	}
	for i, c := range n.components {
		if !bytes.Equal(c, other.components[i]) {
			return false
		}
	}
	return true
}
