package ndn

import "time"

// ContentObject is the in-memory shape of a Content Object header
// plus payload the forwarding core operates on (spec §6). As with
// Interest, wire encoding is out of scope.
type ContentObject struct {
	Name    *Name
	Locator *Name // optional
	Position int8

	Timestamp time.Time // signed_info.timestamp
	Signature []byte    // signature.signature_bits, carried opaquely

	Payload []byte
}

// NewContentObject builds a ContentObject with the given name and
// payload; all other fields are zero until set by the producer.
func NewContentObject(name *Name, payload []byte) *ContentObject {
	return &ContentObject{Name: name, Payload: payload}
}

// Copy returns a shallow copy of the header; Payload/Signature slices
// are shared, matching the Content Store's read-only cache semantics.
func (d *ContentObject) Copy() *ContentObject {
	cp := *d
	return &cp
}
