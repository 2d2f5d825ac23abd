package ndn

import "time"

// NackType enumerates the nack_type values carried on an Interest
// (spec §6). The core carries this field but does not act on it
// beyond passing it through.
type NackType uint32

const (
	NackNone NackType = iota
	NackLoop
	NackCongestion
)

// Interest is the in-memory shape of an Interest header the
// forwarding core operates on. Wire encoding/decoding is an external
// codec concern (spec §1); nothing here round-trips to bytes.
type Interest struct {
	Name     *Name
	Locator  *Name // optional; non-nil and non-empty selects locator-based FIB lookup
	Nonce    uint32
	Lifetime time.Duration

	// Carried but not enforced by the core (spec §9 open question 4).
	Scope               int8
	MinSuffixComponents int32
	MaxSuffixComponents int32
	Exclude             *Name
	ChildSelector       int32
	AnswerOriginKind    int32

	NackType NackType

	// Agent is an undocumented carry-through field. Flooding rewrites
	// Agent 1 to 2 on a freshly built packet before sending (spec §6,
	// §9 open question 1) — preserved verbatim otherwise.
	Agent int8
}

// NewInterest builds an Interest with the defaults the teacher's
// header constructor uses: no selectors, NORMAL nack, agent unset.
func NewInterest(name *Name) *Interest {
	return &Interest{
		Name:                name,
		MinSuffixComponents: -1,
		MaxSuffixComponents: -1,
	}
}

// Copy returns a shallow copy of the Interest header — shallow because
// Name/Locator/Exclude are treated as immutable once constructed,
// mirroring the teacher's copy-on-send pattern in processOutgoingInterest.
func (i *Interest) Copy() *Interest {
	cp := *i
	return &cp
}
