package table

import (
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash"

	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
)

// FaceStatus is the colour tag on a FIB face (spec Glossary): GREEN
// preferred, YELLOW unknown, RED avoid. The numeric ordering is
// meaningful — ascending order is the order the metric view sorts in,
// so RED (highest value) always sorts last.
type FaceStatus int

const (
	StatusGreen FaceStatus = iota
	StatusYellow
	StatusRed
)

func (s FaceStatus) String() string {
	switch s {
	case StatusGreen:
		return "GREEN"
	case StatusYellow:
		return "YELLOW"
	case StatusRed:
		return "RED"
	default:
		return "UNKNOWN"
	}
}

// FaceMetric is one face's routing entry within a FibEntry (spec §3).
type FaceMetric struct {
	Face   dispatch.Face
	Cost   int32
	Status FaceStatus
}

// FibEntry is one registered prefix's routing state: a multi-indexed
// face-metric set, indexed by face identity (the map below) and, on
// read, by the metric-sorted ordering Faces() produces (spec §9's
// "hash map plus a sorted side index" design note).
type FibEntry struct {
	Prefix *ndn.Name
	faces  map[uint64]*FaceMetric
}

// Faces returns the metric-sorted view spec §4.2's ordering contract
// requires: non-RED first, ascending (status, cost), ties broken by
// face ID, with the invariant that every RED metric follows every
// non-RED one.
func (e *FibEntry) Faces() []*FaceMetric {
	out := make([]*FaceMetric, 0, len(e.faces))
	for _, m := range e.faces {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].Face.ID() < out[j].Face.ID()
	})
	return out
}

// Face returns the metric for faceID, or nil if that face is not a
// nexthop of this entry.
func (e *FibEntry) Face(faceID uint64) *FaceMetric {
	return e.faces[faceID]
}

// Fib is the Forwarding Information Base (spec §4.2): a name trie
// whose payload is a FibEntry, plus an RTT estimator keyed by
// (prefix, face).
type Fib struct {
	trie   *Trie[*FibEntry]
	rtt    *rttEstimator
	byHash map[uint64]*FibEntry
}

// NewFib constructs an empty FIB.
func NewFib() *Fib {
	return &Fib{trie: NewTrie[*FibEntry](), rtt: newRTTEstimator(), byHash: map[uint64]*FibEntry{}}
}

// prefixHash folds a Name's components into the single xxhash sum the
// teacher's FibStrategyTree keys its fibPrefixes side-index by
// (table/fib-strategy-tree.go's InsertNextHopEnc/RemoveNextHopEnc),
// giving HasRoute an O(1) existence check alongside the trie's O(|name|)
// longest-prefix-match path. Components are folded order-sensitively
// (each running hash mixed into the next via multiply-xor) so that
// e.g. /a/b and /b/a never collide to the same key.
func prefixHash(name *ndn.Name) uint64 {
	const prime = 1099511628211 // FNV-1a prime, reused here as a mixing constant
	var hash uint64
	for i := 0; i < name.Size(); i++ {
		hash = hash*prime ^ xxhash.Sum64(name.At(i))
	}
	return hash
}

// HasRoute reports whether prefix has a FIB entry registered exactly
// (not a longest-prefix match), via the xxhash side-index rather than
// a trie walk.
func (f *Fib) HasRoute(prefix *ndn.Name) bool {
	_, ok := f.byHash[prefixHash(prefix)]
	return ok
}

// Add registers face as a nexthop of prefix with the given routing
// cost. If prefix has no entry yet, one is created with the new face
// at YELLOW status; if face is already a nexthop, its cost is updated
// (spec §4.2).
func (f *Fib) Add(prefix *ndn.Name, face dispatch.Face, cost int32) *FibEntry {
	node, inserted := f.trie.Insert(prefix, (*FibEntry)(nil))
	var entry *FibEntry
	if inserted {
		entry = &FibEntry{Prefix: prefix, faces: map[uint64]*FaceMetric{}}
		node.SetPayload(entry)
		f.byHash[prefixHash(prefix)] = entry
	} else {
		entry, _ = node.Payload()
	}

	if m, ok := entry.faces[face.ID()]; ok {
		m.Cost = cost
	} else {
		entry.faces[face.ID()] = &FaceMetric{Face: face, Cost: cost, Status: StatusYellow}
	}
	return entry
}

// LongestPrefixMatch returns the FIB entry for the deepest registered
// prefix of name, or nil if none is registered. Used both for
// name-based lookup and, when called against an Interest's Locator
// instead of its Name, for the locator-based lookup spec §9 open
// question 2 asks the FIB module to specify: it is this same
// operation run against a different Name.
func (f *Fib) LongestPrefixMatch(name *ndn.Name) *FibEntry {
	node := f.trie.LongestPrefixMatch(name)
	if node == nil {
		return nil
	}
	entry, ok := node.Payload()
	if !ok {
		return nil
	}
	return entry
}

// UpdateStatus sets faceID's status within entry. The metric view
// (Faces) re-derives its order on every read, so no separate reindex
// step is needed to preserve the RED-last invariant.
func (f *Fib) UpdateStatus(entry *FibEntry, faceID uint64, status FaceStatus) {
	if m, ok := entry.faces[faceID]; ok {
		m.Status = status
	}
}

// UpdateFaceRtt folds a new RTT sample for (entry.Prefix, faceID) into
// its EWMA and returns the updated estimate.
func (f *Fib) UpdateFaceRtt(entry *FibEntry, faceID uint64, sample time.Duration) time.Duration {
	seconds := f.rtt.AddSample(entry.Prefix.String(), faceID, sample.Seconds())
	return time.Duration(seconds * float64(time.Second))
}

// RttEstimate returns the current RTT estimate for (entry.Prefix,
// faceID), or the maximum representable Duration if no sample has
// ever been recorded (spec's rtt=∞ default).
func (f *Fib) RttEstimate(entry *FibEntry, faceID uint64) time.Duration {
	seconds := f.rtt.Estimate(entry.Prefix.String(), faceID)
	if math.IsInf(seconds, 1) {
		return math.MaxInt64
	}
	return time.Duration(seconds * float64(time.Second))
}

// RemoveNexthop removes face from prefix's entry, pruning the trie
// node if no faces remain.
func (f *Fib) RemoveNexthop(prefix *ndn.Name, faceID uint64) {
	node, reached := f.trie.Find(prefix)
	if !reached {
		return
	}
	entry, ok := node.Payload()
	if !ok {
		return
	}
	delete(entry.faces, faceID)
	f.rtt.forget(prefix.String(), faceID)
	if len(entry.faces) == 0 {
		f.trie.Erase(node)
		delete(f.byHash, prefixHash(prefix))
	}
}

// AllEntries returns every registered FIB entry, for status reporting
// (mgmt.FibStatus).
func (f *Fib) AllEntries() []*FibEntry {
	var out []*FibEntry
	f.trie.Walk(func(entry *FibEntry) {
		out = append(out, entry)
	})
	return out
}

// RemoveFace sweeps every FIB entry for faceID (spec §5's RemoveFace
// shared-resource policy).
func (f *Fib) RemoveFace(faceID uint64) {
	var prefixes []*ndn.Name
	f.trie.Walk(func(entry *FibEntry) {
		if _, ok := entry.faces[faceID]; ok {
			prefixes = append(prefixes, entry.Prefix)
		}
	})
	for _, p := range prefixes {
		f.RemoveNexthop(p, faceID)
	}
}
