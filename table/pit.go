package table

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/ndn-forwarder/kernel/dispatch"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/utils/comparison"
)

// OutgoingRecord tracks one face an Interest has been forwarded to
// (spec §3's PIT Entry.outgoing).
type OutgoingRecord struct {
	Face      dispatch.Face
	SendTime  time.Time
	RetxCount uint32
}

// PitEntry is the in-flight state for one outstanding Interest name
// (spec §3). FibEntry is a non-owning relation, cleared independently
// when the FIB entry is removed; the FIB never points back.
type PitEntry struct {
	Name           *ndn.Name
	FibEntry       *FibEntry
	Incoming       map[uint64]dispatch.Face
	Outgoing       map[uint64]*OutgoingRecord
	NoncesSeen     map[uint32]struct{}
	ExpireAt       time.Time
	MaxRetxAllowed uint32

	node *TrieNode[*PitEntry]
}

func newPitEntry(name *ndn.Name, fibEntry *FibEntry, expireAt time.Time) *PitEntry {
	return &PitEntry{
		Name:           name,
		FibEntry:       fibEntry,
		Incoming:       map[uint64]dispatch.Face{},
		Outgoing:       map[uint64]*OutgoingRecord{},
		NoncesSeen:     map[uint32]struct{}{},
		ExpireAt:       expireAt,
		MaxRetxAllowed: 1,
	}
}

// defaultInterestLifetime is used when an Interest carries no
// lifetime of its own.
const defaultInterestLifetime = 4 * time.Second

// Pit is the Pending Interest Table (spec §4.3): entries live inside a
// Name Trie, bounded by a pluggable ReplacementPolicy, and expire
// through a single rescheduling timer over a time-ordered priority
// queue. The teacher's earlier generation (table/pit-cs.go) spawns one
// sleeping goroutine per entry (waitForPitExpiry); this kernel follows
// the later fw/table/pit-cs-tree.go generation's single-timer design
// instead, since spec §4.3/§5 require exactly one outstanding handle.
type Pit struct {
	trie   *Trie[*PitEntry]
	byName map[string]*TrieNode[*PitEntry]
	policy ReplacementPolicy[string]
	pq     *PriorityQueue[string, int64]
	timer  *time.Timer
	fireCh chan struct{}
}

// NewPit constructs a PIT using the named replacement policy
// ("persistent", "lru", "random"; spec §6's pit.policy option).
func NewPit(policyName string) *Pit {
	p := &Pit{
		trie:   NewTrie[*PitEntry](),
		byName: map[string]*TrieNode[*PitEntry]{},
		pq:     NewPriorityQueue[string, int64](),
		fireCh: make(chan struct{}, 1),
	}
	p.policy = NewPitPolicy(policyName, p.evict)
	return p
}

// SetMaxSize sets the bound enforced by the replacement policy (0 = unbounded).
func (p *Pit) SetMaxSize(n int) { p.policy.SetMaxSize(n) }

// Size returns the current number of live entries.
func (p *Pit) Size() int { return p.policy.Size() }

// Expired is the channel a node's single dispatch loop selects on
// alongside packet arrivals; a receive means the cleaner fired and
// RemoveExpired should run (spec §4.3, §5 — dispatch stays serial,
// the timer goroutine only signals, it never touches table state).
func (p *Pit) Expired() <-chan struct{} { return p.fireCh }

func (p *Pit) evict(key string) {
	node, ok := p.byName[key]
	if !ok {
		return
	}
	delete(p.byName, key)
	p.trie.Erase(node)
}

// Lookup implements spec §4.3's Interest lookup: exact match only,
// returning the entry at the deepest reached node iff the interest's
// full name was reached (selectors beyond name are ignored).
func (p *Pit) Lookup(name *ndn.Name) *PitEntry {
	node, reachedAll := p.trie.Find(name)
	if !reachedAll {
		return nil
	}
	entry, ok := node.Payload()
	if !ok {
		return nil
	}
	return entry
}

// LookupByData implements spec §4.3's Content Object lookup:
// longest-prefix match against the content's name.
func (p *Pit) LookupByData(name *ndn.Name) *PitEntry {
	node := p.trie.LongestPrefixMatch(name)
	if node == nil {
		return nil
	}
	entry, _ := node.Payload()
	return entry
}

// Create resolves the FIB entry via name-based longest-prefix match,
// or via locator-based lookup when the Interest carries a non-empty
// Locator (spec §9 open questions 2-3: both paths share this one code
// path, parameterized by which Name is looked up). Returns nil if the
// FIB lookup misses, or if the replacement policy rejects the insert
// (at capacity).
func (p *Pit) Create(fib *Fib, interest *ndn.Interest, now time.Time) *PitEntry {
	lookupName := interest.Name
	if interest.Locator != nil && interest.Locator.Size() > 0 {
		lookupName = interest.Locator
	}
	fibEntry := fib.LongestPrefixMatch(lookupName)
	if fibEntry == nil {
		return nil
	}

	key := interest.Name.String()
	if !p.policy.OnInsert(key) {
		return nil
	}

	lifetime := interest.Lifetime
	if lifetime <= 0 {
		lifetime = defaultInterestLifetime
	}
	entry := newPitEntry(interest.Name, fibEntry, now.Add(lifetime))
	node, _ := p.trie.Insert(interest.Name, entry)
	node.SetPayload(entry)
	entry.node = node
	p.byName[key] = node

	p.schedule(key, entry.ExpireAt)
	return entry
}

// UpdateLifetime bumps entry's expiry to at least now+lifetime (spec
// §4.5: "update pit.expire_at = max(expire_at, now + lifetime)"). The
// new, later heap entry is pushed so the entry still expires
// eventually, but the running timer is left alone: it is already
// armed for the earliest outstanding entry, which a later expiry can
// never preempt, so the cleaner's schedule is recomputed lazily on its
// next fire rather than rearmed on every lifetime bump (spec §4.3).
func (p *Pit) UpdateLifetime(entry *PitEntry, now time.Time, lifetime time.Duration) {
	candidate := now.Add(lifetime)
	if candidate.After(entry.ExpireAt) {
		entry.ExpireAt = candidate
		p.pq.Push(entry.Name.String(), candidate.UnixNano())
	}
}

func (p *Pit) schedule(key string, at time.Time) {
	p.pq.Push(key, at.UnixNano())
	p.rearm()
}

func (p *Pit) rearm() {
	_, priority, ok := p.pq.Peek()
	if !ok {
		return
	}
	delay := comparison.Max(time.Duration(0), time.Until(time.Unix(0, priority)))
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(delay, func() {
		select {
		case p.fireCh <- struct{}{}:
		default:
		}
	})
}

// RemoveExpired pops every entry whose expire_at <= now, invokes
// onExpire (the strategy's WillErasePendingInterest hook) for each,
// erases it, and reschedules the timer for the new minimum (spec
// §4.3). Stale heap entries left behind by UpdateLifetime are
// silently skipped; the live entry they were superseded by fires its
// own, later, heap entry.
func (p *Pit) RemoveExpired(now time.Time, onExpire func(entry *PitEntry)) {
	for {
		key, priority, ok := p.pq.Peek()
		if !ok || priority > now.UnixNano() {
			break
		}
		p.pq.Pop()

		node, exists := p.byName[key]
		if !exists {
			continue
		}
		entry, has := node.Payload()
		if !has || entry.ExpireAt.After(now) {
			continue
		}
		if onExpire != nil {
			onExpire(entry)
		}
		p.MarkErased(entry)
	}
	p.rearm()
}

// MarkErased removes entry immediately from the trie, the replacement
// policy, and the name index (spec §4.3's simple erase policy).
func (p *Pit) MarkErased(entry *PitEntry) {
	key := entry.Name.String()
	delete(p.byName, key)
	p.policy.OnErase(key)
	p.trie.Erase(entry.node)
}

// Touch notifies the replacement policy of a hit against entry (e.g.
// LRU promotion).
func (p *Pit) Touch(entry *PitEntry) {
	p.policy.OnHit(entry.Name.String())
}

// RemoveFace sweeps a removed face out of every PIT entry's
// incoming/outgoing sets (spec §5). Entries left with both sets empty
// are erased.
func (p *Pit) RemoveFace(faceID uint64) {
	var toErase []*PitEntry
	p.trie.Walk(func(entry *PitEntry) {
		delete(entry.Incoming, faceID)
		delete(entry.Outgoing, faceID)
		if len(entry.Incoming) == 0 && len(entry.Outgoing) == 0 {
			toErase = append(toErase, entry)
		}
	})
	for _, e := range toErase {
		p.MarkErased(e)
	}
}

// GenerateNonce returns a fresh 32-bit nonce for an outgoing Interest,
// grounded on the teacher's generateNewPitToken but drawn from
// crypto/rand since a nonce is a wire value an adversary can observe.
func GenerateNonce() uint32 {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<32))
	if err != nil {
		return uint32(time.Now().UnixNano())
	}
	return uint32(n.Int64())
}
