package table

import (
	"container/list"
	"math/rand"

	"github.com/ndn-forwarder/kernel/core"
)

// ReplacementPolicy is the pluggable bounded-set discipline shared by
// the PIT and the Content Store (spec §4.6). Keys are opaque and
// comparable — both tables use the entry's canonical name string as
// the key, keeping the policy itself name-agnostic.
type ReplacementPolicy[K comparable] interface {
	// OnInsert registers key. It may evict another key (via the
	// EvictFunc supplied at construction) to make room, or reject the
	// insert outright (persistent at capacity), returning false.
	OnInsert(key K) bool
	OnErase(key K)
	OnHit(key K)
	Size() int
	SetMaxSize(n int)
	GetMaxSize() int
}

// EvictFunc is invoked synchronously when a policy evicts key to make
// room for an insert. The owning table removes the entry from its
// trie and any side indexes (spec §4.3, §4.4).
type EvictFunc[K comparable] func(key K)

// PersistentPolicy rejects inserts once size==max>0 and never evicts.
type PersistentPolicy[K comparable] struct {
	keys map[K]struct{}
	max  int
}

func NewPersistentPolicy[K comparable]() *PersistentPolicy[K] {
	return &PersistentPolicy[K]{keys: map[K]struct{}{}}
}

func (p *PersistentPolicy[K]) OnInsert(key K) bool {
	if _, ok := p.keys[key]; ok {
		return true
	}
	if p.max > 0 && len(p.keys) >= p.max {
		return false
	}
	p.keys[key] = struct{}{}
	return true
}

func (p *PersistentPolicy[K]) OnErase(key K)    { delete(p.keys, key) }
func (p *PersistentPolicy[K]) OnHit(key K)      {}
func (p *PersistentPolicy[K]) Size() int        { return len(p.keys) }
func (p *PersistentPolicy[K]) SetMaxSize(n int) { p.max = n }
func (p *PersistentPolicy[K]) GetMaxSize() int  { return p.max }

// LRUPolicy maintains a recency list via container/list, grounded on
// the teacher's CsLRU (fw/table/cs-lru.go): on_hit moves the element
// to the front; an insert at capacity evicts the back.
type LRUPolicy[K comparable] struct {
	max      int
	order    *list.List
	elements map[K]*list.Element
	evict    EvictFunc[K]
}

func NewLRUPolicy[K comparable](evict EvictFunc[K]) *LRUPolicy[K] {
	return &LRUPolicy[K]{order: list.New(), elements: map[K]*list.Element{}, evict: evict}
}

func (p *LRUPolicy[K]) OnInsert(key K) bool {
	if el, ok := p.elements[key]; ok {
		p.order.MoveToFront(el)
		return true
	}
	for p.max > 0 && len(p.elements) >= p.max {
		p.evictOldest()
	}
	p.elements[key] = p.order.PushFront(key)
	return true
}

func (p *LRUPolicy[K]) evictOldest() {
	back := p.order.Back()
	if back == nil {
		return
	}
	key := back.Value.(K)
	p.order.Remove(back)
	delete(p.elements, key)
	if p.evict != nil {
		p.evict(key)
	}
}

func (p *LRUPolicy[K]) OnErase(key K) {
	if el, ok := p.elements[key]; ok {
		p.order.Remove(el)
		delete(p.elements, key)
	}
}

func (p *LRUPolicy[K]) OnHit(key K) {
	if el, ok := p.elements[key]; ok {
		p.order.MoveToFront(el)
	}
}

func (p *LRUPolicy[K]) Size() int { return len(p.elements) }

func (p *LRUPolicy[K]) SetMaxSize(n int) {
	p.max = n
	for p.max > 0 && len(p.elements) > p.max {
		p.evictOldest()
	}
}

func (p *LRUPolicy[K]) GetMaxSize() int { return p.max }

// FIFOPolicy is LRUPolicy without the on-hit promotion: first in,
// first out under capacity pressure (one of the CS's three pluggable
// policies, spec §4.4).
type FIFOPolicy[K comparable] struct {
	max      int
	order    *list.List
	elements map[K]*list.Element
	evict    EvictFunc[K]
}

func NewFIFOPolicy[K comparable](evict EvictFunc[K]) *FIFOPolicy[K] {
	return &FIFOPolicy[K]{order: list.New(), elements: map[K]*list.Element{}, evict: evict}
}

func (p *FIFOPolicy[K]) OnInsert(key K) bool {
	if _, ok := p.elements[key]; ok {
		return true
	}
	for p.max > 0 && len(p.elements) >= p.max {
		p.evictOldest()
	}
	p.elements[key] = p.order.PushFront(key)
	return true
}

func (p *FIFOPolicy[K]) evictOldest() {
	back := p.order.Back()
	if back == nil {
		return
	}
	key := back.Value.(K)
	p.order.Remove(back)
	delete(p.elements, key)
	if p.evict != nil {
		p.evict(key)
	}
}

func (p *FIFOPolicy[K]) OnErase(key K) {
	if el, ok := p.elements[key]; ok {
		p.order.Remove(el)
		delete(p.elements, key)
	}
}

func (p *FIFOPolicy[K]) OnHit(key K) {}
func (p *FIFOPolicy[K]) Size() int   { return len(p.elements) }

func (p *FIFOPolicy[K]) SetMaxSize(n int) {
	p.max = n
	for p.max > 0 && len(p.elements) > p.max {
		p.evictOldest()
	}
}

func (p *FIFOPolicy[K]) GetMaxSize() int { return p.max }

// RandomPolicy evicts a uniformly random entry to make room.
type RandomPolicy[K comparable] struct {
	max   int
	keys  map[K]struct{}
	evict EvictFunc[K]
}

func NewRandomPolicy[K comparable](evict EvictFunc[K]) *RandomPolicy[K] {
	return &RandomPolicy[K]{keys: map[K]struct{}{}, evict: evict}
}

func (p *RandomPolicy[K]) OnInsert(key K) bool {
	if _, ok := p.keys[key]; ok {
		return true
	}
	for p.max > 0 && len(p.keys) >= p.max {
		p.evictRandom()
	}
	p.keys[key] = struct{}{}
	return true
}

func (p *RandomPolicy[K]) evictRandom() {
	if len(p.keys) == 0 {
		return
	}
	victimIndex := rand.Intn(len(p.keys))
	var victim K
	for k := range p.keys {
		if victimIndex == 0 {
			victim = k
			break
		}
		victimIndex--
	}
	delete(p.keys, victim)
	if p.evict != nil {
		p.evict(victim)
	}
}

func (p *RandomPolicy[K]) OnErase(key K) { delete(p.keys, key) }
func (p *RandomPolicy[K]) OnHit(key K)   {}
func (p *RandomPolicy[K]) Size() int     { return len(p.keys) }

func (p *RandomPolicy[K]) SetMaxSize(n int) {
	p.max = n
	for p.max > 0 && len(p.keys) > p.max {
		p.evictRandom()
	}
}

func (p *RandomPolicy[K]) GetMaxSize() int { return p.max }

// NewPitPolicy builds the PIT's replacement policy from the
// pit.policy config option (spec §6): persistent, lru, or random.
func NewPitPolicy(name string, evict EvictFunc[string]) ReplacementPolicy[string] {
	switch name {
	case "", "persistent":
		return NewPersistentPolicy[string]()
	case "lru":
		return NewLRUPolicy(evict)
	case "random":
		return NewRandomPolicy(evict)
	default:
		core.LogFatal("Table", "unknown pit.policy ", name)
		return nil
	}
}

// NewCsPolicy builds the Content Store's replacement policy from the
// cs.policy config option: lru (default), random, or fifo.
func NewCsPolicy(name string, evict EvictFunc[string]) ReplacementPolicy[string] {
	switch name {
	case "", "lru":
		return NewLRUPolicy(evict)
	case "random":
		return NewRandomPolicy(evict)
	case "fifo":
		return NewFIFOPolicy(evict)
	default:
		core.LogFatal("Table", "unknown cs.policy ", name)
		return nil
	}
}
