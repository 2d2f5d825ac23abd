package table

import (
	"time"

	"github.com/ndn-forwarder/kernel/ndn"
)

// CsEntry is one cached Content Object (spec §3).
type CsEntry struct {
	Name    *ndn.Name
	Data    *ndn.ContentObject
	StaleAt time.Time // zero means never stale

	node *TrieNode[*CsEntry]
}

// Cs is the Content Store (spec §4.4): a name trie bounded by a
// pluggable replacement policy, default lru, grounded on the
// teacher's table/cs-lru.go.
type Cs struct {
	trie   *Trie[*CsEntry]
	byName map[string]*TrieNode[*CsEntry]
	policy ReplacementPolicy[string]
}

// NewCs constructs a Content Store using the named eviction policy
// ("lru", "random", "fifo"; spec §6's cs.policy option).
func NewCs(policyName string) *Cs {
	c := &Cs{trie: NewTrie[*CsEntry](), byName: map[string]*TrieNode[*CsEntry]{}}
	c.policy = NewCsPolicy(policyName, c.evict)
	return c
}

// SetMaxSize sets the entry-count bound enforced by the policy.
func (c *Cs) SetMaxSize(n int) { c.policy.SetMaxSize(n) }

// Size returns the current number of cached entries.
func (c *Cs) Size() int { return c.policy.Size() }

func (c *Cs) evict(key string) {
	node, ok := c.byName[key]
	if !ok {
		return
	}
	delete(c.byName, key)
	c.trie.Erase(node)
}

// Add inserts or refreshes the cached object at data.Name (spec
// §4.4). freshFor, if positive, sets the entry's staleness horizon to
// now+freshFor; zero means the entry never goes stale.
func (c *Cs) Add(data *ndn.ContentObject, now time.Time, freshFor time.Duration) {
	key := data.Name.String()

	if node, reachedAll := c.trie.Find(data.Name); reachedAll {
		if entry, ok := node.Payload(); ok {
			entry.Data = data
			if freshFor > 0 {
				entry.StaleAt = now.Add(freshFor)
			}
			c.policy.OnHit(key)
			return
		}
	}

	if !c.policy.OnInsert(key) {
		return
	}
	entry := &CsEntry{Name: data.Name, Data: data}
	if freshFor > 0 {
		entry.StaleAt = now.Add(freshFor)
	}
	node, _ := c.trie.Insert(data.Name, entry)
	node.SetPayload(entry)
	entry.node = node
	c.byName[key] = node
}

// Lookup implements spec §4.4's longest-prefix-match lookup. When
// mustBeFresh is set, an entry past its staleness horizon is treated
// as a miss.
func (c *Cs) Lookup(name *ndn.Name, now time.Time, mustBeFresh bool) *ndn.ContentObject {
	node := c.trie.LongestPrefixMatch(name)
	if node == nil {
		return nil
	}
	entry, ok := node.Payload()
	if !ok {
		return nil
	}
	if mustBeFresh && !entry.StaleAt.IsZero() && now.After(entry.StaleAt) {
		return nil
	}
	c.policy.OnHit(entry.Name.String())
	return entry.Data
}

// RemoveAll clears the store. The Content Store holds no face
// reference, so a face removal sweep never touches it (spec §5).
func (c *Cs) RemoveAll() {
	for key := range c.byName {
		c.policy.OnErase(key)
	}
	c.trie = NewTrie[*CsEntry]()
	c.byName = map[string]*TrieNode[*CsEntry]{}
}
