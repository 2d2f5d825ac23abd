package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

func TestPitCreateRequiresFibRoute(t *testing.T) {
	fib := table.NewFib()
	pit := table.NewPit("persistent")

	interest := ndn.NewInterest(ndn.NameFromString("/x/1"))
	entry := pit.Create(fib, interest, time.Now())
	assert.Nil(t, entry, "Create must fail with no FIB route")
}

func TestPitCreateAndLookupRoundTrip(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/x"), &fakeFace{id: 1}, 10)
	pit := table.NewPit("persistent")

	interest := ndn.NewInterest(ndn.NameFromString("/x/1"))
	interest.Lifetime = time.Second
	entry := pit.Create(fib, interest, time.Now())
	require.NotNil(t, entry)

	found := pit.Lookup(ndn.NameFromString("/x/1"))
	assert.Same(t, entry, found)

	assert.Nil(t, pit.Lookup(ndn.NameFromString("/x/1/2")), "exact match only")
}

func TestPitLookupByDataUsesLongestPrefixMatch(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/x"), &fakeFace{id: 1}, 10)
	pit := table.NewPit("persistent")

	interest := ndn.NewInterest(ndn.NameFromString("/x/1"))
	entry := pit.Create(fib, interest, time.Now())
	require.NotNil(t, entry)

	found := pit.LookupByData(ndn.NameFromString("/x/1/seg0"))
	assert.Same(t, entry, found)
}

func TestPitBoundedPersistentRejectsSecondInsert(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/"), &fakeFace{id: 1}, 10)
	pit := table.NewPit("persistent")
	pit.SetMaxSize(1)

	a := pit.Create(fib, ndn.NewInterest(ndn.NameFromString("/a")), time.Now())
	require.NotNil(t, a)

	b := pit.Create(fib, ndn.NewInterest(ndn.NameFromString("/b")), time.Now())
	assert.Nil(t, b, "second Create must be rejected once the persistent PIT is full")
	assert.Equal(t, 1, pit.Size())
}

func TestPitMarkErasedRemovesEntry(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/x"), &fakeFace{id: 1}, 10)
	pit := table.NewPit("persistent")

	entry := pit.Create(fib, ndn.NewInterest(ndn.NameFromString("/x/1")), time.Now())
	require.NotNil(t, entry)

	pit.MarkErased(entry)
	assert.Nil(t, pit.Lookup(ndn.NameFromString("/x/1")))
	assert.Equal(t, 0, pit.Size())
}

func TestPitExpiryFiresAndNotifiesStrategy(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/x"), &fakeFace{id: 1}, 10)
	pit := table.NewPit("persistent")

	interest := ndn.NewInterest(ndn.NameFromString("/x/1"))
	interest.Lifetime = 10 * time.Millisecond
	entry := pit.Create(fib, interest, time.Now())
	require.NotNil(t, entry)

	select {
	case <-pit.Expired():
	case <-time.After(2 * time.Second):
		t.Fatal("expiry cleaner never fired")
	}

	var erased *table.PitEntry
	pit.RemoveExpired(time.Now(), func(e *table.PitEntry) { erased = e })

	assert.Same(t, entry, erased)
	assert.Equal(t, 0, pit.Size())
}
