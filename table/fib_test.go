package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

type fakeFace struct {
	id uint64
}

func (f *fakeFace) ID() uint64                 { return f.id }
func (f *fakeFace) Send(interface{}) bool      { return true }
func (f *fakeFace) IsBelowLimit() bool         { return true }
func (f *fakeFace) SetBucketMax(float64)       {}
func (f *fakeFace) SetBucketLeak(float64)      {}
func (f *fakeFace) Up()                        {}
func (f *fakeFace) Down()                      {}

func TestFibAddAndLongestPrefixMatch(t *testing.T) {
	fib := table.NewFib()
	f1 := &fakeFace{id: 1}
	fib.Add(ndn.NameFromString("/a"), f1, 10)

	entry := fib.LongestPrefixMatch(ndn.NameFromString("/a/b/c"))
	require.NotNil(t, entry)
	assert.True(t, entry.Prefix.Equals(ndn.NameFromString("/a")))
	assert.Nil(t, fib.LongestPrefixMatch(ndn.NameFromString("/z")))
}

func TestFibMetricOrderingRedSortsLast(t *testing.T) {
	fib := table.NewFib()
	f1, f2, f3 := &fakeFace{id: 1}, &fakeFace{id: 2}, &fakeFace{id: 3}
	entry := fib.Add(ndn.NameFromString("/a"), f1, 10)
	fib.Add(ndn.NameFromString("/a"), f2, 5)
	fib.Add(ndn.NameFromString("/a"), f3, 1)

	fib.UpdateStatus(entry, f1.id, table.StatusRed)

	faces := entry.Faces()
	require.Len(t, faces, 3)
	for i, m := range faces {
		if m.Status == table.StatusRed {
			assert.Equal(t, 2, i, "RED faces must sort after all non-RED faces")
		}
	}
	// non-RED faces remain ascending by cost: f3 (cost 1) then f2 (cost 5)
	assert.Equal(t, uint64(3), faces[0].Face.ID())
	assert.Equal(t, uint64(2), faces[1].Face.ID())
}

func TestFibRttEstimateDefaultsToInfinity(t *testing.T) {
	fib := table.NewFib()
	f1 := &fakeFace{id: 1}
	entry := fib.Add(ndn.NameFromString("/a"), f1, 10)

	assert.Equal(t, time.Duration(1<<63-1), fib.RttEstimate(entry, f1.id))

	updated := fib.UpdateFaceRtt(entry, f1.id, 100*time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, updated)
	assert.Equal(t, 100*time.Millisecond, fib.RttEstimate(entry, f1.id))
}

func TestFibHasRouteTracksExactPrefixes(t *testing.T) {
	fib := table.NewFib()
	fib.Add(ndn.NameFromString("/a/b"), &fakeFace{id: 1}, 10)

	assert.True(t, fib.HasRoute(ndn.NameFromString("/a/b")))
	assert.False(t, fib.HasRoute(ndn.NameFromString("/a")))
	assert.False(t, fib.HasRoute(ndn.NameFromString("/a/b/c")))

	fib.RemoveNexthop(ndn.NameFromString("/a/b"), 1)
	assert.False(t, fib.HasRoute(ndn.NameFromString("/a/b")))
}

func TestFibRemoveFaceSweepsAllEntries(t *testing.T) {
	fib := table.NewFib()
	f1 := &fakeFace{id: 1}
	fib.Add(ndn.NameFromString("/a"), f1, 10)
	fib.Add(ndn.NameFromString("/b"), f1, 10)

	fib.RemoveFace(f1.id)

	assert.Nil(t, fib.LongestPrefixMatch(ndn.NameFromString("/a")))
	assert.Nil(t, fib.LongestPrefixMatch(ndn.NameFromString("/b")))
}
