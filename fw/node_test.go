package fw_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/fw"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

// recordingFace is a dispatch.Face that records every packet handed
// to Send, for assertions, and can be toggled below its admission
// limit to exercise retransmission/exhaustion paths.
type recordingFace struct {
	mu      sync.Mutex
	id      uint64
	sent    []interface{}
	accept  bool
	limited bool
}

func newFace(id uint64) *recordingFace { return &recordingFace{id: id, accept: true} }

func (f *recordingFace) ID() uint64 { return f.id }
func (f *recordingFace) Send(packet interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.accept {
		return false
	}
	f.sent = append(f.sent, packet)
	return true
}
func (f *recordingFace) IsBelowLimit() bool { return !f.limited }
func (f *recordingFace) SetBucketMax(float64) {}
func (f *recordingFace) SetBucketLeak(float64) {}
func (f *recordingFace) Up()   {}
func (f *recordingFace) Down() {}

func (f *recordingFace) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newNode(t *testing.T, strategyName string) (*fw.Node, *table.Fib, *table.Pit, *table.Cs) {
	t.Helper()
	fib := table.NewFib()
	pit := table.NewPit("persistent")
	cs := table.NewCs("lru")
	n := fw.NewNode(fib, pit, cs, fw.NewStrategy(strategyName), 16)
	return n, fib, pit, cs
}

func TestNodeSingleHopInterestDataHit(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	require.Equal(t, 1, upstream.sentCount())

	data := ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("payload"))
	n.OnData(upstream, data)

	require.Equal(t, 1, client.sentCount())
	assert.Equal(t, data, client.sent[0])
}

func TestNodeContentStoreHitAnswersWithoutForwarding(t *testing.T) {
	n, fib, _, cs := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)
	cs.Add(ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("cached")), time.Now(), 0)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	assert.Equal(t, 0, upstream.sentCount())
	require.Equal(t, 1, client.sentCount())
}

func TestNodeDuplicateNonceIsSuppressed(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	clientA := newFace(1)
	clientB := newFace(2)
	upstream := newFace(3)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(clientA, interest)
	require.Equal(t, 1, upstream.sentCount())

	// Same nonce arriving from a second face is a loop/duplicate, not a
	// fresh request: no new Interest goes out, but clientB still gets
	// satisfied when data arrives (it recorded interest).
	dup := interest.Copy()
	n.OnInterest(clientB, dup)
	assert.Equal(t, 1, upstream.sentCount(), "duplicate nonce must not trigger re-forwarding")

	data := ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("v"))
	n.OnData(upstream, data)
	assert.Equal(t, 1, clientA.sentCount())
	assert.Equal(t, 1, clientB.sentCount())
}

func TestNodeRetransmissionGetsAnotherAttempt(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	first := ndn.NewInterest(ndn.NameFromString("/a/b"))
	first.Nonce = table.GenerateNonce()
	n.OnInterest(client, first)
	require.Equal(t, 1, upstream.sentCount())

	// Same client re-expresses with a fresh nonce: a legitimate
	// retransmission, which must be allowed a second outgoing attempt
	// on the same face (its RetxCount of 0 is still below the initial
	// MaxRetxAllowed of 1).
	second := ndn.NewInterest(ndn.NameFromString("/a/b"))
	second.Nonce = table.GenerateNonce()
	n.OnInterest(client, second)
	assert.Equal(t, 2, upstream.sentCount())
}

func TestNodePitExpiryErasesEntry(t *testing.T) {
	n, fib, pit, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	interest.Lifetime = time.Millisecond
	n.OnInterest(client, interest)

	require.NotNil(t, pit.Lookup(ndn.NameFromString("/a/b")))

	select {
	case <-pit.Expired():
		pit.RemoveExpired(time.Now().Add(time.Second), func(*table.PitEntry) {})
	case <-time.After(time.Second):
		t.Fatal("pit entry never expired")
	}

	assert.Nil(t, pit.Lookup(ndn.NameFromString("/a/b")))
}

func TestNodeBoundedPitRejectsBeyondCapacity(t *testing.T) {
	n, fib, pit, _ := newNode(t, "flooding")
	pit.SetMaxSize(1)
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	first := ndn.NewInterest(ndn.NameFromString("/a/b"))
	first.Nonce = table.GenerateNonce()
	n.OnInterest(client, first)

	second := ndn.NewInterest(ndn.NameFromString("/a/c"))
	second.Nonce = table.GenerateNonce()
	n.OnInterest(client, second)

	assert.NotNil(t, pit.Lookup(ndn.NameFromString("/a/b")))
	assert.Nil(t, pit.Lookup(ndn.NameFromString("/a/c")))
	assert.Equal(t, 1, upstream.sentCount())
}

func TestNodeUnsolicitedDataDroppedByDefault(t *testing.T) {
	n, _, pit, cs := newNode(t, "flooding")
	upstream := newFace(1)

	data := ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("v"))
	n.OnData(upstream, data)

	assert.Nil(t, pit.Lookup(ndn.NameFromString("/a/b")))
	assert.Nil(t, cs.Lookup(ndn.NameFromString("/a/b"), time.Now(), false))
}

func TestNodeCacheUnsolicitedDataWhenEnabled(t *testing.T) {
	n, _, _, cs := newNode(t, "flooding")
	n.CacheUnsolicitedData = true
	upstream := newFace(1)

	data := ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("v"))
	n.OnData(upstream, data)

	assert.NotNil(t, cs.Lookup(ndn.NameFromString("/a/b"), time.Now(), false))
}

func TestNodeQueueInterestAndDataDrainThroughRun(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	go n.Run()
	defer n.Stop()

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.QueueInterest(client, interest)

	require.Eventually(t, func() bool { return upstream.sentCount() == 1 }, time.Second, time.Millisecond)

	data := ndn.NewContentObject(ndn.NameFromString("/a/b"), []byte("v"))
	n.QueueData(upstream, data)

	require.Eventually(t, func() bool { return client.sentCount() == 1 }, time.Second, time.Millisecond)
}

func TestNodeRunTwiceIsFatalInstallError(t *testing.T) {
	n, _, _, _ := newNode(t, "flooding")

	go n.Run()
	time.Sleep(10 * time.Millisecond)

	err := n.Run()
	assert.ErrorIs(t, err, core.ErrAlreadyInstalled)
	n.Stop()
}
