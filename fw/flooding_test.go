package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

func TestFloodingSendsToEveryEligibleFaceExceptIncoming(t *testing.T) {
	n, fib, pit, _ := newNode(t, "flooding")
	client := newFace(1)
	f1, f2, f3 := newFace(2), newFace(3), newFace(4)
	entry := fib.Add(ndn.NameFromString("/a"), f1, 10)
	fib.Add(ndn.NameFromString("/a"), f2, 10)
	fib.Add(ndn.NameFromString("/a"), f3, 10)
	fib.UpdateStatus(entry, f3.id, table.StatusRed)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	assert.Equal(t, 1, f1.sentCount())
	assert.Equal(t, 1, f2.sentCount())
	assert.Equal(t, 0, f3.sentCount(), "RED face must not receive the flood")
	require.NotNil(t, pit.Lookup(ndn.NameFromString("/a/b")))
}

func TestFloodingRewritesAgentOneToTwoOnFreshPacket(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	interest.Agent = 1
	n.OnInterest(client, interest)

	require.Len(t, upstream.sent, 1)
	sentInterest := upstream.sent[0].(*ndn.Interest)
	assert.Equal(t, int8(2), sentInterest.Agent)
	assert.Equal(t, int8(1), interest.Agent, "the original Interest must be left untouched")
}

func TestFloodingLeavesAgentZeroUnchanged(t *testing.T) {
	n, fib, _, _ := newNode(t, "flooding")
	client := newFace(1)
	upstream := newFace(2)
	fib.Add(ndn.NameFromString("/a"), upstream, 10)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	require.Len(t, upstream.sent, 1)
	assert.Same(t, interest, upstream.sent[0].(*ndn.Interest))
}

func TestFloodingDropsInterestWhenNoFibRoute(t *testing.T) {
	n, _, _, _ := newNode(t, "flooding")
	client := newFace(1)

	interest := ndn.NewInterest(ndn.NameFromString("/nowhere"))
	interest.Nonce = table.GenerateNonce()
	// No FIB route exists, so the PIT entry is never created and the
	// Interest is silently dropped (no panic, no forwarding).
	n.OnInterest(client, interest)
}
