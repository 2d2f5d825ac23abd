package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

func TestBestRouteSendsToSingleBestFaceOnly(t *testing.T) {
	n, fib, pit, _ := newNode(t, "best-route")
	client := newFace(1)
	cheap, expensive := newFace(2), newFace(3)
	fib.Add(ndn.NameFromString("/a"), expensive, 100)
	fib.Add(ndn.NameFromString("/a"), cheap, 1)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	assert.Equal(t, 1, cheap.sentCount())
	assert.Equal(t, 0, expensive.sentCount())
	require.NotNil(t, pit.Lookup(ndn.NameFromString("/a/b")))
}

func TestBestRouteFallsThroughWhenBestFaceIsIncoming(t *testing.T) {
	n, fib, _, _ := newNode(t, "best-route")
	cheap, expensive := newFace(1), newFace(2)
	fib.Add(ndn.NameFromString("/a"), cheap, 1)
	fib.Add(ndn.NameFromString("/a"), expensive, 100)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	// cheap is the face the Interest itself arrived on, so it must be
	// skipped in favor of the next-best candidate.
	n.OnInterest(cheap, interest)

	assert.Equal(t, 0, cheap.sentCount())
	assert.Equal(t, 1, expensive.sentCount())
}

func TestBestRouteStopsAtRedFace(t *testing.T) {
	n, fib, _, _ := newNode(t, "best-route")
	client := newFace(1)
	onlyFace := newFace(2)
	entry := fib.Add(ndn.NameFromString("/a"), onlyFace, 1)
	fib.UpdateStatus(entry, onlyFace.id, table.StatusRed)

	interest := ndn.NewInterest(ndn.NameFromString("/a/b"))
	interest.Nonce = table.GenerateNonce()
	n.OnInterest(client, interest)

	assert.Equal(t, 0, onlyFace.sentCount(), "a RED-only FIB entry has no eligible nexthop")
}
