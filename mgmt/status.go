// Package mgmt exposes read-only status snapshots of a running node's
// tables, mirroring the shape of the teacher's mgmt/fib.go,
// mgmt/cs.go and mgmt/forwarder-status.go without their NFD
// management-protocol wire encoding (spec.md §1 scopes name-component
// and TLV wire parsing out of this repository). Where the teacher
// answers a `/localhost/nfd/...` dataset Interest, these are plain Go
// accessor methods a cmd/ndnfwd status command or test calls directly.
package mgmt

import (
	"time"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/table"
)

// FaceStatusEntry mirrors one row of the teacher's mgmt/face.go
// dataset: a nexthop's routing state within a single FIB entry.
type FaceStatusEntry struct {
	FaceID uint64
	Cost   int32
	Status string
	Rtt    time.Duration
}

// FibStatusEntry mirrors one row of mgmt/fib.go's FIB dataset.
type FibStatusEntry struct {
	Prefix string
	Faces  []FaceStatusEntry
}

// FibStatus snapshots every registered prefix in fib.
func FibStatus(fib *table.Fib) []FibStatusEntry {
	var out []FibStatusEntry
	for _, entry := range fib.AllEntries() {
		out = append(out, fibEntryStatus(fib, entry))
	}
	return out
}

func fibEntryStatus(fib *table.Fib, entry *table.FibEntry) FibStatusEntry {
	row := FibStatusEntry{Prefix: entry.Prefix.String()}
	for _, m := range entry.Faces() {
		row.Faces = append(row.Faces, FaceStatusEntry{
			FaceID: m.Face.ID(),
			Cost:   m.Cost,
			Status: m.Status.String(),
			Rtt:    fib.RttEstimate(entry, m.Face.ID()),
		})
	}
	return row
}

// PitStatus mirrors mgmt/forwarder-status.go's NPitEntries field.
type PitStatus struct {
	Size int
}

func SnapshotPit(pit *table.Pit) PitStatus {
	return PitStatus{Size: pit.Size()}
}

// CsStatus mirrors mgmt/cs.go's capacity/size reporting.
type CsStatus struct {
	Size int
}

func SnapshotCs(cs *table.Cs) CsStatus {
	return CsStatus{Size: cs.Size()}
}

// ForwarderStatus mirrors the teacher's mgmt/forwarder-status.go
// GeneralStatus dataset: version, uptime, table sizes and the
// in/out/drop counters core.Counters accumulates from trace events.
type ForwarderStatus struct {
	NfdVersion       string
	StartTimestamp   time.Time
	CurrentTimestamp time.Time

	NPitEntries int
	NCsEntries  int

	NInInterests   uint64
	NOutInterests  uint64
	NDropInterests uint64
	NInData        uint64
	NOutData       uint64
	NDropData      uint64
}

// SnapshotForwarderStatus builds a ForwarderStatus from the live
// tables and the package-level trace counters.
func SnapshotForwarderStatus(pit *table.Pit, cs *table.Cs) ForwarderStatus {
	snap := core.Counters.Snapshot()
	return ForwarderStatus{
		NfdVersion:       core.Version,
		StartTimestamp:   core.StartTimestamp,
		CurrentTimestamp: time.Now(),
		NPitEntries:      pit.Size(),
		NCsEntries:       cs.Size(),
		NInInterests:     snap.InInterests(),
		NOutInterests:    snap.OutInterests(),
		NDropInterests:   snap.DropInterests(),
		NInData:          snap.InData(),
		NOutData:         snap.OutData(),
		NDropData:        snap.DropData(),
	}
}
