package core

import "sync/atomic"

// Trace event names, passed as the first component to LogTrace so a
// single log line both reads naturally and drives the counter set
// below. Mirrors the six events spec.md §6 names.
const (
	TraceInInterests   = "in_interests"
	TraceOutInterests  = "out_interests"
	TraceDropInterests = "drop_interests"
	TraceInData        = "in_data"
	TraceOutData       = "out_data"
	TraceDropData      = "drop_data"
)

// CounterSet tracks per-trace-event totals, grounded on the
// NInInterests/NOutData/... running counters kept on the teacher's
// forwarding thread, generalized to cover every trace event rather
// than a hand-picked subset.
type CounterSet struct {
	inInterests   uint64
	outInterests  uint64
	dropInterests uint64
	inData        uint64
	outData       uint64
	dropData      uint64
}

// Counters is the process-wide counter set. A real multi-node harness
// would give each node its own set; this kernel's single-threaded
// dispatch loop makes one package-level set sufficient for tests and
// the status demo.
var Counters CounterSet

func (c *CounterSet) bump(module interface{}) {
	event, ok := module.(string)
	if !ok {
		return
	}
	switch event {
	case TraceInInterests:
		atomic.AddUint64(&c.inInterests, 1)
	case TraceOutInterests:
		atomic.AddUint64(&c.outInterests, 1)
	case TraceDropInterests:
		atomic.AddUint64(&c.dropInterests, 1)
	case TraceInData:
		atomic.AddUint64(&c.inData, 1)
	case TraceOutData:
		atomic.AddUint64(&c.outData, 1)
	case TraceDropData:
		atomic.AddUint64(&c.dropData, 1)
	}
}

// Snapshot returns a point-in-time copy safe to read concurrently with
// further bumps.
func (c *CounterSet) Snapshot() CounterSet {
	return CounterSet{
		inInterests:   atomic.LoadUint64(&c.inInterests),
		outInterests:  atomic.LoadUint64(&c.outInterests),
		dropInterests: atomic.LoadUint64(&c.dropInterests),
		inData:        atomic.LoadUint64(&c.inData),
		outData:       atomic.LoadUint64(&c.outData),
		dropData:      atomic.LoadUint64(&c.dropData),
	}
}

func (c CounterSet) InInterests() uint64   { return c.inInterests }
func (c CounterSet) OutInterests() uint64  { return c.outInterests }
func (c CounterSet) DropInterests() uint64 { return c.dropInterests }
func (c CounterSet) InData() uint64        { return c.inData }
func (c CounterSet) OutData() uint64       { return c.outData }
func (c CounterSet) DropData() uint64      { return c.dropData }
