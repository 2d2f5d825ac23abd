package face

import (
	"sync"
	"time"

	"github.com/ndn-forwarder/kernel/utils/comparison"
)

// LeakyBucket is the BDP-sized admission hint spec.md §6 requires on
// every outgoing face. It has no analogue in the teacher's congestion
// code — ndnlp-link-service.go marks congestion off a send-queue
// depth threshold rather than a token bucket — so this is hand-rolled
// against the formula spec.md §6 gives directly; no pack dependency
// implements a leaky/token bucket (see DESIGN.md).
type LeakyBucket struct {
	mu       sync.Mutex
	max      float64
	leakRate float64 // tokens drained per second
	level    float64
	lastLeak time.Time
}

// NewLeakyBucket returns an unlimited bucket (IsBelowLimit always
// true) until SetBucketMax is called with a positive value; the leak
// rate alone does not enable limiting. Matches spec.md §6's "faces without admission
// control always return true."
func NewLeakyBucket() *LeakyBucket {
	return &LeakyBucket{lastLeak: time.Now()}
}

// BucketSizing implements spec.md §6's BDP formula for deriving a
// bucket's capacity and leak rate from link characteristics.
func BucketSizing(linkBitrate, avgContentSize, avgInterestSize, avgRttSeconds float64) (bucketMax, leakRate float64) {
	if avgContentSize+avgInterestSize <= 0 {
		return 0, 0
	}
	maxInterestsPerSec := linkBitrate / 8 / (avgContentSize + avgInterestSize)
	return avgRttSeconds * maxInterestsPerSec, maxInterestsPerSec
}

func (b *LeakyBucket) SetBucketMax(max float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.max = max
}

func (b *LeakyBucket) SetBucketLeak(leak float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leakRate = leak
}

func (b *LeakyBucket) leak() {
	if b.leakRate <= 0 {
		return
	}
	now := time.Now()
	elapsed := now.Sub(b.lastLeak).Seconds()
	b.lastLeak = now
	b.level = comparison.Max(0, b.level-elapsed*b.leakRate)
}

// IsBelowLimit reports whether one more Interest fits under the
// bucket, and reserves the slot if so (the single caller,
// Node.WillSendOutInterest, treats a true return as "about to send").
func (b *LeakyBucket) IsBelowLimit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max <= 0 {
		return true
	}
	b.leak()
	if b.level >= b.max {
		return false
	}
	b.level++
	return true
}
