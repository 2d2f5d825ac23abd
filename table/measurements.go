package table

import (
	"math"
	"strconv"

	"github.com/cornelk/hashmap"
)

// rttEstimator tracks per-(prefix, face) RTT samples as an
// exponentially weighted moving average, backed by a lock-free map
// (grounded on the teacher's package-level measurements table) so FIB
// RTT updates never contend with a reader walking the metric view.
type rttEstimator struct {
	samples *hashmap.HashMap
}

// rttAlpha is the EWMA smoothing factor; spec §4.2 does not mandate a
// precise formula, only that it be monotone in the sample and bounded.
const rttAlpha = 0.125

func newRTTEstimator() *rttEstimator {
	return &rttEstimator{samples: &hashmap.HashMap{}}
}

func rttKey(prefix string, faceID uint64) string {
	return prefix + "#" + strconv.FormatUint(faceID, 10)
}

// AddSample folds a new RTT sample (seconds) into the EWMA for
// (prefix, faceID) and returns the updated estimate.
func (r *rttEstimator) AddSample(prefix string, faceID uint64, sample float64) float64 {
	key := rttKey(prefix, faceID)
	for {
		existing, ok := r.samples.GetStringKey(key)
		if !ok {
			if _, inserted := r.samples.GetOrInsert(key, sample); inserted {
				return sample
			}
			continue
		}
		prev := existing.(float64)
		next := prev + rttAlpha*(sample-prev)
		if r.samples.Cas(key, prev, next) {
			return next
		}
	}
}

// Estimate returns the current EWMA for (prefix, faceID), or +Inf if
// no sample has ever been recorded (spec's rtt=∞ default on Add).
func (r *rttEstimator) Estimate(prefix string, faceID uint64) float64 {
	if v, ok := r.samples.GetStringKey(rttKey(prefix, faceID)); ok {
		return v.(float64)
	}
	return math.Inf(1)
}

func (r *rttEstimator) forget(prefix string, faceID uint64) {
	r.samples.Del(rttKey(prefix, faceID))
}
