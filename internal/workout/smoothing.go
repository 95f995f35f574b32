package workout

import "gonum.org/v1/gonum/stat"

// SmoothingPolicy controls how a raw angle window is collapsed into the
// smoothed value fed to the phase state machine.
type SmoothingPolicy string

const (
	// SmoothLastTwoMean averages the two most recent samples and yields a
	// value from the very first frame on.
	SmoothLastTwoMean SmoothingPolicy = "last_two_mean"
	// SmoothFullWindowMean averages the whole window and yields nothing
	// until the window is full.
	SmoothFullWindowMean SmoothingPolicy = "full_window_mean"
)

// angleWindow is a fixed-capacity sliding window of raw angle samples.
type angleWindow struct {
	values   []float64
	capacity int
	policy   SmoothingPolicy
}

func newAngleWindow(capacity int, policy SmoothingPolicy) *angleWindow {
	return &angleWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
		policy:   policy,
	}
}

// push adds a raw sample and returns the smoothed value. The second
// return value is false while the policy has no value to give yet.
func (w *angleWindow) push(v float64) (float64, bool) {
	w.values = append(w.values, v)
	if len(w.values) > w.capacity {
		w.values = w.values[1:]
	}

	switch w.policy {
	case SmoothFullWindowMean:
		if len(w.values) < w.capacity {
			return 0, false
		}
		return stat.Mean(w.values, nil), true
	default:
		if len(w.values) == 1 {
			return v, true
		}
		return stat.Mean(w.values[len(w.values)-2:], nil), true
	}
}

func (w *angleWindow) reset() {
	w.values = w.values[:0]
}

func (w *angleWindow) size() int {
	return len(w.values)
}
