package coach

import (
	"sync"

	"github.com/tarofit/fitcoach/internal/workout"
)

// TuningBox holds the live counter tuning behind a lock. Updates only
// affect sessions whose counters are built after the change.
type TuningBox struct {
	mux     sync.RWMutex
	current workout.Tuning
}

func NewTuningBox(initial *workout.Tuning) *TuningBox {
	b := &TuningBox{}
	if initial != nil {
		b.current = *initial
	}
	return b
}

// Current returns a copy of the tuning, safe to hand to counters.
func (b *TuningBox) Current() *workout.Tuning {
	b.mux.RLock()
	defer b.mux.RUnlock()
	t := b.current
	return &t
}

// Effective resolves all fields to their effective values.
func (b *TuningBox) Effective() workout.Tuning {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.current.Effective()
}

// Update overlays the partial tuning onto the current one, rejecting the
// whole update when the merged result does not validate.
func (b *TuningBox) Update(partial *workout.Tuning) (workout.Tuning, error) {
	b.mux.Lock()
	defer b.mux.Unlock()

	merged := b.current
	merged.Merge(partial)
	if err := merged.Validate(); err != nil {
		return workout.Tuning{}, err
	}

	b.current = merged
	return merged.Effective(), nil
}
