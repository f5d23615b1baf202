package flatten

import (
	"math"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// fuelTracker limits the number of fragments a flattener may produce.
// Like its flattener it is used from one goroutine at a time.
type fuelTracker struct {
	initial   uint64
	remaining int64
}

func newFuelTracker(fuel uint64) *fuelTracker {
	if fuel > math.MaxInt64 {
		fuel = math.MaxInt64
	}
	return &fuelTracker{initial: fuel, remaining: int64(fuel)}
}

func (f *fuelTracker) consume(amount int64) error {
	if amount == 0 {
		return nil
	}
	f.remaining -= amount
	if f.remaining < 0 {
		return errors.Errorf(errors.ErrOutOfFuel, "fragment budget of %d exhausted", f.initial)
	}
	return nil
}

func (f *fuelTracker) remainingFuel() uint64 {
	if f.remaining <= 0 {
		return 0
	}
	return uint64(f.remaining)
}
