package rope

// State is the externally visible state of a Rope.
type State int

const (
	// StateFree ropes accept appends.
	StateFree State = iota
	// StateModifying ropes are in the middle of an append.
	StateModifying
	// StateLocked ropes have been appended into another rope. They can
	// still be materialized but never appended to again.
	StateLocked
	// StateFlattening ropes are being materialized.
	StateFlattening
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateModifying:
		return "modifying"
	case StateLocked:
		return "locked"
	case StateFlattening:
		return "flattening"
	default:
		return "unknown"
	}
}

// activity is the transient axis of the state machine. Locking is tracked
// separately since a locked rope can still be flattening.
type activity uint8

const (
	idle activity = iota
	modifying
	flattening
)
