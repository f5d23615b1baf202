package buffer

import (
	"sync/atomic"

	"github.com/tetframework/tonnikala/tonnikala-go/markup"
)

// activeEscape is the process-wide escaper used by buffers that were not
// given one of their own. It starts out empty.
var activeEscape atomic.Pointer[markup.EscapeFunc]

// ConfigureEscape replaces the process-wide escape function. The last call
// wins and affects only attribute output performed afterwards. Passing nil
// clears the slot.
//
// This is meant to be called once during startup. Code that needs
// different escaping per use should set it on the buffer instead.
func ConfigureEscape(fn markup.EscapeFunc) {
	if fn == nil {
		activeEscape.Store(nil)
		return
	}
	activeEscape.Store(&fn)
}

// EscapeFunc returns the process-wide escape function, or nil if none is
// configured.
func EscapeFunc() markup.EscapeFunc {
	if p := activeEscape.Load(); p != nil {
		return *p
	}
	return nil
}
