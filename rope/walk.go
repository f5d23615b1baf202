package rope

import (
	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// frame is a resume point in the depth-first traversal.
type frame struct {
	rope  *Rope
	index int
}

// walk calls emit for every leaf below r, depth-first and left to right.
// It keeps its own stack so deep trees cannot exhaust the goroutine stack.
func (r *Rope) walk(op string, maxDepth int, emit func(string) error) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	stack := make([]frame, 1, 8)
	stack[0] = frame{rope: r}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.index == len(top.rope.children) {
			stack = stack[:len(stack)-1]
			continue
		}
		ch := top.rope.children[top.index]
		top.index++

		if ch.sub == nil {
			if err := emit(ch.text); err != nil {
				return err
			}
			continue
		}
		if len(stack) >= maxDepth {
			return errors.Errorf(errors.ErrRecursionLimit, "rope nesting exceeds %d levels", maxDepth).
				WithOp(op).
				WithDebugInfo(&errors.DebugInfo{
					Depth:    len(stack),
					MaxDepth: maxDepth,
					Length:   r.length,
					Path:     framePath(stack),
				})
		}
		stack = append(stack, frame{rope: ch.sub})
	}
	return nil
}

// framePath returns the child index taken at each level of stack.
func framePath(stack []frame) []int {
	path := make([]int, len(stack))
	for i, f := range stack {
		path[i] = f.index - 1
	}
	return path
}
