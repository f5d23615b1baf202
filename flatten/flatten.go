// Package flatten linearizes nested template output.
//
// Compiled template functions return text, or sequences of text and
// further sequences (conditionals and loops compile to nested
// generators). A Flattener walks such a structure depth-first, left to
// right, and yields only the text:
//
//	f := flatten.New([]any{[]any{"a", "b"}, []any{"c", []any{"d"}}, "e"})
//	defer f.Close()
//	for s, err := range f.All() {
//	    ...
//	}
//
// Nesting depth is controlled by template authors, so the traversal keeps
// an explicit stack of iterator frames instead of recursing. Every frame
// still open when an error occurs, or when the caller stops early, is
// closed innermost first; for generators this runs their deferred
// cleanup.
//
// Supported iterables are []any, other slices and arrays (except []byte),
// iter.Seq[any], iter.Seq[string], iter.Seq2[any, error] (a generator
// that can fail), Iterable and Iterator. Text elements are strings and
// values implementing value.TextRenderer or value.Markup.
package flatten

import (
	goerrors "errors"
	"iter"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// DefaultMaxDepth bounds the number of simultaneously open iterators.
const DefaultMaxDepth = 1024

// Flattener is a single-pass, consuming traversal of a nested iterable.
// It is not safe for concurrent use.
type Flattener struct {
	root     any
	stack    []frame
	maxDepth int
	fuel     *fuelTracker
	emitted  int
	started  bool
	done     bool
	err      error
}

// New creates a flattener for root. Nothing is iterated until the first
// call to Next.
func New(root any) *Flattener {
	return &Flattener{root: root, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth sets the nesting bound. Values of zero or less restore
// DefaultMaxDepth. It must be called before the first Next.
func (f *Flattener) SetMaxDepth(n int) *Flattener {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	f.maxDepth = n
	return f
}

// SetFuel limits the number of fragments the flattener may produce. Zero
// means unlimited.
func (f *Flattener) SetFuel(n uint64) *Flattener {
	if n == 0 {
		f.fuel = nil
		return f
	}
	f.fuel = newFuelTracker(n)
	return f
}

// Emitted returns the number of fragments produced so far.
func (f *Flattener) Emitted() int {
	return f.emitted
}

// RemainingFuel returns the unused fragment budget, or 0 without one.
func (f *Flattener) RemainingFuel() uint64 {
	if f.fuel == nil {
		return 0
	}
	return f.fuel.remainingFuel()
}

// Depth returns the number of currently open iterators.
func (f *Flattener) Depth() int {
	return len(f.stack)
}

// Next returns the next text fragment. It returns ok == false once the
// traversal is exhausted, closed, or has failed; after a failure every
// further call returns the same error.
func (f *Flattener) Next() (string, bool, error) {
	if f.done {
		return "", false, f.err
	}
	if !f.started {
		f.started = true
		fr, ok := open(f.root)
		if !ok {
			return f.fail(errors.Errorf(errors.ErrInvalidOperand,
				"flatten root must be iterable, not %T", f.root).WithOp("flatten.next"))
		}
		f.stack = append(f.stack, fr)
	}

	for len(f.stack) > 0 {
		top := &f.stack[len(f.stack)-1]
		v, ok, err := top.next()
		if err != nil {
			return f.fail(err)
		}
		if !ok {
			closeErr := top.release()
			f.stack = f.stack[:len(f.stack)-1]
			if closeErr != nil {
				return f.fail(closeErr)
			}
			continue
		}
		top.index++

		if text, isText, err := asText(v); isText {
			if err != nil {
				var e *errors.Error
				if goerrors.As(err, &e) && e.Op == "" {
					err = e.WithOp("flatten.next").WithDebugInfo(f.debugInfo())
				}
				return f.fail(err)
			}
			if f.fuel != nil {
				if err := f.fuel.consume(1); err != nil {
					return f.fail(err.(*errors.Error).WithOp("flatten.next").WithDebugInfo(f.debugInfo()))
				}
			}
			f.emitted++
			return text, true, nil
		}

		child, ok := open(v)
		if !ok {
			return f.fail(errors.Errorf(errors.ErrInvalidOperand,
				"flatten element must be text or iterable, not %T", v).
				WithOp("flatten.next").WithDebugInfo(f.debugInfo()))
		}
		if len(f.stack) >= f.maxDepth {
			closeErr := child.release()
			err := errors.Errorf(errors.ErrRecursionLimit, "iterable nesting exceeds %d levels", f.maxDepth).
				WithOp("flatten.next").WithDebugInfo(f.debugInfo())
			if closeErr != nil {
				return f.fail(goerrors.Join(err, closeErr))
			}
			return f.fail(err)
		}
		f.stack = append(f.stack, child)
	}

	f.done = true
	return "", false, nil
}

// Close releases every open iterator, innermost first. It is safe to call
// more than once and after the traversal has finished.
func (f *Flattener) Close() error {
	f.done = true
	return f.releaseAll()
}

// All returns the remaining fragments as a range-over-func sequence. The
// flattener is closed when the loop ends, including on break.
func (f *Flattener) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer f.Close()
		for {
			s, ok, err := f.Next()
			if err != nil {
				yield("", err)
				return
			}
			if !ok {
				return
			}
			if !yield(s, nil) {
				return
			}
		}
	}
}

func (f *Flattener) fail(err error) (string, bool, error) {
	if closeErr := f.releaseAll(); closeErr != nil {
		err = goerrors.Join(err, closeErr)
	}
	f.done = true
	f.err = err
	return "", false, err
}

func (f *Flattener) releaseAll() error {
	var errs []error
	for i := len(f.stack) - 1; i >= 0; i-- {
		if err := f.stack[i].release(); err != nil {
			errs = append(errs, err)
		}
	}
	f.stack = f.stack[:0]
	return goerrors.Join(errs...)
}

func (f *Flattener) debugInfo() *errors.DebugInfo {
	path := make([]int, len(f.stack))
	for i, fr := range f.stack {
		path[i] = fr.index - 1
	}
	return &errors.DebugInfo{
		Depth:     len(f.stack),
		MaxDepth:  f.maxDepth,
		Path:      path,
		Emitted:   f.emitted,
		Remaining: len(f.stack),
	}
}

// Flatten returns the text fragments of root as a sequence.
func Flatten(root any) iter.Seq2[string, error] {
	return New(root).All()
}

// Collect flattens root into a slice.
func Collect(root any) ([]string, error) {
	f := New(root)
	defer f.Close()

	var out []string
	for {
		s, ok, err := f.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, s)
	}
}
