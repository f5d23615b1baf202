// Package rope provides an append-only rope for lazy string concatenation.
//
// A Rope is an n-ary tree whose leaves are strings and whose inner nodes
// are other ropes. Appending never copies text; the final string is built
// once, by Materialize, into a buffer of exactly the right size.
//
//	head := rope.New()
//	head.Append("<title>")
//	head.Append(title)
//	head.Append("</title>")
//
//	page := rope.New()
//	page.Append(head) // head is now locked
//	page.Append(body)
//	html, err := page.Materialize()
//
// A rope appended into another rope becomes locked: its length has been
// accounted for by the parent, so it can never be appended to again. It can
// still be materialized on its own, and it may be shared by any number of
// parents.
//
// Ropes are not safe for concurrent use. The state checks only catch
// reentrant misuse within a single goroutine.
package rope

import (
	"io"
	"math"
	"strings"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

const (
	initialCapacity = 16
	maxChildren     = math.MaxInt32

	// DefaultMaxDepth bounds the nesting depth Materialize will traverse.
	DefaultMaxDepth = 1024
)

// child is either a text leaf or a sub-rope.
type child struct {
	text string
	sub  *Rope
}

func (c child) length() int {
	if c.sub != nil {
		return c.sub.length
	}
	return len(c.text)
}

// Rope is an append-only tree of text fragments.
type Rope struct {
	children []child
	length   int
	locked   bool
	activity activity
}

// New creates an empty rope.
func New() *Rope {
	return &Rope{}
}

// Append appends a string or a *Rope to r. Any other operand is rejected
// with ErrInvalidOperand.
func (r *Rope) Append(v any) error {
	switch c := v.(type) {
	case string:
		return r.AppendString(c)
	case *Rope:
		return r.AppendRope(c)
	}
	return errors.Errorf(errors.ErrInvalidOperand, "append must be given a string or a *Rope, not %T", v).
		WithOp("rope.append")
}

// AppendString appends a text leaf to r.
func (r *Rope) AppendString(s string) error {
	if err := r.checkAppendable(); err != nil {
		return err
	}
	return r.push(child{text: s})
}

// AppendRope appends c as a sub-tree of r and locks c.
func (r *Rope) AppendRope(c *Rope) error {
	if c == nil {
		return errors.NewError(errors.ErrInvalidOperand, "cannot append a nil rope").WithOp("rope.append")
	}
	if c == r {
		return errors.NewError(errors.ErrSelfReference, "cannot add rope to itself").WithOp("rope.append")
	}
	if err := r.checkAppendable(); err != nil {
		return err
	}
	return r.push(child{sub: c})
}

func (r *Rope) checkAppendable() error {
	if r.locked || r.activity != idle {
		return errors.Errorf(errors.ErrLockedState, "this rope cannot be appended to now (%s)", r.State()).
			WithOp("rope.append")
	}
	return nil
}

// push adds ch, leaving r untouched if it fails.
func (r *Rope) push(ch child) error {
	r.activity = modifying
	defer func() { r.activity = idle }()

	n := ch.length()
	if n > math.MaxInt-r.length {
		return errors.Errorf(errors.ErrOutOfMemory, "rope length would overflow (%d + %d)", r.length, n).
			WithOp("rope.append")
	}
	if err := r.grow(); err != nil {
		return err
	}

	if ch.sub != nil {
		ch.sub.locked = true
	}
	r.length += n
	r.children = append(r.children, ch)
	return nil
}

// grow makes room for one more child, doubling the capacity when full.
func (r *Rope) grow() error {
	size := cap(r.children)
	if len(r.children) < size {
		return nil
	}
	next := initialCapacity
	if size > 0 {
		if size > maxChildren/2 {
			return errors.Errorf(errors.ErrOutOfMemory, "rope cannot hold more than %d children", size).
				WithOp("rope.append")
		}
		next = size * 2
	}
	grown := make([]child, len(r.children), next)
	copy(grown, r.children)
	r.children = grown
	return nil
}

// Len returns the length of the materialized text in bytes.
func (r *Rope) Len() int {
	return r.length
}

// NumChildren returns the number of direct children.
func (r *Rope) NumChildren() int {
	return len(r.children)
}

// Locked reports whether r has been appended into another rope.
func (r *Rope) Locked() bool {
	return r.locked
}

// State returns the current state of r. Transient states take precedence
// over the locked flag.
func (r *Rope) State() State {
	switch {
	case r.activity == modifying:
		return StateModifying
	case r.activity == flattening:
		return StateFlattening
	case r.locked:
		return StateLocked
	default:
		return StateFree
	}
}

// Materialize builds the string r represents.
func (r *Rope) Materialize() (string, error) {
	return r.MaterializeDepth(DefaultMaxDepth)
}

// MaterializeDepth is like Materialize with an explicit nesting bound. A
// bound of zero or less means DefaultMaxDepth.
func (r *Rope) MaterializeDepth(maxDepth int) (string, error) {
	if err := r.beginFlatten("rope.materialize"); err != nil {
		return "", err
	}
	defer r.endFlatten()

	var b strings.Builder
	b.Grow(r.length)
	err := r.walk("rope.materialize", maxDepth, func(s string) error {
		b.WriteString(s)
		return nil
	})
	if err != nil {
		return "", err
	}
	if b.Len() != r.length {
		return "", errors.Errorf(errors.ErrInvalidState, "materialized %d bytes, expected %d", b.Len(), r.length).
			WithOp("rope.materialize")
	}
	return b.String(), nil
}

// WriteTo writes the text of r to w leaf by leaf without building the
// final string.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	if err := r.beginFlatten("rope.write"); err != nil {
		return 0, err
	}
	defer r.endFlatten()

	var written int64
	err := r.walk("rope.write", DefaultMaxDepth, func(s string) error {
		n, err := io.WriteString(w, s)
		written += int64(n)
		return err
	})
	return written, err
}

// RenderText materializes r. It lets a rope be used wherever text is
// expected.
func (r *Rope) RenderText() (string, error) {
	if r == nil {
		return "", errors.NewError(errors.ErrInvalidOperand, "cannot render a nil rope").
			WithOp("rope.render_text")
	}
	return r.Materialize()
}

func (r *Rope) beginFlatten(op string) error {
	switch r.activity {
	case modifying:
		return errors.NewError(errors.ErrInvalidState,
			"cannot convert the rope to a string while a modify operation is in progress").WithOp(op)
	case flattening:
		return errors.NewError(errors.ErrInvalidState, "rope is already being materialized").WithOp(op)
	}
	r.activity = flattening
	return nil
}

func (r *Rope) endFlatten() {
	r.activity = idle
}
