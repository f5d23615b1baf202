// Package buffer provides the flat output buffer that compiled templates
// write into.
//
// A Buffer is an ordered list of text fragments. Unlike a rope it never
// nests: appending one buffer to another copies the fragment references
// across. Joining the buffer produces the rendered text.
//
//	b := buffer.New()
//	_ = b.Append("<input")
//	_ = b.OutputBooleanAttr("value", `a"b`)
//	_ = b.Append(">")
//	b.Join() // <input value="a&#34;b">
//
// Attribute values are escaped with the buffer's own escape function if it
// has one, otherwise with the process-wide function installed by
// ConfigureEscape.
package buffer

import (
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
	"github.com/tetframework/tonnikala/tonnikala-go/markup"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// Attr is a single attribute for OutputAttrs.
type Attr struct {
	Name  string
	Value any
}

// Buffer collects output fragments. The zero value is ready to use. A
// Buffer is not safe for concurrent use.
type Buffer struct {
	fragments []string
	escape    markup.EscapeFunc
	render    value.RenderFunc
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// SetEscapeFunc sets the escaper used for attribute values, overriding the
// process-wide one. Passing nil restores the process-wide escaper.
func (b *Buffer) SetEscapeFunc(fn markup.EscapeFunc) *Buffer {
	b.escape = fn
	return b
}

// SetRenderer sets the function used to turn non-text values into text.
// Passing nil restores value.Text.
func (b *Buffer) SetRenderer(fn value.RenderFunc) *Buffer {
	b.render = fn
	return b
}

func (b *Buffer) renderer() value.RenderFunc {
	if b.render != nil {
		return b.render
	}
	return value.Text
}

func (b *Buffer) escapeFunc() markup.EscapeFunc {
	if b.escape != nil {
		return b.escape
	}
	return EscapeFunc()
}

// Append adds values to the end of the buffer. Strings are stored as-is,
// the fragments of another Buffer are spliced in, and anything else is
// converted with the buffer's renderer. A nil value is rejected.
//
// If any value fails, none of the values are added.
func (b *Buffer) Append(values ...any) error {
	mark := len(b.fragments)
	for _, v := range values {
		if err := b.appendOne(v); err != nil {
			b.truncate(mark)
			return err
		}
	}
	return nil
}

func (b *Buffer) appendOne(v any) error {
	switch t := v.(type) {
	case nil:
		return errors.NewError(errors.ErrInvalidOperand, "cannot append none to a buffer").
			WithOp("buffer.append")
	case string:
		b.fragments = append(b.fragments, t)
	case *Buffer:
		if t == nil {
			return errors.NewError(errors.ErrInvalidOperand, "cannot append a nil buffer").
				WithOp("buffer.append")
		}
		b.fragments = append(b.fragments, t.fragments...)
	default:
		s, err := b.renderer()(v)
		if err != nil {
			return err
		}
		b.fragments = append(b.fragments, s)
	}
	return nil
}

func (b *Buffer) truncate(n int) {
	clear(b.fragments[n:])
	b.fragments = b.fragments[:n]
}

// OutputBooleanAttr writes an attribute whose presence depends on v.
//
// Nil and false write nothing. True writes the bare name. Any other value
// is rendered, escaped and written as ` name="value"`; markup values are
// written without escaping.
func (b *Buffer) OutputBooleanAttr(name string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			b.fragments = append(b.fragments, name)
		}
		return nil
	}

	escape := b.escapeFunc()
	if escape == nil {
		return errors.Errorf(errors.ErrEscapeFunctionMissing,
			"no escape function configured for attribute %q", name).
			WithOp("buffer.output_boolean_attr")
	}

	var escaped string
	if m, ok := v.(value.Markup); ok && !value.IsNilPointer(m) {
		escaped = m.HTML()
	} else {
		s, err := b.renderer()(v)
		if err != nil {
			return err
		}
		escaped = escape(s)
	}
	b.fragments = append(b.fragments, " ", name, `="`, escaped, `"`)
	return nil
}

// OutputAttrs writes each attribute in order with OutputBooleanAttr. On
// error the buffer is left as it was.
func (b *Buffer) OutputAttrs(attrs []Attr) error {
	mark := len(b.fragments)
	for _, a := range attrs {
		if err := b.OutputBooleanAttr(a.Name, a.Value); err != nil {
			b.truncate(mark)
			return err
		}
	}
	return nil
}

// Join returns the concatenation of all fragments. It does not modify the
// buffer.
func (b *Buffer) Join() string {
	return strings.Join(b.fragments, "")
}

// String returns the joined text.
func (b *Buffer) String() string {
	return b.Join()
}

// RenderText returns the joined text, so a buffer can be used wherever a
// value is rendered as text.
func (b *Buffer) RenderText() (string, error) {
	return b.Join(), nil
}

// HTML returns the joined text. Buffer contents are already escaped
// markup.
func (b *Buffer) HTML() string {
	return b.Join()
}

// Len returns the number of fragments.
func (b *Buffer) Len() int {
	return len(b.fragments)
}

// Size returns the length of the joined text in bytes.
func (b *Buffer) Size() int {
	n := 0
	for _, f := range b.fragments {
		n += len(f)
	}
	return n
}

// Fragments iterates over the fragments in order.
func (b *Buffer) Fragments() iter.Seq[string] {
	return slices.Values(b.fragments)
}

// WriteTo writes the fragments to w without joining them first.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range b.fragments {
		n, err := io.WriteString(w, f)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
