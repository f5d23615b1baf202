// Package tonnikala provides the output construction layer of the Tonnikala
// template engine for Go.
//
// Compiled templates produce their output through the types in this
// module: ropes for lazily concatenated text, output buffers for flat
// fragment lists with attribute helpers, an HTML escaper, and a flattener
// for the nested sequences that loops and conditionals produce.
//
// # Quick Start
//
//	env := tonnikala.NewEnvironment()
//
//	buf, _ := env.NewBuffer("<input ")
//	_ = buf.OutputBooleanAttr("checked", true)
//	_ = buf.OutputBooleanAttr("value", `say "hi"`)
//	_ = buf.Append(">")
//	fmt.Println(buf.Join()) // <input checked value="say &#34;hi&#34;">
//
// # Ropes
//
// A Rope collects text and other ropes without copying anything until it
// is materialized:
//
//	page := env.NewRope()
//	body := env.NewRope()
//	_ = body.Append("<p>hello</p>")
//	_ = page.Append("<body>")
//	_ = page.Append(body) // body is now locked
//	_ = page.Append("</body>")
//	html, _ := env.Materialize(page)
//
// Once a rope has been appended to another it is locked and can no longer
// be modified. This makes cycles impossible.
//
// # Flattening
//
// Template output is often a tree of sequences. Render flattens such a
// tree depth-first and joins the text:
//
//	out, _ := env.Render([]any{"a", []any{"b", []any{"c"}}, "d"}) // abcd
//
// Generators (iter.Seq) are supported; abandoned generators are stopped
// so their deferred cleanup runs.
//
// # Escaping
//
// Escape replaces &, < and > (and optionally ") with entities. Text that
// needs no escaping is returned as the very same string.
//
// Attribute output escapes through the environment's escape function, or
// through the process-wide function set with ConfigureEscape when the
// environment has none. The process-wide function defaults to
// markup.EscapeAttr.
//
// # Error Handling
//
// All errors are *Error values with a Kind:
//
//	if _, err := env.Materialize(page); tonnikala.IsKind(err, tonnikala.ErrRecursionLimit) {
//	    fmt.Printf("%+v\n", err) // includes depth and path
//	}
package tonnikala

// Re-export commonly used types from subpackages
import (
	"github.com/tetframework/tonnikala/tonnikala-go/buffer"
	"github.com/tetframework/tonnikala/tonnikala-go/flatten"
	"github.com/tetframework/tonnikala/tonnikala-go/markup"
	"github.com/tetframework/tonnikala/tonnikala-go/rope"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// Rope is a lazily concatenated tree of text.
type Rope = rope.Rope

// Buffer is a flat list of output fragments.
type Buffer = buffer.Buffer

// Attr is a name/value pair for OutputAttrs.
type Attr = buffer.Attr

// Flattener walks nested sequences of text.
type Flattener = flatten.Flattener

// EscapeFunc escapes text for inclusion in markup.
type EscapeFunc = markup.EscapeFunc

// RenderFunc converts a value to display text.
type RenderFunc = value.RenderFunc

// SafeString is text that is already escaped.
type SafeString = value.SafeString

// Text and markup interfaces
type (
	TextRenderer = value.TextRenderer
	Markup       = value.Markup
)

// DefaultMaxDepth is the default nesting bound for ropes and flattening.
const DefaultMaxDepth = rope.DefaultMaxDepth

// Value helpers
var (
	FromSafeString = value.FromSafeString
	Text           = value.Text
)

func init() {
	buffer.ConfigureEscape(markup.EscapeAttr)
}

// Escape escapes &, < and >, and " if quotes is set. Text without
// reserved characters is returned unchanged.
func Escape(text string, quotes bool) string {
	return markup.Escape(text, quotes)
}

// ConfigureEscape replaces the process-wide escape function used by
// buffers that have none of their own. Call it during startup.
func ConfigureEscape(fn EscapeFunc) {
	buffer.ConfigureEscape(fn)
}
