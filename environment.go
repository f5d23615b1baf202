package tonnikala

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/tetframework/tonnikala/tonnikala-go/buffer"
	"github.com/tetframework/tonnikala/tonnikala-go/flatten"
	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
	"github.com/tetframework/tonnikala/tonnikala-go/markup"
	"github.com/tetframework/tonnikala/tonnikala-go/rope"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// Environment holds the output configuration shared by everything created
// from it. It is safe for concurrent use; the buffers, ropes and
// flatteners it creates are not.
type Environment struct {
	mu       sync.RWMutex
	escape   EscapeFunc
	render   RenderFunc
	maxDepth int
	fuel     uint64
	logger   *slog.Logger
}

// settings is a consistent copy of the environment's configuration.
type settings struct {
	escape   EscapeFunc
	render   RenderFunc
	maxDepth int
	fuel     uint64
	logger   *slog.Logger
}

// NewEnvironment creates a new environment with default settings:
// attribute escaping with markup.EscapeAttr, value.Text rendering,
// DefaultMaxDepth and no fragment budget.
func NewEnvironment() *Environment {
	return &Environment{
		escape:   markup.EscapeAttr,
		render:   value.Text,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// EmptyEnvironment creates an environment without an escape function.
// Buffers created from it use the process-wide escaper.
func EmptyEnvironment() *Environment {
	return &Environment{
		render:   value.Text,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// SetEscapeFunc sets the attribute escaper. Nil defers to the
// process-wide escaper.
func (e *Environment) SetEscapeFunc(fn EscapeFunc) {
	e.mu.Lock()
	e.escape = fn
	logger := e.logger
	e.mu.Unlock()
	logger.Debug("escape function replaced", "process_wide", fn == nil)
}

// SetRenderFunc sets the function that turns non-text values into text.
// Nil restores value.Text.
func (e *Environment) SetRenderFunc(fn RenderFunc) {
	if fn == nil {
		fn = value.Text
	}
	e.mu.Lock()
	e.render = fn
	e.mu.Unlock()
}

// SetMaxDepth sets the nesting bound for materializing and flattening.
// Values of zero or less restore DefaultMaxDepth.
func (e *Environment) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	e.mu.Lock()
	e.maxDepth = n
	e.mu.Unlock()
}

// SetFuel limits the number of fragments a single flatten may produce.
// Zero disables the limit.
func (e *Environment) SetFuel(n uint64) {
	e.mu.Lock()
	e.fuel = n
	e.mu.Unlock()
}

// SetLogger sets the logger. Nil discards all output.
func (e *Environment) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// MaxDepth returns the configured nesting bound.
func (e *Environment) MaxDepth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxDepth
}

// Fuel returns the configured fragment budget, 0 meaning unlimited.
func (e *Environment) Fuel() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fuel
}

func (e *Environment) snapshot() settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return settings{
		escape:   e.escape,
		render:   e.render,
		maxDepth: e.maxDepth,
		fuel:     e.fuel,
		logger:   e.logger,
	}
}

func (s settings) newBuffer() *buffer.Buffer {
	return buffer.New().SetEscapeFunc(s.escape).SetRenderer(s.render)
}

// NewBuffer creates a buffer using the environment's escaper and renderer
// and appends values to it.
func (e *Environment) NewBuffer(values ...any) (*buffer.Buffer, error) {
	b := e.snapshot().newBuffer()
	if err := b.Append(values...); err != nil {
		return nil, err
	}
	return b, nil
}

// NewRope creates an empty rope.
func (e *Environment) NewRope() *rope.Rope {
	return rope.New()
}

// Materialize returns the text of r, bounded by the environment's depth
// limit.
func (e *Environment) Materialize(r *rope.Rope) (string, error) {
	s := e.snapshot()
	if r == nil {
		return "", errors.NewError(errors.ErrInvalidOperand, "cannot materialize a nil rope").
			WithOp("rope.materialize")
	}
	text, err := r.MaterializeDepth(s.maxDepth)
	if err != nil {
		s.logger.Debug("materialize failed", "length", r.Len(), "error", err)
		return "", err
	}
	return text, nil
}

// Flatten creates a flattener for root with the environment's depth limit
// and fragment budget. The caller must drain or Close it.
func (e *Environment) Flatten(root any) *flatten.Flattener {
	s := e.snapshot()
	return s.flattener(root)
}

func (s settings) flattener(root any) *flatten.Flattener {
	return flatten.New(root).SetMaxDepth(s.maxDepth).SetFuel(s.fuel)
}

// Render produces the text of root. Ropes are materialized. Strings,
// buffers, markup and other TextRenderer values are rendered directly.
// Anything else is flattened into a buffer and joined. No partial output is returned on error.
func (e *Environment) Render(root any) (string, error) {
	s := e.snapshot()

	switch r := root.(type) {
	case string:
		return r, nil
	case *rope.Rope:
		return e.Materialize(r)
	case *buffer.Buffer:
		if r == nil {
			return "", errors.NewError(errors.ErrInvalidOperand, "cannot render a nil buffer").WithOp("render")
		}
		return r.Join(), nil
	case value.TextRenderer, value.Markup:
		return value.Text(r)
	}

	b := s.newBuffer()
	f := s.flattener(root)
	defer f.Close()
	for text, err := range f.All() {
		if err != nil {
			s.logger.Debug("render failed",
				"emitted", f.Emitted(),
				"error", err)
			return "", err
		}
		if err := b.Append(text); err != nil {
			return "", err
		}
	}
	s.logger.Debug("rendered", "fragments", b.Len(), "bytes", b.Size())
	return b.Join(), nil
}

// OutputAttrs writes a set of attributes into a new buffer with
// OutputBooleanAttr. attrs may be a map[string]any (written in sorted key
// order), a []Attr, or an iter.Seq2[string, any]; nil yields an empty
// buffer.
func (e *Environment) OutputAttrs(attrs any) (*buffer.Buffer, error) {
	b := e.snapshot().newBuffer()

	var list []buffer.Attr
	switch a := attrs.(type) {
	case nil:
		return b, nil
	case map[string]any:
		list = make([]buffer.Attr, 0, len(a))
		for _, k := range slices.Sorted(maps.Keys(a)) {
			list = append(list, buffer.Attr{Name: k, Value: a[k]})
		}
	case []buffer.Attr:
		list = a
	case iter.Seq2[string, any]:
		for k, v := range a {
			list = append(list, buffer.Attr{Name: k, Value: v})
		}
	default:
		return nil, errors.Errorf(errors.ErrInvalidOperand,
			"attributes must be a map or a list of pairs, not %T", attrs).
			WithOp("output_attrs")
	}

	if err := b.OutputAttrs(list); err != nil {
		return nil, err
	}
	return b, nil
}
