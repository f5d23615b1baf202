package flatten

import (
	"iter"
	"reflect"

	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// Iterable is implemented by values that produce a fresh sequence of
// elements each time they are iterated.
type Iterable interface {
	Iterate() iter.Seq[any]
}

// Iterator is a pull iterator that can fail and may hold resources until
// it is closed. Close is called exactly once, whether or not the iterator
// was exhausted.
type Iterator interface {
	Next() (any, bool, error)
	Close() error
}

// frame is one active iterator on the flattener's stack.
type frame struct {
	next  func() (any, bool, error)
	close func() error
	index int // elements taken so far
}

func (f *frame) release() error {
	if f.close == nil {
		return nil
	}
	closeFn := f.close
	f.close = nil
	return closeFn()
}

// asText reports whether v is a text element and returns its text.
func asText(v any) (string, bool, error) {
	switch t := v.(type) {
	case string:
		return t, true, nil
	case value.TextRenderer, value.Markup:
		s, err := value.Text(t)
		return s, true, err
	}
	return "", false, nil
}

// open returns an iterator frame for v if v is iterable.
func open(v any) (frame, bool) {
	switch it := v.(type) {
	case nil:
		return frame{}, false
	case []any:
		return sliceFrame(len(it), func(i int) any { return it[i] }), true
	case []string:
		return sliceFrame(len(it), func(i int) any { return it[i] }), true
	case iter.Seq[any]:
		return pullFrame(it), true
	case func(func(any) bool):
		return pullFrame(it), true
	case iter.Seq[string]:
		return pullFrame(func(yield func(any) bool) {
			for s := range it {
				if !yield(s) {
					return
				}
			}
		}), true
	case func(func(string) bool):
		return open(iter.Seq[string](it))
	case iter.Seq2[any, error]:
		return pull2Frame(it), true
	case func(func(any, error) bool):
		return pull2Frame(it), true
	case Iterator:
		return frame{next: it.Next, close: it.Close}, true
	case Iterable:
		seq := it.Iterate()
		if seq == nil {
			return sliceFrame(0, nil), true
		}
		return pullFrame(seq), true
	}

	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		return sliceFrame(rv.Len(), func(i int) any { return rv.Index(i).Interface() }), true
	}
	return frame{}, false
}

func sliceFrame(n int, at func(int) any) frame {
	i := 0
	return frame{
		next: func() (any, bool, error) {
			if i >= n {
				return nil, false, nil
			}
			v := at(i)
			i++
			return v, true, nil
		},
	}
}

// pullFrame converts a push iterator into a frame. Closing the frame stops
// the underlying generator, running its deferred cleanup.
func pullFrame(seq iter.Seq[any]) frame {
	next, stop := iter.Pull(seq)
	return frame{
		next: func() (any, bool, error) {
			v, ok := next()
			return v, ok, nil
		},
		close: func() error {
			stop()
			return nil
		},
	}
}

func pull2Frame(seq iter.Seq2[any, error]) frame {
	next, stop := iter.Pull2(seq)
	return frame{
		next: func() (any, bool, error) {
			v, err, ok := next()
			if !ok {
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		},
		close: func() error {
			stop()
			return nil
		},
	}
}
