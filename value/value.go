// Package value provides the text side of template values: the interfaces
// that let structures stand in for text or markup, and the default
// "render value as text" conversion used by output buffers.
//
// Text fragments are plain Go strings. Strings are immutable and copying a
// string never copies its bytes, so a fragment can be referenced by any
// number of ropes and buffers at once.
package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
)

// TextRenderer is implemented by values that can produce their own text,
// such as output buffers and ropes.
type TextRenderer interface {
	RenderText() (string, error)
}

// Markup is implemented by values that are already safe markup. Escapers
// pass them through unchanged.
type Markup interface {
	HTML() string
}

// RenderFunc converts an arbitrary value to display text.
type RenderFunc func(v any) (string, error)

// SafeString is a string that has already been escaped.
type SafeString string

// HTML returns the string unchanged.
func (s SafeString) HTML() string {
	return string(s)
}

// FromSafeString marks s as safe markup.
func FromSafeString(s string) SafeString {
	return SafeString(s)
}

// Same reports whether a and b are the same text value, that is whether
// they share their backing bytes rather than merely being equal.
func Same(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return unsafe.StringData(a) == unsafe.StringData(b)
}

// Text renders v as display text.
//
// Strings are returned as-is. Values implementing TextRenderer or Markup
// render themselves; booleans, numbers and none follow the conventions of
// the template language (True, False, None, 1.0).
func Text(v any) (string, error) {
	switch d := v.(type) {
	case nil:
		return "None", nil
	case string:
		return d, nil
	case SafeString:
		return string(d), nil
	case TextRenderer:
		if IsNilPointer(d) {
			return "", nilOperand(d)
		}
		return d.RenderText()
	case Markup:
		if IsNilPointer(d) {
			return "", nilOperand(d)
		}
		return d.HTML(), nil
	case bool:
		if d {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(d), nil
	case int64:
		return strconv.FormatInt(d, 10), nil
	case int32:
		return strconv.FormatInt(int64(d), 10), nil
	case uint:
		return strconv.FormatUint(uint64(d), 10), nil
	case uint64:
		return strconv.FormatUint(d, 10), nil
	case float64:
		return formatFloat(d), nil
	case float32:
		return formatFloat(float64(d)), nil
	case []byte:
		return string(d), nil
	case error:
		return d.Error(), nil
	case fmt.Stringer:
		return d.String(), nil
	}
	return fromReflectValue(reflect.ValueOf(v))
}

// IsNilPointer reports whether v is a nil pointer wrapped in a non-nil
// interface, such as a nil *Rope passed as a TextRenderer.
func IsNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func nilOperand(v any) *errors.Error {
	return errors.Errorf(errors.ErrInvalidOperand, "cannot render a nil %T", v)
}

// MustText is like Text but returns the error text instead of failing.
// It is meant for diagnostics, not for output.
func MustText(v any) string {
	s, err := Text(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func fromReflectValue(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float()), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return Text(rv.Bool())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = Repr(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case reflect.Map:
		keys := rv.MapKeys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, Repr(k.Interface())+": "+Repr(rv.MapIndex(k).Interface()))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}", nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "None", nil
		}
		return Text(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", rv.Interface()), nil
}

// Repr returns the representation of v as it appears inside rendered
// sequences and mappings: strings are quoted, everything else renders as
// text.
func Repr(v any) string {
	switch d := v.(type) {
	case string:
		return fmt.Sprintf("%q", d)
	case SafeString:
		return fmt.Sprintf("%q", string(d))
	}
	return MustText(v)
}

func formatFloat(d float64) string {
	if math.IsInf(d, 1) {
		return "inf"
	}
	if math.IsInf(d, -1) {
		return "-inf"
	}
	if math.IsNaN(d) {
		return "nan"
	}
	if d == math.Trunc(d) && math.Abs(d) < 1e15 {
		return fmt.Sprintf("%.1f", d)
	}
	return strconv.FormatFloat(d, 'g', -1, 64)
}
