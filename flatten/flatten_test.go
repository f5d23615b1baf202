package flatten

import (
	goerrors "errors"
	"fmt"
	"iter"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/tetframework/tonnikala/tonnikala-go/internal/errors"
	"github.com/tetframework/tonnikala/tonnikala-go/internal/testutil"
	"github.com/tetframework/tonnikala/tonnikala-go/rope"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// gen returns a generator that records name in log when it finishes,
// whether it ran to completion or was stopped.
func gen(log *[]string, name string, items ...any) iter.Seq[any] {
	return func(yield func(any) bool) {
		defer func() { *log = append(*log, name) }()
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// failing yields items and then err.
func failing(log *[]string, name string, err error, items ...any) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		defer func() { *log = append(*log, name) }()
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		yield(nil, err)
	}
}

type recordingIterator struct {
	name     string
	items    []any
	err      error
	closeErr error
	log      *[]string
}

func (it *recordingIterator) Next() (any, bool, error) {
	if len(it.items) == 0 {
		return nil, false, it.err
	}
	v := it.items[0]
	it.items = it.items[1:]
	return v, true, nil
}

func (it *recordingIterator) Close() error {
	*it.log = append(*it.log, it.name)
	return it.closeErr
}

type repeat struct {
	s string
	n int
}

func (r repeat) Iterate() iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := 0; i < r.n; i++ {
			if !yield(r.s) {
				return
			}
		}
	}
}

func drain(f *Flattener) ([]string, error) {
	var out []string
	for {
		s, ok, err := f.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, s)
	}
}

func TestCollectNested(t *testing.T) {
	root := []any{[]any{"a", "b"}, []any{"c", []any{"d"}}, "e"}
	got, err := Collect(root)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
}

func TestFlattenFixtures(t *testing.T) {
	inputs, err := testutil.GlobTestInputs(filepath.Join("testdata", "flatten", "*.txt"))
	if err != nil {
		t.Fatalf("failed to glob inputs: %v", err)
	}
	if len(inputs) == 0 {
		t.Fatal("no flatten fixtures found")
	}

	for _, path := range inputs {
		t.Run(filepath.Base(path), func(t *testing.T) {
			input, err := testutil.ParseTestInputFile(path)
			if err != nil {
				t.Fatalf("failed to parse input: %v", err)
			}

			f := New(input.Input)
			if input.Settings != nil {
				f.SetMaxDepth(input.Settings.MaxDepth)
			}
			defer f.Close()
			fragments, err := drain(f)

			if input.Settings.ExpectsError() {
				kind, ok := errors.Kind(err)
				if !ok {
					t.Fatalf("expected %s error, got %v", input.Settings.Error, err)
				}
				if kind.String() != input.Settings.Error {
					t.Errorf("error kind = %q, want %q", kind, input.Settings.Error)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			result := &testutil.TestResult{
				Name:     path,
				Expected: input.Expected,
				Actual:   strings.Join(fragments, "|"),
			}
			if diff := result.Diff(); diff != "" {
				t.Errorf("flatten mismatch:\n%s", diff)
			}
		})
	}
}

func TestFlattenElementKinds(t *testing.T) {
	r := rope.New()
	if err := r.Append("<rope>"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		root any
		want []string
	}{
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"nested string slices", [][]string{{"a"}, {"b", "c"}}, []string{"a", "b", "c"}},
		{"array", [2]string{"x", "y"}, []string{"x", "y"}},
		{"string seq", slices.Values([]string{"s", "t"}), []string{"s", "t"}},
		{"unnamed generator", func(yield func(any) bool) {
			_ = yield("g1") && yield([]any{"g2"})
		}, []string{"g1", "g2"}},
		{"fallible generator", func(yield func(any, error) bool) {
			_ = yield("f1", nil) && yield("f2", nil)
		}, []string{"f1", "f2"}},
		{"iterable", []any{repeat{"r", 3}}, []string{"r", "r", "r"}},
		{"rope element", []any{"a", r, "b"}, []string{"a", "<rope>", "b"}},
		{"markup element", []any{value.SafeString("<b>")}, []string{"<b>"}},
		{"nil iterable seq", []any{nilIterable{}, "after"}, []string{"after"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(tt.root)
			if err != nil {
				t.Fatalf("Collect() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Collect() = %q, want %q", got, tt.want)
			}
		})
	}
}

type nilIterable struct{}

func (nilIterable) Iterate() iter.Seq[any] { return nil }

func TestFlattenInvalidOperand(t *testing.T) {
	tests := []struct {
		name string
		root any
	}{
		{"nil root", nil},
		{"string root", "abc"},
		{"int root", 42},
		{"bytes root", []byte("abc")},
		{"int element", []any{"a", 1}},
		{"nil element", []any{nil}},
		{"int slice element", []any{[]int{1}}},
		{"nil rope element", []any{"a", (*rope.Rope)(nil)}},
		{"nil rope in generator", func(yield func(any) bool) {
			yield((*rope.Rope)(nil))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.root)
			if !errors.IsKind(err, errors.ErrInvalidOperand) {
				t.Errorf("Collect(%#v) error = %v, want invalid operand", tt.root, err)
			}
		})
	}
}

func TestFlattenErrorIsSticky(t *testing.T) {
	f := New([]any{"a", 3.5, "b"})
	s, ok, err := f.Next()
	if err != nil || !ok || s != "a" {
		t.Fatalf("first Next() = %q, %v, %v", s, ok, err)
	}
	_, ok, err = f.Next()
	if ok || err == nil {
		t.Fatalf("second Next() = %v, %v, want failure", ok, err)
	}
	for range 3 {
		_, ok, again := f.Next()
		if ok || again != err {
			t.Errorf("Next() after failure = %v, %v, want %v", ok, again, err)
		}
	}
}

func TestGeneratorCleanupOnError(t *testing.T) {
	var log []string
	boom := goerrors.New("boom")
	root := []any{
		"a",
		gen(&log, "outer", "b",
			gen(&log, "middle",
				failing(&log, "inner", boom, "c"))),
		"unreached",
	}

	f := New(root)
	got, err := drain(f)
	if !goerrors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("fragments before failure = %q, want %q", got, want)
	}
	if want := []string{"inner", "middle", "outer"}; !slices.Equal(log, want) {
		t.Errorf("cleanup order = %q, want %q", log, want)
	}
	if f.Depth() != 0 {
		t.Errorf("Depth() after failure = %d, want 0", f.Depth())
	}
}

func TestGeneratorCleanupOnBreak(t *testing.T) {
	var log []string
	f := New([]any{gen(&log, "outer", "a", gen(&log, "inner", "b", "c"), "d")})

	var got []string
	for s, err := range f.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, s)
		if s == "b" {
			break
		}
	}
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("fragments = %q, want %q", got, want)
	}
	if want := []string{"inner", "outer"}; !slices.Equal(log, want) {
		t.Errorf("cleanup order = %q, want %q", log, want)
	}
	if s, ok, err := f.Next(); ok || err != nil {
		t.Errorf("Next() after break = %q, %v, %v", s, ok, err)
	}
}

func TestGeneratorCleanupOnExhaustion(t *testing.T) {
	var log []string
	got, err := Collect([]any{gen(&log, "outer", gen(&log, "inner", "x"), "y")})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if want := []string{"x", "y"}; !slices.Equal(got, want) {
		t.Errorf("Collect() = %q, want %q", got, want)
	}
	if want := []string{"inner", "outer"}; !slices.Equal(log, want) {
		t.Errorf("cleanup order = %q, want %q", log, want)
	}
}

func TestIteratorCloseOrder(t *testing.T) {
	var log []string
	boom := goerrors.New("boom")
	outerErr := goerrors.New("outer close")
	innerErr := goerrors.New("inner close")

	inner := &recordingIterator{name: "inner", items: []any{"b"}, err: boom, closeErr: innerErr, log: &log}
	outer := &recordingIterator{name: "outer", items: []any{"a", inner}, closeErr: outerErr, log: &log}

	_, err := Collect(outer)
	for _, want := range []error{boom, innerErr, outerErr} {
		if !goerrors.Is(err, want) {
			t.Errorf("error %v does not include %v", err, want)
		}
	}
	if want := []string{"inner", "outer"}; !slices.Equal(log, want) {
		t.Errorf("close order = %q, want %q", log, want)
	}
}

func TestIteratorClosedOnce(t *testing.T) {
	var log []string
	it := &recordingIterator{name: "it", items: []any{"a"}, log: &log}
	f := New(it)
	if _, err := drain(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 {
		t.Errorf("Close called %d times, want 1", len(log))
	}
}

func TestCloseErrorOnExhaustion(t *testing.T) {
	var log []string
	closeErr := goerrors.New("close")
	_, err := Collect(&recordingIterator{name: "it", items: []any{"a"}, closeErr: closeErr, log: &log})
	if !goerrors.Is(err, closeErr) {
		t.Errorf("error = %v, want close error", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	nest := func(n int) any {
		var v any = []any{"leaf"}
		for i := 1; i < n; i++ {
			v = []any{v}
		}
		return v
	}

	got, err := Collect(nest(DefaultMaxDepth))
	if err != nil {
		t.Fatalf("Collect(depth %d) error: %v", DefaultMaxDepth, err)
	}
	if !slices.Equal(got, []string{"leaf"}) {
		t.Errorf("Collect() = %q", got)
	}

	_, err = Collect(nest(DefaultMaxDepth + 1))
	if !errors.IsKind(err, errors.ErrRecursionLimit) {
		t.Fatalf("Collect(depth %d) error = %v, want recursion limit", DefaultMaxDepth+1, err)
	}
	var e *errors.Error
	if !goerrors.As(err, &e) || e.DebugInfo == nil {
		t.Fatalf("error %v carries no debug info", err)
	}
	if e.DebugInfo.Depth != DefaultMaxDepth || e.DebugInfo.MaxDepth != DefaultMaxDepth {
		t.Errorf("debug depth = %d of %d", e.DebugInfo.Depth, e.DebugInfo.MaxDepth)
	}
}

func TestRecursionLimitStopsGenerators(t *testing.T) {
	var log []string
	root := gen(&log, "root", "a", gen(&log, "child", []any{[]any{"deep"}}))
	f := New(root).SetMaxDepth(3)
	_, err := drain(f)
	if !errors.IsKind(err, errors.ErrRecursionLimit) {
		t.Fatalf("error = %v, want recursion limit", err)
	}
	if want := []string{"child", "root"}; !slices.Equal(log, want) {
		t.Errorf("cleanup order = %q, want %q", log, want)
	}
}

func TestVeryDeepNesting(t *testing.T) {
	const depth = 100000
	var v any = []any{"leaf"}
	for i := 1; i < depth; i++ {
		v = []any{v}
	}
	got, err := drain(New(v).SetMaxDepth(depth))
	if err != nil {
		t.Fatalf("drain() error: %v", err)
	}
	if !slices.Equal(got, []string{"leaf"}) {
		t.Errorf("drain() = %q", got)
	}
}

func TestFuel(t *testing.T) {
	f := New([]any{"a", []any{"b"}, "c"}).SetFuel(2)
	got, err := drain(f)
	if !errors.IsKind(err, errors.ErrOutOfFuel) {
		t.Fatalf("error = %v, want out of fuel", err)
	}
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("fragments = %q, want %q", got, want)
	}
	if f.Emitted() != 2 {
		t.Errorf("Emitted() = %d, want 2", f.Emitted())
	}
	if f.RemainingFuel() != 0 {
		t.Errorf("RemainingFuel() = %d, want 0", f.RemainingFuel())
	}

	f = New([]any{"a", "b", "c"}).SetFuel(3)
	if _, err := drain(f); err != nil {
		t.Errorf("exact budget error: %v", err)
	}

	f = New([]any{"a"}).SetFuel(10)
	if _, err := drain(f); err != nil {
		t.Fatal(err)
	}
	if f.RemainingFuel() != 9 {
		t.Errorf("RemainingFuel() = %d, want 9", f.RemainingFuel())
	}
}

func TestFuelTracker(t *testing.T) {
	tracker := newFuelTracker(2)
	if err := tracker.consume(0); err != nil {
		t.Fatalf("consume(0) error: %v", err)
	}
	if err := tracker.consume(2); err != nil {
		t.Fatalf("consume(2) error: %v", err)
	}
	for range 2 {
		if err := tracker.consume(1); !errors.IsKind(err, errors.ErrOutOfFuel) {
			t.Errorf("consume() past budget error = %v, want out of fuel", err)
		}
	}
	if got := tracker.remainingFuel(); got != 0 {
		t.Errorf("remainingFuel() = %d, want 0", got)
	}

	if got := newFuelTracker(math.MaxUint64).remainingFuel(); got != math.MaxInt64 {
		t.Errorf("remainingFuel() for unbounded budget = %d", got)
	}
}

func TestFlattenSeq(t *testing.T) {
	var sb strings.Builder
	for s, err := range Flatten([]any{"x", []any{"y"}}) {
		if err != nil {
			t.Fatal(err)
		}
		sb.WriteString(s)
	}
	if sb.String() != "xy" {
		t.Errorf("Flatten() = %q, want %q", sb.String(), "xy")
	}

	var gotErr error
	for _, err := range Flatten("not iterable") {
		gotErr = err
	}
	if !errors.IsKind(gotErr, errors.ErrInvalidOperand) {
		t.Errorf("Flatten(string) error = %v, want invalid operand", gotErr)
	}
}

func ExampleFlatten() {
	root := []any{[]any{"a", "b"}, []any{"c", []any{"d"}}, "e"}
	for s, err := range Flatten(root) {
		if err != nil {
			panic(err)
		}
		fmt.Print(s, " ")
	}
	fmt.Println()
	// Output: a b c d e
}

func BenchmarkCollect(b *testing.B) {
	row := []any{"<td>", "cell", "</td>"}
	table := make([]any, 0, 100)
	for range 100 {
		table = append(table, []any{"<tr>", row, row, row, "</tr>"})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Collect(table); err != nil {
			b.Fatal(err)
		}
	}
}
