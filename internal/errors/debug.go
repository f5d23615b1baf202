package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// DebugInfo is a snapshot of traversal state captured when an error was
// raised.
type DebugInfo struct {
	Depth     int   // stack depth at the point of failure
	MaxDepth  int   // configured depth bound, 0 if not applicable
	Length    int   // cached length or fragment count of the structure
	Path      []int // child indexes from the root to the failing frame
	Emitted   int   // fragments produced before the failure
	Remaining int   // frames still open when the error was raised
}

func formatErrorWithDebug(f fmt.State, err *Error, includeChain bool) {
	_, _ = fmt.Fprint(f, err.Error())
	if err.DebugInfo != nil {
		renderDebugInfo(f, err)
	}

	if includeChain {
		for cause := goerrors.Unwrap(err); cause != nil; cause = goerrors.Unwrap(cause) {
			_, _ = fmt.Fprint(f, "\n\ncaused by: ")
			if next, ok := cause.(*Error); ok {
				formatErrorWithDebug(f, next, false)
			} else {
				_, _ = fmt.Fprintf(f, "%v", cause)
			}
		}
	}
}

func renderDebugInfo(f fmt.State, err *Error) {
	info := err.DebugInfo
	if info == nil {
		return
	}

	_, _ = fmt.Fprint(f, "\n")
	_, _ = fmt.Fprintln(f, centerLine(" "+opTitle(err.Op)+" ", '-', 79))
	if info.MaxDepth > 0 {
		_, _ = fmt.Fprintf(f, "    depth: %d of %d\n", info.Depth, info.MaxDepth)
	} else {
		_, _ = fmt.Fprintf(f, "    depth: %d\n", info.Depth)
	}
	if len(info.Path) > 0 {
		_, _ = fmt.Fprintf(f, "    path: %s\n", formatPath(info.Path))
	}
	if info.Length > 0 {
		_, _ = fmt.Fprintf(f, "    length: %d\n", info.Length)
	}
	if info.Emitted > 0 {
		_, _ = fmt.Fprintf(f, "    emitted: %d\n", info.Emitted)
	}
	if info.Remaining > 0 {
		_, _ = fmt.Fprintf(f, "    open frames: %d\n", info.Remaining)
	}
	_, _ = fmt.Fprint(f, strings.Repeat("-", 79))
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, "/") + "]"
}

func opTitle(op string) string {
	if op == "" {
		return "Traversal"
	}
	return op
}

func centerLine(title string, fill rune, width int) string {
	if len(title) >= width {
		return title
	}
	pad := width - len(title)
	left := pad / 2
	right := pad - left
	return strings.Repeat(string(fill), left) + title + strings.Repeat(string(fill), right)
}
