// Package testutil provides testing utilities for tonnikala-go.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// TestInput represents a parsed test input file.
type TestInput struct {
	Input    any           // decoded JSON input (text, fragment tree, attributes)
	Settings *TestSettings // optional $settings from the input
	Expected string        // expected output after ---
}

// TestSettings represents the $settings field in test inputs.
type TestSettings struct {
	Quotes   *bool  `json:"quotes"`
	MaxDepth int    `json:"max_depth"`
	Error    string `json:"error"` // expected error kind, e.g. "invalid operand"
}

// QuotesOr returns the quotes setting, or def if it is not present.
func (s *TestSettings) QuotesOr(def bool) bool {
	if s == nil || s.Quotes == nil {
		return def
	}
	return *s.Quotes
}

// ExpectsError reports whether the input expects a failure.
func (s *TestSettings) ExpectsError() bool {
	return s != nil && s.Error != ""
}

// ParseTestInputFile reads and parses a test input file.
func ParseTestInputFile(path string) (*TestInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTestInput(string(content))
}

// ParseTestInput parses test input content.
// Format: JSON input\n---\nexpected output
//
// The JSON input is either a bare value or an object with an "input" key
// and an optional "$settings" key. The expected output keeps its bytes
// exactly, except for a single trailing newline.
func ParseTestInput(content string) (*TestInput, error) {
	input := &TestInput{}

	parts := strings.SplitN(content, "\n---\n", 2)

	if len(parts) >= 1 && strings.TrimSpace(parts[0]) != "" {
		var raw any
		if err := json.Unmarshal([]byte(parts[0]), &raw); err != nil {
			return nil, err
		}
		input.Input = raw

		if obj, ok := raw.(map[string]any); ok {
			if settingsRaw, ok := obj["$settings"]; ok {
				settingsJSON, err := json.Marshal(settingsRaw)
				if err != nil {
					return nil, err
				}
				input.Settings = &TestSettings{}
				if err := json.Unmarshal(settingsJSON, input.Settings); err != nil {
					return nil, err
				}
			}
			if v, ok := obj["input"]; ok {
				input.Input = v
			}
		}
	}

	if len(parts) >= 2 {
		input.Expected = strings.TrimSuffix(parts[1], "\n")
	}

	return input, nil
}

// GlobTestInputs finds all test input files matching a pattern.
func GlobTestInputs(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// TestResult represents the result of running a single test.
type TestResult struct {
	Name     string
	Passed   bool
	Skipped  bool
	Error    error
	Expected string
	Actual   string
}

// Diff returns a simple diff between expected and actual output.
func (r *TestResult) Diff() string {
	if r.Expected == r.Actual {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== Expected ===\n")
	sb.WriteString(r.Expected)
	if !strings.HasSuffix(r.Expected, "\n") {
		sb.WriteString("⏎\n")
	}
	sb.WriteString("=== Actual ===\n")
	sb.WriteString(r.Actual)
	if !strings.HasSuffix(r.Actual, "\n") {
		sb.WriteString("⏎\n")
	}
	sb.WriteString("=== End ===\n")
	return sb.String()
}
