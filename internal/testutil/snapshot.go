package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateEnv names the environment variable that makes AssertSnapshot
// rewrite snapshot files instead of comparing against them.
const UpdateEnv = "TONNIKALA_UPDATE_SNAPSHOTS"

// Snapshot represents a parsed .snap file.
type Snapshot struct {
	Description string            // what the snapshot shows
	RawMeta     map[string]string // raw metadata fields
	Expected    string            // expected output
}

// ParseSnapshotFile parses a .snap file.
func ParseSnapshotFile(path string) (*Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(string(content))
}

// ParseSnapshot parses the content of a .snap file.
// Format: ---\n<key: value lines>\n---\n<expected output>
func ParseSnapshot(content string) (*Snapshot, error) {
	snap := &Snapshot{
		RawMeta: make(map[string]string),
	}

	content = strings.TrimPrefix(content, "---\n")
	parts := strings.SplitN(content, "\n---\n", 2)
	if len(parts) < 2 {
		// No metadata, entire content is expected output
		snap.Expected = strings.TrimSuffix(content, "\n")
		return snap, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(parts[0]))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		snap.RawMeta[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	snap.Description = snap.RawMeta["description"]
	snap.Expected = strings.TrimSuffix(parts[1], "\n")
	return snap, nil
}

// FormatSnapshot renders a snapshot file.
func FormatSnapshot(description, output string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("description: ")
	sb.WriteString(description)
	sb.WriteString("\n---\n")
	sb.WriteString(output)
	sb.WriteString("\n")
	return sb.String()
}

// AssertSnapshot compares actual with the snapshot stored at path. With
// TONNIKALA_UPDATE_SNAPSHOTS=1 the snapshot is written instead.
func AssertSnapshot(t testing.TB, path, description, actual string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create snapshot dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(FormatSnapshot(description, actual)), 0o644); err != nil {
			t.Fatalf("failed to write snapshot: %v", err)
		}
		return
	}

	snap, err := ParseSnapshotFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot (run with %s=1 to create it): %v", UpdateEnv, err)
	}
	result := &TestResult{
		Name:     path,
		Expected: snap.Expected,
		Actual:   actual,
	}
	if diff := result.Diff(); diff != "" {
		t.Errorf("snapshot %s mismatch:\n%s", filepath.Base(path), diff)
	}
}
