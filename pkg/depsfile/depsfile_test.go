// SPDX-License-Identifier: EPL-2.0

package depsfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ujar-cli/internal/depgraph"
)

func writeLock(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultLockFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validLock = `
version: "1"
libraries: {
	"org.clojure/clojure": {
		version: "1.11.1"
		paths: ["/repo/org/clojure/clojure/1.11.1/clojure-1.11.1.jar"]
	}
	"org.clojure/spec.alpha": {
		version: "0.3.218"
		paths: ["/repo/org/clojure/spec.alpha/0.3.218/spec.alpha-0.3.218.jar"]
		dependents: ["org.clojure/clojure"]
	}
	"criterium/criterium": {
		version: "0.4.6"
		paths: ["/repo/criterium/criterium/0.4.6/criterium-0.4.6.jar"]
		optional: true
		dependents: ["org.clojure/clojure"]
	}
}
`

func TestLoad_ValidLockFile(t *testing.T) {
	t.Parallel()

	lock, err := Load(writeLock(t, validLock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lock.Version != "1" {
		t.Errorf("Version = %q", lock.Version)
	}
	if len(lock.Libraries) != 3 {
		t.Fatalf("expected 3 libraries, got %d", len(lock.Libraries))
	}

	crit, ok := lock.Libraries["criterium/criterium"]
	if !ok {
		t.Fatal("missing criterium/criterium")
	}
	if !crit.Optional {
		t.Error("expected criterium to be optional")
	}
	if len(crit.Dependents) != 1 || crit.Dependents[0] != "org.clojure/clojure" {
		t.Errorf("unexpected dependents: %v", crit.Dependents)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), DefaultLockFileName))
	if err == nil {
		t.Fatal("expected an error for a missing lock file")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing version field",
			content: `libraries: {"a/a": {paths: ["/repo/a.jar"]}}`,
		},
		{
			name:    "empty paths list",
			content: `libraries: {"a/a": {version: "1.0", paths: []}}`,
		},
		{
			name:    "wrong optional type",
			content: `libraries: {"a/a": {version: "1.0", paths: ["/repo/a.jar"], optional: "yes"}}`,
		},
		{
			name:    "syntax error",
			content: `libraries: {`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(writeLock(t, tt.content)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestLoad_BlankPathRejected(t *testing.T) {
	t.Parallel()

	_, err := Load(writeLock(t, `libraries: {"a/a": {version: "1.0", paths: ["  "]}}`))
	if err == nil {
		t.Fatal("expected an error for a blank path entry")
	}
	if !strings.Contains(err.Error(), "paths[0]") {
		t.Errorf("expected the error to name the offending entry, got: %v", err)
	}
}

func TestLibraryMap_Conversion(t *testing.T) {
	t.Parallel()

	lock, err := Load(writeLock(t, validLock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	libs := lock.LibraryMap()
	if len(libs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(libs))
	}

	crit := libs["criterium/criterium"]
	if !crit.Optional {
		t.Error("expected optional flag to survive conversion")
	}
	if len(crit.Dependents) != 1 || crit.Dependents[0] != depgraph.Coordinate("org.clojure/clojure") {
		t.Errorf("unexpected dependents: %v", crit.Dependents)
	}
	if err := libs.ValidateAcyclic(); err != nil {
		t.Errorf("converted map should be acyclic: %v", err)
	}
}

func TestSave_RoundTripsAndIsDeterministic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	lock := &LockFile{
		Version: "1",
		Libraries: map[string]LockedLibrary{
			"b/b": {Version: "2.0", Paths: []string{"/repo/b.jar"}, Dependents: []string{"a/a"}},
			"a/a": {Version: "1.0", Paths: []string{"/repo/a.jar"}, Optional: true},
		},
	}

	path := filepath.Join(dir, DefaultLockFileName)
	if err := lock.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("saved lock file does not load: %v", err)
	}
	if len(loaded.Libraries) != 2 {
		t.Fatalf("expected 2 libraries after round trip, got %d", len(loaded.Libraries))
	}
	if !loaded.Libraries["a/a"].Optional {
		t.Error("expected optional flag to round-trip")
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.Save(path); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("expected repeated saves to be byte-identical")
	}
}

func TestSave_EmptyLibraries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultLockFileName)
	lock := &LockFile{Libraries: map[string]LockedLibrary{}}
	if err := lock.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("empty lock file does not load: %v", err)
	}
	if len(loaded.Libraries) != 0 {
		t.Errorf("expected no libraries, got %v", loaded.Libraries)
	}
}
