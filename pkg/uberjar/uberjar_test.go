// SPDX-License-Identifier: EPL-2.0

package uberjar

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"olympos.io/encoding/edn"

	"ujar-cli/internal/depgraph"
)

// readJar reads every file entry of the jar at path into a map.
func readJar(t *testing.T, path string) map[string]string {
	t.Helper()

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open output jar: %v", err)
	}
	defer r.Close()

	entries := make(map[string]string)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func writeTree(t *testing.T, root string, files map[string]string) string {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// captureTempDir points the process temp dir at a fresh directory so the
// test can assert that working directories are gone afterwards.
func captureTempDir(t *testing.T) string {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(tmp, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TMPDIR", tmp)
	return tmp
}

func assertNoLeftoverWorkDir(t *testing.T, tmp string) {
	t.Helper()
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "ujar-uber-") {
			t.Errorf("working directory left behind: %s", e.Name())
		}
	}
}

func TestAssemble_EndToEnd(t *testing.T) {
	tmp := captureTempDir(t)
	dir := t.TempDir()

	depA := writeTree(t, filepath.Join(dir, "depA"), map[string]string{"foo.txt": "1"})
	depB := writeTree(t, filepath.Join(dir, "depB"), map[string]string{
		"foo.txt":          "2",
		"data_readers.clj": "{x y}",
	})
	compiled := writeTree(t, filepath.Join(dir, "compiled"), map[string]string{
		"data_readers.clj":  "{z w}",
		"my_app/core.class": "bytecode",
	})

	target := filepath.Join(dir, "target", "app-standalone.jar")
	err := Assemble(Options{
		Libraries: depgraph.LibraryMap{
			"a/depA": {Paths: []string{depA}},
			"b/depB": {Paths: []string{depB}},
		},
		CompilePath: compiled,
		TargetPath:  target,
		MainClass:   "my-app.core",
		ToolVersion: "0.1.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := readJar(t, target)

	if got := entries["foo.txt"]; got != "1" {
		t.Errorf("foo.txt = %q, want first writer's content", got)
	}
	if got := entries["my_app/core.class"]; got != "bytecode" {
		t.Errorf("my_app/core.class = %q", got)
	}

	merged := map[edn.Symbol]edn.Symbol{}
	if err := edn.Unmarshal([]byte(entries["data_readers.clj"]), &merged); err != nil {
		t.Fatalf("merged descriptor is not valid EDN: %v", err)
	}
	if merged["x"] != "y" || merged["z"] != "w" {
		t.Errorf("expected merged descriptor {x y, z w}, got %v", merged)
	}

	manifest := entries["META-INF/MANIFEST.MF"]
	if !strings.Contains(manifest, "Main-Class: my_app.core\r\n") {
		t.Errorf("manifest missing munged entry point:\n%s", manifest)
	}
	if !strings.Contains(manifest, "Created-By: ujar 0.1.0\r\n") {
		t.Errorf("manifest missing tool identity:\n%s", manifest)
	}

	assertNoLeftoverWorkDir(t, tmp)
}

func TestAssemble_PrunedLibraryExcluded(t *testing.T) {
	dir := t.TempDir()

	kept := writeTree(t, filepath.Join(dir, "kept"), map[string]string{"kept.txt": "k"})
	dropped := writeTree(t, filepath.Join(dir, "dropped"), map[string]string{"dropped.txt": "d"})

	target := filepath.Join(dir, "out.jar")
	err := Assemble(Options{
		Libraries: depgraph.LibraryMap{
			"a/kept":    {Paths: []string{kept}},
			"b/dropped": {Paths: []string{dropped}, Optional: true, Dependents: []depgraph.Coordinate{"a/kept"}},
		},
		TargetPath: target,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := readJar(t, target)
	if _, ok := entries["dropped.txt"]; ok {
		t.Error("expected optional library content to be pruned")
	}
	if entries["kept.txt"] != "k" {
		t.Error("expected required library content to survive")
	}
}

func TestAssemble_ManifestOverridesWin(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.jar")

	err := Assemble(Options{
		TargetPath: target,
		MainClass:  "my-app.core",
		ManifestAttrs: map[string]any{
			"Main-Class": "custom.Entry",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := readJar(t, target)
	manifest := entries["META-INF/MANIFEST.MF"]
	if !strings.Contains(manifest, "Main-Class: custom.Entry\r\n") {
		t.Errorf("expected override to win:\n%s", manifest)
	}
	if strings.Contains(manifest, "my_app.core") {
		t.Errorf("derived entry point should have been replaced:\n%s", manifest)
	}
}

func TestAssemble_FailureCleansWorkingDirectory(t *testing.T) {
	tmp := captureTempDir(t)
	dir := t.TempDir()

	err := Assemble(Options{
		Libraries: depgraph.LibraryMap{
			"a/missing": {Paths: []string{filepath.Join(dir, "does-not-exist.jar")}},
		},
		TargetPath: filepath.Join(dir, "out.jar"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing source")
	}
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Errorf("expected a MergeError, got %T", err)
	}

	assertNoLeftoverWorkDir(t, tmp)
}

func TestAssemble_CyclicLibrariesRejected(t *testing.T) {
	dir := t.TempDir()

	err := Assemble(Options{
		Libraries: depgraph.LibraryMap{
			"a/a": {Dependents: []depgraph.Coordinate{"b/b"}},
			"b/b": {Dependents: []depgraph.Coordinate{"a/a"}},
		},
		TargetPath: filepath.Join(dir, "out.jar"),
	})
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestAssemble_RequiresTargetPath(t *testing.T) {
	t.Parallel()
	if err := Assemble(Options{}); err == nil {
		t.Fatal("expected an error without a target path")
	}
}
