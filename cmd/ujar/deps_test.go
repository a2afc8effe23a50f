// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"ujar-cli/pkg/depsfile"
)

func TestDepsCommand_ListsLibraries(t *testing.T) {
	app, stdout, _ := newTestApp(t)
	dir := t.TempDir()

	dep := writeDepJar(t, dir, "dep.jar", map[string]string{"x.txt": "x"})
	lock := writeLockFile(t, dir, fmt.Sprintf(`
libraries: {
	"a/kept": {
		version: "1.0"
		paths: [%q]
	}
	"b/extra": {
		version: "2.0"
		paths: [%q]
		optional: true
		dependents: ["a/kept"]
	}
}
`, dep, dep))

	cmd := newDepsCommand(app)
	cmd.SetArgs([]string{"--lock-file", lock})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "Resolved libraries (2)") {
		t.Errorf("expected the header, got:\n%s", out)
	}
	if !strings.Contains(out, "a/kept") || !strings.Contains(out, "b/extra") {
		t.Errorf("expected both coordinates, got:\n%s", out)
	}
	if !strings.Contains(out, "[pruned]") {
		t.Errorf("expected the pruned marker, got:\n%s", out)
	}
	if !strings.Contains(out, "1 kept, 1 pruned") {
		t.Errorf("expected the summary, got:\n%s", out)
	}
}

func TestDepsCommand_WritesPrunedLock(t *testing.T) {
	app, _, _ := newTestApp(t)
	dir := t.TempDir()

	dep := writeDepJar(t, dir, "dep.jar", map[string]string{"x.txt": "x"})
	lock := writeLockFile(t, dir, fmt.Sprintf(`
libraries: {
	"a/kept": {
		version: "1.0"
		paths: [%q]
	}
	"b/extra": {
		version: "2.0"
		paths: [%q]
		optional: true
		dependents: ["a/kept"]
	}
}
`, dep, dep))
	prunedPath := filepath.Join(dir, "pruned.lock.cue")

	cmd := newDepsCommand(app)
	cmd.SetArgs([]string{"--lock-file", lock, "--write-pruned", prunedPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pruned, err := depsfile.Load(prunedPath)
	if err != nil {
		t.Fatalf("pruned lock file does not load: %v", err)
	}
	if len(pruned.Libraries) != 1 {
		t.Fatalf("expected 1 library in the pruned set, got %d", len(pruned.Libraries))
	}
	if _, ok := pruned.Libraries["a/kept"]; !ok {
		t.Error("expected a/kept to survive pruning")
	}
}

func TestDepsCommand_CyclicLockRejected(t *testing.T) {
	app, _, stderr := newTestApp(t)
	dir := t.TempDir()

	dep := writeDepJar(t, dir, "dep.jar", map[string]string{"x.txt": "x"})
	lock := writeLockFile(t, dir, fmt.Sprintf(`
libraries: {
	"a/a": {
		version: "1.0"
		paths: [%q]
		dependents: ["b/b"]
	}
	"b/b": {
		version: "1.0"
		paths: [%q]
		dependents: ["a/a"]
	}
}
`, dep, dep))

	cmd := newDepsCommand(app)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs([]string{"--lock-file", lock})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected a cycle error")
	}
	if !strings.Contains(stderr.String(), "cycle") {
		t.Errorf("expected the cycle remediation card, got:\n%s", stderr.String())
	}
}

func TestConfigCommand_Dump(t *testing.T) {
	app, stdout, _ := newTestApp(t)

	cmd := newConfigCommand(app)
	cmd.SetArgs([]string{"dump"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "lock_file") || !strings.Contains(out, "ujar.lock.cue") {
		t.Errorf("expected default lock file in dump, got:\n%s", out)
	}
	if !strings.Contains(out, "color_scheme") {
		t.Errorf("expected UI settings in dump, got:\n%s", out)
	}
}
