// SPDX-License-Identifier: EPL-2.0

// Package depsfile loads and writes ujar.lock.cue, the lock file that
// carries the resolved library set from the dependency resolver to the
// assembler. The file is CUE validated against an embedded schema.
package depsfile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ujar-cli/internal/depgraph"
	"ujar-cli/pkg/cueutil"
)

//go:embed depsfile_schema.cue
var schemaBytes []byte

// DefaultLockFileName is the conventional lock file name in a project root.
const DefaultLockFileName = "ujar.lock.cue"

// LockFile represents the ujar.lock.cue file structure.
type LockFile struct {
	// Version is the lock file format version.
	Version string `json:"version"`

	// Generated is the generation timestamp in RFC 3339 form, if present.
	Generated string `json:"generated,omitempty"`

	// Libraries maps coordinates to their locked entries.
	Libraries map[string]LockedLibrary `json:"libraries"`
}

// LockedLibrary represents one resolved library entry in the lock file.
type LockedLibrary struct {
	// Version is the resolved version of the library.
	Version string `json:"version"`

	// Paths are the library's jar files or class directories, in
	// classpath order.
	Paths []string `json:"paths"`

	// Optional marks a library that only entered the graph through
	// optional edges.
	Optional bool `json:"optional"`

	// Dependents are the coordinates depending on this library.
	Dependents []string `json:"dependents,omitempty"`
}

// Load reads and validates a lock file. A missing file is an error: without
// a resolved library set there is nothing to assemble.
func Load(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[LockFile](
		schemaBytes,
		data,
		"#LockFile",
		cueutil.WithFilename(filepath.Base(path)),
	)
	if err != nil {
		return nil, err
	}

	lock := result.Value
	if err := lock.validate(filepath.Base(path)); err != nil {
		return nil, err
	}
	return lock, nil
}

// validate covers the semantic checks the schema cannot express.
func (l *LockFile) validate(filename string) error {
	for coord, lib := range l.Libraries {
		if strings.TrimSpace(coord) == "" {
			return &cueutil.ValidationError{
				FilePath: filename,
				CUEPath:  "libraries",
				Message:  "blank coordinate key",
			}
		}
		for i, p := range lib.Paths {
			if strings.TrimSpace(p) == "" {
				return &cueutil.ValidationError{
					FilePath: filename,
					CUEPath:  fmt.Sprintf("libraries.%q.paths[%d]", coord, i),
					Message:  "blank path entry",
				}
			}
		}
	}
	return nil
}

// LibraryMap converts the lock file into the assembler's library map.
// Dependents naming coordinates absent from the file are carried over
// verbatim; the pruner treats them as required.
func (l *LockFile) LibraryMap() depgraph.LibraryMap {
	libs := make(depgraph.LibraryMap, len(l.Libraries))
	for coord, lib := range l.Libraries {
		dependents := make([]depgraph.Coordinate, 0, len(lib.Dependents))
		for _, d := range lib.Dependents {
			dependents = append(dependents, depgraph.Coordinate(d))
		}
		libs[depgraph.Coordinate(coord)] = depgraph.Library{
			Paths:      lib.Paths,
			Optional:   lib.Optional,
			Dependents: dependents,
		}
	}
	return libs
}

// Save writes the lock file to disk in CUE format.
func (l *LockFile) Save(path string) error {
	content := l.toCUE()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write atomically using temp file + rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename lock file: %w", err)
	}

	return nil
}

// toCUE serializes the lock file to CUE format with deterministic entry
// order so repeated saves of the same set are byte-identical.
func (l *LockFile) toCUE() string {
	var sb strings.Builder

	sb.WriteString("// ujar.lock.cue - Auto-generated lock file for resolved libraries\n")
	sb.WriteString("// DO NOT EDIT MANUALLY\n\n")

	version := l.Version
	if version == "" {
		version = "1"
	}
	sb.WriteString(fmt.Sprintf("version: %q\n", version))
	if l.Generated != "" {
		sb.WriteString(fmt.Sprintf("generated: %q\n", l.Generated))
	}
	sb.WriteString("\n")

	if len(l.Libraries) == 0 {
		sb.WriteString("libraries: {}\n")
		return sb.String()
	}

	coords := make([]string, 0, len(l.Libraries))
	for coord := range l.Libraries {
		coords = append(coords, coord)
	}
	sort.Strings(coords)

	sb.WriteString("libraries: {\n")
	for _, coord := range coords {
		lib := l.Libraries[coord]
		sb.WriteString(fmt.Sprintf("\t%q: {\n", coord))
		sb.WriteString(fmt.Sprintf("\t\tversion: %q\n", lib.Version))
		sb.WriteString("\t\tpaths: [\n")
		for _, p := range lib.Paths {
			sb.WriteString(fmt.Sprintf("\t\t\t%q,\n", p))
		}
		sb.WriteString("\t\t]\n")
		if lib.Optional {
			sb.WriteString("\t\toptional: true\n")
		}
		if len(lib.Dependents) > 0 {
			sb.WriteString("\t\tdependents: [\n")
			for _, d := range lib.Dependents {
				sb.WriteString(fmt.Sprintf("\t\t\t%q,\n", d))
			}
			sb.WriteString("\t\t]\n")
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}
