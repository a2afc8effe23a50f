// SPDX-License-Identifier: EPL-2.0

// Package uberjar assembles one self-contained executable jar out of a
// resolved library set and a compiled-output directory. Resolution itself is
// an external concern; this package consumes its output.
package uberjar

import (
	"fmt"
	"os"
	"path/filepath"

	"ujar-cli/internal/depgraph"
	"ujar-cli/pkg/jar"
)

// Options are the complete inputs for one assembly. The struct is a plain
// immutable value: defaults and caller overrides are merged once, before the
// call, never through shared mutable state.
type Options struct {
	// Libraries is the resolved library map from the external resolver.
	Libraries depgraph.LibraryMap

	// CompilePath is the compiled-output directory, merged after every
	// library so local code is never shadowed by a dependency's colliding
	// file.
	CompilePath string

	// TargetPath is where the output jar is written. Missing parent
	// directories are created.
	TargetPath string

	// MainClass is the optional entry-point identifier in human-readable
	// form (hyphens as word separators).
	MainClass string

	// ManifestAttrs are caller-supplied manifest overrides, layered on top
	// of the synthesized attributes.
	ManifestAttrs map[string]any

	// ToolVersion identifies this assembler build in the manifest.
	ToolVersion string

	// OnConflict, when non-nil, observes silently dropped merge conflicts.
	OnConflict jar.ConflictFunc
}

// MergeError reports a source that could not be merged into the working tree.
type MergeError struct {
	Source string
	Err    error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("failed to merge %s: %v", e.Source, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// WriteError reports a failure to package the merged tree into the target.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Assemble merges the pruned library set and the compiled output into a
// fresh working directory, synthesizes the manifest, and packages everything
// into the target jar. The working directory is destroyed on every exit
// path; on failure the target must be considered invalid regardless of
// whether a partial file exists.
func Assemble(opts Options) error {
	if opts.TargetPath == "" {
		return fmt.Errorf("target path is required")
	}

	// The relation is acyclic by construction; trust but verify.
	if err := opts.Libraries.ValidateAcyclic(); err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "ujar-uber-*")
	if err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	sources := depgraph.Prune(opts.Libraries).SourcePaths()
	if opts.CompilePath != "" {
		sources = append(sources, opts.CompilePath)
	}

	if dir := filepath.Dir(opts.TargetPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
	}

	extractOpts := jar.ExtractOptions{OnConflict: opts.OnConflict}
	for _, src := range sources {
		if err := jar.ExtractSource(src, workDir, extractOpts); err != nil {
			return &MergeError{Source: src, Err: err}
		}
	}

	manifest := jar.SynthesizeManifest(jar.ManifestParams{
		MainClass:   opts.MainClass,
		ToolVersion: opts.ToolVersion,
		MergedDir:   workDir,
		Overrides:   opts.ManifestAttrs,
	})

	if err := jar.Write(opts.TargetPath, workDir, manifest); err != nil {
		return &WriteError{Target: opts.TargetPath, Err: err}
	}

	return nil
}
