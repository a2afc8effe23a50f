// SPDX-License-Identifier: EPL-2.0

// Package jar merges jar files and exploded class directories into a single
// working tree and packages that tree, together with a synthesized manifest,
// into one self-contained jar.
//
// Merging is order-sensitive: sources are extracted one after another into
// the same working directory, and the first writer of a path wins unless the
// path is one of the recognized reader-registration descriptors, which are
// merged key-by-key instead. Signing artifacts and the project descriptor
// are excluded from every source so the merged archive stays loadable.
package jar

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// copyBufferSize is the size of the reusable copy buffer allocated once per
// extraction call. It bounds read throughput, not correctness.
const copyBufferSize = 32 * 1024

// DefaultExclusions are the entry patterns dropped from every merged source:
// the project descriptor and signature/manifest artifacts under META-INF.
// Patterns are matched case-sensitively against the forward-slash entry
// path, anchored to segment boundaries so an entry is dropped only when a
// whole segment is the descriptor name, or the path ends in a signing
// extension. A file that merely contains one of these strings stays in.
var DefaultExclusions = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)project\.clj$`),
	regexp.MustCompile(`(^|/)META-INF/.*\.(SF|RSA|DSA|MF)$`),
}

// mergeableDescriptors are the per-namespace reader-registration files whose
// contents are merged rather than dropped on conflict. Matched on the final
// path segment only.
var mergeableDescriptors = map[string]bool{
	"data_readers.clj":  true,
	"data_readers.cljc": true,
}

// ConflictFunc observes an unrecognized merge conflict: relPath already
// existed in the working directory, so the colliding entry contributed by
// source was discarded. The default policy stays silent; installing an
// observer is how callers opt into diagnostics.
type ConflictFunc func(relPath, source string)

// ExtractOptions configures one ExtractSource call.
type ExtractOptions struct {
	// Exclusions overrides DefaultExclusions when non-nil.
	Exclusions []*regexp.Regexp

	// OnConflict, when non-nil, is invoked for every discarded conflicting
	// entry.
	OnConflict ConflictFunc
}

func (o ExtractOptions) exclusions() []*regexp.Regexp {
	if o.Exclusions != nil {
		return o.Exclusions
	}
	return DefaultExclusions
}

// Excluded reports whether the forward-slash entry path matches any of the
// given exclusion patterns.
func Excluded(relPath string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// ExtractSource merges the contents of src into destDir. A jar file source
// is streamed entry by entry; a directory source is walked file by file.
// Both flow through the same exclusion and conflict policy, so descriptor
// files merge regardless of which kind of source contributes them.
//
// Any read or write failure is fatal to the whole assembly and is returned
// to the caller, which owns working-directory cleanup.
func ExtractSource(src, destDir string, opts ExtractOptions) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to read source %s: %w", src, err)
	}

	ex := &extraction{
		destDir:    destDir,
		source:     src,
		exclusions: opts.exclusions(),
		onConflict: opts.OnConflict,
		buf:        make([]byte, copyBufferSize),
	}

	if info.IsDir() {
		return ex.extractDir(src)
	}
	return ex.extractJar(src)
}

// extraction carries the per-call state of one ExtractSource invocation,
// including the single reusable copy buffer.
type extraction struct {
	destDir    string
	source     string
	exclusions []*regexp.Regexp
	onConflict ConflictFunc
	buf        []byte
}

// extractJar streams entries out of a jar (zip) file into the working
// directory, never materializing the whole archive in memory.
func (e *extraction) extractJar(src string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open jar %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		relPath := path.Clean(f.Name)
		if Excluded(relPath, e.exclusions) {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := e.ensureDir(relPath); err != nil {
				return err
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read entry %s in %s: %w", f.Name, src, err)
		}
		err = e.place(relPath, rc, f.Modified, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// extractDir walks an exploded directory source, feeding each regular file
// through the same placement pipeline as jar entries. Symlinks are skipped.
func (e *extraction) extractDir(src string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to read source %s: %w", src, walkErr)
		}
		if p == src {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s relative to %s: %w", p, src, err)
		}
		relPath := filepath.ToSlash(rel)

		if Excluded(relPath, e.exclusions) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return e.ensureDir(relPath)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		err = e.place(relPath, f, info.ModTime(), info.Mode())
		f.Close()
		return err
	})
}

// ensureDir creates the target directory for a directory entry.
func (e *extraction) ensureDir(relPath string) error {
	target, err := e.targetPath(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", target, err)
	}
	return nil
}

// place writes one non-excluded file entry into the working directory,
// resolving conflicts with previously merged sources. New files keep the
// entry's stored timestamp so build provenance survives the merge.
func (e *extraction) place(relPath string, r io.Reader, modTime time.Time, mode fs.FileMode) error {
	target, err := e.targetPath(relPath)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(target); statErr == nil {
		if mergeableDescriptors[path.Base(relPath)] {
			return e.mergeDescriptor(target, relPath, r)
		}
		if e.onConflict != nil {
			e.onConflict(relPath, e.source)
		}
		return nil
	} else if !os.IsNotExist(statErr) {
		return fmt.Errorf("failed to stat %s: %w", target, statErr)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	_, copyErr := io.CopyBuffer(out, r, e.buf)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("failed to write %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %w", target, closeErr)
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(target, modTime, modTime); err != nil {
			return fmt.Errorf("failed to set timestamp on %s: %w", target, err)
		}
	}

	return nil
}

// mergeDescriptor merges an incoming reader-registration descriptor into the
// already-written file at target, incoming keys winning on collision.
func (e *extraction) mergeDescriptor(target, relPath string, r io.Reader) error {
	existing, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", target, err)
	}
	incoming, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read entry %s in %s: %w", relPath, e.source, err)
	}

	merged, err := MergeReaderMaps(existing, incoming)
	if err != nil {
		return fmt.Errorf("failed to merge %s from %s: %w", relPath, e.source, err)
	}

	if err := os.WriteFile(target, merged, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// targetPath resolves an entry path inside the working directory, rejecting
// entries that would escape it.
func (e *extraction) targetPath(relPath string) (string, error) {
	target := filepath.Join(e.destDir, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(e.destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid entry path in %s: %s", e.source, relPath)
	}
	return target, nil
}
