// SPDX-License-Identifier: EPL-2.0

package jar

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// manifestEntry is the well-known manifest location inside the archive.
const manifestEntry = "META-INF/MANIFEST.MF"

// Write packages workDir and the synthesized manifest into a jar at target.
// The manifest is written first; every file in workDir follows with its
// relative path and modification time preserved. A partially written target
// is removed on failure.
func Write(target, workDir string, manifest *Manifest) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create jar %s: %w", target, err)
	}

	zw := zip.NewWriter(out)

	err = writeContents(zw, workDir, manifest)
	if err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to write jar %s: %w", target, err)
	}
	return nil
}

func writeContents(zw *zip.Writer, workDir string, manifest *Manifest) error {
	mw, err := zw.Create(manifestEntry)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	if _, err := mw.Write(manifest.Encode()); err != nil {
		return fmt.Errorf("failed to write manifest entry: %w", err)
	}

	return filepath.WalkDir(workDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(workDir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if rel == "." {
			return nil
		}
		entryName := filepath.ToSlash(rel)

		if d.IsDir() {
			if _, err := zw.Create(entryName + "/"); err != nil {
				return fmt.Errorf("failed to create directory entry %s: %w", entryName, err)
			}
			return nil
		}

		// Extraction excluded *.MF entries, but guard against a source that
		// smuggled one in through a directory copy.
		if entryName == manifestEntry {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create file header: %w", err)
		}
		header.Name = entryName
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", entryName, err)
		}

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to write entry %s: %w", entryName, err)
		}

		return nil
	})
}
