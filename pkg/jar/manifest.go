// SPDX-License-Identifier: EPL-2.0

package jar

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// MultiReleaseDir is the conventional marker subdirectory whose presence in
// the merged tree flags the archive as multi-release.
const MultiReleaseDir = "META-INF/versions"

// manifestLineLimit is the maximum physical line length in bytes, excluding
// the line terminator, per the jar manifest format. Longer values continue
// on the next line behind a single space.
const manifestLineLimit = 72

// Attribute is one name/value pair of the archive manifest.
type Attribute struct {
	Name  string
	Value string
}

// Manifest is an ordered attribute set. Setting an existing name replaces
// its value in place, so override layering keeps the original position.
type Manifest struct {
	attrs []Attribute
	index map[string]int
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Set adds or replaces an attribute.
func (m *Manifest) Set(name, value string) {
	if i, ok := m.index[name]; ok {
		m.attrs[i].Value = value
		return
	}
	m.index[name] = len(m.attrs)
	m.attrs = append(m.attrs, Attribute{Name: name, Value: value})
}

// Get returns an attribute value and whether it is present.
func (m *Manifest) Get(name string) (string, bool) {
	if i, ok := m.index[name]; ok {
		return m.attrs[i].Value, true
	}
	return "", false
}

// Attributes returns the attributes in insertion order.
func (m *Manifest) Attributes() []Attribute {
	out := make([]Attribute, len(m.attrs))
	copy(out, m.attrs)
	return out
}

// Encode renders the manifest in jar wire format: CRLF line endings, 72-byte
// physical lines with single-space continuations, and a trailing blank line.
func (m *Manifest) Encode() []byte {
	var buf bytes.Buffer
	for _, a := range m.attrs {
		writeManifestLine(&buf, a.Name+": "+a.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeManifestLine(buf *bytes.Buffer, line string) {
	b := []byte(line)
	for i := 0; len(b) > 0 || i == 0; i++ {
		limit := manifestLineLimit
		if i > 0 {
			buf.WriteByte(' ')
			limit--
		}
		n := len(b)
		if n > limit {
			n = limit
		}
		buf.Write(b[:n])
		buf.WriteString("\r\n")
		b = b[n:]
	}
}

// ManifestParams are the inputs to manifest synthesis.
type ManifestParams struct {
	// MainClass is the entry-point namespace in its human-readable form
	// (hyphens as word separators). Empty means no entry point.
	MainClass string

	// ToolVersion identifies the assembler build for the Created-By
	// attribute. Empty defaults to "dev".
	ToolVersion string

	// MergedDir is the fully merged working directory, read for
	// multi-release detection.
	MergedDir string

	// Overrides are caller-supplied attributes layered on top of everything
	// else. Values are coerced to text. Any key may be replaced.
	Overrides map[string]any
}

// SynthesizeManifest builds the final manifest: fixed identifying
// attributes, conditional attributes, then caller overrides.
func SynthesizeManifest(p ManifestParams) *Manifest {
	toolVersion := p.ToolVersion
	if toolVersion == "" {
		toolVersion = "dev"
	}

	m := NewManifest()
	m.Set("Manifest-Version", "1.0")
	m.Set("Created-By", "ujar "+toolVersion)
	m.Set("Build-Jdk", buildPlatformVersion())

	if p.MainClass != "" {
		// Class identifiers cannot contain hyphens; munge to underscores.
		m.Set("Main-Class", strings.ReplaceAll(p.MainClass, "-", "_"))
	}

	if p.MergedDir != "" && isMultiRelease(p.MergedDir) {
		m.Set("Multi-Release", "true")
	}

	// Sorted key order keeps override application deterministic.
	names := make([]string, 0, len(p.Overrides))
	for name := range p.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.Set(name, fmt.Sprint(p.Overrides[name]))
	}

	return m
}

// isMultiRelease reports whether the merged tree carries the multi-release
// marker directory.
func isMultiRelease(mergedDir string) bool {
	info, err := os.Stat(filepath.Join(mergedDir, filepath.FromSlash(MultiReleaseDir)))
	return err == nil && info.IsDir()
}

// buildPlatformVersion reads the build platform version from the execution
// environment, falling back to the toolchain version of this binary.
func buildPlatformVersion() string {
	if v := os.Getenv("JAVA_VERSION"); v != "" {
		return v
	}
	return runtime.Version()
}
