// FILE: lixenwraith/repoconf/document.go
package repoconf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// iniLoadOptions matches how yum reads its files: python style continuation
// lines, '#' inside values kept literally, quotes preserved as written, no
// backslash continuation.
var iniLoadOptions = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	KeyValueDelimiterOnWrite:   "=",
}

// defaultDelimiter separates key and value in files that have no entries yet.
const defaultDelimiter = "="

// document is one physical INI file tracked by the registry.
type document struct {
	path      string
	file      *ini.File
	delim     string // key/value separator as written in the file
	baseline  []byte // rendering as last read from or written to disk
	onDisk    bool
	removable bool // delete the file once it holds no sections
}

// storeResult reports what store did to the file on disk.
type storeResult int

const (
	storeUnchanged storeResult = iota
	storeWritten
	storeRemoved
)

// loadDocument parses an existing file.
func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read INI file '%s': %w", path, err)
	}
	f, err := ini.LoadSources(iniLoadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI file '%s': %w", path, err)
	}

	doc := &document{path: path, file: f, delim: detectDelimiter(data), onDisk: true}
	baseline, err := doc.render()
	if err != nil {
		return nil, err
	}
	doc.baseline = baseline
	return doc, nil
}

// newDocument returns an empty document bound to a path that need not exist.
func newDocument(path string) *document {
	return &document{path: path, file: ini.Empty(iniLoadOptions), delim: defaultDelimiter}
}

// sections returns the named sections, skipping the DEFAULT pseudo-section.
func (d *document) sections() []*ini.Section {
	var out []*ini.Section
	for _, sec := range d.file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// empty reports whether the document holds no keys at all.
func (d *document) empty() bool {
	if len(d.sections()) > 0 {
		return false
	}
	def, err := d.file.GetSection(ini.DefaultSection)
	return err != nil || len(def.Keys()) == 0
}

// render writes the document the way yum reads it: entries as
// key<delim>value, values unquoted, continuation lines of multiline values
// kept indented, comments verbatim and one blank line between sections.
func (d *document) render() ([]byte, error) {
	var buf bytes.Buffer
	named := false
	for _, sec := range d.file.Sections() {
		isDefault := sec.Name() == ini.DefaultSection
		if isDefault && len(sec.Keys()) == 0 {
			continue
		}
		if !isDefault {
			if named {
				buf.WriteString("\n")
			}
			named = true
		}

		writeComment(&buf, sec.Comment)
		if !isDefault {
			buf.WriteString("[" + sec.Name() + "]\n")
		}
		for _, key := range sec.Keys() {
			writeComment(&buf, key.Comment)
			buf.WriteString(key.Name() + d.delim + key.Value() + "\n")
		}
	}
	return buf.Bytes(), nil
}

func writeComment(buf *bytes.Buffer, comment string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(comment, "\n") {
		buf.WriteString(strings.TrimRight(line, "\r") + "\n")
	}
}

// detectDelimiter returns the separator of the first entry in data, blanks
// included, so rewritten files keep their "key=value" or "key = value" style.
func detectDelimiter(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		switch trimmed[0] {
		case '#', ';', '[':
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i <= 0 {
			continue
		}
		delim := string(line[i])
		if line[i-1] == ' ' || line[i-1] == '\t' {
			delim = " " + delim
		}
		if i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '\t') {
			delim += " "
		}
		return delim
	}
	return defaultDelimiter
}

// store writes the document only when its rendering changed since the last
// read or write.
func (d *document) store(mode os.FileMode) (storeResult, error) {
	data, err := d.render()
	if err != nil {
		return storeUnchanged, err
	}
	if d.onDisk && bytes.Equal(data, d.baseline) {
		return storeUnchanged, nil
	}

	if d.empty() {
		if !d.onDisk {
			return storeUnchanged, nil
		}
		if d.removable {
			if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return storeUnchanged, fmt.Errorf("failed to remove empty file '%s': %w", d.path, err)
			}
			d.onDisk = false
			d.baseline = nil
			return storeRemoved, nil
		}
	}

	if err := atomicWriteFile(d.path, data, mode); err != nil {
		return storeUnchanged, fmt.Errorf("failed to write '%s': %w", d.path, err)
	}
	d.onDisk = true
	d.baseline = data
	return storeWritten, nil
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file '%s': %w", tempPath, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file '%s': %w", tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file '%s': %w", tempPath, err)
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file '%s' to '%s': %w", tempPath, path, err)
	}
	removed = true

	return nil
}
