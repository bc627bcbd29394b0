// FILE: lixenwraith/repoconf/section.go
package repoconf

import (
	"strings"

	"gopkg.in/ini.v1"
)

// Section is one named group of entries inside a physical file. The owning
// file is fixed when the section is created or first read.
type Section struct {
	name    string
	doc     *document
	sec     *ini.Section
	destroy bool
}

// Name returns the section name, unique within the registry.
func (s *Section) Name() string {
	return s.name
}

// Path returns the file the section is persisted to.
func (s *Section) Path() string {
	return s.doc.path
}

// Get returns the value of key and whether the entry is present.
func (s *Section) Get(key string) (string, bool) {
	k, err := s.sec.GetKey(key)
	if err != nil {
		return "", false
	}
	return k.String(), true
}

// Set writes key, appending it if it does not exist yet. The value is stored
// in its NormalizeValue form.
func (s *Section) Set(key, value string) {
	value = NormalizeValue(value)
	if k, err := s.sec.GetKey(key); err == nil {
		k.SetValue(value)
		return
	}
	// NewKey only fails on an empty key name
	_, _ = s.sec.NewKey(key, value)
}

// Unset removes key. Removing a missing key is a no-op.
func (s *Section) Unset(key string) {
	s.sec.DeleteKey(key)
}

// Keys returns the entry names in file order.
func (s *Section) Keys() []string {
	return s.sec.KeyStrings()
}

// Entries returns a copy of all entries.
func (s *Section) Entries() map[string]string {
	entries := make(map[string]string, len(s.sec.Keys()))
	for _, k := range s.sec.Keys() {
		entries[k.Name()] = k.String()
	}
	return entries
}

// Destroyed reports whether the section is flagged for removal on the next
// persist.
func (s *Section) Destroyed() bool {
	return s.destroy
}

// MarkDestroyed flags or unflags the section for removal.
func (s *Section) MarkDestroyed(destroy bool) {
	s.destroy = destroy
}

// NormalizeValue returns value as it reads back from a yum file: blanks
// around the first line dropped, blank continuation lines removed, every
// continuation line indented and stripped of trailing blanks.
func NormalizeValue(value string) string {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	out := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
