// FILE: lixenwraith/repoconf/registry.go
package repoconf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultFileMode is the permission every tracked file is normalized to.
const DefaultFileMode os.FileMode = 0644

// Options configures how a Registry is built and persisted
type Options struct {
	// Discovery locates the main file and repository directories
	Discovery DiscoveryOptions

	// FileMode is enforced on every tracked file at persist time
	FileMode os.FileMode

	// Logger receives diagnostics; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns the standard options
func DefaultOptions() Options {
	return Options{
		Discovery: DefaultDiscoveryOptions(),
		FileMode:  DefaultFileMode,
	}
}

// PersistStats lists the files a Persist call acted on.
type PersistStats struct {
	Written []string
	Removed []string
	Chmoded []string
}

// Registry merges every enumerated file into one namespace of sections.
type Registry struct {
	opts     Options
	logger   *slog.Logger
	dirs     []string
	files    []string
	docs     map[string]*document
	docOrder []string
	sections map[string]*Section
}

// Load builds a Registry from disk. Missing files and directories are
// skipped; any read or parse failure aborts the build.
func Load(opts Options) (*Registry, error) {
	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		opts:     opts,
		logger:   logger,
		docs:     make(map[string]*document),
		sections: make(map[string]*Section),
	}

	dirs, err := ResolveDirs(opts.Discovery, logger)
	if err != nil {
		return nil, err
	}
	r.dirs = dirs

	files, err := EnumerateFiles(opts.Discovery, dirs)
	if err != nil {
		return nil, err
	}
	r.files = files

	for _, path := range files {
		if err := r.read(path); err != nil {
			return nil, err
		}
	}

	logger.Debug("Registry built.", "dirs", len(r.dirs), "files", len(r.docOrder), "sections", len(r.sections))
	return r, nil
}

// read merges one file into the namespace. Later files replace same-named
// sections from earlier ones.
func (r *Registry) read(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	r.track(doc)

	for _, sec := range doc.sections() {
		if prev, exists := r.sections[sec.Name()]; exists {
			r.logger.Warn("Section declared in more than one file, last one wins.",
				"section", sec.Name(), "previous", prev.Path(), "file", path)
		}
		r.sections[sec.Name()] = &Section{name: sec.Name(), doc: doc, sec: sec}
	}
	return nil
}

// track registers a document for persistence.
func (r *Registry) track(doc *document) {
	if _, exists := r.docs[doc.path]; exists {
		return
	}
	doc.removable = doc.path != filepath.Clean(r.opts.Discovery.MainFile)
	r.docs[doc.path] = doc
	r.docOrder = append(r.docOrder, doc.path)
}

// Lookup returns the section with the given name. Sections flagged for
// destruction are not visible.
func (r *Registry) Lookup(name string) (*Section, bool) {
	sec, ok := r.sections[name]
	if !ok || sec.destroy {
		return nil, false
	}
	return sec, true
}

// GetOrCreate returns the named section, creating it when missing. A new
// section goes to <last dir>/<name><ext>, or to the main file when no
// repository directory exists. A section flagged for destruction that has
// not been persisted yet is revived with its entries intact.
func (r *Registry) GetOrCreate(name string) (*Section, error) {
	if sec, ok := r.sections[name]; ok {
		sec.destroy = false
		return sec, nil
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	path := r.targetPath(name)
	doc, ok := r.docs[path]
	if !ok {
		doc = newDocument(path)
		r.track(doc)
	}

	raw, err := doc.file.NewSection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create section %q in '%s': %w", name, path, err)
	}
	sec := &Section{name: name, doc: doc, sec: raw}
	r.sections[name] = sec

	r.logger.Debug("Section created.", "section", name, "file", path)
	return sec, nil
}

// targetPath decides which file a new section is placed in.
func (r *Registry) targetPath(name string) string {
	if len(r.dirs) > 0 {
		dir := r.dirs[len(r.dirs)-1]
		return filepath.Join(dir, name+r.opts.Discovery.extension())
	}
	return filepath.Clean(r.opts.Discovery.MainFile)
}

// Persist writes every changed file, removes sections flagged for
// destruction and normalizes file modes. Mode normalization runs on every
// call regardless of content changes. The first I/O failure aborts.
func (r *Registry) Persist() (PersistStats, error) {
	var stats PersistStats

	var doomed []string
	for name, sec := range r.sections {
		if sec.destroy {
			doomed = append(doomed, name)
		}
	}
	sort.Strings(doomed)
	for _, name := range doomed {
		sec := r.sections[name]
		sec.doc.file.DeleteSection(name)
		delete(r.sections, name)
		r.logger.Debug("Section removed.", "section", name, "file", sec.Path())

		for _, shadow := range r.shadowsOf(name, sec.doc) {
			r.logger.Warn("Destroyed section is still declared in another file and will reappear on the next read.",
				"section", name, "removed_from", sec.Path(), "file", shadow)
		}
	}

	for _, path := range r.docOrder {
		result, err := r.docs[path].store(r.opts.FileMode)
		if err != nil {
			return stats, err
		}
		switch result {
		case storeWritten:
			stats.Written = append(stats.Written, path)
			r.logger.Info("File written.", "file", path)
		case storeRemoved:
			stats.Removed = append(stats.Removed, path)
			r.logger.Info("Empty file removed.", "file", path)
		}
	}

	for _, path := range r.docOrder {
		changed, err := r.normalizeMode(path)
		if err != nil {
			return stats, err
		}
		if changed {
			stats.Chmoded = append(stats.Chmoded, path)
		}
	}

	return stats, nil
}

// shadowsOf lists the tracked files other than owner that declare name.
func (r *Registry) shadowsOf(name string, owner *document) []string {
	var paths []string
	for _, path := range r.docOrder {
		doc := r.docs[path]
		if doc == owner {
			continue
		}
		if _, err := doc.file.GetSection(name); err == nil {
			paths = append(paths, path)
		}
	}
	return paths
}

// normalizeMode sets the permission bits of path to the target mode.
func (r *Registry) normalizeMode(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat '%s': %w", path, err)
	}

	current := info.Mode().Perm()
	target := r.opts.FileMode.Perm()
	if current == target {
		return false, nil
	}

	r.logger.Info("Changing file mode.", "file", path,
		"from", fmt.Sprintf("%04o", uint32(current)), "to", fmt.Sprintf("%04o", uint32(target)))
	if err := os.Chmod(path, target); err != nil {
		return false, fmt.Errorf("failed to change mode of '%s': %w", path, err)
	}
	return true, nil
}

// Dirs returns the resolved repository directories.
func (r *Registry) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Files returns the enumerated candidate files, existing or not.
func (r *Registry) Files() []string {
	return append([]string(nil), r.files...)
}

// Paths returns every file tracked for persistence, in tracking order.
func (r *Registry) Paths() []string {
	return append([]string(nil), r.docOrder...)
}

// Names returns the visible section names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sections))
	for name, sec := range r.sections {
		if !sec.destroy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// validateName rejects names that cannot be both a section header and a
// file name.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, "[]/\n\r") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
