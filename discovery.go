// FILE: lixenwraith/repoconf/discovery.go
package repoconf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions configures where repository files are searched for
type DiscoveryOptions struct {
	// Main configuration file, always merged first
	MainFile string

	// Section of the main file holding global settings
	MainSection string

	// Key in MainSection naming additional repository directories
	DirKey string

	// Default repository directories (in order)
	Dirs []string

	// Glob pattern matched inside each directory
	Pattern string
}

// DefaultDiscoveryOptions returns the stock yum locations
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		MainFile:    "/etc/yum.conf",
		MainSection: "main",
		DirKey:      "reposdir",
		Dirs:        []string{"/etc/yum.repos.d", "/etc/yum/repos.d"},
		Pattern:     "*.repo",
	}
}

// extension returns the file extension new per-item files are created with.
func (o DiscoveryOptions) extension() string {
	return filepath.Ext(o.Pattern)
}

// ResolveDirs returns the repository directories that exist, defaults first
// and then any named by the main file. An empty result is not an error.
func ResolveDirs(opts DiscoveryOptions, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := append([]string(nil), opts.Dirs...)

	custom, err := lookupMainValue(opts)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, splitDirList(custom)...)

	seen := make(map[string]bool, len(candidates))
	var dirs []string
	for _, dir := range candidates {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Debug("Repository directory not found.", "dir", dir)
			continue
		}
		dirs = append(dirs, dir)
	}

	if len(dirs) == 0 {
		logger.Debug("No repository directories were found on the local filesystem.")
	}
	return dirs, nil
}

// EnumerateFiles lists the files to merge: the main file, then every file
// matching the pattern in each directory, in directory order.
func EnumerateFiles(opts DiscoveryOptions, dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	if opts.MainFile != "" {
		add(filepath.Clean(opts.MainFile))
	}

	for _, dir := range dirs {
		// Glob returns matches in lexical order
		matches, err := filepath.Glob(filepath.Join(dir, opts.Pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", opts.Pattern, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	return files, nil
}

// lookupMainValue reads DirKey from the main file's main section. A missing
// file, section or key yields an empty value.
func lookupMainValue(opts DiscoveryOptions) (string, error) {
	if opts.MainFile == "" || opts.DirKey == "" {
		return "", nil
	}

	info, err := os.Stat(opts.MainFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat main file '%s': %w", opts.MainFile, err)
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}

	doc, err := loadDocument(opts.MainFile)
	if err != nil {
		return "", err
	}
	sec, err := doc.file.GetSection(opts.MainSection)
	if err != nil {
		return "", nil
	}
	key, err := sec.GetKey(opts.DirKey)
	if err != nil {
		return "", nil
	}
	return key.String(), nil
}

// splitDirList splits a reposdir value the way yum does: commas, blanks and
// newlines all separate entries.
func splitDirList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
