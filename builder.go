// FILE: lixenwraith/repoconf/builder.go
package repoconf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ValidatorFunc checks a freshly built Registry. It receives the loaded
// *Registry and should return an error if validation fails.
type ValidatorFunc func(r *Registry) error

// Builder provides a fluent interface for building registries
type Builder struct {
	opts       Options
	errs       []error
	validators []ValidatorFunc
}

// NewBuilder creates a new registry builder with the stock yum locations
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithOptions replaces all options at once
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithMainFile sets the main configuration file path
func (b *Builder) WithMainFile(path string) *Builder {
	if path == "" {
		b.errs = append(b.errs, errors.New("main file path cannot be empty"))
		return b
	}
	b.opts.Discovery.MainFile = path
	return b
}

// WithRepoDirs replaces the default repository directories
func (b *Builder) WithRepoDirs(dirs ...string) *Builder {
	b.opts.Discovery.Dirs = append([]string(nil), dirs...)
	return b
}

// WithDirKey sets the main-file key naming extra repository directories
func (b *Builder) WithDirKey(section, key string) *Builder {
	b.opts.Discovery.MainSection = section
	b.opts.Discovery.DirKey = key
	return b
}

// WithPattern sets the glob matched inside each repository directory
func (b *Builder) WithPattern(pattern string) *Builder {
	if _, err := filepath.Match(pattern, ""); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid file pattern %q: %w", pattern, err))
		return b
	}
	if filepath.Ext(pattern) == "" {
		b.errs = append(b.errs, fmt.Errorf("file pattern %q must end in an extension", pattern))
		return b
	}
	b.opts.Discovery.Pattern = pattern
	return b
}

// WithFileMode sets the permission enforced on tracked files
func (b *Builder) WithFileMode(mode os.FileMode) *Builder {
	if mode&^os.ModePerm != 0 || mode == 0 {
		b.errs = append(b.errs, fmt.Errorf("invalid file mode %04o", uint32(mode)))
		return b
	}
	b.opts.FileMode = mode
	return b
}

// WithLogger sets the diagnostics logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of Build.
// Multiple validators are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Options returns the options collected so far
func (b *Builder) Options() (Options, error) {
	if len(b.errs) > 0 {
		return Options{}, errors.Join(b.errs...)
	}
	return b.opts, nil
}

// Build loads the Registry from disk and runs the validators
func (b *Builder) Build() (*Registry, error) {
	opts, err := b.Options()
	if err != nil {
		return nil, err
	}

	reg, err := Load(opts)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(reg); err != nil {
			return nil, fmt.Errorf("registry validation failed: %w", err)
		}
	}

	return reg, nil
}

// Shared returns a lazily built handle. Builder errors and validator
// failures surface on the handle's first access.
func (b *Builder) Shared() *Shared {
	opts, err := b.Options()
	s := NewShared(opts)
	s.validators = append([]ValidatorFunc(nil), b.validators...)
	s.err = err
	return s
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Registry {
	reg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("registry build failed: %v", err))
	}
	return reg
}
