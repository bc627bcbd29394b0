// FILE: lixenwraith/repoconf/shared.go
package repoconf

import "fmt"

// Shared hands one lazily built Registry to every record of a run. The
// registry is built on first access and never rebuilt afterwards, so all
// records observe the same snapshot plus the writes made through it.
type Shared struct {
	opts       Options
	validators []ValidatorFunc
	reg        *Registry
	err        error // builder error reported on first access
}

// NewShared returns a handle that builds its Registry on first use.
func NewShared(opts Options) *Shared {
	return &Shared{opts: opts}
}

// Registry returns the shared Registry, building it on the first call and
// running the builder's validators on it. A failed build or validation is
// not memoized.
func (s *Shared) Registry() (*Registry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.reg != nil {
		return s.reg, nil
	}
	reg, err := Load(s.opts)
	if err != nil {
		return nil, err
	}
	for _, validator := range s.validators {
		if err := validator(reg); err != nil {
			return nil, fmt.Errorf("registry validation failed: %w", err)
		}
	}
	s.reg = reg
	return reg, nil
}

// Persist commits every pending change of every record sharing this handle.
func (s *Shared) Persist() (PersistStats, error) {
	reg, err := s.Registry()
	if err != nil {
		return PersistStats{}, err
	}
	return reg.Persist()
}
