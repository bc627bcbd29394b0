// FILE: lixenwraith/repoconf/record.go
package repoconf

import "fmt"

// Ensure is the lifecycle state of a record.
type Ensure string

const (
	// EnsurePresent means the record has a backing section.
	EnsurePresent Ensure = "present"
	// EnsureAbsent means the record has no section, or it was destroyed.
	EnsureAbsent Ensure = "absent"
)

// Record projects one declared repository onto exactly one section of the
// shared registry. Property values are read through to the section on first
// access and cached; every write updates section and cache together.
type Record struct {
	name    string
	shared  *Shared
	props   *PropertySet
	ensure  Ensure
	cache   map[string]string
	desired map[string]string
	order   []string // desired keys in declaration order
}

// NewRecord returns an unmaterialized record bound to name. Nothing is read
// from disk until a property is accessed.
func NewRecord(name string, shared *Shared, props *PropertySet) *Record {
	return &Record{
		name:    name,
		shared:  shared,
		props:   props,
		ensure:  EnsureAbsent,
		cache:   make(map[string]string),
		desired: make(map[string]string),
	}
}

// Name returns the record name, which is also its section name.
func (r *Record) Name() string {
	return r.name
}

// Declare records the desired value of a property for Create. Names outside
// the property set are kept but never written.
func (r *Record) Declare(prop, value string) {
	if _, exists := r.desired[prop]; !exists {
		r.order = append(r.order, prop)
	}
	r.desired[prop] = value
}

// Desired returns the declared value of prop.
func (r *Record) Desired(prop string) (string, bool) {
	v, ok := r.desired[prop]
	return v, ok
}

// Create marks the record present and writes every declared, recognized
// property. The backing section is located or created by the first write.
func (r *Record) Create() error {
	r.ensure = EnsurePresent
	for _, prop := range r.order {
		if prop == PropEnsure || !r.props.Has(prop) {
			continue
		}
		if err := r.Set(prop, r.desired[prop]); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the cached lifecycle state is present.
func (r *Record) Exists() bool {
	return r.ensure == EnsurePresent
}

// Destroy flags the backing section for removal on the next flush and
// clears the property cache. Later reads and writes revive the section.
func (r *Record) Destroy() error {
	sec, err := r.section()
	if err != nil {
		return err
	}
	sec.MarkDestroyed(true)
	r.cache = make(map[string]string)
	r.ensure = EnsureAbsent
	return nil
}

// Get returns the value of prop, or Absent when the entry is missing.
func (r *Record) Get(prop string) (string, error) {
	if prop == PropEnsure {
		return string(r.ensure), nil
	}

	acc, err := r.props.lookup(prop)
	if err != nil {
		return "", err
	}
	if v, ok := r.cache[prop]; ok {
		return v, nil
	}

	sec, err := r.section()
	if err != nil {
		return "", err
	}
	value, ok := acc.get(sec)
	if !ok {
		value = Absent
	}
	r.cache[prop] = value
	return value, nil
}

// Set writes prop. Absent removes the entry; any other value is stored
// normalized (see NormalizeValue).
func (r *Record) Set(prop, value string) error {
	if prop == PropEnsure {
		return fmt.Errorf("%w: %s is managed through Create and Destroy", ErrReservedProperty, prop)
	}

	acc, err := r.props.lookup(prop)
	if err != nil {
		return err
	}

	sec, err := r.section()
	if err != nil {
		return err
	}
	acc.set(sec, value)
	if stored, ok := acc.get(sec); ok {
		r.cache[prop] = stored
	} else {
		r.cache[prop] = Absent
	}
	return nil
}

// Flush persists every pending change of every record sharing the registry.
func (r *Record) Flush() error {
	_, err := r.shared.Persist()
	return err
}

// Section returns the backing section, creating it if necessary.
func (r *Record) Section() (*Section, error) {
	return r.section()
}

func (r *Record) section() (*Section, error) {
	reg, err := r.shared.Registry()
	if err != nil {
		return nil, err
	}
	sec, err := reg.GetOrCreate(r.name)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.name, err)
	}
	// binding a section materializes the record
	r.ensure = EnsurePresent
	return sec, nil
}
