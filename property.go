// FILE: lixenwraith/repoconf/property.go
package repoconf

import "fmt"

const (
	// Absent marks a property that is not set. Writing it removes the entry.
	Absent = "absent"

	// PropEnsure is the lifecycle property. It is never stored in a section.
	PropEnsure = "ensure"

	// PropDescr is stored in the section's display name entry.
	PropDescr = "descr"

	// displayNameKey holds the human readable repository name.
	displayNameKey = "name"
)

// accessor reads and writes one property on a section.
type accessor struct {
	get func(s *Section) (string, bool)
	set func(s *Section, value string)
}

// PropertySet is the fixed table of properties a record understands.
type PropertySet struct {
	names     []string
	accessors map[string]accessor
}

// NewPropertySet builds the accessor table for names. Duplicate names are
// collapsed; the lifecycle property is rejected.
func NewPropertySet(names ...string) (*PropertySet, error) {
	ps := &PropertySet{accessors: make(map[string]accessor, len(names))}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("property name cannot be empty")
		}
		if name == PropEnsure {
			return nil, fmt.Errorf("%w: %s", ErrReservedProperty, name)
		}
		if _, exists := ps.accessors[name]; exists {
			continue
		}
		ps.names = append(ps.names, name)
		ps.accessors[name] = newAccessor(name)
	}
	return ps, nil
}

// MustPropertySet is like NewPropertySet but panics on error
func MustPropertySet(names ...string) *PropertySet {
	ps, err := NewPropertySet(names...)
	if err != nil {
		panic(fmt.Sprintf("property set: %v", err))
	}
	return ps
}

// newAccessor maps a property onto its entry. descr lives in the display
// name entry, every other property in the entry of the same name.
func newAccessor(name string) accessor {
	key := name
	if name == PropDescr {
		key = displayNameKey
	}
	return accessor{
		get: func(s *Section) (string, bool) {
			return s.Get(key)
		},
		set: func(s *Section, value string) {
			if value == Absent {
				s.Unset(key)
				return
			}
			s.Set(key, value)
		},
	}
}

// Has reports whether name is a recognized property.
func (ps *PropertySet) Has(name string) bool {
	_, ok := ps.accessors[name]
	return ok
}

// Names returns the recognized properties in declaration order.
func (ps *PropertySet) Names() []string {
	return append([]string(nil), ps.names...)
}

func (ps *PropertySet) lookup(name string) (accessor, error) {
	acc, ok := ps.accessors[name]
	if !ok {
		return accessor{}, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return acc, nil
}

// yumProperties are the repository options yum documents in yum.conf(5)
// and dnf.conf(5).
var yumProperties = []string{
	"descr",
	"baseurl",
	"mirrorlist",
	"metalink",
	"enabled",
	"gpgcheck",
	"repo_gpgcheck",
	"gpgkey",
	"gpgcakey",
	"include",
	"exclude",
	"includepkgs",
	"enablegroups",
	"failovermethod",
	"keepalive",
	"http_caching",
	"timeout",
	"metadata_expire",
	"mirrorlist_expire",
	"protect",
	"priority",
	"cost",
	"proxy",
	"proxy_username",
	"proxy_password",
	"username",
	"password",
	"s3_enabled",
	"skip_if_unavailable",
	"sslcacert",
	"sslclientcert",
	"sslclientkey",
	"sslverify",
	"assumeyes",
	"deltarpm_percentage",
	"deltarpm_metadata_percentage",
	"bandwidth",
	"throttle",
	"minrate",
	"retries",
	"module_hotfixes",
	"type",
}

// YumProperties returns the default property set for yum repositories.
func YumProperties() *PropertySet {
	return MustPropertySet(yumProperties...)
}
