// FILE: lixenwraith/repoconf/property_test.go
package repoconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertySet(t *testing.T) {
	tests := []struct {
		name      string
		props     []string
		wantNames []string
		wantErr   error
		errorMsg  string
	}{
		{
			name:      "DeclarationOrder",
			props:     []string{"enabled", "baseurl", "descr"},
			wantNames: []string{"enabled", "baseurl", "descr"},
		},
		{
			name:      "DuplicatesCollapsed",
			props:     []string{"baseurl", "enabled", "baseurl"},
			wantNames: []string{"baseurl", "enabled"},
		},
		{
			name:    "EnsureReserved",
			props:   []string{"baseurl", PropEnsure},
			wantErr: ErrReservedProperty,
		},
		{
			name:     "EmptyName",
			props:    []string{"baseurl", ""},
			errorMsg: "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := NewPropertySet(tt.props...)
			if tt.wantErr != nil || tt.errorMsg != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, ps.Names())
			for _, name := range tt.wantNames {
				assert.True(t, ps.Has(name))
			}
			assert.False(t, ps.Has(PropEnsure))
		})
	}

	assert.Panics(t, func() { MustPropertySet(PropEnsure) })
}

func TestYumProperties(t *testing.T) {
	ps := YumProperties()
	for _, name := range []string{"descr", "baseurl", "mirrorlist", "enabled", "gpgcheck", "gpgkey", "priority", "type"} {
		assert.True(t, ps.Has(name), name)
	}
	assert.False(t, ps.Has("name"), "the display name is reached through descr")
	assert.Equal(t, "descr", ps.Names()[0])

	// callers cannot mutate the table through Names
	names := ps.Names()
	names[0] = "changed"
	assert.Equal(t, "descr", ps.Names()[0])
}

func TestAccessorMapping(t *testing.T) {
	l := newLayout(t)
	l.write(t, l.mainFile, "[r]\nname=Display\ndescr=stray\n")
	reg := l.load(t)
	sec, _ := reg.Lookup("r")

	descr := newAccessor(PropDescr)
	v, ok := descr.get(sec)
	assert.True(t, ok)
	assert.Equal(t, "Display", v)

	descr.set(sec, "Other")
	name, _ := sec.Get("name")
	assert.Equal(t, "Other", name)
	stray, _ := sec.Get("descr")
	assert.Equal(t, "stray", stray, "the descr entry itself is untouched")

	descr.set(sec, Absent)
	_, ok = sec.Get("name")
	assert.False(t, ok)

	plain := newAccessor("baseurl")
	_, ok = plain.get(sec)
	assert.False(t, ok)
	plain.set(sec, "http://r")
	v, _ = sec.Get("baseurl")
	assert.Equal(t, "http://r", v)
}
