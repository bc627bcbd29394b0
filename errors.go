// FILE: lixenwraith/repoconf/errors.go
package repoconf

import "errors"

var (
	// ErrUnknownProperty is returned when a record is asked for a property
	// outside its PropertySet.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrReservedProperty is returned when a PropertySet is built with the
	// lifecycle property.
	ErrReservedProperty = errors.New("reserved property name")

	// ErrInvalidName rejects empty section names and names that cannot form
	// a file name.
	ErrInvalidName = errors.New("invalid section name")
)
