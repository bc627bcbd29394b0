// FILE: lixenwraith/repoconf/type.go
package repoconf

import (
	"fmt"
	"strconv"
	"strings"
)

// Bool reads prop as a yum boolean. Accepts 1/0, yes/no, true/false and
// on/off in any case. An absent property is false.
func (r *Record) Bool(prop string) (bool, error) {
	val, err := r.Get(prop)
	if err != nil {
		return false, err
	}
	if val == Absent {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("cannot convert %q to bool for property %s", val, prop)
}

// SetBool writes prop as "1" or "0".
func (r *Record) SetBool(prop string, v bool) error {
	if v {
		return r.Set(prop, "1")
	}
	return r.Set(prop, "0")
}

// Int64 reads prop as an integer. An absent property is an error.
func (r *Record) Int64(prop string) (int64, error) {
	val, err := r.Get(prop)
	if err != nil {
		return 0, err
	}
	if val == Absent {
		return 0, fmt.Errorf("property %s is absent, cannot convert to int64", prop)
	}

	s := strings.TrimSpace(val)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	} else {
		return 0, fmt.Errorf("cannot convert string %q to int64 for property %s: %w", s, prop, err)
	}
}

// SetInt64 writes prop in decimal.
func (r *Record) SetInt64(prop string, v int64) error {
	return r.Set(prop, strconv.FormatInt(v, 10))
}
