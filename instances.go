// FILE: lixenwraith/repoconf/instances.go
package repoconf

// Instances returns a present record for every section in the registry
// except the main file's global section, sorted by name.
func Instances(shared *Shared, props *PropertySet) ([]*Record, error) {
	reg, err := shared.Registry()
	if err != nil {
		return nil, err
	}

	mainSection := reg.opts.Discovery.MainSection
	var records []*Record
	for _, name := range reg.Names() {
		if name == mainSection {
			continue
		}
		rec := NewRecord(name, shared, props)
		rec.ensure = EnsurePresent
		records = append(records, rec)
	}
	return records, nil
}

// Prefetch marks each record present when the registry already holds its
// section. Records without a section keep their state.
func Prefetch(shared *Shared, records []*Record) error {
	reg, err := shared.Registry()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, ok := reg.Lookup(rec.name); ok {
			rec.ensure = EnsurePresent
		}
	}
	return nil
}
