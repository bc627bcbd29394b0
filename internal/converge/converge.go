// Package converge drives records toward the declarations of a manifest and
// commits every change with a single flush.
package converge

import (
	"context"
	"fmt"
	"sort"

	"github.com/lixenwraith/repoconf"
	"github.com/lixenwraith/repoconf/internal/ctxlog"
	"github.com/lixenwraith/repoconf/internal/manifest"
)

// Action names what happened to a record or property.
type Action string

const (
	ActionCreate  Action = "create"
	ActionDestroy Action = "destroy"
	ActionChange  Action = "change"
)

// Options controls a convergence run.
type Options struct {
	// Noop reports the changes without applying or persisting them
	Noop bool
}

// Change is one difference between the declared and the current state.
type Change struct {
	Record   string
	Action   Action
	Property string // empty for create and destroy
	From     string
	To       string
}

// Report collects the changes of a run and what was persisted.
type Report struct {
	Changes []Change
	Ignored []string // "record.property" names outside the property set
	Stats   repoconf.PersistStats
}

// Apply converges the registry behind shared to decls.
func Apply(ctx context.Context, shared *repoconf.Shared, props *repoconf.PropertySet, decls []manifest.Declaration, opts Options) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	report := &Report{}

	records := make([]*repoconf.Record, len(decls))
	for i, decl := range decls {
		rec := repoconf.NewRecord(decl.Name, shared, props)
		for _, prop := range sortedKeys(decl.Properties) {
			rec.Declare(prop, decl.Properties[prop])
			if !props.Has(prop) {
				report.Ignored = append(report.Ignored, decl.Name+"."+prop)
			}
		}
		records[i] = rec
	}

	if err := repoconf.Prefetch(shared, records); err != nil {
		return nil, err
	}

	for i, decl := range decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := records[i]
		changes, err := converge(rec, decl, props, opts)
		if err != nil {
			return nil, fmt.Errorf("repo %q: %w", decl.Name, err)
		}
		for _, c := range changes {
			logger.Info("Repository change.", "repo", c.Record, "action", string(c.Action),
				"property", c.Property, "from", c.From, "to", c.To, "noop", opts.Noop)
		}
		report.Changes = append(report.Changes, changes...)
	}

	if opts.Noop {
		return report, nil
	}

	// runs even without changes, file modes are normalized on every persist
	stats, err := shared.Persist()
	if err != nil {
		return report, err
	}
	report.Stats = stats
	return report, nil
}

// converge computes and, unless noop, applies the changes for one record.
func converge(rec *repoconf.Record, decl manifest.Declaration, props *repoconf.PropertySet, opts Options) ([]Change, error) {
	switch {
	case decl.Ensure == repoconf.EnsureAbsent:
		if !rec.Exists() {
			return nil, nil
		}
		if !opts.Noop {
			if err := rec.Destroy(); err != nil {
				return nil, err
			}
		}
		return []Change{{Record: decl.Name, Action: ActionDestroy, From: string(repoconf.EnsurePresent), To: string(repoconf.EnsureAbsent)}}, nil

	case !rec.Exists():
		if !opts.Noop {
			if err := rec.Create(); err != nil {
				return nil, err
			}
		}
		return []Change{{Record: decl.Name, Action: ActionCreate, From: string(repoconf.EnsureAbsent), To: string(repoconf.EnsurePresent)}}, nil
	}

	var changes []Change
	for _, prop := range sortedKeys(decl.Properties) {
		if !props.Has(prop) {
			continue
		}
		want := repoconf.NormalizeValue(decl.Properties[prop])
		have, err := rec.Get(prop)
		if err != nil {
			return nil, err
		}
		if have == want {
			continue
		}
		if !opts.Noop {
			if err := rec.Set(prop, want); err != nil {
				return nil, err
			}
		}
		changes = append(changes, Change{Record: decl.Name, Action: ActionChange, Property: prop, From: have, To: want})
	}
	return changes, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
