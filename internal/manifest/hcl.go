package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclRoot decodes the top-level blocks of an HCL manifest.
type hclRoot struct {
	Repos  []*hclRepo `hcl:"repo,block"`
	Remain hcl.Body   `hcl:",remain"`
}

// hclRepo is one `repo "name" { ... }` block; its attributes are free-form.
type hclRepo struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// loadHCL parses an HCL manifest into the same table the other formats
// produce. Attributes are evaluated without variables or functions.
func loadHCL(path string) (map[string]map[string]string, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL manifest %s: %w", path, diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL manifest %s: %w", path, diags)
	}

	repos := make(map[string]map[string]string, len(root.Repos))
	for _, repo := range root.Repos {
		if _, exists := repos[repo.Name]; exists {
			return nil, fmt.Errorf("HCL manifest %s: repo %q declared more than once", path, repo.Name)
		}

		attrs, diags := repo.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("HCL manifest %s: repo %q: %w", path, repo.Name, diags)
		}

		props := make(map[string]string, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("HCL manifest %s: repo %q: %w", path, repo.Name, diags)
			}
			s, ok, err := ctyToString(val)
			if err != nil {
				return nil, fmt.Errorf("HCL manifest %s: repo %q: attribute %q: %w", path, repo.Name, name, err)
			}
			if ok {
				props[name] = s
			}
		}
		repos[repo.Name] = props
	}
	return repos, nil
}

// ctyToString renders a primitive value the way the other formats are
// coerced. Null values are reported as not set.
func ctyToString(val cty.Value) (string, bool, error) {
	if val.IsNull() {
		return "", false, nil
	}
	if !val.IsKnown() {
		return "", false, fmt.Errorf("value is not known")
	}

	switch val.Type() {
	case cty.Bool:
		if val.True() {
			return "1", true, nil
		}
		return "0", true, nil
	case cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int(nil)
			return i.String(), true, nil
		}
		return bf.Text('f', -1), true, nil
	}

	// Lists of strings join with commas, e.g. several gpgkey URLs.
	if val.Type().IsListType() || val.Type().IsTupleType() {
		strs, err := convert.Convert(val, cty.List(cty.String))
		if err != nil {
			return "", false, err
		}
		var out string
		for it := strs.ElementIterator(); it.Next(); {
			_, v := it.Element()
			if v.IsNull() {
				continue
			}
			if out != "" {
				out += ","
			}
			out += v.AsString()
		}
		return out, true, nil
	}

	s, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", false, err
	}
	return s.AsString(), true, nil
}
