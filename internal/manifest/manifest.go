// Package manifest reads the repositories a run should converge to. A
// manifest lists repositories by name, each with an optional ensure value
// and any number of properties:
//
//	[repo.epel]
//	descr   = "Extra Packages for Enterprise Linux"
//	baseurl = "https://download.example.com/epel/9/$basearch"
//	enabled = true
//
// The same shape is accepted as YAML, JSON or HCL (`repo "epel" { ... }`).
// Values are coerced to strings; booleans become "1" and "0".
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/repoconf"
	"github.com/lixenwraith/repoconf/internal/ctxlog"
)

// Declaration is one desired repository.
type Declaration struct {
	Name       string
	Ensure     repoconf.Ensure
	Properties map[string]string
}

// Manifest is the ordered set of declarations read from one file.
type Manifest struct {
	Path         string
	Declarations []Declaration
}

// document is the common shape of the TOML, YAML and JSON formats.
type document struct {
	Repo map[string]map[string]string `mapstructure:"repo"`
}

// Load reads a manifest, picking the format from the file extension.
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	format := detectFormat(path)
	if format == "" {
		return nil, fmt.Errorf("unable to determine manifest format for file '%s'", path)
	}

	var repos map[string]map[string]string
	var err error
	if format == "hcl" {
		repos, err = loadHCL(path)
	} else {
		repos, err = loadStructured(path, format)
	}
	if err != nil {
		return nil, err
	}

	m, err := build(path, repos)
	if err != nil {
		return nil, err
	}
	logger.Debug("Manifest loaded.", "path", path, "format", format, "repos", len(m.Declarations))
	return m, nil
}

// loadStructured handles the formats that decode to a generic map.
func loadStructured(path, format string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest '%s': %w", path, err)
	}

	raw := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML manifest '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML manifest '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON manifest '%s': %w", path, err)
		}
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid manifest '%s': %w", path, err)
	}
	return doc.Repo, nil
}

// build turns the decoded table into sorted declarations, pulling out the
// ensure value.
func build(path string, repos map[string]map[string]string) (*Manifest, error) {
	m := &Manifest{Path: path}
	for name, props := range repos {
		decl := Declaration{
			Name:       name,
			Ensure:     repoconf.EnsurePresent,
			Properties: make(map[string]string, len(props)),
		}
		for k, v := range props {
			if k == repoconf.PropEnsure {
				ensure := repoconf.Ensure(strings.ToLower(v))
				if ensure != repoconf.EnsurePresent && ensure != repoconf.EnsureAbsent {
					return nil, fmt.Errorf("repo %q: invalid ensure %q: must be 'present' or 'absent'", name, v)
				}
				decl.Ensure = ensure
				continue
			}
			decl.Properties[k] = v
		}
		m.Declarations = append(m.Declarations, decl)
	}

	sort.Slice(m.Declarations, func(i, j int) bool {
		return m.Declarations[i].Name < m.Declarations[j].Name
	})
	return m, nil
}

// detectFormat determines format from file extension
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".hcl":
		return "hcl"
	default:
		return ""
	}
}
