// Package settings loads the repoconf tool settings from defaults, an
// optional TOML file and REPOCONF_* environment variables, in that order of
// increasing precedence. Command-line flags are applied on top by the CLI.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/repoconf"
)

const (
	// DefaultPath is read when no settings file is given explicitly.
	DefaultPath = "/etc/repoconf.toml"

	// EnvPrefix is prepended to the upper-cased setting name.
	EnvPrefix = "REPOCONF_"
)

// ErrConfigNotFound is returned alongside usable settings when the settings
// file does not exist. It is not fatal.
var ErrConfigNotFound = errors.New("settings file not found")

// Settings holds everything the CLI needs to build a registry.
type Settings struct {
	MainFile  string   `toml:"main_file"`
	ReposDirs []string `toml:"repos_dirs"`
	Pattern   string   `toml:"pattern"`
	FileMode  string   `toml:"file_mode"`
	LogLevel  string   `toml:"log_level"`
	LogFormat string   `toml:"log_format"`
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Default returns the stock yum locations.
func Default() Settings {
	d := repoconf.DefaultDiscoveryOptions()
	return Settings{
		MainFile:  d.MainFile,
		ReposDirs: d.Dirs,
		Pattern:   d.Pattern,
		FileMode:  fmt.Sprintf("%04o", uint32(repoconf.DefaultFileMode)),
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load layers the settings file at path and the environment over the
// defaults. If the file does not exist the returned settings are still
// valid and the error is ErrConfigNotFound.
func Load(path string, lookup LookupFunc) (Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	values := make(map[string]any)
	var notFound error

	if path != "" {
		if _, err := toml.DecodeFile(path, &values); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Settings{}, fmt.Errorf("failed to parse settings file '%s': %w", path, err)
			}
			notFound = ErrConfigNotFound
		}
	}

	for _, name := range fieldNames() {
		if v, ok := lookup(envName(name)); ok {
			values[name] = v
		}
	}

	s := Default()
	if _, ok := values["repos_dirs"]; ok {
		// mapstructure reuses a non-nil slice and keeps its tail
		s.ReposDirs = nil
	}
	if err := decode(values, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, notFound
}

// decode applies values onto target, leaving unset fields untouched.
func decode(values map[string]any, target *Settings) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Validate checks the values that cannot be caught by decoding.
func (s Settings) Validate() error {
	if s.MainFile == "" {
		return errors.New("main_file cannot be empty")
	}
	if _, err := s.Mode(); err != nil {
		return err
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", s.LogFormat)
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be 'debug', 'info', 'warn', or 'error'", s.LogLevel)
	}
	return nil
}

// Mode parses FileMode as an octal permission.
func (s Settings) Mode() (os.FileMode, error) {
	m, err := strconv.ParseUint(s.FileMode, 8, 32)
	if err != nil || m == 0 || m > 0777 {
		return 0, fmt.Errorf("invalid file_mode %q: must be an octal permission like 0644", s.FileMode)
	}
	return os.FileMode(m), nil
}

// Builder returns a registry builder configured from the settings.
func (s Settings) Builder(logger *slog.Logger) *repoconf.Builder {
	b := repoconf.NewBuilder().
		WithMainFile(s.MainFile).
		WithRepoDirs(s.ReposDirs...).
		WithPattern(s.Pattern).
		WithLogger(logger)
	if mode, err := s.Mode(); err == nil {
		b = b.WithFileMode(mode)
	}
	return b
}

// fieldNames lists the toml tag of every Settings field.
func fieldNames() []string {
	t := reflect.TypeOf(Settings{})
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, strings.Split(t.Field(i).Tag.Get("toml"), ",")[0])
	}
	return names
}

// envName maps a setting to its environment variable, e.g. main_file to
// REPOCONF_MAIN_FILE.
func envName(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}
