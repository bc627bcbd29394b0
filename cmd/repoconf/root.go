package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/repoconf"
	"github.com/lixenwraith/repoconf/internal/ctxlog"
	"github.com/lixenwraith/repoconf/internal/settings"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	mainFile   string
	reposDirs  []string
	pattern    string
	fileMode   string
	logLevel   string
	logFormat  string
}

// runtime is what a subcommand gets after settings and logging are resolved.
type runtime struct {
	ctx      context.Context
	logger   *slog.Logger
	settings settings.Settings
	shared   *repoconf.Shared
	props    *repoconf.PropertySet
}

func NewRootCommand(version, commit, date string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "repoconf",
		Short: "Converge yum repository definitions",
		Long: `repoconf manages yum repository definitions spread over yum.conf and the
*.repo files of every repository directory as one registry.

Repositories are declared in a TOML, YAML, JSON or HCL manifest and applied
with a single write pass; only files whose content changes are rewritten and
every managed file is normalized to mode 0644.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", settings.DefaultPath, "Path to the repoconf settings file.")
	pf.StringVar(&flags.mainFile, "main-file", "", "Main yum configuration file.")
	pf.StringSliceVar(&flags.reposDirs, "repos-dir", nil, "Default repository directory (repeatable).")
	pf.StringVar(&flags.pattern, "pattern", "", "Glob matched inside each repository directory.")
	pf.StringVar(&flags.fileMode, "file-mode", "", "Octal mode enforced on managed files.")
	pf.StringVar(&flags.logLevel, "log-level", "", "Logging level: debug, info, warn or error.")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log output format: text or json.")

	rootCmd.AddCommand(
		newApplyCommand(flags),
		newListCommand(flags),
		newShowCommand(flags),
		newFilesCommand(flags),
	)

	return rootCmd
}

// setup resolves settings (defaults, file, environment, flags) and builds
// the logger and the shared registry handle.
func setup(cmd *cobra.Command, flags *globalFlags) (*runtime, error) {
	s, err := settings.Load(flags.configPath, os.LookupEnv)
	if err != nil && !errors.Is(err, settings.ErrConfigNotFound) {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("main-file") {
		s.MainFile = flags.mainFile
	}
	if f.Changed("repos-dir") {
		s.ReposDirs = flags.reposDirs
	}
	if f.Changed("pattern") {
		s.Pattern = flags.pattern
	}
	if f.Changed("file-mode") {
		s.FileMode = flags.fileMode
	}
	if f.Changed("log-level") {
		s.LogLevel = flags.logLevel
	}
	if f.Changed("log-format") {
		s.LogFormat = flags.logFormat
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger := ctxlog.New(s.LogLevel, s.LogFormat, cmd.ErrOrStderr())
	ctx := ctxlog.WithLogger(cmd.Context(), logger)
	logger.Debug("Settings resolved.", "main_file", s.MainFile, "repos_dirs", s.ReposDirs, "pattern", s.Pattern)

	return &runtime{
		ctx:      ctx,
		logger:   logger,
		settings: s,
		shared:   s.Builder(logger).Shared(),
		props:    repoconf.YumProperties(),
	}, nil
}

// printf writes to the command's standard output.
func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
