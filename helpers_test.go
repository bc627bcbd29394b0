// FILE: lixenwraith/repoconf/helpers_test.go
package repoconf

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// layout is a throwaway yum tree: a main file and two default directories.
type layout struct {
	root     string
	mainFile string
	dirA     string
	dirB     string
}

func newLayout(t *testing.T) layout {
	t.Helper()
	root := t.TempDir()
	l := layout{
		root:     root,
		mainFile: filepath.Join(root, "yum.conf"),
		dirA:     filepath.Join(root, "yum.repos.d"),
		dirB:     filepath.Join(root, "yum", "repos.d"),
	}
	return l
}

func (l layout) write(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chmod(path, 0644))
	return path
}

func (l layout) mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(d, 0755))
	}
}

func (l layout) options(logger *slog.Logger) Options {
	opts := DefaultOptions()
	opts.Discovery.MainFile = l.mainFile
	opts.Discovery.Dirs = []string{l.dirA, l.dirB}
	opts.Logger = logger
	return opts
}

func (l layout) load(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load(l.options(quietLogger()))
	require.NoError(t, err)
	return reg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLogger records every message at debug level and above.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func fileMode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}
