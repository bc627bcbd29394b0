// FILE: lixenwraith/repoconf/document_test.go
package repoconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocumentStore tests the change-only write path of a single file
func TestDocumentStore(t *testing.T) {
	t.Run("UnchangedIsNotRewritten", func(t *testing.T) {
		l := newLayout(t)
		path := l.write(t, filepath.Join(l.dirA, "a.repo"), "[a]\nname = A\n")
		doc, err := loadDocument(path)
		require.NoError(t, err)

		before, err := os.Stat(path)
		require.NoError(t, err)

		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeUnchanged, result)

		after, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, os.SameFile(before, after), "file was replaced")
	})

	t.Run("ChangedIsWrittenOnce", func(t *testing.T) {
		l := newLayout(t)
		path := l.write(t, filepath.Join(l.dirA, "a.repo"), "[a]\nname = A\n")
		doc, err := loadDocument(path)
		require.NoError(t, err)

		sec, err := doc.file.GetSection("a")
		require.NoError(t, err)
		sec.Key("enabled").SetValue("1")

		result, err := doc.store(0600)
		require.NoError(t, err)
		assert.Equal(t, storeWritten, result)
		assert.Equal(t, os.FileMode(0600), fileMode(t, path))
		assert.Equal(t, "[a]\nname = A\nenabled = 1\n", readFile(t, path))

		result, err = doc.store(0600)
		require.NoError(t, err)
		assert.Equal(t, storeUnchanged, result)
	})

	t.Run("NewEmptyDocumentNotCreated", func(t *testing.T) {
		l := newLayout(t)
		path := filepath.Join(l.dirA, "new.repo")
		doc := newDocument(path)
		doc.removable = true

		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeUnchanged, result)
		assert.NoFileExists(t, path)
		assert.NoDirExists(t, l.dirA)
	})

	t.Run("NewDocumentCreatesDirectory", func(t *testing.T) {
		l := newLayout(t)
		path := filepath.Join(l.dirA, "new.repo")
		doc := newDocument(path)

		_, err := doc.file.NewSection("new")
		require.NoError(t, err)

		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeWritten, result)
		assert.Contains(t, readFile(t, path), "[new]")
	})

	t.Run("EmptiedRemovableIsRemoved", func(t *testing.T) {
		l := newLayout(t)
		path := l.write(t, filepath.Join(l.dirA, "a.repo"), "[a]\nname = A\n")
		doc, err := loadDocument(path)
		require.NoError(t, err)
		doc.removable = true

		doc.file.DeleteSection("a")
		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeRemoved, result)
		assert.NoFileExists(t, path)

		result, err = doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeUnchanged, result)
	})

	t.Run("EmptyOnDiskLeftAlone", func(t *testing.T) {
		l := newLayout(t)
		path := l.write(t, filepath.Join(l.dirA, "blank.repo"), "")
		doc, err := loadDocument(path)
		require.NoError(t, err)
		doc.removable = true

		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeUnchanged, result)
		assert.FileExists(t, path)
	})

	t.Run("EmptiedNonRemovableIsTruncated", func(t *testing.T) {
		l := newLayout(t)
		path := l.write(t, l.mainFile, "[main]\ngpgcheck = 1\n")
		doc, err := loadDocument(path)
		require.NoError(t, err)

		doc.file.DeleteSection("main")
		result, err := doc.store(DefaultFileMode)
		require.NoError(t, err)
		assert.Equal(t, storeWritten, result)
		assert.Empty(t, readFile(t, path))
	})
}

// TestDocumentParsing tests the yum flavoured INI dialect
func TestDocumentParsing(t *testing.T) {
	l := newLayout(t)
	path := l.write(t, filepath.Join(l.dirA, "dialect.repo"), `# comment
[dialect]
name=Dialect # not a comment
baseurl=http://a/
  http://b/
gpgkey="file:///etc/pki/key"
`)
	doc, err := loadDocument(path)
	require.NoError(t, err)

	secs := doc.sections()
	require.Len(t, secs, 1)
	sec := secs[0]
	assert.Equal(t, "dialect", sec.Name())
	assert.Equal(t, "Dialect # not a comment", sec.Key("name").String())
	assert.Contains(t, sec.Key("baseurl").String(), "http://a/")
	assert.Contains(t, sec.Key("baseurl").String(), "http://b/")
	assert.Equal(t, `"file:///etc/pki/key"`, sec.Key("gpgkey").String())

	result, err := doc.store(DefaultFileMode)
	require.NoError(t, err)
	assert.Equal(t, storeUnchanged, result)

	rendered, err := doc.render()
	require.NoError(t, err)
	assert.Equal(t, readFile(t, path), string(rendered))
}

// TestDocumentRender tests that rewritten files stay in yum's dialect
func TestDocumentRender(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		edit   func(t *testing.T, doc *document)
		output string
	}{
		{
			name:  "MultilineValueKeptAsContinuation",
			input: "[epel]\nname=EPEL\nbaseurl=http://a/\n  http://b/\nenabled=1\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("epel").Key("enabled").SetValue("0")
			},
			output: "[epel]\nname=EPEL\nbaseurl=http://a/\n  http://b/\nenabled=0\n",
		},
		{
			name:  "TabIndentedContinuation",
			input: "[keys]\ngpgkey=file:///a\n\tfile:///b\n\tfile:///c\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("keys").Key("gpgcheck").SetValue("1")
			},
			output: "[keys]\ngpgkey=file:///a\n\tfile:///b\n\tfile:///c\ngpgcheck=1\n",
		},
		{
			name:  "SpacedDelimiterKept",
			input: "[base]\nname = Base\nenabled = 1\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("base").Key("enabled").SetValue("0")
			},
			output: "[base]\nname = Base\nenabled = 0\n",
		},
		{
			name:  "NoAlignmentOrQuoting",
			input: "[q]\nn=1\nmirrorlist=http://m/?repo=x&arch=$basearch # literal\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("q").Key("proxy").SetValue("_none_")
			},
			output: "[q]\nn=1\nmirrorlist=http://m/?repo=x&arch=$basearch # literal\nproxy=_none_\n",
		},
		{
			name:  "CommentsKept",
			input: "# managed file\n#second line\n[a]\n; about x\nx=1\n\n[b]\ny=2\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("b").Key("y").SetValue("3")
			},
			output: "# managed file\n#second line\n[a]\n; about x\nx=1\n\n[b]\ny=3\n",
		},
		{
			name:  "SectionRemoved",
			input: "[a]\nx=1\n\n[b]\ny=2\n\n[c]\nz=3\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.DeleteSection("b")
			},
			output: "[a]\nx=1\n\n[c]\nz=3\n",
		},
		{
			name:  "LeadingEntriesWithoutSection",
			input: "top=1\n[a]\nx=1\n",
			edit: func(t *testing.T, doc *document) {
				doc.file.Section("a").Key("x").SetValue("2")
			},
			output: "top=1\n[a]\nx=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLayout(t)
			path := l.write(t, filepath.Join(l.dirA, "r.repo"), tt.input)
			doc, err := loadDocument(path)
			require.NoError(t, err)

			tt.edit(t, doc)
			result, err := doc.store(DefaultFileMode)
			require.NoError(t, err)
			assert.Equal(t, storeWritten, result)
			assert.Equal(t, tt.output, readFile(t, path))

			// the rewritten file parses back to the same document
			reread, err := loadDocument(path)
			require.NoError(t, err)
			assert.Equal(t, doc.baseline, reread.baseline)
		})
	}

	t.Run("NewDocumentUsesPlainDelimiter", func(t *testing.T) {
		doc := newDocument(filepath.Join(t.TempDir(), "n.repo"))
		sec, err := doc.file.NewSection("n")
		require.NoError(t, err)
		sec.Key("baseurl").SetValue("http://n/\n  http://m/")

		rendered, err := doc.render()
		require.NoError(t, err)
		assert.Equal(t, "[n]\nbaseurl=http://n/\n  http://m/\n", string(rendered))
	})
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"[a]\nx=1\n", "="},
		{"[a]\nx = 1\n", " = "},
		{"[a]\nx =1\n", " ="},
		{"# a = b\n[a]\n  cont = x\nx= 1\n", "= "},
		{"[a]\nx: 1\n", ": "},
		{"[a]\n", "="},
		{"", "="},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDelimiter([]byte(tt.data)))
		})
	}
}

// TestAtomicWriteFile tests the temp-and-rename write helper
func TestAtomicWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := filepath.Join(dir, "out.repo")

	require.NoError(t, atomicWriteFile(path, []byte("[x]\n"), 0640))
	assert.Equal(t, "[x]\n", readFile(t, path))
	assert.Equal(t, os.FileMode(0640), fileMode(t, path))

	require.NoError(t, atomicWriteFile(path, []byte("[y]\n"), 0644))
	assert.Equal(t, "[y]\n", readFile(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}
