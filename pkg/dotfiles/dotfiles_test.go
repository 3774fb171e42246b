package dotfiles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/guard"
	"github.com/devup-sh/devup/pkg/report"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	installer  *Installer
	collector  *report.Collector
	out        *bytes.Buffer
	sourceRoot string
	targetRoot string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	sourceRoot := filepath.Join(tmpDir, "dotfiles")
	targetRoot := filepath.Join(tmpDir, "home")
	require.NoError(t, os.MkdirAll(sourceRoot, 0755))
	require.NoError(t, os.MkdirAll(targetRoot, 0755))

	out := &bytes.Buffer{}
	collector := report.NewCollector(out)
	fsys := filesystem.NewOS()

	return &testEnv{
		installer:  NewInstaller(fsys, guard.New(fsys), collector, sourceRoot, targetRoot),
		collector:  collector,
		out:        out,
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
	}
}

func (e *testEnv) writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.sourceRoot, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInstallSymlink(t *testing.T) {
	env := newTestEnv(t)
	source := env.writeSource(t, "gitconfig-org", "[pull]\n\trebase = true\n")

	mapping := Mapping{Source: "gitconfig-org", Dest: ".gitconfig-org", Mode: ModeSymlink}

	results, err := env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusLinked, results[0].Status)

	dest := filepath.Join(env.targetRoot, ".gitconfig-org")
	target, err := os.Readlink(dest)
	require.NoError(t, err)
	assert.Equal(t, source, target)

	// Re-run: already correctly linked, no rewrite, no warning.
	results, err = env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.False(t, env.collector.HasWarnings())
}

func TestInstallSymlinkConflict(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource(t, "gitconfig-org", "managed")

	dest := filepath.Join(env.targetRoot, ".gitconfig-org")
	require.NoError(t, os.WriteFile(dest, []byte("the user's own file"), 0644))

	mapping := Mapping{Source: "gitconfig-org", Dest: ".gitconfig-org", Mode: ModeSymlink}

	results, err := env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusConflict, results[0].Status)

	// Byte-for-byte untouched, exactly one warning.
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "the user's own file", string(content))
	assert.Len(t, env.collector.Warnings(), 1)
}

func TestInstallMarkerCopy(t *testing.T) {
	const marker = "source ~/.devup/shell/init.sh"
	env := newTestEnv(t)
	env.writeSource(t, "zshrc", "# template\n"+marker+"\n")

	mapping := Mapping{Source: "zshrc", Dest: ".zshrc", Mode: ModeMarkerCopy, Marker: marker}

	t.Run("fresh install copies the template", func(t *testing.T) {
		results, err := env.installer.Install([]Mapping{mapping})
		require.NoError(t, err)
		assert.Equal(t, StatusCopied, results[0].Status)

		content, err := os.ReadFile(filepath.Join(env.targetRoot, ".zshrc"))
		require.NoError(t, err)
		assert.Contains(t, string(content), marker)
	})

	t.Run("re-run with marker present is skipped", func(t *testing.T) {
		// The operator appended their own lines; only the marker matters.
		dest := filepath.Join(env.targetRoot, ".zshrc")
		require.NoError(t, os.WriteFile(dest, []byte("alias g=git\n"+marker+"\n"), 0644))

		results, err := env.installer.Install([]Mapping{mapping})
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, results[0].Status)
	})

	t.Run("missing marker is fatal", func(t *testing.T) {
		dest := filepath.Join(env.targetRoot, ".zshrc")
		require.NoError(t, os.WriteFile(dest, []byte("# marker removed\n"), 0644))

		_, err := env.installer.Install([]Mapping{mapping})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMarkerMissing))
		assert.True(t, errors.IsFatal(err))

		// Never auto-patched.
		content, readErr := os.ReadFile(dest)
		require.NoError(t, readErr)
		assert.Equal(t, "# marker removed\n", string(content))
	})
}

func TestInstallCopyIfAbsent(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource(t, "irbrc", "IRB.conf[:SAVE_HISTORY] = 1000\n")

	mapping := Mapping{Source: "irbrc", Dest: ".irbrc", Mode: ModeCopyIfAbsent}

	results, err := env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusCopied, results[0].Status)

	// Existing destination is never inspected or replaced.
	dest := filepath.Join(env.targetRoot, ".irbrc")
	require.NoError(t, os.WriteFile(dest, []byte("totally rewritten"), 0644))

	results, err = env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, results[0].Status)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "totally rewritten", string(content))
}

func TestInstallCreatesParentDirectories(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource(t, "init.sh", "export DEVUP_HOME=1\n")

	mapping := Mapping{Source: "init.sh", Dest: ".devup/shell/init.sh", Mode: ModeSymlink}

	results, err := env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusLinked, results[0].Status)

	_, err = os.Lstat(filepath.Join(env.targetRoot, ".devup", "shell", "init.sh"))
	assert.NoError(t, err)
}

func TestInstallSeedsEmbeddedTemplate(t *testing.T) {
	env := newTestEnv(t)

	// No source file on disk; the embedded zshrc template is seeded.
	mapping := Mapping{
		Source: "zshrc",
		Dest:   ".zshrc",
		Mode:   ModeMarkerCopy,
		Marker: "source ~/.devup/shell/init.sh",
	}

	results, err := env.installer.Install([]Mapping{mapping})
	require.NoError(t, err)
	assert.Equal(t, StatusCopied, results[0].Status)

	seeded, err := os.ReadFile(filepath.Join(env.sourceRoot, "zshrc"))
	require.NoError(t, err)
	assert.Contains(t, string(seeded), "source ~/.devup/shell/init.sh")
}

// The installer's behavior does not depend on the backing filesystem:
// the same mappings converge to all-skips on a pure in-memory FS,
// including the emulated symlink path MemMapFs gets.
func TestInstallInMemoryFilesystem(t *testing.T) {
	fsys := filesystem.NewAfero(afero.NewMemMapFs())
	collector := report.NewCollector(&bytes.Buffer{})
	const sourceRoot = "/managed/dotfiles"
	const targetRoot = "/home/op"
	const marker = "source ~/.devup/shell/init.sh"

	installer := NewInstaller(fsys, guard.New(fsys), collector, sourceRoot, targetRoot)

	require.NoError(t, fsys.MkdirAll(sourceRoot, 0755))
	require.NoError(t, fsys.WriteFile(filepath.Join(sourceRoot, "zshrc"), []byte("# template\n"+marker+"\n"), 0644))
	require.NoError(t, fsys.WriteFile(filepath.Join(sourceRoot, "init.sh"), []byte("export DEVUP_HOME=1\n"), 0644))
	require.NoError(t, fsys.WriteFile(filepath.Join(sourceRoot, "irbrc"), []byte("IRB.conf[:SAVE_HISTORY] = 1000\n"), 0644))

	mappings := []Mapping{
		{Source: "zshrc", Dest: ".zshrc", Mode: ModeMarkerCopy, Marker: marker},
		{Source: "init.sh", Dest: ".devup/shell/init.sh", Mode: ModeSymlink},
		{Source: "irbrc", Dest: ".irbrc", Mode: ModeCopyIfAbsent},
	}

	results, err := installer.Install(mappings)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, StatusCopied, results[0].Status)
	assert.Equal(t, StatusLinked, results[1].Status)
	assert.Equal(t, StatusCopied, results[2].Status)

	target, err := fsys.Readlink(filepath.Join(targetRoot, ".devup", "shell", "init.sh"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sourceRoot, "init.sh"), target)

	// Second pass over the same in-memory state is all skips.
	results, err = installer.Install(mappings)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
	assert.False(t, collector.HasWarnings())
}

func TestInstallUnknownModeFails(t *testing.T) {
	env := newTestEnv(t)
	env.writeSource(t, "x", "x")

	_, err := env.installer.Install([]Mapping{{Source: "x", Dest: ".x", Mode: "hardlink"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
