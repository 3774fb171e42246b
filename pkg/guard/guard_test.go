package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	fsys := filesystem.NewOS()
	g := New(fsys)

	source := filepath.Join(tmpDir, "managed", "gitconfig")
	require.NoError(t, os.MkdirAll(filepath.Dir(source), 0755))
	require.NoError(t, os.WriteFile(source, []byte("[user]\n"), 0644))

	t.Run("absent destination needs action", func(t *testing.T) {
		dest := filepath.Join(tmpDir, "home", ".gitconfig")
		d, err := g.CheckSymlink(source, dest)
		require.NoError(t, err)
		assert.Equal(t, NeedsAction, d)
	})

	t.Run("correct symlink is satisfied", func(t *testing.T) {
		dest := filepath.Join(tmpDir, ".gitconfig-ok")
		require.NoError(t, os.Symlink(source, dest))

		d, err := g.CheckSymlink(source, dest)
		require.NoError(t, err)
		assert.Equal(t, Satisfied, d)
	})

	t.Run("symlink to wrong target is a conflict", func(t *testing.T) {
		other := filepath.Join(tmpDir, "other")
		require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
		dest := filepath.Join(tmpDir, ".gitconfig-wrong")
		require.NoError(t, os.Symlink(other, dest))

		d, err := g.CheckSymlink(source, dest)
		require.NoError(t, err)
		assert.Equal(t, Conflict, d)
	})

	t.Run("regular file is a conflict and untouched", func(t *testing.T) {
		dest := filepath.Join(tmpDir, ".gitconfig-edited")
		require.NoError(t, os.WriteFile(dest, []byte("user content"), 0644))

		d, err := g.CheckSymlink(source, dest)
		require.NoError(t, err)
		assert.Equal(t, Conflict, d)

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "user content", string(content))
	})
}

// Guard decisions hold on a pure in-memory filesystem too, where the
// FS wrapper emulates symlinks as mode-flagged files.
func TestCheckSymlinkInMemory(t *testing.T) {
	fsys := filesystem.NewAfero(afero.NewMemMapFs())
	g := New(fsys)

	const source = "/managed/gitconfig"
	require.NoError(t, fsys.MkdirAll("/managed", 0755))
	require.NoError(t, fsys.WriteFile(source, []byte("[user]\n"), 0644))

	d, err := g.CheckSymlink(source, "/home/op/.gitconfig")
	require.NoError(t, err)
	assert.Equal(t, NeedsAction, d)

	require.NoError(t, fsys.Symlink(source, "/home/op/.gitconfig"))
	d, err = g.CheckSymlink(source, "/home/op/.gitconfig")
	require.NoError(t, err)
	assert.Equal(t, Satisfied, d)

	// A plain file (no symlink mode bit) is a conflict.
	require.NoError(t, fsys.WriteFile("/home/op/.gitconfig-edited", []byte("user content"), 0644))
	d, err = g.CheckSymlink(source, "/home/op/.gitconfig-edited")
	require.NoError(t, err)
	assert.Equal(t, Conflict, d)
}

func TestCheckMarkerCopy(t *testing.T) {
	tmpDir := t.TempDir()
	g := New(filesystem.NewOS())

	const marker = "source ~/.devup/shell/init.sh"

	t.Run("absent destination needs action", func(t *testing.T) {
		d, err := g.CheckMarkerCopy(filepath.Join(tmpDir, ".zshrc"), marker)
		require.NoError(t, err)
		assert.Equal(t, NeedsAction, d)
	})

	t.Run("destination with marker is satisfied", func(t *testing.T) {
		dest := filepath.Join(tmpDir, ".zshrc-with")
		require.NoError(t, os.WriteFile(dest, []byte("# mine\n"+marker+"\n"), 0644))

		d, err := g.CheckMarkerCopy(dest, marker)
		require.NoError(t, err)
		assert.Equal(t, Satisfied, d)
	})

	t.Run("destination without marker is fatal", func(t *testing.T) {
		dest := filepath.Join(tmpDir, ".zshrc-without")
		require.NoError(t, os.WriteFile(dest, []byte("# user removed the include\n"), 0644))

		d, err := g.CheckMarkerCopy(dest, marker)
		require.Error(t, err)
		assert.Equal(t, Conflict, d)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMarkerMissing))

		// Never auto-patched.
		content, readErr := os.ReadFile(dest)
		require.NoError(t, readErr)
		assert.Equal(t, "# user removed the include\n", string(content))
	})
}

func TestCheckCopyIfAbsent(t *testing.T) {
	tmpDir := t.TempDir()
	g := New(filesystem.NewOS())

	d, err := g.CheckCopyIfAbsent(filepath.Join(tmpDir, ".irbrc"))
	require.NoError(t, err)
	assert.Equal(t, NeedsAction, d)

	dest := filepath.Join(tmpDir, ".irbrc-present")
	require.NoError(t, os.WriteFile(dest, []byte("anything at all"), 0644))

	// Content is never inspected for this mode.
	d, err = g.CheckCopyIfAbsent(dest)
	require.NoError(t, err)
	assert.Equal(t, Satisfied, d)
}

func TestCheckRepoDir(t *testing.T) {
	tmpDir := t.TempDir()
	g := New(filesystem.NewOS())

	d, err := g.CheckRepoDir(filepath.Join(tmpDir, "src", "main-project"))
	require.NoError(t, err)
	assert.Equal(t, NeedsAction, d)

	existing := filepath.Join(tmpDir, "src", "cloned")
	require.NoError(t, os.MkdirAll(existing, 0755))

	d, err = g.CheckRepoDir(existing)
	require.NoError(t, err)
	assert.Equal(t, Satisfied, d)

	// A file where the repo dir should be is a conflict.
	asFile := filepath.Join(tmpDir, "src", "plain-file")
	require.NoError(t, os.WriteFile(asFile, []byte("x"), 0644))

	d, err = g.CheckRepoDir(asFile)
	require.NoError(t, err)
	assert.Equal(t, Conflict, d)
}
