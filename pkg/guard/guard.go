package guard

import (
	"io/fs"
	"os"
	"strings"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/logging"
)

// Decision is the guard's answer for a single resource.
type Decision int

const (
	// NeedsAction means the resource is absent and must be installed.
	NeedsAction Decision = iota
	// Satisfied means the resource is already in the desired end state.
	Satisfied
	// Conflict means the destination exists in an unexpected shape and
	// must be left untouched.
	Conflict
)

func (d Decision) String() string {
	switch d {
	case NeedsAction:
		return "needs-action"
	case Satisfied:
		return "satisfied"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Guard decides, per resource, whether an installation action must run.
// It is what makes repeated runs convergent: every check moves the
// system only toward the desired end state and never overwrites user
// data.
type Guard struct {
	fs filesystem.FS
}

// New creates a guard over the given filesystem.
func New(fsys filesystem.FS) *Guard {
	return &Guard{fs: fsys}
}

// CheckSymlink reports whether dest must be linked to source.
// Satisfied only when dest is already a symlink pointing at exactly
// source. Any other existing dest is a Conflict and is never touched.
func (g *Guard) CheckSymlink(source, dest string) (Decision, error) {
	info, err := g.fs.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return NeedsAction, nil
		}
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", dest)
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		return Conflict, nil
	}

	target, err := g.fs.Readlink(dest)
	if err != nil {
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", dest)
	}
	if target != source {
		return Conflict, nil
	}

	return Satisfied, nil
}

// CheckMarkerCopy reports whether dest must be copied from its
// template. A missing dest needs the copy. An existing dest must
// contain the marker token; one that lacks it was edited incompatibly
// by the user, which is fatal. The file is never auto-patched.
func (g *Guard) CheckMarkerCopy(dest, marker string) (Decision, error) {
	logger := logging.GetLogger("guard")

	_, err := g.fs.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return NeedsAction, nil
		}
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", dest)
	}

	content, err := g.fs.ReadFile(dest)
	if err != nil {
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dest)
	}

	if !strings.Contains(string(content), marker) {
		logger.Error().
			Str("dest", dest).
			Str("marker", marker).
			Msg("existing file is missing its required managed include")
		return Conflict, errors.Newf(errors.ErrMarkerMissing,
			"%s exists but does not include the managed line %q; add it or remove the file and re-run", dest, marker)
	}

	return Satisfied, nil
}

// CheckCopyIfAbsent reports whether dest must be copied. An existing
// dest is always Satisfied, with no further check ever.
func (g *Guard) CheckCopyIfAbsent(dest string) (Decision, error) {
	_, err := g.fs.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return NeedsAction, nil
		}
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", dest)
	}
	return Satisfied, nil
}

// CheckRepoDir reports whether a repository must be cloned. An
// existing destination directory is never cloned again.
func (g *Guard) CheckRepoDir(dest string) (Decision, error) {
	info, err := g.fs.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return NeedsAction, nil
		}
		return Conflict, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", dest)
	}
	if !info.IsDir() {
		return Conflict, nil
	}
	return Satisfied, nil
}
