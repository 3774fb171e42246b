// Package dotfiles materializes the declared set of templated files
// into the target home directory. Three install modes exist: symlink
// for centrally managed files, marker-copy for user-editable files
// that must reference a managed companion, and copy-if-absent for
// one-time default templates. Every mutation is gated by the
// idempotency guard, so re-runs converge and never overwrite user
// edits.
package dotfiles

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/guard"
	"github.com/devup-sh/devup/pkg/logging"
	"github.com/devup-sh/devup/pkg/report"
)

//go:embed templates
var templatesFS embed.FS

// Mode selects how a mapping is installed.
type Mode string

const (
	// ModeSymlink links the destination to the managed source. Local
	// edits are disallowed and surface as conflicts.
	ModeSymlink Mode = "symlink"
	// ModeMarkerCopy copies the template once and afterwards only
	// enforces that the marker token is still present.
	ModeMarkerCopy Mode = "marker-copy"
	// ModeCopyIfAbsent copies the template once and never checks the
	// destination again.
	ModeCopyIfAbsent Mode = "copy-if-absent"
)

// Mapping declares one templated file.
type Mapping struct {
	Source string `koanf:"source"`
	Dest   string `koanf:"dest"`
	Mode   Mode   `koanf:"mode"`
	Marker string `koanf:"marker"`
}

// Status is the observed outcome for one mapping.
type Status string

const (
	StatusLinked   Status = "linked"
	StatusCopied   Status = "copied"
	StatusSkipped  Status = "skipped"
	StatusConflict Status = "conflict"
)

// Result pairs a mapping with its outcome.
type Result struct {
	Mapping Mapping
	Status  Status
}

// Installer materializes mappings under the target root.
type Installer struct {
	fs         filesystem.FS
	guard      *guard.Guard
	collector  *report.Collector
	sourceRoot string
	targetRoot string
}

// NewInstaller creates an installer. sourceRoot holds the managed
// source files (missing ones are seeded from the embedded templates);
// targetRoot is the home directory being provisioned.
func NewInstaller(fsys filesystem.FS, g *guard.Guard, c *report.Collector, sourceRoot, targetRoot string) *Installer {
	return &Installer{
		fs:         fsys,
		guard:      g,
		collector:  c,
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
	}
}

// Install materializes every mapping. Symlink conflicts are recorded
// as warnings and the destination is left untouched; a marker-copy
// destination missing its marker aborts the run.
func (i *Installer) Install(mappings []Mapping) ([]Result, error) {
	logger := logging.GetLogger("dotfiles")
	results := make([]Result, 0, len(mappings))

	for _, m := range mappings {
		result, err := i.installOne(m)
		if err != nil {
			return results, err
		}

		logger.Info().
			Str("dest", m.Dest).
			Str("mode", string(m.Mode)).
			Str("status", string(result.Status)).
			Msg("dotfile processed")
		results = append(results, result)
	}

	return results, nil
}

func (i *Installer) installOne(m Mapping) (Result, error) {
	source := filepath.Join(i.sourceRoot, m.Source)
	dest := filepath.Join(i.targetRoot, m.Dest)

	if err := i.ensureSource(m.Source, source); err != nil {
		return Result{Mapping: m}, err
	}

	switch m.Mode {
	case ModeSymlink:
		return i.installSymlink(m, source, dest)
	case ModeMarkerCopy:
		return i.installMarkerCopy(m, source, dest)
	case ModeCopyIfAbsent:
		return i.installCopyIfAbsent(m, source, dest)
	default:
		return Result{Mapping: m}, errors.Newf(errors.ErrInvalidInput, "unknown dotfile mode %q for %s", m.Mode, m.Dest)
	}
}

func (i *Installer) installSymlink(m Mapping, source, dest string) (Result, error) {
	decision, err := i.guard.CheckSymlink(source, dest)
	if err != nil {
		return Result{Mapping: m}, err
	}

	switch decision {
	case guard.Satisfied:
		return Result{Mapping: m, Status: StatusSkipped}, nil
	case guard.Conflict:
		i.collector.Warnf("%s exists and is not a link to %s; leaving it untouched", dest, source)
		return Result{Mapping: m, Status: StatusConflict}, nil
	}

	if err := i.mkParents(dest); err != nil {
		return Result{Mapping: m}, err
	}
	if err := i.fs.Symlink(source, dest); err != nil {
		return Result{Mapping: m}, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", dest)
	}
	return Result{Mapping: m, Status: StatusLinked}, nil
}

func (i *Installer) installMarkerCopy(m Mapping, source, dest string) (Result, error) {
	decision, err := i.guard.CheckMarkerCopy(dest, m.Marker)
	if err != nil {
		// Missing marker in an existing file is fatal: the user edited
		// the file incompatibly and we never auto-patch.
		return Result{Mapping: m, Status: StatusConflict}, err
	}

	if decision == guard.Satisfied {
		return Result{Mapping: m, Status: StatusSkipped}, nil
	}

	if err := i.copyFile(source, dest); err != nil {
		return Result{Mapping: m}, err
	}
	return Result{Mapping: m, Status: StatusCopied}, nil
}

func (i *Installer) installCopyIfAbsent(m Mapping, source, dest string) (Result, error) {
	decision, err := i.guard.CheckCopyIfAbsent(dest)
	if err != nil {
		return Result{Mapping: m}, err
	}

	if decision == guard.Satisfied {
		return Result{Mapping: m, Status: StatusSkipped}, nil
	}

	if err := i.copyFile(source, dest); err != nil {
		return Result{Mapping: m}, err
	}
	return Result{Mapping: m, Status: StatusCopied}, nil
}

func (i *Installer) copyFile(source, dest string) error {
	content, err := i.fs.ReadFile(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read template %s", source)
	}
	if err := i.mkParents(dest); err != nil {
		return err
	}
	if err := i.fs.WriteFile(dest, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to write %s", dest)
	}
	return nil
}

func (i *Installer) mkParents(dest string) error {
	if err := i.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent directory for %s", dest)
	}
	return nil
}

// ensureSource seeds a missing source file from the embedded template
// of the same name. Symlink destinations need a real file on disk to
// point at.
func (i *Installer) ensureSource(name, source string) error {
	if _, err := i.fs.Lstat(source); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect source %s", source)
	}

	content, err := fs.ReadFile(templatesFS, "templates/"+name)
	if err != nil {
		return errors.Newf(errors.ErrInvalidInput, "no source file or template for %s", name)
	}

	if err := i.fs.MkdirAll(filepath.Dir(source), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create source directory for %s", source)
	}
	if err := i.fs.WriteFile(source, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to seed template %s", source)
	}
	return nil
}
