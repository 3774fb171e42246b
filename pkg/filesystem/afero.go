package filesystem

import (
	"io/fs"

	"github.com/spf13/afero"
)

// aferoFS implements FS using afero
type aferoFS struct {
	fs afero.Fs
	// links tracks emulated symlinks for backends without Linker
	// support (MemMapFs stores only permission bits, so the
	// ModeSymlink type bit cannot live in the backing FS itself).
	links map[string]string
}

// NewAfero creates a new afero filesystem implementation. With
// afero.NewMemMapFs() this yields a pure in-memory FS for tests.
func NewAfero(base afero.Fs) FS {
	return &aferoFS{fs: base, links: make(map[string]string)}
}

// emulatedLinkInfo reports an emulated symlink's mode with the
// ModeSymlink type bit set, which the backing FS cannot preserve.
type emulatedLinkInfo struct {
	fs.FileInfo
}

func (e emulatedLinkInfo) Mode() fs.FileMode {
	return e.FileInfo.Mode() | fs.ModeSymlink
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return a.withEmulatedLink(name, info, err)
	}
	info, err := a.fs.Stat(name)
	return a.withEmulatedLink(name, info, err)
}

// withEmulatedLink restores the ModeSymlink bit on paths recorded as
// emulated symlinks; real symlink-capable backends never populate links.
func (a *aferoFS) withEmulatedLink(name string, info fs.FileInfo, err error) (fs.FileInfo, error) {
	if err != nil {
		return info, err
	}
	if _, ok := a.links[name]; ok {
		return emulatedLinkInfo{info}, nil
	}
	return info, nil
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) Symlink(oldname, newname string) error {
	if linker, ok := a.fs.(afero.Linker); ok {
		return linker.SymlinkIfPossible(oldname, newname)
	}
	// MemMapFs has no symlink support, so we simulate one with a file
	// whose content is the link target, recorded in links so Lstat can
	// report the ModeSymlink bit the backing FS would otherwise strip.
	// Sufficient for guard decisions in tests.
	if err := afero.WriteFile(a.fs, newname, []byte(oldname), 0777); err != nil {
		return err
	}
	a.links[newname] = oldname
	return nil
}

func (a *aferoFS) Readlink(name string) (string, error) {
	if reader, ok := a.fs.(afero.LinkReader); ok {
		return reader.ReadlinkIfPossible(name)
	}
	if target, ok := a.links[name]; ok {
		return target, nil
	}
	content, err := afero.ReadFile(a.fs, name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
