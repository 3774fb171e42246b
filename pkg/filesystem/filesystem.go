package filesystem

import "io/fs"

// FS is the filesystem surface the pipeline is allowed to touch.
// Every mutation the dotfile installer and repository cloner perform
// goes through this interface.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
}
