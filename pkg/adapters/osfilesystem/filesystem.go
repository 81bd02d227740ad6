// Package osfilesystem reads clip assets from disk and writes reports.
package osfilesystem

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/user/alphaplay/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
// Relative paths resolve against root when one is set.
type FileSystem struct {
	root string
}

// New creates a FileSystem resolving relative paths against the working directory.
func New() *FileSystem {
	return &FileSystem{}
}

// NewRooted creates a FileSystem resolving relative paths against root,
// typically the directory holding the clip assets.
func NewRooted(root string) *FileSystem {
	return &FileSystem{root: root}
}

func (fs *FileSystem) resolve(path string) string {
	if fs.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(fs.root, path)
}

func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(fs.resolve(path))
}

func (fs *FileSystem) WriteFile(path string, data []byte) error {
	path = fs.resolve(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(fs.resolve(path), 0755)
}

func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(fs.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, iofs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

var _ ports.FileSystem = (*FileSystem)(nil)
