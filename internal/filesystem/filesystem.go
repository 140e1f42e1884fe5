// Package filesystem is the file access layer shared by input expansion,
// source lookup and report output: a mockable view of the host filesystem,
// the SourceFinder that maps recorded file names onto source roots, and the
// atomic writer used for coverage.xml.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Filesystem is the slice of the OS file API that glob expansion and source
// lookup need. Tests substitute an in-memory implementation.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Getwd() (string, error)
	Abs(path string) (string, error)
}

// DefaultFS implements Filesystem on top of the host operating system.
type DefaultFS struct{}

func (DefaultFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (DefaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (DefaultFS) Getwd() (string, error) {
	return os.Getwd()
}

func (DefaultFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}
