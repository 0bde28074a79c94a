package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// ErrNotFound reports that the source of a mutation no longer exists.
var ErrNotFound = errors.New("path does not exist")

// ErrExists reports that the target of a rename or move is already taken.
var ErrExists = errors.New("target already exists")

// FS performs the filesystem mutations of every engine. With Simulate set
// each operation validates its inputs exactly as it would for real, then
// returns without touching the disk.
type FS struct {
	Simulate bool
	Remover  Remover
}

// New returns an FS that removes through remover (permanent when nil).
func New(simulate bool, remover Remover) FS {
	if remover == nil {
		remover = PermanentRemover{}
	}
	return FS{Simulate: simulate, Remover: remover}
}

// Exists reports whether path exists without following a final symlink.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// MkdirAll creates path and any missing parents.
func (f FS) MkdirAll(path string) error {
	if f.Simulate {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

// Rename renames from to to. The target must not exist.
func (f FS) Rename(from, to string) error {
	if !Exists(from) {
		return fmt.Errorf("rename %s: %w", from, ErrNotFound)
	}
	if Exists(to) {
		return fmt.Errorf("rename %s to %s: %w", from, to, ErrExists)
	}
	if f.Simulate {
		return nil
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	return nil
}

// MoveInto moves src into dir, keeping its base name, and returns the new path.
func (f FS) MoveInto(src, dir string) (string, error) {
	target := filepath.Join(dir, filepath.Base(src))
	if !Exists(src) {
		return target, fmt.Errorf("move %s: %w", src, ErrNotFound)
	}
	if Exists(target) {
		return target, fmt.Errorf("move %s to %s: %w", src, target, ErrExists)
	}
	if f.Simulate {
		return target, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return target, fmt.Errorf("create target directory: %w", err)
	}
	if err := move(src, target); err != nil {
		return target, err
	}
	return target, nil
}

// Remove deletes path through the configured Remover.
func (f FS) Remove(path string) error {
	if !Exists(path) {
		return fmt.Errorf("remove %s: %w", path, ErrNotFound)
	}
	if f.Simulate {
		return nil
	}
	remover := f.Remover
	if remover == nil {
		remover = PermanentRemover{}
	}
	return remover.Remove(path)
}

// RemoveEmptyDir removes dir only when it has no entries.
func (f FS) RemoveEmptyDir(dir string) (bool, error) {
	empty, err := IsEmptyDir(dir)
	if err != nil || !empty {
		return false, err
	}
	if f.Simulate {
		return true, nil
	}
	if err := os.Remove(dir); err != nil {
		return false, fmt.Errorf("remove directory %s: %w", dir, err)
	}
	return true, nil
}

// IsEmptyDir reports whether dir exists and has no entries.
func IsEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("read %s: %w", dir, ErrNotFound)
		}
		return false, err
	}
	return len(entries) == 0, nil
}

// move renames src to dst, falling back to copy and delete for regular files
// on a different device.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("move %s: %w", src, err)
	}
	info, statErr := os.Lstat(src)
	if statErr != nil {
		return fmt.Errorf("stat source: %w", statErr)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("move %s across devices: only regular files are supported: %w", src, err)
	}
	if err := copyFileVerified(src, dst); err != nil {
		return fmt.Errorf("copy file across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}
