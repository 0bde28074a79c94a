package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Bios-Marcel/wastebasket/v2"
)

// Remover is the sink that receives paths to delete.
type Remover interface {
	Remove(path string) error
}

// PermanentRemover deletes paths outright.
type PermanentRemover struct{}

func (PermanentRemover) Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// SystemTrashRemover sends paths to the desktop trash.
type SystemTrashRemover struct{}

func (SystemTrashRemover) Remove(path string) error {
	if err := wastebasket.Trash(path); err != nil {
		return fmt.Errorf("trash %s: %w", path, err)
	}
	return nil
}

// TrashRemover moves paths into a timestamped folder under Dir so they can
// be restored by hand.
type TrashRemover struct {
	Dir string
	Now func() time.Time
}

// NewTrashRemover returns a TrashRemover rooted at dir.
func NewTrashRemover(dir string) *TrashRemover {
	return &TrashRemover{Dir: dir, Now: time.Now}
}

func (r *TrashRemover) Remove(path string) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	bucket := filepath.Join(r.Dir, now().Format("20060102-150405"))
	if err := os.MkdirAll(bucket, 0o755); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}
	target := uniqueTarget(filepath.Join(bucket, filepath.Base(path)))
	if err := move(path, target); err != nil {
		return fmt.Errorf("trash %s: %w", path, err)
	}
	return nil
}

// uniqueTarget appends ".1", ".2", ... until the path is free.
func uniqueTarget(path string) string {
	if !Exists(path) {
		return path
	}
	for i := 1; ; i++ {
		candidate := path + "." + strconv.Itoa(i)
		if !Exists(candidate) {
			return candidate
		}
	}
}
