package artistmatch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"curator/internal/fileutil"
	"curator/internal/logging"
)

// Mover relocates folders into a directory.
type Mover interface {
	MkdirAll(path string) error
	MoveInto(src, dir string) (string, error)
}

// ApplyMatches moves every matched new folder into <newRoot>/<knownDir> and
// returns one log line per folder. Failures are logged and the batch
// continues.
func ApplyMatches(matches []Match, newRoot, knownDir string, mover Mover, logger *slog.Logger) []string {
	logger = logging.NewComponentLogger(logger, "artistmatch")

	targets := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		targets[filepath.Join(newRoot, match.FolderName)] = struct{}{}
	}
	folders := make([]string, 0, len(targets))
	for folder := range targets {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	knownPath := filepath.Join(newRoot, knownDir)
	if err := mover.MkdirAll(knownPath); err != nil {
		logging.WarnWithContext(logger, "create known-names folder failed", "known_dir_failed",
			logging.Path(knownPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the new folder root"),
			logging.String(logging.FieldImpact, "no folders were moved"),
		)
		return []string{fmt.Sprintf("Failed to create %s: %v", knownPath, err)}
	}

	var lines []string
	for _, folder := range folders {
		if !fileutil.Exists(folder) {
			lines = append(lines, fmt.Sprintf("Folder does not exist: %s", folder))
			continue
		}
		target, err := mover.MoveInto(folder, knownPath)
		if err != nil {
			logging.WarnWithContext(logger, "move matched folder failed", "move_failed",
				logging.Path(folder),
				logging.Error(err),
			)
			lines = append(lines, fmt.Sprintf("Failed to move %s: %v", folder, err))
			continue
		}
		logger.Info("matched folder moved",
			logging.Path(folder),
			logging.String("target", target),
		)
		lines = append(lines, fmt.Sprintf("Folder %s moved to: %s", folder, target))
	}
	return lines
}
