package logging

import (
	"log/slog"

	"github.com/google/uuid"
)

// WithSession tags every record of logger with a fresh run identifier so the
// lines of one scan can be pulled out of the shared log file. The identifier
// is returned alongside the logger.
func WithSession(logger *slog.Logger) (*slog.Logger, string) {
	if logger == nil {
		logger = NewNop()
	}
	id := uuid.NewString()
	return logger.With(String(FieldSessionID, id)), id
}
