package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the observability sink: a JSON logger appending to the given
// file. The terminal belongs to the dashboard, so nothing is ever written
// to stdout or stderr. The returned closer flushes the file on shutdown.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return l, f, nil
}
