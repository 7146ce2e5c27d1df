package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func CheckDebug() bool {
	debug := os.Getenv("COMPSBOT_DEBUG")
	return debug == "true" || debug == "1"
}

// InitLog points the global zerolog logger at <dataDir>/debug.log when
// COMPSBOT_DEBUG is set. Otherwise logging is discarded so nothing interleaves
// with the terminal UI. The returned closer releases the log file.
func InitLog(dataDir string) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if !CheckDebug() {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil)
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: prompts and API payloads end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil)
	}

	log.Logger = zerolog.New(f).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	log.Info().Str("path", logPath).Msg("=== debug logging started ===")
	return f
}
