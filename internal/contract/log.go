package contract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	SetLogOutput(os.Stderr)
}

// SetLogOutput points the global logger at w using the console format.
// Stdout is reserved for command output and the MCP protocol.
func SetLogOutput(w io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"})
}

// SetLogLevel sets the global log level by name (debug, info, warn, error).
func SetLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn, error", level)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.Fatal().Err(err).Msg(msg)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
}

// Logger returns the process-wide structured logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}
