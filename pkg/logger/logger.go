// Package logx configures the process-wide zerolog logger for bluecast.
// Every component logs through the zerolog/log global, so the chat loop,
// the forecast pipeline, and the session stores share one sink.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is loaded from LOG_* environment variables by the autoload
// package. PrettyFormat is meant for local chat sessions; the default
// JSON stream suits log collectors.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

// Init replaces the global logger. Calling it without arguments installs
// the defaults: info level, JSON to stdout.
func Init(opts ...Config) {
	var conf Config
	if len(opts) > 0 {
		conf = opts[0]
	}

	w := io.Writer(os.Stdout)
	if conf.PrettyFormat {
		w = zerolog.NewConsoleWriter()
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}
