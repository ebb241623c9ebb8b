// Package log configures the global zerolog logger.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shapedtime/torrentmap/internal/config"
)

// Load replaces the global logger with one writing to the console and,
// when cfg.Path is set, to a rotating log file.
func Load(cfg config.LogConfig) {
	log.Logger = New(cfg, os.Stdout)
	zerolog.SetGlobalLevel(Level(cfg))
}

// New builds a logger writing to console and, when cfg.Path is set, to a
// rotating file. Colour is used only when console is a terminal.
func New(cfg config.LogConfig, console io.Writer) zerolog.Logger {
	noColor := true
	if f, ok := console.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
		if !noColor {
			// fix console colors on windows
			console = colorable.NewColorable(f)
		}
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}}
	if cfg.Path != "" {
		writers = append(writers, newRollingFile(cfg))
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(Level(cfg)).
		With().Timestamp().Logger()
}

// Level returns the configured level. Debug overrides Level.
func Level(cfg config.LogConfig) zerolog.Level {
	if cfg.Debug {
		return zerolog.DebugLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func newRollingFile(cfg config.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
	}
}

// Component returns a child of the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
