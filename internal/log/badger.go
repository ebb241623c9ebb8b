package log

import (
	"strings"

	"github.com/rs/zerolog"
)

// Badger adapts zerolog to badger's logger interface.
type Badger struct {
	L zerolog.Logger
}

func (l *Badger) Errorf(f string, v ...interface{}) {
	l.L.Error().Msgf(strings.TrimSuffix(f, "\n"), v...)
}

func (l *Badger) Warningf(f string, v ...interface{}) {
	l.L.Warn().Msgf(strings.TrimSuffix(f, "\n"), v...)
}

func (l *Badger) Infof(f string, v ...interface{}) {
	l.L.Info().Msgf(strings.TrimSuffix(f, "\n"), v...)
}

func (l *Badger) Debugf(f string, v ...interface{}) {
	l.L.Debug().Msgf(strings.TrimSuffix(f, "\n"), v...)
}
