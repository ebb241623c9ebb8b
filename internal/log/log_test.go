package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shapedtime/torrentmap/internal/config"
)

func TestLevel(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		cfg      config.LogConfig
		expected zerolog.Level
	}{
		{config.LogConfig{Level: "info"}, zerolog.InfoLevel},
		{config.LogConfig{Level: "WARN"}, zerolog.WarnLevel},
		{config.LogConfig{Level: "error", Debug: true}, zerolog.DebugLevel},
		{config.LogConfig{Level: "nonsense"}, zerolog.InfoLevel},
		{config.LogConfig{}, zerolog.InfoLevel},
	}
	for _, tc := range tests {
		require.Equal(tc.expected, Level(tc.cfg), "%+v", tc.cfg)
	}
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "torrentmap.log")
	var console bytes.Buffer
	l := New(config.LogConfig{Level: "info", Path: path, MaxSize: 1}, &console)

	l.Debug().Msg("hidden")
	l.Info().Str("hash", "abc").Msg("index built")

	require.Contains(console.String(), "index built")
	require.Contains(console.String(), "hash=abc")
	require.NotContains(console.String(), "hidden")

	data, err := os.ReadFile(path)
	require.NoError(err)
	require.Contains(string(data), "index built")
}

func TestBadger(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var buf bytes.Buffer
	b := &Badger{L: zerolog.New(&buf)}
	b.Warningf("value log %d\n", 3)
	require.Contains(buf.String(), `"level":"warn"`)
	require.Contains(buf.String(), `"message":"value log 3"`)
}
