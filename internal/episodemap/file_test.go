package episodemap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadFile(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	m := Build(entries("Show S01E02.avi", "Show S01E01.avi"))
	path := filepath.Join(t.TempDir(), "index.json")

	require.NoError(WriteFile(path, m))

	data, err := os.ReadFile(path)
	require.NoError(err)
	require.Equal(`{
  "o2e": {
    "0": 1,
    "1": 0
  },
  "se2e": {
    "S01E01": 0,
    "S01E02": 1
  }
}
`, string(data))

	got, err := ReadFile(path)
	require.NoError(err)
	require.Equal(m.OriginalToCanonical(), got.OriginalToCanonical())
	require.Equal(m.EpisodeToCanonical(), got.EpisodeToCanonical())

	// Overwrite in place.
	require.NoError(WriteFile(path, Build(nil)))
	got, err = ReadFile(path)
	require.NoError(err)
	require.Equal(0, got.Len())
}

func TestMarshalNumericOrder(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	paths := make([]string, 12)
	for i := range paths {
		paths[i] = strings.Repeat("a", 12-i)
	}
	data, err := json.Marshal(Build(entries(paths...)))
	require.NoError(err)

	s := string(data)
	require.Less(strings.Index(s, `"9":`), strings.Index(s, `"10":`))
	require.Less(strings.Index(s, `"2":`), strings.Index(s, `"11":`))
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []string{
		`{"o2e":{"x":1},"se2e":{}}`,
		`{"o2e":{"-1":1},"se2e":{}}`,
		`{"o2e":{},"se2e":{"s1e1":0}}`,
		`{"o2e":[],"se2e":{}}`,
		`not json`,
	}
	for _, input := range tests {
		var m IndexMap
		require.Error(json.Unmarshal([]byte(input), &m), input)
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileLeavesOnlyIndex(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	maps := []*IndexMap{
		Build(entries("Show S01E01.avi")),
		Build(entries("Show S01E02.avi", "Show S01E01.avi")),
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = WriteFile(path, maps[i%len(maps)])
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(err)
	}

	got, err := ReadFile(path)
	require.NoError(err)
	require.Contains([]int{1, 2}, got.Len())

	names, err := os.ReadDir(dir)
	require.NoError(err)
	require.Len(names, 1)
	require.Equal("map.json", names[0].Name())
}
