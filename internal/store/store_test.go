package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shapedtime/torrentmap/internal/config"
	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

const (
	testHash  = "c9e15763f722f23e98a29decdfae341b98d53056"
	otherHash = "0102030405060708090a0b0c0d0e0f1011121314"
)

func testRecord(hash, name string) *Record {
	files := []torrentfile.Entry{
		{Path: name + "/Show S01E02.avi", Length: 100},
		{Path: name + "/Show S01E01.avi", Length: 200},
	}
	return &Record{
		InfoHash:  hash,
		Name:      name,
		Source:    "/torrents/" + name + ".torrent",
		Layout:    torrentfile.LayoutFiles,
		Trackers:  []string{"udp://tracker.example:1337"},
		Files:     files,
		Index:     episodemap.Build(files),
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 123, time.UTC),
	}
}

func backends() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		config.BackendBadger: func(t *testing.T) Store {
			s, err := Open(config.StoreConfig{Backend: config.BackendBadger, Path: t.TempDir()})
			require.NoError(t, err)
			return s
		},
		config.BackendSQLite: func(t *testing.T) Store {
			s, err := Open(config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "index.db")})
			require.NoError(t, err)
			return s
		},
	}
}

func requireRecord(t *testing.T, expected, actual *Record) {
	t.Helper()
	require := require.New(t)

	require.Equal(expected.InfoHash, actual.InfoHash)
	require.Equal(expected.Name, actual.Name)
	require.Equal(expected.Source, actual.Source)
	require.Equal(expected.Layout, actual.Layout)
	require.Equal(expected.Trackers, actual.Trackers)
	require.Equal(expected.Files, actual.Files)
	require.Equal(expected.Index.OriginalToCanonical(), actual.Index.OriginalToCanonical())
	require.Equal(expected.Index.EpisodeToCanonical(), actual.Index.EpisodeToCanonical())
	require.True(expected.CreatedAt.Equal(actual.CreatedAt), "%v != %v", expected.CreatedAt, actual.CreatedAt)
}

func TestStore(t *testing.T) {
	t.Parallel()

	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			s := open(t)
			defer s.Close()

			n, err := s.Count()
			require.NoError(err)
			require.Zero(n)

			_, err = s.Get(testHash)
			require.ErrorIs(err, ErrNotFound)

			r := testRecord(testHash, "zeta")
			require.NoError(s.Put(r))
			require.NoError(s.Put(testRecord(otherHash, "alpha")))

			got, err := s.Get(testHash)
			require.NoError(err)
			requireRecord(t, r, got)

			// Hashes are case-insensitive.
			_, err = s.Get("C9E15763F722F23E98A29DECDFAE341B98D53056")
			require.NoError(err)

			l, err := s.List()
			require.NoError(err)
			require.Len(l, 2)
			require.Equal("alpha", l[0].Name)
			require.Equal("zeta", l[1].Name)

			// Put replaces.
			r.Name = "renamed"
			require.NoError(s.Put(r))
			got, err = s.Get(testHash)
			require.NoError(err)
			require.Equal("renamed", got.Name)

			n, err = s.Count()
			require.NoError(err)
			require.Equal(2, n)

			removed, err := s.Delete(testHash)
			require.NoError(err)
			require.True(removed)

			removed, err = s.Delete(testHash)
			require.NoError(err)
			require.False(removed)

			n, err = s.Count()
			require.NoError(err)
			require.Equal(1, n)
		})
	}
}

func TestStoreInvalidHash(t *testing.T) {
	t.Parallel()

	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			s := open(t)
			defer s.Close()

			require.ErrorIs(s.Put(testRecord("nothex", "x")), ErrInvalidHash)
			_, err := s.Get("abc")
			require.ErrorIs(err, ErrInvalidHash)
			_, err = s.Delete("")
			require.ErrorIs(err, ErrInvalidHash)
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "index.db")
	s, err := NewSQLite(path)
	require.NoError(err)
	require.NoError(s.Put(testRecord(testHash, "show")))
	require.NoError(s.Close())

	// Migrations already applied must not run again.
	s, err = NewSQLite(path)
	require.NoError(err)
	defer s.Close()

	var version int
	require.NoError(s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	require.Equal(1, version)

	n, err := s.Count()
	require.NoError(err)
	require.Equal(1, n)
}

func TestOpenUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := Open(config.StoreConfig{Backend: "bolt", Path: t.TempDir()})
	require.Error(t, err)
}

func TestRecordLocation(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	r := testRecord(testHash, "show")
	require.Equal("/torrents/show.torrent", r.Location())

	r.Source = ""
	require.Contains(r.Location(), "magnet:?xt=urn:btih:"+testHash)
	require.Contains(r.Location(), "dn=show")

	r.InfoHash = "bad"
	require.Empty(r.Magnet())
}
