package torrentfile

import (
	"bytes"
	"testing"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/require"

	"github.com/shapedtime/torrentmap/internal/bencode"
)

func TestLoad(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	data := bencode.Encode(bencode.Dict{
		"announce": bencode.String("udp://fallback.example:80"),
		"announce-list": bencode.List{
			bencode.List{bencode.String("udp://a.example:80"), bencode.String("udp://b.example:80")},
			bencode.List{bencode.String("udp://a.example:80")},
		},
		"info": bencode.Dict{
			"name":         bencode.String("Show"),
			"piece length": bencode.NewInt(16384),
			"pieces":       bencode.Bytes(make([]byte, 20)),
			"files": bencode.List{
				file(100, "Show S01E02.avi"),
				file(200, "Show S01E01.avi"),
			},
		},
	})

	tor, err := Load(data)
	require.NoError(err)
	require.Equal("Show", tor.Name)
	require.Equal(LayoutFiles, tor.Layout)
	require.Equal([]string{"udp://a.example:80", "udp://b.example:80"}, tor.Trackers)
	require.Equal([]Entry{
		{Path: "Show S01E02.avi", Length: 100},
		{Path: "Show S01E01.avi", Length: 200},
	}, tor.Files)

	mi, err := metainfo.Load(bytes.NewReader(data))
	require.NoError(err)
	require.Equal(mi.HashInfoBytes(), tor.InfoHash)
}

func TestLoadHashesDeclaredInfoBytes(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	// "name" before "length" is out of canonical order; the hash must still
	// cover the bytes as written.
	info := "d4:name5:a.avi6:lengthi3ee"
	data := []byte("d4:info" + info + "e")

	tor, err := Load(data)
	require.NoError(err)
	require.Equal(metainfo.HashBytes([]byte(info)), tor.InfoHash)
	require.Equal(LayoutSingle, tor.Layout)
	require.Empty(tor.Trackers)
}

func TestLoadAnnounceFallback(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	data := bencode.Encode(bencode.Dict{
		"announce": bencode.String("udp://only.example:80"),
		"info": bencode.Dict{
			"name":   bencode.String("a.avi"),
			"length": bencode.NewInt(1),
		},
	})

	tor, err := Load(data)
	require.NoError(err)
	require.Equal([]string{"udp://only.example:80"}, tor.Trackers)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, err := Load([]byte("i1e"))
	require.ErrorIs(err, ErrMissingInfo)

	_, err = Load([]byte("d8:announce3:urle"))
	require.ErrorIs(err, ErrMissingInfo)

	_, err = Load([]byte("d4:infoi1ee"))
	require.ErrorIs(err, ErrMissingInfo)

	_, err = Load([]byte("d4:infod"))
	require.ErrorIs(err, bencode.ErrUnexpectedEOF)

	_, err = Load([]byte("d4:infod3:foo3:baree"))
	require.ErrorIs(err, ErrUnsupportedLayout)
}

func TestMagnet(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tor := &Torrent{
		InfoHash: metainfo.HashBytes([]byte("d4:name5:a.avi6:lengthi3ee")),
		Name:     "Show",
		Trackers: []string{"udp://a.example:80"},
	}

	spec, err := metainfo.ParseMagnetUri(tor.Magnet())
	require.NoError(err)
	require.Equal(tor.InfoHash, spec.InfoHash)
	require.Equal("Show", spec.DisplayName)
	require.Equal([]string{"udp://a.example:80"}, spec.Trackers)
}
