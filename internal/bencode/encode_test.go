package bencode

import (
	"bytes"
	"math/big"
	"testing"

	abencode "github.com/anacrolix/torrent/bencode"
	"github.com/stretchr/testify/require"
)

func TestEncodeScalars(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		value    Value
		expected string
	}{
		{NewInt(0), "i0e"},
		{Integer{}, "i0e"},
		{NewInt(-17), "i-17e"},
		{NewInt(1 << 40), "i1099511627776e"},
		{String(""), "0:"},
		{String("spam"), "4:spam"},
		{Bytes{0x00, 0xff}, "2:\x00\xff"},
		{List{}, "le"},
		{List(nil), "le"},
		{Dict{}, "de"},
	}

	for _, tc := range tests {
		require.Equal(tc.expected, string(Encode(tc.value)))
	}
}

func TestEncodeDictKeyOrder(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	d := Dict{}
	for _, k := range []string{"zeta", "a", "\xffhigh", "B", "ab", ""} {
		d[k] = NewInt(1)
	}

	// Byte order: "" < "B" < "a" < "ab" < "zeta" < "\xffhigh"
	expected := "d0:i1e1:Bi1e1:ai1e2:abi1e4:zetai1e5:\xffhighi1ee"
	require.Equal(expected, string(Encode(d)))
}

func TestRoundTripValues(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	huge, _ := new(big.Int).SetString("98765432109876543210987654321", 10)

	values := []Value{
		NewInt(0),
		NewInt(-1),
		NewBigInt(huge),
		String("hello"),
		Bytes{0xde, 0xad, 0xbe, 0xef},
		List{NewInt(1), String("two"), List{}, Dict{}},
		Dict{
			"announce": String("udp://tracker.example:80"),
			"info": Dict{
				"name":         String("Show"),
				"piece length": NewInt(262144),
				"files": List{
					Dict{"length": NewInt(100), "path": List{String("Show S01E02.avi")}},
					Dict{"length": NewInt(200), "path": List{String("Show S01E01.avi")}},
				},
			},
		},
	}

	for _, v := range values {
		decoded, err := Decode(Encode(v))
		require.NoError(err)
		require.True(Equal(v, decoded), "round trip of %#v", v)
	}
}

func TestCanonicalReencodeIsByteExact(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	inputs := []string{
		"i0e",
		"i-99e",
		"0:",
		"5:hello",
		"li1ei2ee",
		"d1:ai1e1:bl1:x1:yee",
		"d8:announce3:url4:infod5:filesld6:lengthi100e4:pathl15:Show S01E02.aviee4:name4:Showee",
		"d9:file treed5:a.avid0:d6:lengthi5eeeee",
	}

	for _, in := range inputs {
		v, err := Decode([]byte(in))
		require.NoError(err, in)
		require.Equal(in, string(Encode(v)))
	}
}

func TestNonCanonicalInputRoundTripsStructurally(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	v, err := Decode([]byte("d1:bi2e1:ai1ee"))
	require.NoError(err)
	require.Equal("d1:ai1e1:bi2ee", string(Encode(v)))

	again, err := Decode(Encode(v))
	require.NoError(err)
	require.True(Equal(v, again))
}

func TestEncodeMatchesAnacrolix(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	ours := Dict{
		"name":   String("Show"),
		"length": NewInt(1234),
		"tags":   List{String("b"), String("a")},
		"nested": Dict{"z": NewInt(-5), "y": String("")},
	}
	theirs := map[string]interface{}{
		"name":   "Show",
		"length": 1234,
		"tags":   []interface{}{"b", "a"},
		"nested": map[string]interface{}{"z": -5, "y": ""},
	}

	expected, err := abencode.Marshal(theirs)
	require.NoError(err)
	require.Equal(string(expected), string(Encode(ours)))
}

func TestEncodeTo(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(EncodeTo(&buf, List{String("a"), NewInt(1)}))
	require.Equal("l1:ai1ee", buf.String())
}

func TestEncodePanicsOnNil(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		Encode(List{nil})
	})
}
