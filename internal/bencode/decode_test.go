package bencode

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeScalars(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		input    string
		expected Value
	}{
		{"i0e", NewInt(0)},
		{"i42e", NewInt(42)},
		{"i-42e", NewInt(-42)},
		{"i007e", NewInt(7)},
		{"i-0e", NewInt(0)},
		{"0:", Bytes{}},
		{"4:spam", String("spam")},
		{"3:\xff\x00\xfe", Bytes{0xff, 0x00, 0xfe}},
		{"le", List{}},
		{"de", Dict{}},
	}

	for _, tc := range tests {
		v, err := Decode([]byte(tc.input))
		require.NoError(err, "Decode(%q)", tc.input)
		require.True(Equal(tc.expected, v), "Decode(%q) = %#v", tc.input, v)
	}
}

func TestDecodeBigInteger(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	v, err := Decode([]byte("i-123456789012345678901234567890e"))
	require.NoError(err)

	n, ok := new(big.Int).SetString("-123456789012345678901234567890", 10)
	require.True(ok)

	i, ok := v.(Integer)
	require.True(ok)
	require.Equal(0, i.Big().Cmp(n))

	_, fits := i.Int64()
	require.False(fits)
}

func TestDecodeNested(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	v, err := Decode([]byte("d4:infod5:filesld6:lengthi10e4:pathl1:a5:b.aviee4:name4:showe3:urll1:x1:yee"))
	require.NoError(err)

	expected := Dict{
		"info": Dict{
			"files": List{
				Dict{"length": NewInt(10), "path": List{String("a"), String("b.avi")}},
			},
			"name": String("show"),
		},
		"url": List{String("x"), String("y")},
	}
	require.True(Equal(expected, v))
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	// Permissive on purpose: real-world torrents repeat keys.
	v, err := Decode([]byte("d3:foo3:bar3:foo3:baze"))
	require.NoError(err)

	d, ok := v.(Dict)
	require.True(ok)
	require.Len(d, 1)
	require.True(Equal(String("baz"), d["foo"]))
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		name   string
		input  string
		err    error
		offset int
	}{
		{"non-digit in integer", "i12x e", ErrBadInteger, 3},
		{"empty integer", "ie", ErrBadInteger, 0},
		{"lone minus", "i-e", ErrBadInteger, 0},
		{"plus sign", "i+1e", ErrBadInteger, 1},
		{"unterminated integer", "i12", ErrUnexpectedEOF, 3},
		{"declared length too long", "5:ab", ErrTruncatedString, 0},
		{"length overflows", "99999999999999999999999:a", ErrTruncatedString, 0},
		{"bad length prefix", "3x:abc", ErrBadStringLength, 1},
		{"missing colon", "12", ErrUnexpectedEOF, 2},
		{"integer key", "di1e3:fooe", ErrNonStringKey, 1},
		{"list key", "dle3:fooe", ErrNonStringKey, 1},
		{"unknown tag", "x", ErrUnknownTag, 0},
		{"unknown tag in list", "li1ex", ErrUnknownTag, 4},
		{"empty input", "", ErrUnexpectedEOF, 0},
		{"unterminated list", "li1e", ErrUnexpectedEOF, 4},
		{"unterminated dict", "d3:foo", ErrUnexpectedEOF, 6},
		{"dict key without value", "d3:fooe", ErrUnknownTag, 6},
	}

	for _, tc := range tests {
		v, err := Decode([]byte(tc.input))
		require.Nil(v, "Decode(%q) should not return a value", tc.input)
		require.ErrorIs(err, tc.err, tc.name)

		var de *DecodeError
		require.True(errors.As(err, &de), tc.name)
		require.Equal(tc.offset, de.Offset, tc.name)
	}
}

func TestDecodeTooDeep(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	deep := strings.Repeat("l", DefaultMaxDepth+1) + strings.Repeat("e", DefaultMaxDepth+1)
	_, err := Decode([]byte(deep))
	require.ErrorIs(err, ErrTooDeep)

	ok := strings.Repeat("l", DefaultMaxDepth) + strings.Repeat("e", DefaultMaxDepth)
	_, err = Decode([]byte(ok))
	require.NoError(err)
}

func TestDecodeTrailingBytes(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	v, err := Decode([]byte("i1etrailing"))
	require.NoError(err)
	require.True(Equal(NewInt(1), v))

	v, n, err := DecodePrefix([]byte("4:spamxyz"))
	require.NoError(err)
	require.True(Equal(String("spam"), v))
	require.Equal(6, n)
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	input := []byte("4:spam")
	v, err := Decode(input)
	require.NoError(err)

	input[2] = 'S'
	require.True(Equal(String("spam"), v))
}

func TestRawValue(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	// Keys out of order: the raw bytes must be returned as written.
	data := []byte("d4:infod4:name1:b6:lengthi1ee8:announce3:urle")
	raw, ok, err := RawValue(data, "info")
	require.NoError(err)
	require.True(ok)
	require.Equal("d4:name1:b6:lengthi1ee", string(raw))

	_, ok, err = RawValue(data, "missing")
	require.NoError(err)
	require.False(ok)

	_, ok, err = RawValue([]byte("li1ee"), "info")
	require.NoError(err)
	require.False(ok)

	_, _, err = RawValue([]byte("d4:infoi1x"), "info")
	require.ErrorIs(err, ErrBadInteger)
}
