// Package bencode implements the BitTorrent metainfo encoding.
//
// Decoded data is represented as a Value, a closed union of Integer, Bytes,
// List and Dict. Dictionaries are always encoded with their keys in
// byte-lexicographic order, so Encode produces the canonical form that the
// infohash is computed over.
package bencode

import (
	"bytes"
	"maps"
	"math/big"
	"slices"
)

// Value is one of Integer, Bytes, List or Dict.
type Value interface {
	isValue()
}

// Integer is a signed integer of arbitrary size.
// The zero Integer is 0.
type Integer struct {
	n *big.Int
}

// Bytes is an opaque byte string. It is not assumed to be UTF-8.
type Bytes []byte

// List is an ordered sequence of values.
type List []Value

// Dict maps raw byte-string keys to values. Keys are held in Go strings,
// which compare byte by byte.
type Dict map[string]Value

func (Integer) isValue() {}
func (Bytes) isValue()   {}
func (List) isValue()    {}
func (Dict) isValue()    {}

// NewInt returns an Integer holding n.
func NewInt(n int64) Integer {
	return Integer{n: big.NewInt(n)}
}

// NewBigInt returns an Integer holding a copy of n.
func NewBigInt(n *big.Int) Integer {
	return Integer{n: new(big.Int).Set(n)}
}

// String returns a Bytes value holding s.
func String(s string) Bytes {
	return Bytes(s)
}

// Big returns a copy of the integer as a *big.Int.
func (i Integer) Big() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.n)
}

// Int64 returns the integer and whether it fits in an int64.
func (i Integer) Int64() (int64, bool) {
	if i.n == nil {
		return 0, true
	}
	if !i.n.IsInt64() {
		return 0, false
	}
	return i.n.Int64(), true
}

// String returns the decimal representation, without leading zeros.
func (i Integer) String() string {
	if i.n == nil {
		return "0"
	}
	return i.n.String()
}

func (i Integer) cmp(o Integer) int {
	a, b := i.n, o.n
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b)
}

// Keys returns the dictionary keys in encoding order.
func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Equal reports whether a and b hold the same structure. Empty and nil
// lists, byte strings and dictionaries are equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && av.cmp(bv) == 0
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}
