package bencode

import (
	"math"
	"math/big"
)

// DefaultMaxDepth bounds list and dictionary nesting during Decode.
const DefaultMaxDepth = 512

type decoder struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
}

// Decode decodes the first value in data. Bytes after that value are
// ignored; use DecodePrefix to learn how many were consumed.
func Decode(data []byte) (Value, error) {
	v, _, err := DecodePrefix(data)
	return v, err
}

// DecodePrefix decodes the first value in data and returns it together with
// the number of bytes it occupied. On error no value is returned.
func DecodePrefix(data []byte) (Value, int, error) {
	d := &decoder{data: data, maxDepth: DefaultMaxDepth}
	v, err := d.value()
	if err != nil {
		return nil, 0, err
	}
	return v, d.pos, nil
}

func (d *decoder) fail(at int, err error) error {
	return &DecodeError{Offset: at, Err: err}
}

func (d *decoder) eof() bool {
	return d.pos >= len(d.data)
}

func (d *decoder) value() (Value, error) {
	if d.eof() {
		return nil, d.fail(d.pos, ErrUnexpectedEOF)
	}

	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.integer()
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	case c >= '0' && c <= '9':
		return d.bytes()
	}
	return nil, d.fail(d.pos, ErrUnknownTag)
}

func (d *decoder) integer() (Value, error) {
	start := d.pos
	d.pos++ // i

	textStart := d.pos
	if !d.eof() && d.data[d.pos] == '-' {
		d.pos++
	}
	digitsStart := d.pos

	for {
		if d.eof() {
			return nil, d.fail(d.pos, ErrUnexpectedEOF)
		}
		c := d.data[d.pos]
		if c == 'e' {
			break
		}
		if c < '0' || c > '9' {
			return nil, d.fail(d.pos, ErrBadInteger)
		}
		d.pos++
	}
	if d.pos == digitsStart {
		return nil, d.fail(start, ErrBadInteger)
	}

	text := string(d.data[textStart:d.pos])
	d.pos++ // e

	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, d.fail(start, ErrBadInteger)
	}
	return Integer{n: n}, nil
}

func (d *decoder) bytes() (Value, error) {
	start := d.pos

	var n uint64
	overflow := false
	for {
		if d.eof() {
			return nil, d.fail(d.pos, ErrUnexpectedEOF)
		}
		c := d.data[d.pos]
		if c == ':' {
			break
		}
		if c < '0' || c > '9' {
			return nil, d.fail(d.pos, ErrBadStringLength)
		}
		if n > (math.MaxInt64-9)/10 {
			overflow = true
		} else {
			n = n*10 + uint64(c-'0')
		}
		d.pos++
	}
	d.pos++ // :

	if overflow || n > uint64(len(d.data)-d.pos) {
		return nil, d.fail(start, ErrTruncatedString)
	}

	out := make(Bytes, n)
	copy(out, d.data[d.pos:])
	d.pos += int(n)
	return out, nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > d.maxDepth {
		return d.fail(d.pos, ErrTooDeep)
	}
	return nil
}

func (d *decoder) leave() {
	d.depth--
}

func (d *decoder) list() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	d.pos++ // l

	out := List{}
	for {
		if d.eof() {
			return nil, d.fail(d.pos, ErrUnexpectedEOF)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return out, nil
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (d *decoder) dict() (Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	d.pos++ // d

	out := Dict{}
	for {
		if d.eof() {
			return nil, d.fail(d.pos, ErrUnexpectedEOF)
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			return out, nil
		}

		key, err := d.key()
		if err != nil {
			return nil, err
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		// Duplicate keys are tolerated; the last one wins.
		out[key] = v
	}
}

func (d *decoder) key() (string, error) {
	start := d.pos
	k, err := d.value()
	if err != nil {
		return "", err
	}
	b, ok := k.(Bytes)
	if !ok {
		return "", d.fail(start, ErrNonStringKey)
	}
	return string(b), nil
}

// RawValue returns the encoded bytes of the entry stored under key in the
// top-level dictionary of data, exactly as they appear in the input. It
// reports false when the top-level value is not a dictionary or has no such
// key. With duplicate keys the last occurrence is returned.
func RawValue(data []byte, key string) ([]byte, bool, error) {
	d := &decoder{data: data, maxDepth: DefaultMaxDepth}
	if d.eof() {
		return nil, false, d.fail(0, ErrUnexpectedEOF)
	}
	if d.data[0] != 'd' {
		if _, err := d.value(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	if err := d.enter(); err != nil {
		return nil, false, err
	}
	d.pos++

	var raw []byte
	found := false
	for {
		if d.eof() {
			return nil, false, d.fail(d.pos, ErrUnexpectedEOF)
		}
		if d.data[d.pos] == 'e' {
			return raw, found, nil
		}
		k, err := d.key()
		if err != nil {
			return nil, false, err
		}
		start := d.pos
		if _, err := d.value(); err != nil {
			return nil, false, err
		}
		if k == key {
			raw = d.data[start:d.pos:d.pos]
			found = true
		}
	}
}
