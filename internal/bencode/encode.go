package bencode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Encode returns the canonical encoding of v. It panics if v contains a
// nil Value or a type outside the Value union.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.Bytes()
}

// EncodeTo writes the canonical encoding of v to w.
func EncodeTo(w io.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch v := v.(type) {
	case Integer:
		buf.WriteByte('i')
		buf.WriteString(v.String())
		buf.WriteByte('e')
	case Bytes:
		writeBytes(buf, v)
	case List:
		buf.WriteByte('l')
		for _, item := range v {
			writeValue(buf, item)
		}
		buf.WriteByte('e')
	case Dict:
		buf.WriteByte('d')
		for _, k := range v.Keys() {
			writeBytes(buf, []byte(k))
			writeValue(buf, v[k])
		}
		buf.WriteByte('e')
	default:
		panic(fmt.Sprintf("bencode: cannot encode %T", v))
	}
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	buf.WriteString(strconv.Itoa(len(b)))
	buf.WriteByte(':')
	buf.Write(b)
}
