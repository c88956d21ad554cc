package exr

import (
	"bytes"
	"encoding/binary"
	"math"
)

// xdrReader reads little-endian values from a byte slice. The first
// failure is sticky: later reads return zero values and err stays set.
type xdrReader struct {
	data []byte
	pos  int
	err  error
}

func newXDRReader(data []byte) *xdrReader {
	return &xdrReader{data: data}
}

func (r *xdrReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = ErrTruncatedData
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *xdrReader) Remaining() int { return len(r.data) - r.pos }

func (r *xdrReader) Uint8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *xdrReader) Int32() int32 { return int32(r.Uint32()) }

func (r *xdrReader) Uint32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *xdrReader) Uint64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *xdrReader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

func (r *xdrReader) V2i() V2i { return V2i{r.Int32(), r.Int32()} }

func (r *xdrReader) V2f() V2f { return V2f{r.Float32(), r.Float32()} }

func (r *xdrReader) Box2i() Box2i { return Box2i{Min: r.V2i(), Max: r.V2i()} }

// CString reads a NUL-terminated string of at most max bytes.
func (r *xdrReader) CString(max int) string {
	if r.err != nil {
		return ""
	}
	rest := r.data[r.pos:]
	if len(rest) > max+1 {
		rest = rest[:max+1]
	}
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		r.err = ErrInvalidHeader
		return ""
	}
	s := string(rest[:i])
	r.pos += i + 1
	return s
}

func (r *xdrReader) Bytes(n int) []byte { return r.take(n) }

// xdrWriter accumulates little-endian values.
type xdrWriter struct {
	buf []byte
}

func (w *xdrWriter) Bytes() []byte { return w.buf }

func (w *xdrWriter) Len() int { return len(w.buf) }

func (w *xdrWriter) Uint8(v uint8) { w.buf = append(w.buf, v) }

func (w *xdrWriter) Int32(v int32) { w.Uint32(uint32(v)) }

func (w *xdrWriter) Uint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *xdrWriter) Uint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *xdrWriter) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

func (w *xdrWriter) V2i(v V2i) {
	w.Int32(v.X)
	w.Int32(v.Y)
}

func (w *xdrWriter) V2f(v V2f) {
	w.Float32(v.X)
	w.Float32(v.Y)
}

func (w *xdrWriter) Box2i(b Box2i) {
	w.V2i(b.Min)
	w.V2i(b.Max)
}

func (w *xdrWriter) CString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *xdrWriter) Write(p []byte) { w.buf = append(w.buf, p...) }
