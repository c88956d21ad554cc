package exr

import (
	"encoding/binary"
	"math"
)

// pxr24Compressor rounds FLOAT samples to 24 bits, delta codes every
// channel row into byte planes and deflates the result. HALF and UINT
// samples are kept exactly.
type pxr24Compressor struct {
	layout *chunkLayout
}

// planeBytes is the number of byte planes a sample of type t occupies.
func planeBytes(t PixelType) int {
	if t == PixelTypeFloat {
		return 3
	}
	return t.Size()
}

func (c *pxr24Compressor) planeSize(y0, y1 int) int {
	l := c.layout
	n := 0
	for i, ch := range l.channels {
		rows := sampleCount(y0, y1, int(ch.YSampling))
		n += rows * (l.rowBytes[i] / ch.Type.Size()) * planeBytes(ch.Type)
	}
	return n
}

func (c *pxr24Compressor) compress(raw []byte, y0, y1 int) ([]byte, error) {
	l := c.layout
	tmp := make([]byte, c.planeSize(y0, y1))
	in, out := 0, 0
	for y := y0; y <= y1; y++ {
		for i, ch := range l.channels {
			if mod(int32(y), ch.YSampling) != 0 {
				continue
			}
			n := l.rowBytes[i] / ch.Type.Size()
			switch ch.Type {
			case PixelTypeUint:
				p0, p1, p2, p3 := tmp[out:], tmp[out+n:], tmp[out+2*n:], tmp[out+3*n:]
				var prev uint32
				for j := range n {
					v := binary.LittleEndian.Uint32(raw[in:])
					in += 4
					d := v - prev
					prev = v
					p0[j], p1[j], p2[j], p3[j] = byte(d>>24), byte(d>>16), byte(d>>8), byte(d)
				}
				out += 4 * n
			case PixelTypeHalf:
				p0, p1 := tmp[out:], tmp[out+n:]
				var prev uint16
				for j := range n {
					v := binary.LittleEndian.Uint16(raw[in:])
					in += 2
					d := v - prev
					prev = v
					p0[j], p1[j] = byte(d>>8), byte(d)
				}
				out += 2 * n
			case PixelTypeFloat:
				p0, p1, p2 := tmp[out:], tmp[out+n:], tmp[out+2*n:]
				var prev uint32
				for j := range n {
					v := floatToFloat24(math.Float32frombits(binary.LittleEndian.Uint32(raw[in:])))
					in += 4
					d := v - prev
					prev = v
					p0[j], p1[j], p2[j] = byte(d>>16), byte(d>>8), byte(d)
				}
				out += 3 * n
			}
		}
	}
	return zlibCompress(tmp)
}

func (c *pxr24Compressor) decompress(src, dst []byte, y0, y1 int) error {
	l := c.layout
	tmp := getBuffer(c.planeSize(y0, y1))
	defer putBuffer(tmp)
	if err := zlibDecompress(src, *tmp); err != nil {
		return err
	}
	planes := *tmp
	in, out := 0, 0
	for y := y0; y <= y1; y++ {
		for i, ch := range l.channels {
			if mod(int32(y), ch.YSampling) != 0 {
				continue
			}
			n := l.rowBytes[i] / ch.Type.Size()
			switch ch.Type {
			case PixelTypeUint:
				p0, p1, p2, p3 := planes[in:], planes[in+n:], planes[in+2*n:], planes[in+3*n:]
				var v uint32
				for j := range n {
					v += uint32(p0[j])<<24 | uint32(p1[j])<<16 | uint32(p2[j])<<8 | uint32(p3[j])
					binary.LittleEndian.PutUint32(dst[out:], v)
					out += 4
				}
				in += 4 * n
			case PixelTypeHalf:
				p0, p1 := planes[in:], planes[in+n:]
				var v uint16
				for j := range n {
					v += uint16(p0[j])<<8 | uint16(p1[j])
					binary.LittleEndian.PutUint16(dst[out:], v)
					out += 2
				}
				in += 2 * n
			case PixelTypeFloat:
				p0, p1, p2 := planes[in:], planes[in+n:], planes[in+2*n:]
				var v uint32
				for j := range n {
					v += uint32(p0[j])<<24 | uint32(p1[j])<<16 | uint32(p2[j])<<8
					binary.LittleEndian.PutUint32(dst[out:], v)
					out += 4
				}
				in += 3 * n
			}
		}
	}
	if out != len(dst) {
		return ErrCorruptChunk
	}
	return nil
}

// floatToFloat24 rounds f to a 24-bit float (sign, 8-bit exponent, 15-bit
// mantissa) held in the low bits of the result.
func floatToFloat24(f float32) uint32 {
	u := math.Float32bits(f)
	s := u & 0x80000000
	e := u & 0x7f800000
	m := u & 0x007fffff
	var i uint32
	if e == 0x7f800000 {
		if m != 0 {
			// NaN stays NaN even if the kept mantissa bits are zero.
			m >>= 8
			i = e>>8 | m
			if m == 0 {
				i |= 1
			}
		} else {
			i = e >> 8
		}
	} else {
		i = ((e | m) + (m & 0x00000080)) >> 8
		if i >= 0x7f8000 {
			// Rounding would overflow to infinity; truncate instead.
			i = (e | m) >> 8
		}
	}
	return s>>8 | i
}
