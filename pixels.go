// Copyright 2025 go-exr Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exr

import (
	"encoding/binary"
	"math"
	"slices"
	"sync"
)

// bufferPool recycles chunk-sized scratch buffers between calls.
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64*1024)
		return &b
	},
}

// getBuffer returns a pooled buffer of length n. Its contents are
// unspecified.
func getBuffer(n int) *[]byte {
	bp := bufferPool.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

func putBuffer(bp *[]byte) {
	if bp != nil {
		bufferPool.Put(bp)
	}
}

func float32bits(f float32) uint32 { return math.Float32bits(f) }

// sampleCount returns how many multiples of s lie in [lo, hi].
func sampleCount(lo, hi, s int) int {
	return floorDiv(hi, s) - floorDiv(lo-1, s)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// chunkLayout describes the byte layout of scanline blocks for one header.
type chunkLayout struct {
	window   Box2i
	lines    int
	names    []string // on-disk channel order
	channels []Channel
	// rowBytes[i] is the size of one row of channel i.
	rowBytes []int
}

func newChunkLayout(h *Header) *chunkLayout {
	l := &chunkLayout{
		window: h.dataWindow,
		lines:  h.compression.LinesPerChunk(),
		names:  h.channels.sortedNames(),
	}
	for _, name := range l.names {
		ch, _ := h.channels.Find(name)
		l.channels = append(l.channels, ch)
		n := sampleCount(int(l.window.Min.X), int(l.window.Max.X), int(ch.XSampling))
		l.rowBytes = append(l.rowBytes, n*ch.Type.Size())
	}
	return l
}

func (l *chunkLayout) numChunks() int {
	return (l.window.Height() + l.lines - 1) / l.lines
}

// chunkIndex returns the chunk holding scanline y.
func (l *chunkLayout) chunkIndex(y int) int {
	return (y - int(l.window.Min.Y)) / l.lines
}

// chunkLines returns the first and last scanline of chunk i.
func (l *chunkLayout) chunkLines(i int) (int, int) {
	y0 := int(l.window.Min.Y) + i*l.lines
	return y0, min(y0+l.lines-1, int(l.window.Max.Y))
}

// size returns the uncompressed size of scanlines y0..y1.
func (l *chunkLayout) size(y0, y1 int) int {
	n := 0
	for i, ch := range l.channels {
		n += sampleCount(y0, y1, int(ch.YSampling)) * l.rowBytes[i]
	}
	return n
}

// pack copies scanlines y0..y1 from fb into dst in file order.
func (l *chunkLayout) pack(fb *FrameBuffer, y0, y1 int, dst []byte) error {
	minX, maxX := int(l.window.Min.X), int(l.window.Max.X)
	pos := 0
	for y := y0; y <= y1; y++ {
		for i, name := range l.names {
			ch := l.channels[i]
			ys, xs := int(ch.YSampling), int(ch.XSampling)
			if mod(int32(y), int32(ys)) != 0 {
				continue
			}
			s, _ := fb.Slice(name)
			size := ch.Type.Size()
			for x := floorDiv(minX+xs-1, xs) * xs; x <= maxX; x += xs {
				off, err := s.offset(x, y)
				if err != nil {
					return err
				}
				if size == 2 {
					binary.LittleEndian.PutUint16(dst[pos:], binary.NativeEndian.Uint16(s.Data[off:]))
				} else {
					binary.LittleEndian.PutUint32(dst[pos:], binary.NativeEndian.Uint32(s.Data[off:]))
				}
				pos += size
			}
		}
	}
	return nil
}

// unpack copies the scanlines of src (chunk lines cy0..cy1) that fall in
// [ry0, ry1] into fb. Slices without a file channel are filled.
func (l *chunkLayout) unpack(fb *FrameBuffer, cy0, cy1, ry0, ry1 int, src []byte) error {
	if len(src) < l.size(cy0, cy1) {
		return ErrCorruptChunk
	}
	minX, maxX := int(l.window.Min.X), int(l.window.Max.X)
	pos := 0
	for y := cy0; y <= cy1; y++ {
		want := y >= ry0 && y <= ry1
		for i, name := range l.names {
			ch := l.channels[i]
			if mod(int32(y), ch.YSampling) != 0 {
				continue
			}
			if !want {
				pos += l.rowBytes[i]
				continue
			}
			s, ok := fb.Slice(name)
			if !ok {
				pos += l.rowBytes[i]
				continue
			}
			xs := int(ch.XSampling)
			size := ch.Type.Size()
			for x := floorDiv(minX+xs-1, xs) * xs; x <= maxX; x += xs {
				off, err := s.offset(x, y)
				if err != nil {
					return err
				}
				if size == 2 {
					binary.NativeEndian.PutUint16(s.Data[off:], binary.LittleEndian.Uint16(src[pos:]))
				} else {
					binary.NativeEndian.PutUint32(s.Data[off:], binary.LittleEndian.Uint32(src[pos:]))
				}
				pos += size
			}
		}
	}
	return l.fill(fb, max(cy0, ry0), min(cy1, ry1))
}

// fill writes fill values for slices that have no channel in the file.
func (l *chunkLayout) fill(fb *FrameBuffer, y0, y1 int) error {
	minX, maxX := int(l.window.Min.X), int(l.window.Max.X)
	for _, name := range fb.Names() {
		if _, found := slices.BinarySearch(l.names, name); found {
			continue
		}
		s, _ := fb.Slice(name)
		bits := s.fillBits()
		xs, ys := s.XSampling, s.YSampling
		for y := y0; y <= y1; y++ {
			if mod(int32(y), int32(ys)) != 0 {
				continue
			}
			for x := floorDiv(minX+xs-1, xs) * xs; x <= maxX; x += xs {
				off, err := s.offset(x, y)
				if err != nil {
					return err
				}
				if s.Type == PixelTypeHalf {
					binary.NativeEndian.PutUint16(s.Data[off:], uint16(bits))
				} else {
					binary.NativeEndian.PutUint32(s.Data[off:], bits)
				}
			}
		}
	}
	return nil
}
