package exr

import (
	"fmt"
	"maps"
	"slices"
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
)

// Slice describes where one channel's samples live in caller memory.
//
// The sample for pixel (x, y) starts at byte
//
//	Base + (x/XSampling)*XStride + (y/YSampling)*YStride
//
// of Data. Base may be negative so that absolute data-window coordinates
// can be used directly. Samples are stored in native byte order. Data is
// never copied; the caller keeps it alive while a file reads or writes
// through the slice.
type Slice struct {
	Type      PixelType
	Data      []byte
	Base      int
	XStride   int
	YStride   int
	XSampling int
	YSampling int
	// Fill is stored into the slice when the file being read has no
	// channel of this name.
	Fill float64
	// XTileCoords and YTileCoords only apply to tiled files and are
	// ignored by scanline I/O.
	XTileCoords bool
	YTileCoords bool
}

// NewSlice returns an unsubsampled slice over a row-major image of width
// samples per row whose first sample is pixel origin.
func NewSlice(t PixelType, data []byte, origin V2i, width int) Slice {
	return NewSampledSlice(t, data, origin, width, 1, 1)
}

// NewSampledSlice is NewSlice for a channel subsampled by xs and ys. width
// is the full data-window width; each row holds width/xs samples.
func NewSampledSlice(t PixelType, data []byte, origin V2i, width, xs, ys int) Slice {
	xStride := t.Size()
	yStride := (width / xs) * xStride
	return Slice{
		Type:      t,
		Data:      data,
		Base:      -(int(origin.X)/xs*xStride + int(origin.Y)/ys*yStride),
		XStride:   xStride,
		YStride:   yStride,
		XSampling: xs,
		YSampling: ys,
	}
}

// Float32Slice views pixels as a FLOAT slice without copying.
func Float32Slice(pixels []float32, origin V2i, width int) Slice {
	return NewSlice(PixelTypeFloat, bytesOf(pixels), origin, width)
}

// Uint32Slice views pixels as a UINT slice without copying.
func Uint32Slice(pixels []uint32, origin V2i, width int) Slice {
	return NewSlice(PixelTypeUint, bytesOf(pixels), origin, width)
}

// HalfSlice views pixels as a HALF slice without copying.
func HalfSlice(pixels []hwy.Float16, origin V2i, width int) Slice {
	return NewSlice(PixelTypeHalf, bytesOf(pixels), origin, width)
}

func bytesOf[T float32 | uint32 | hwy.Float16](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

// offset returns the byte offset of pixel (x, y) after checking that the
// whole sample lies inside Data.
func (s *Slice) offset(x, y int) (int, error) {
	off := s.Base + (x/s.XSampling)*s.XStride + (y/s.YSampling)*s.YStride
	if off < 0 || off+s.Type.Size() > len(s.Data) {
		return 0, fmt.Errorf("%w: pixel (%d, %d) at byte %d of %d", ErrSliceOutOfBounds, x, y, off, len(s.Data))
	}
	return off, nil
}

// fillBits returns Fill encoded as a raw sample of the slice type.
func (s *Slice) fillBits() uint32 {
	switch s.Type {
	case PixelTypeUint:
		switch {
		case s.Fill <= 0:
			return 0
		case s.Fill >= 1<<32-1:
			return 1<<32 - 1
		}
		return uint32(s.Fill)
	case PixelTypeHalf:
		return uint32(hwy.NewFloat16FromFloat64(s.Fill).Bits())
	}
	return float32bits(float32(s.Fill))
}

// FrameBuffer maps channel names to slices.
type FrameBuffer struct {
	slices map[string]Slice
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{slices: make(map[string]Slice)}
}

// Insert adds s under name, replacing any existing slice. A sampling of
// zero means 1.
func (fb *FrameBuffer) Insert(name string, s Slice) {
	if fb.slices == nil {
		fb.slices = make(map[string]Slice)
	}
	if s.XSampling == 0 {
		s.XSampling = 1
	}
	if s.YSampling == 0 {
		s.YSampling = 1
	}
	fb.slices[name] = s
}

// Find returns the pixel type and sampling of the slice called name.
func (fb *FrameBuffer) Find(name string) (Channel, bool) {
	s, ok := fb.slices[name]
	if !ok {
		return Channel{}, false
	}
	return Channel{Type: s.Type, XSampling: int32(s.XSampling), YSampling: int32(s.YSampling)}, true
}

// Slice returns the slice called name.
func (fb *FrameBuffer) Slice(name string) (Slice, bool) {
	s, ok := fb.slices[name]
	return s, ok
}

// Names returns the slice names in sorted order.
func (fb *FrameBuffer) Names() []string {
	return slices.Sorted(maps.Keys(fb.slices))
}

func (fb *FrameBuffer) Len() int { return len(fb.slices) }

// validate checks every slice, including those that name no channel, for
// a known pixel type and sampling factors of at least 1.
func (fb *FrameBuffer) validate() error {
	if fb == nil {
		return ErrNoFrameBuffer
	}
	for _, name := range fb.Names() {
		s := fb.slices[name]
		if !s.Type.valid() {
			return fmt.Errorf("%w: %q has pixel type %d", ErrInvalidSlice, name, s.Type)
		}
		if s.XSampling < 1 || s.YSampling < 1 {
			return fmt.Errorf("%w: %q has sampling %dx%d", ErrInvalidSlice, name, s.XSampling, s.YSampling)
		}
	}
	return nil
}

// CopyAndOffsetScanlines returns a new frame buffer whose slices address
// scanline offset where fb addresses scanline 0. Only the descriptors are
// copied; both frame buffers share pixel memory.
func (fb *FrameBuffer) CopyAndOffsetScanlines(offset int) *FrameBuffer {
	c := &FrameBuffer{slices: make(map[string]Slice, len(fb.slices))}
	for name, s := range fb.slices {
		s.Base -= s.YStride * (offset / s.YSampling)
		c.slices[name] = s
	}
	return c
}
