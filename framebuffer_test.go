package exr

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/ajroetker/go-highway/hwy"
)

func TestFrameBufferInsertFind(t *testing.T) {
	fb := NewFrameBuffer()
	fb.Insert("R", NewSlice(PixelTypeFloat, make([]byte, 64), V2i{}, 4))
	fb.Insert("C", Slice{Type: PixelTypeHalf, Data: make([]byte, 64), XStride: 2, YStride: 4})
	fb.Insert("R", NewSampledSlice(PixelTypeHalf, make([]byte, 64), V2i{}, 4, 2, 1))

	ch, ok := fb.Find("R")
	if !ok || ch != (Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 1}) {
		t.Errorf("Find(R) = %+v, %v", ch, ok)
	}
	if ch, _ := fb.Find("C"); ch.XSampling != 1 || ch.YSampling != 1 {
		t.Errorf("zero sampling not defaulted: %+v", ch)
	}
	if _, ok := fb.Find("missing"); ok {
		t.Error("found missing slice")
	}
	if names := fb.Names(); !slices.Equal(names, []string{"C", "R"}) {
		t.Errorf("Names = %v", names)
	}
}

func TestCopyAndOffsetScanlines(t *testing.T) {
	const width, rows = 4, 6
	stride := width * 4
	pixels := make([]float32, width*rows)
	fb := NewFrameBuffer()
	fb.Insert("R", Float32Slice(pixels, V2i{}, width))
	orig, _ := fb.Slice("R")

	shifted := fb.CopyAndOffsetScanlines(3)
	s, _ := shifted.Slice("R")
	if s.Base != orig.Base-3*stride {
		t.Fatalf("Base = %d, want %d", s.Base, orig.Base-3*stride)
	}
	if &s.Data[0] != &orig.Data[0] {
		t.Error("pixel memory was copied")
	}
	if o, _ := fb.Slice("R"); o.Base != orig.Base {
		t.Error("original frame buffer modified")
	}

	// Scanline 3 through the copy is scanline 0 through the original.
	for x := range width {
		a, err := s.offset(x, 3)
		if err != nil {
			t.Fatal(err)
		}
		b, err := orig.offset(x, 0)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("x=%d: offset %d, want %d", x, a, b)
		}
	}

	h := NewHeaderSize(width, rows)
	h.SetCompression(CompressionNone)
	h.InsertChannel("R", NewChannel(PixelTypeFloat))
	l := newChunkLayout(h)
	for i := range pixels {
		pixels[i] = float32(i)
	}
	viaCopy := make([]byte, l.size(3, 3))
	viaOrig := make([]byte, l.size(0, 0))
	must(t, l.pack(shifted, 3, 3, viaCopy))
	must(t, l.pack(fb, 0, 0, viaOrig))
	if !bytes.Equal(viaCopy, viaOrig) {
		t.Errorf("scanline 3 via copy = %v, scanline 0 via original = %v", viaCopy, viaOrig)
	}
}

func TestCopyAndOffsetScanlinesSubsampled(t *testing.T) {
	fb := NewFrameBuffer()
	fb.Insert("C", Slice{Type: PixelTypeHalf, Data: make([]byte, 32), Base: 100, XStride: 2, YStride: 8, XSampling: 2, YSampling: 2})
	s, _ := fb.CopyAndOffsetScanlines(5).Slice("C")
	if s.Base != 100-8*(5/2) {
		t.Errorf("Base = %d, want %d", s.Base, 100-8*2)
	}
}

func TestSliceOriginAddressing(t *testing.T) {
	pixels := make([]float32, 6)
	s := Float32Slice(pixels, V2i{-2, 10}, 3)
	off, err := s.offset(-2, 10)
	if err != nil || off != 0 {
		t.Fatalf("offset(-2, 10) = %d, %v", off, err)
	}
	off, err = s.offset(0, 11)
	if err != nil || off != 5*4 {
		t.Fatalf("offset(0, 11) = %d, %v", off, err)
	}
	if _, err := s.offset(0, 12); !errors.Is(err, ErrSliceOutOfBounds) {
		t.Errorf("offset past end: %v", err)
	}
	if _, err := s.offset(-3, 10); !errors.Is(err, ErrSliceOutOfBounds) {
		t.Errorf("offset before start: %v", err)
	}
}

func TestSliceFillBits(t *testing.T) {
	tests := []struct {
		typ  PixelType
		fill float64
		want uint32
	}{
		{PixelTypeFloat, 1, 0x3f800000},
		{PixelTypeHalf, 1, uint32(hwy.NewFloat16(1).Bits())},
		{PixelTypeHalf, -2, 0xc000},
		{PixelTypeUint, 7.9, 7},
		{PixelTypeUint, -1, 0},
		{PixelTypeUint, 1e12, 0xffffffff},
	}
	for _, tt := range tests {
		s := Slice{Type: tt.typ, Fill: tt.fill}
		if got := s.fillBits(); got != tt.want {
			t.Errorf("%v fill %g = %#x, want %#x", tt.typ, tt.fill, got, tt.want)
		}
	}
}

func TestTypedSlicesShareMemory(t *testing.T) {
	halves := []hwy.Float16{hwy.NewFloat16(0.5), hwy.NewFloat16(2)}
	s := HalfSlice(halves, V2i{}, 2)
	if len(s.Data) != 4 || s.XStride != 2 || s.YStride != 4 {
		t.Fatalf("slice = %+v", s)
	}
	s.Data[0], s.Data[1] = 0, 0
	if halves[0] != 0 {
		t.Error("HalfSlice copied its input")
	}
	u := Uint32Slice([]uint32{1, 2, 3}, V2i{}, 3)
	if u.Type != PixelTypeUint || len(u.Data) != 12 {
		t.Errorf("Uint32Slice = %+v", u)
	}
	if len(Float32Slice(nil, V2i{}, 0).Data) != 0 {
		t.Error("empty input gave data")
	}
}
