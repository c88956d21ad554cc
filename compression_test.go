package exr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestRLEKnownEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"run", []byte{7, 7, 7, 7}, []byte{3, 7}},
		{"literal", []byte{1, 2}, []byte{0xfe, 1, 2}},
		{"literal then run", []byte{1, 2, 5, 5, 5}, []byte{0xfe, 1, 2, 2, 5}},
		{"empty", nil, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rleCompress(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("rleCompress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRLERoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	inputs := map[string][]byte{
		"zeros":     make([]byte, 1000),
		"long run":  bytes.Repeat([]byte{9}, 300),
		"alternate": bytes.Repeat([]byte{1, 2}, 200),
		"single":    {42},
	}
	noise := make([]byte, 777)
	for i := range noise {
		noise[i] = byte(rng.IntN(4))
	}
	inputs["noise"] = noise

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			enc := rleCompress(in)
			out := make([]byte, len(in))
			if err := rleDecompress(enc, out); err != nil {
				t.Fatalf("rleDecompress: %v", err)
			}
			if !bytes.Equal(in, out) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestRLEDecompressCorrupt(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		size int
		want error
	}{
		{"run overflows", []byte{10, 1}, 4, errRLEOverflow},
		{"literal overflows", []byte{0xfd, 1, 2, 3}, 2, errRLEOverflow},
		{"literal truncated", []byte{0xfd, 1}, 3, ErrCorruptChunk},
		{"run truncated", []byte{3}, 4, ErrCorruptChunk},
		{"short", []byte{1, 5}, 4, ErrCorruptChunk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := rleDecompress(tt.in, make([]byte, tt.size)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreprocessRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 64} {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i*37 + 11)
		}
		pre := preprocess(raw)
		out := make([]byte, n)
		postprocess(out, pre)
		if !bytes.Equal(raw, out) {
			t.Errorf("n=%d: got %v, want %v", n, out, raw)
		}
	}
}

func TestInterleave(t *testing.T) {
	dst := make([]byte, 5)
	interleave(dst, []byte{0, 1, 2, 3, 4})
	if !bytes.Equal(dst, []byte{0, 2, 4, 1, 3}) {
		t.Errorf("interleave = %v", dst)
	}
}

// mixedLayout returns a layout with one channel of each pixel type plus a
// subsampled one.
func mixedLayout(c Compression) *chunkLayout {
	h := NewHeaderSize(8, 32)
	h.SetCompression(c)
	h.InsertChannel("F", NewChannel(PixelTypeFloat))
	h.InsertChannel("H", NewChannel(PixelTypeHalf))
	h.InsertChannel("U", NewChannel(PixelTypeUint))
	h.InsertChannel("S", Channel{Type: PixelTypeHalf, XSampling: 2, YSampling: 2})
	return newChunkLayout(h)
}

func TestCompressorsRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionRLE, CompressionZIPS, CompressionZIP} {
		t.Run(c.String(), func(t *testing.T) {
			l := mixedLayout(c)
			comp, err := newCompressor(c, l)
			if err != nil {
				t.Fatal(err)
			}
			y0, y1 := l.chunkLines(0)
			raw := make([]byte, l.size(y0, y1))
			for i := range raw {
				raw[i] = byte(i / 16)
			}
			packed, err := comp.compress(raw, y0, y1)
			if err != nil {
				t.Fatal(err)
			}
			if len(packed) >= len(raw) {
				t.Errorf("compressed %d bytes into %d", len(raw), len(packed))
			}
			out := make([]byte, len(raw))
			if err := comp.decompress(packed, out, y0, y1); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(raw, out) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestPXR24(t *testing.T) {
	l := mixedLayout(CompressionPXR24)
	comp, err := newCompressor(CompressionPXR24, l)
	if err != nil {
		t.Fatal(err)
	}
	y0, y1 := l.chunkLines(1)
	raw := make([]byte, l.size(y0, y1))
	// Fill the chunk in file order: per line, channels F H S U.
	pos := 0
	for y := y0; y <= y1; y++ {
		for i, ch := range l.channels {
			if mod(int32(y), ch.YSampling) != 0 {
				continue
			}
			n := l.rowBytes[i] / ch.Type.Size()
			for x := range n {
				switch ch.Type {
				case PixelTypeFloat:
					binary.LittleEndian.PutUint32(raw[pos:], math.Float32bits(float32(y)*1.001+float32(x)/3))
				case PixelTypeHalf:
					binary.LittleEndian.PutUint16(raw[pos:], uint16(0x3c00+x+y))
				case PixelTypeUint:
					binary.LittleEndian.PutUint32(raw[pos:], uint32(y*100000+x))
				}
				pos += ch.Type.Size()
			}
		}
	}
	packed, err := comp.compress(raw, y0, y1)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(raw))
	if err := comp.decompress(packed, out, y0, y1); err != nil {
		t.Fatal(err)
	}

	pos = 0
	for y := y0; y <= y1; y++ {
		for i, ch := range l.channels {
			if mod(int32(y), ch.YSampling) != 0 {
				continue
			}
			n := l.rowBytes[i] / ch.Type.Size()
			for range n {
				switch ch.Type {
				case PixelTypeFloat:
					want := math.Float32frombits(binary.LittleEndian.Uint32(raw[pos:]))
					got := math.Float32frombits(binary.LittleEndian.Uint32(out[pos:]))
					if math.Abs(float64(got-want)) > math.Abs(float64(want))*1e-4 {
						t.Fatalf("float at %d: got %g, want %g", pos, got, want)
					}
				default:
					if !bytes.Equal(raw[pos:pos+ch.Type.Size()], out[pos:pos+ch.Type.Size()]) {
						t.Fatalf("%v sample at %d changed", ch.Type, pos)
					}
				}
				pos += ch.Type.Size()
			}
		}
	}
}

func TestFloatToFloat24(t *testing.T) {
	tests := []struct {
		in   float32
		want uint32
	}{
		{0, 0},
		{1, 0x3f8000},
		{-2, 0xc00000},
		{float32(math.Inf(1)), 0x7f8000},
	}
	for _, tt := range tests {
		if got := floatToFloat24(tt.in); got != tt.want {
			t.Errorf("floatToFloat24(%g) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
	if nan := floatToFloat24(math.Float32frombits(0x7f800001)); nan&0x7fff == 0 {
		t.Errorf("NaN with low mantissa bits became %#x", nan)
	}
}

func TestUnsupportedCompression(t *testing.T) {
	for _, c := range []Compression{CompressionPIZ, CompressionB44, CompressionB44A, CompressionDWAA, CompressionDWAB} {
		if _, err := newCompressor(c, mixedLayout(c)); !errors.Is(err, ErrUnsupportedCompression) {
			t.Errorf("%v: %v", c, err)
		}
	}
}

func TestLinesPerChunk(t *testing.T) {
	want := map[Compression]int{
		CompressionNone: 1, CompressionRLE: 1, CompressionZIPS: 1, CompressionZIP: 16,
		CompressionPIZ: 32, CompressionPXR24: 16, CompressionB44: 32, CompressionB44A: 32,
		CompressionDWAA: 32, CompressionDWAB: 256,
	}
	for c, n := range want {
		if got := c.LinesPerChunk(); got != n {
			t.Errorf("%v: %d lines, want %d", c, got, n)
		}
	}
}
