package exr

import "fmt"

// V2i is a 2D integer vector.
type V2i struct {
	X, Y int32
}

// V2f is a 2D float vector.
type V2f struct {
	X, Y float32
}

// Box2i is an inclusive integer bounding box.
type Box2i struct {
	Min, Max V2i
}

// NewBox2i returns the box with origin (x, y) spanning w by h pixels.
func NewBox2i(x, y, w, h int32) Box2i {
	return Box2i{Min: V2i{x, y}, Max: V2i{x + w - 1, y + h - 1}}
}

// Width returns the number of columns in the box.
func (b Box2i) Width() int { return int(b.Max.X) - int(b.Min.X) + 1 }

// Height returns the number of rows in the box.
func (b Box2i) Height() int { return int(b.Max.Y) - int(b.Min.Y) + 1 }

func (b Box2i) IsEmpty() bool { return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y }

func (b Box2i) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// PixelType is the storage type of a channel's samples.
type PixelType int32

const (
	PixelTypeUint  PixelType = 0 // 32-bit unsigned integer
	PixelTypeHalf  PixelType = 1 // 16-bit float
	PixelTypeFloat PixelType = 2 // 32-bit float
)

// Size returns the number of bytes per sample.
func (t PixelType) Size() int {
	switch t {
	case PixelTypeHalf:
		return 2
	case PixelTypeUint, PixelTypeFloat:
		return 4
	}
	return 0
}

func (t PixelType) valid() bool { return t >= PixelTypeUint && t <= PixelTypeFloat }

func (t PixelType) String() string {
	switch t {
	case PixelTypeUint:
		return "uint"
	case PixelTypeHalf:
		return "half"
	case PixelTypeFloat:
		return "float"
	}
	return fmt.Sprintf("PixelType(%d)", int32(t))
}

// LineOrder is the order in which scanlines are stored and written.
type LineOrder int32

const (
	LineOrderIncreasingY LineOrder = 0
	LineOrderDecreasingY LineOrder = 1
	LineOrderRandomY     LineOrder = 2
)

func (o LineOrder) String() string {
	switch o {
	case LineOrderIncreasingY:
		return "increasing y"
	case LineOrderDecreasingY:
		return "decreasing y"
	case LineOrderRandomY:
		return "random y"
	}
	return fmt.Sprintf("LineOrder(%d)", int32(o))
}

// Compression identifies a chunk compression method.
type Compression int32

const (
	CompressionNone  Compression = 0
	CompressionRLE   Compression = 1
	CompressionZIPS  Compression = 2
	CompressionZIP   Compression = 3
	CompressionPIZ   Compression = 4
	CompressionPXR24 Compression = 5
	CompressionB44   Compression = 6
	CompressionB44A  Compression = 7
	CompressionDWAA  Compression = 8
	CompressionDWAB  Compression = 9
)

var compressionNames = [...]string{"none", "rle", "zips", "zip", "piz", "pxr24", "b44", "b44a", "dwaa", "dwab"}

func (c Compression) String() string {
	if c >= 0 && int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return fmt.Sprintf("Compression(%d)", int32(c))
}

// LinesPerChunk returns how many scanlines one chunk holds.
func (c Compression) LinesPerChunk() int {
	switch c {
	case CompressionZIP, CompressionPXR24:
		return 16
	case CompressionPIZ, CompressionB44, CompressionB44A, CompressionDWAA:
		return 32
	case CompressionDWAB:
		return 256
	}
	return 1
}

// Lossy reports whether the method may alter sample values.
func (c Compression) Lossy() bool {
	switch c {
	case CompressionPXR24, CompressionB44, CompressionB44A, CompressionDWAA, CompressionDWAB:
		return true
	}
	return false
}

// Envmap is the environment map kind stored in the "envmap" attribute.
type Envmap int32

const (
	EnvmapLatLong Envmap = 0
	EnvmapCube    Envmap = 1
)

func (e Envmap) String() string {
	switch e {
	case EnvmapLatLong:
		return "latlong"
	case EnvmapCube:
		return "cube"
	}
	return fmt.Sprintf("Envmap(%d)", int32(e))
}
