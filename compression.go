package exr

import "fmt"

// compressor packs and unpacks one chunk. Implementations are used from
// several goroutines at once and must not keep per-call state.
type compressor interface {
	// compress returns the packed form of raw, which holds scanlines
	// y0..y1 in file order.
	compress(raw []byte, y0, y1 int) ([]byte, error)
	// decompress unpacks src into dst, which has the exact uncompressed
	// size of scanlines y0..y1.
	decompress(src, dst []byte, y0, y1 int) error
}

func newCompressor(c Compression, l *chunkLayout) (compressor, error) {
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionRLE:
		return rleCompressor{}, nil
	case CompressionZIPS, CompressionZIP:
		return zipCompressor{}, nil
	case CompressionPXR24:
		return &pxr24Compressor{layout: l}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, c)
}

// interleave splits src into its even-indexed bytes followed by its
// odd-indexed bytes.
func interleave(dst, src []byte) {
	half := (len(src) + 1) / 2
	for i, b := range src {
		if i&1 == 0 {
			dst[i/2] = b
		} else {
			dst[half+i/2] = b
		}
	}
}

// deinterleave reverses interleave.
func deinterleave(dst, src []byte) {
	half := (len(src) + 1) / 2
	for i := range dst {
		if i&1 == 0 {
			dst[i] = src[i/2]
		} else {
			dst[i] = src[half+i/2]
		}
	}
}

// encodeDeltas replaces every byte after the first with its difference
// from the previous byte, biased by 128.
func encodeDeltas(b []byte) {
	if len(b) == 0 {
		return
	}
	prev := b[0]
	for i := 1; i < len(b); i++ {
		cur := b[i]
		b[i] = cur - prev + 128
		prev = cur
	}
}

func decodeDeltas(b []byte) {
	for i := 1; i < len(b); i++ {
		b[i] = b[i-1] + b[i] - 128
	}
}

// preprocess applies the byte reordering and delta coding shared by RLE
// and ZIP.
func preprocess(raw []byte) []byte {
	out := make([]byte, len(raw))
	interleave(out, raw)
	encodeDeltas(out)
	return out
}

// postprocess reverses preprocess, reusing tmp as scratch.
func postprocess(dst, tmp []byte) {
	decodeDeltas(tmp)
	deinterleave(dst, tmp)
}
