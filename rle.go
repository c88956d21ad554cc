package exr

import "errors"

const (
	rleMinRun = 3
	rleMaxRun = 127
)

var errRLEOverflow = errors.New("exr: rle data expands past the chunk size")

// rleCompress run-length codes src. A non-negative count byte n is followed
// by one byte repeated n+1 times; a negative count -n is followed by n
// literal bytes.
func rleCompress(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/rleMaxRun+2)
	start := 0
	for start < len(src) {
		end := start + 1
		for end < len(src) && src[end] == src[start] && end-start <= rleMaxRun {
			end++
		}
		if end-start >= rleMinRun {
			out = append(out, byte(end-start-1), src[start])
			start = end
			continue
		}
		for end < len(src) &&
			(end+1 >= len(src) || src[end] != src[end+1] || end+2 >= len(src) || src[end+1] != src[end+2]) &&
			end-start < rleMaxRun {
			end++
		}
		out = append(out, byte(int8(start-end)))
		out = append(out, src[start:end]...)
		start = end
	}
	return out
}

// rleDecompress expands src into dst and requires dst to be filled exactly.
func rleDecompress(src, dst []byte) error {
	pos := 0
	for i := 0; i < len(src); {
		n := int(int8(src[i]))
		i++
		if n < 0 {
			n = -n
			if i+n > len(src) {
				return ErrCorruptChunk
			}
			if pos+n > len(dst) {
				return errRLEOverflow
			}
			copy(dst[pos:], src[i:i+n])
			pos += n
			i += n
			continue
		}
		if i >= len(src) {
			return ErrCorruptChunk
		}
		if pos+n+1 > len(dst) {
			return errRLEOverflow
		}
		b := src[i]
		i++
		for j := 0; j <= n; j++ {
			dst[pos+j] = b
		}
		pos += n + 1
	}
	if pos != len(dst) {
		return ErrCorruptChunk
	}
	return nil
}

type rleCompressor struct{}

func (rleCompressor) compress(raw []byte, _, _ int) ([]byte, error) {
	return rleCompress(preprocess(raw)), nil
}

func (rleCompressor) decompress(src, dst []byte, _, _ int) error {
	tmp := getBuffer(len(dst))
	defer putBuffer(tmp)
	if err := rleDecompress(src, *tmp); err != nil {
		return err
	}
	postprocess(dst, *tmp)
	return nil
}
