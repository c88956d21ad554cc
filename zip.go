package exr

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

var zlibWriterPool = sync.Pool{
	New: func() any {
		w, _ := zlib.NewWriterLevel(nil, zlib.DefaultCompression)
		return w
	},
}

func zlibCompress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(src)/2 + 64)
	w := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)
	w.Reset(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zlibDecompress inflates src into dst, which must be filled exactly.
func zlibDecompress(src, dst []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return ErrCorruptChunk
	}
	defer r.Close()
	if _, err := io.ReadFull(r, dst); err != nil {
		return ErrCorruptChunk
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return ErrCorruptChunk
	}
	return nil
}

// zipCompressor serves both ZIPS (one scanline per chunk) and ZIP
// (sixteen); the chunk height lives in the layout.
type zipCompressor struct{}

func (zipCompressor) compress(raw []byte, _, _ int) ([]byte, error) {
	return zlibCompress(preprocess(raw))
}

func (zipCompressor) decompress(src, dst []byte, _, _ int) error {
	tmp := getBuffer(len(dst))
	defer putBuffer(tmp)
	if err := zlibDecompress(src, *tmp); err != nil {
		return err
	}
	postprocess(dst, *tmp)
	return nil
}
