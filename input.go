package exr

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// InputFile reads scanlines from a single-part scanline file.
//
// An InputFile is not safe for concurrent use. The stream it reads from
// belongs to the file until Close.
type InputFile struct {
	stream  IStream
	closer  io.Closer
	header  *Header
	layout  *chunkLayout
	comp    compressor
	offsets []uint64
	fb      *FrameBuffer
	pool    *codecPool
	closed  bool
}

// OpenInputFile opens the file at path. threads of 0 disables parallel
// decompression for this file.
func OpenInputFile(path string, threads int) (_ *InputFile, err error) {
	defer guard("open input file", &err)
	f, s, err := openFileStream(path)
	if err != nil {
		return nil, err
	}
	in, err := newInputFile(s, threads)
	if err != nil {
		f.Close()
		return nil, unspecified("open "+path, err)
	}
	in.closer = f
	return in, nil
}

// NewInputFile reads the header and line offset table from s, starting at
// its current position.
func NewInputFile(s IStream, threads int) (_ *InputFile, err error) {
	defer guard("open input file", &err)
	in, err := newInputFile(s, threads)
	if err != nil {
		return nil, unspecified("open input file", err)
	}
	return in, nil
}

func newInputFile(s IStream, threads int) (*InputFile, error) {
	h, err := readHeader(s)
	if err != nil {
		return nil, err
	}
	if err := h.sanityCheck(); err != nil {
		return nil, err
	}
	l := newChunkLayout(h)
	comp, err := newCompressor(h.compression, l)
	if err != nil {
		return nil, err
	}
	in := &InputFile{stream: s, header: h, layout: l, comp: comp}
	if err := in.readOffsets(); err != nil {
		return nil, err
	}
	in.pool = acquirePool(threads)
	logger.WithFields(logrus.Fields{
		"dataWindow":  h.dataWindow.String(),
		"compression": h.compression.String(),
		"channels":    h.channels.Len(),
		"chunks":      len(in.offsets),
	}).Debug("opened input file")
	return in, nil
}

// readOffsets loads the line offset table, rebuilding it from the chunk
// headers when it has entries that cannot be right.
func (in *InputFile) readOffsets() error {
	n := in.layout.numChunks()
	buf := make([]byte, 8*n)
	if err := in.stream.ReadFull(buf); err != nil {
		return fmt.Errorf("read line offset table: %w", err)
	}
	tableEnd := in.stream.Tell()
	r := newXDRReader(buf)
	in.offsets = make([]uint64, n)
	valid := true
	for i := range in.offsets {
		in.offsets[i] = r.Uint64()
		if in.offsets[i] < tableEnd {
			valid = false
		}
	}
	if !valid {
		in.reconstructOffsets(tableEnd)
	}
	return nil
}

// reconstructOffsets walks the chunks that follow the table and records
// where each one starts. Chunks that cannot be found keep offset 0.
func (in *InputFile) reconstructOffsets(pos uint64) {
	logger.WithField("tableEnd", pos).Debug("line offset table incomplete, scanning chunks")
	clear(in.offsets)
	l := in.layout
	var hdr [8]byte
	for range in.offsets {
		if in.stream.SeekTo(pos) != nil || in.stream.ReadFull(hdr[:]) != nil {
			return
		}
		r := newXDRReader(hdr[:])
		y, size := int(r.Int32()), int(r.Int32())
		if y < int(l.window.Min.Y) || y > int(l.window.Max.Y) || size < 0 {
			return
		}
		i := l.chunkIndex(y)
		if cy0, _ := l.chunkLines(i); cy0 != y {
			return
		}
		in.offsets[i] = pos
		pos += 8 + uint64(size)
	}
}

// Header returns the file's header. It is owned by the file and must not
// be used after Close.
func (in *InputFile) Header() *Header { return in.header }

// IsComplete reports whether every chunk has a known location.
func (in *InputFile) IsComplete() bool {
	for _, off := range in.offsets {
		if off == 0 {
			return false
		}
	}
	return true
}

// SetFrameBuffer binds fb as the destination of later ReadPixels calls,
// replacing any earlier binding. Slices naming a file channel must match
// its pixel type and sampling; other slices are filled with their fill
// value.
func (in *InputFile) SetFrameBuffer(fb *FrameBuffer) (err error) {
	defer guard("set frame buffer", &err)
	if in.closed {
		return unspecified("set frame buffer", ErrClosed)
	}
	if err := in.header.validateForInput(fb); err != nil {
		return unspecified("set frame buffer", err)
	}
	in.fb = fb
	return nil
}

// rawChunk is one chunk as read from the stream.
type rawChunk struct {
	index  int
	y0, y1 int
	data   []byte
	buf    *[]byte // pooled storage behind data, if any
}

// ReadPixels decodes scanlines y0 through y1 inclusive into the bound
// frame buffer. Scanlines may be requested in any order.
func (in *InputFile) ReadPixels(y0, y1 int) (err error) {
	defer guard("read pixels", &err)
	if err := in.readPixels(y0, y1); err != nil {
		return unspecified("read pixels", err)
	}
	return nil
}

func (in *InputFile) readPixels(y0, y1 int) error {
	if in.closed {
		return ErrClosed
	}
	if in.fb == nil {
		return ErrNoFrameBuffer
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	l := in.layout
	if y0 < int(l.window.Min.Y) || y1 > int(l.window.Max.Y) {
		return fmt.Errorf("%w: [%d, %d] outside data window %v", ErrScanlineOutOfRange, y0, y1, l.window)
	}
	first, last := l.chunkIndex(y0), l.chunkIndex(y1)

	// Stream reads stay on this goroutine; only decoding fans out.
	chunks := make([]rawChunk, 0, last-first+1)
	defer func() {
		for _, c := range chunks {
			putBuffer(c.buf)
		}
	}()
	for i := first; i <= last; i++ {
		c, err := in.readChunk(i)
		if err != nil {
			return fmt.Errorf("read chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}

	fb := in.fb
	return in.pool.run(len(chunks), func(k int) error {
		c := chunks[k]
		rawSize := l.size(c.y0, c.y1)
		data := c.data
		if len(data) < rawSize {
			if in.comp == nil {
				return fmt.Errorf("%w: chunk %d is %d bytes, want %d", ErrCorruptChunk, c.index, len(data), rawSize)
			}
			tmp := getBuffer(rawSize)
			defer putBuffer(tmp)
			if err := in.comp.decompress(data, *tmp, c.y0, c.y1); err != nil {
				return fmt.Errorf("decompress chunk %d: %w", c.index, err)
			}
			data = *tmp
		}
		return l.unpack(fb, c.y0, c.y1, y0, y1, data)
	})
}

func (in *InputFile) readChunk(i int) (rawChunk, error) {
	l := in.layout
	c := rawChunk{index: i}
	c.y0, c.y1 = l.chunkLines(i)
	off := in.offsets[i]
	if off == 0 {
		return c, fmt.Errorf("%w: chunk is missing", ErrTruncatedData)
	}
	if err := in.stream.SeekTo(off); err != nil {
		return c, err
	}
	var hdr [8]byte
	if err := in.stream.ReadFull(hdr[:]); err != nil {
		return c, err
	}
	r := newXDRReader(hdr[:])
	y, size := int(r.Int32()), int(r.Int32())
	if y != c.y0 {
		return c, fmt.Errorf("%w: chunk starts at scanline %d, want %d", ErrCorruptChunk, y, c.y0)
	}
	if size < 0 || size > l.size(c.y0, c.y1) {
		return c, fmt.Errorf("%w: chunk size %d", ErrCorruptChunk, size)
	}
	if mm, ok := in.stream.(MemoryMapped); ok && mm.IsMemoryMapped() {
		data, err := mm.ReadMemoryMapped(size)
		if err != nil {
			return c, err
		}
		c.data = data
		return c, nil
	}
	c.buf = getBuffer(size)
	if err := in.stream.ReadFull(*c.buf); err != nil {
		putBuffer(c.buf)
		c.buf = nil
		return c, err
	}
	c.data = *c.buf
	return c, nil
}

// ReadPixelsPartial reads up to height scanlines starting start rows below
// the top of the data window into fb, which holds height scanlines laid
// out as if it began at the top of the data window. fb becomes the bound
// frame buffer. It returns the number of scanlines read.
func (in *InputFile) ReadPixelsPartial(start int, fb *FrameBuffer, height int) (_ int, err error) {
	defer guard("read pixels", &err)
	_, h := in.header.DataDimensions()
	if start < 0 || start >= h {
		return 0, unspecified("read pixels", fmt.Errorf("%w: start %d of %d scanlines", ErrScanlineOutOfRange, start, h))
	}
	count := min(h-start, height)
	if count <= 0 {
		return 0, nil
	}
	if err := in.SetFrameBuffer(fb.CopyAndOffsetScanlines(start)); err != nil {
		return 0, err
	}
	y0 := int(in.header.dataWindow.Min.Y) + start
	if err := in.ReadPixels(y0, y0+count-1); err != nil {
		return 0, err
	}
	return count, nil
}

// Close releases the file. Closing twice is a no-op.
func (in *InputFile) Close() (err error) {
	defer guard("close input file", &err)
	if in.closed {
		return nil
	}
	in.closed = true
	in.fb = nil
	in.pool.release()
	in.pool = nil
	logger.WithField("chunks", len(in.offsets)).Debug("closed input file")
	if in.closer != nil {
		if err := in.closer.Close(); err != nil {
			return osError("close", err)
		}
	}
	return nil
}
