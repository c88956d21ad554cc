package exr

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// OutputFile writes scanlines to a single-part scanline file. Scanlines
// are written in the header's line order; RandomY is written top-down.
//
// An OutputFile is not safe for concurrent use. Close must be called to
// write the line offset table.
type OutputFile struct {
	stream   OStream
	closer   io.Closer
	header   *Header
	layout   *chunkLayout
	comp     compressor
	offsets  []uint64
	tablePos uint64
	fb       *FrameBuffer
	pool     *codecPool

	nextY   int // next scanline to write
	step    int // +1 or -1
	written int
	// pending holds chunks that have received some but not all of their
	// scanlines, keyed by chunk index.
	pending map[int]*pendingChunk
	failed  error
	closed  bool
}

type pendingChunk struct {
	raw   []byte
	lines int
}

// CreateOutputFile creates or truncates the file at path and writes h to
// it.
func CreateOutputFile(path string, h *Header, threads int) (_ *OutputFile, err error) {
	defer guard("create output file", &err)
	if err := h.sanityCheck(); err != nil {
		return nil, unspecified("create "+path, err)
	}
	f, s, err := createFileStream(path)
	if err != nil {
		return nil, err
	}
	out, err := newOutputFile(s, h, threads)
	if err != nil {
		f.Close()
		return nil, unspecified("create "+path, err)
	}
	out.closer = f
	return out, nil
}

// NewOutputFile writes h to s and returns a file ready for a frame
// buffer. h is copied; later changes to it do not affect the file.
func NewOutputFile(s OStream, h *Header, threads int) (_ *OutputFile, err error) {
	defer guard("create output file", &err)
	out, err := newOutputFile(s, h, threads)
	if err != nil {
		return nil, unspecified("create output file", err)
	}
	return out, nil
}

func newOutputFile(s OStream, h *Header, threads int) (*OutputFile, error) {
	if err := h.sanityCheck(); err != nil {
		return nil, err
	}
	h = h.Clone()
	l := newChunkLayout(h)
	comp, err := newCompressor(h.compression, l)
	if err != nil {
		return nil, err
	}
	if err := s.Write(encodeHeader(h)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	out := &OutputFile{
		stream:   s,
		header:   h,
		layout:   l,
		comp:     comp,
		offsets:  make([]uint64, l.numChunks()),
		tablePos: s.Tell(),
		pending:  make(map[int]*pendingChunk),
		nextY:    int(h.dataWindow.Min.Y),
		step:     1,
	}
	if h.lineOrder == LineOrderDecreasingY {
		out.nextY = int(h.dataWindow.Max.Y)
		out.step = -1
	}
	if err := s.Write(make([]byte, 8*len(out.offsets))); err != nil {
		return nil, fmt.Errorf("write line offset table: %w", err)
	}
	out.pool = acquirePool(threads)
	logger.WithFields(logrus.Fields{
		"dataWindow":  h.dataWindow.String(),
		"compression": h.compression.String(),
		"lineOrder":   h.lineOrder.String(),
		"chunks":      len(out.offsets),
	}).Debug("created output file")
	return out, nil
}

// Header returns the file's copy of the header.
func (o *OutputFile) Header() *Header { return o.header }

// CurrentScanline returns the next scanline WritePixels will write.
func (o *OutputFile) CurrentScanline() int { return o.nextY }

// ScanlinesWritten returns how many scanlines have been written.
func (o *OutputFile) ScanlinesWritten() int { return o.written }

// SetFrameBuffer binds fb as the source of later WritePixels calls. Every
// channel of the header needs a slice with the same pixel type and
// sampling.
func (o *OutputFile) SetFrameBuffer(fb *FrameBuffer) (err error) {
	defer guard("set frame buffer", &err)
	if o.closed {
		return unspecified("set frame buffer", ErrClosed)
	}
	if err := o.header.validateForOutput(fb); err != nil {
		return unspecified("set frame buffer", err)
	}
	o.fb = fb
	return nil
}

// WritePixels writes the next n scanlines from the bound frame buffer.
// After a failure the file accepts no more scanlines but can still be
// closed.
func (o *OutputFile) WritePixels(n int) (err error) {
	defer guard("write pixels", &err)
	if err := o.writePixels(n); err != nil {
		return unspecified("write pixels", err)
	}
	return nil
}

func (o *OutputFile) writePixels(n int) error {
	switch {
	case o.closed:
		return ErrClosed
	case o.failed != nil:
		return fmt.Errorf("file unusable after earlier failure: %w", o.failed)
	case o.fb == nil:
		return ErrNoFrameBuffer
	case n < 0:
		return fmt.Errorf("%w: negative scanline count %d", ErrScanlineOutOfRange, n)
	}
	l := o.layout
	if remaining := l.window.Height() - o.written; n > remaining {
		return fmt.Errorf("%w: %d scanlines requested, %d remain", ErrScanlineOutOfRange, n, remaining)
	}

	var ready []int
	for range n {
		y := o.nextY
		i := l.chunkIndex(y)
		cy0, cy1 := l.chunkLines(i)
		p := o.pending[i]
		if p == nil {
			p = &pendingChunk{raw: make([]byte, l.size(cy0, cy1))}
			o.pending[i] = p
		}
		at := l.size(cy0, y-1)
		if err := l.pack(o.fb, y, y, p.raw[at:]); err != nil {
			o.failed = err
			return err
		}
		p.lines++
		o.nextY += o.step
		o.written++
		if p.lines == cy1-cy0+1 {
			ready = append(ready, i)
		}
	}
	if err := o.flush(ready); err != nil {
		o.failed = err
		return err
	}
	return nil
}

// flush compresses complete chunks in parallel and writes them in order.
func (o *OutputFile) flush(ready []int) error {
	if len(ready) == 0 {
		return nil
	}
	l := o.layout
	packed := make([][]byte, len(ready))
	err := o.pool.run(len(ready), func(k int) error {
		i := ready[k]
		raw := o.pending[i].raw
		packed[k] = raw
		if o.comp == nil {
			return nil
		}
		cy0, cy1 := l.chunkLines(i)
		data, err := o.comp.compress(raw, cy0, cy1)
		if err != nil {
			return fmt.Errorf("compress chunk %d: %w", i, err)
		}
		if len(data) < len(raw) {
			packed[k] = data
		}
		return nil
	})
	if err != nil {
		return err
	}
	for k, i := range ready {
		cy0, _ := l.chunkLines(i)
		var w xdrWriter
		w.Int32(int32(cy0))
		w.Int32(int32(len(packed[k])))
		w.Write(packed[k])
		o.offsets[i] = o.stream.Tell()
		if err := o.stream.Write(w.Bytes()); err != nil {
			return fmt.Errorf("write chunk %d: %w", i, err)
		}
		delete(o.pending, i)
	}
	return nil
}

// WritePixelsIncremental writes the next n scanlines from fb. fb holds
// just those n scanlines, top-down, laid out as if its first row were the
// top of the data window. fb becomes the bound frame buffer.
func (o *OutputFile) WritePixelsIncremental(fb *FrameBuffer, n int) (err error) {
	defer guard("write pixels", &err)
	offset := o.written
	if o.step < 0 {
		offset = o.layout.window.Height() - o.written - n
	}
	if offset < 0 {
		return unspecified("write pixels", fmt.Errorf("%w: %d scanlines requested, %d remain",
			ErrScanlineOutOfRange, n, o.layout.window.Height()-o.written))
	}
	if err := o.SetFrameBuffer(fb.CopyAndOffsetScanlines(offset)); err != nil {
		return err
	}
	return o.WritePixels(n)
}

// Close writes the line offset table and releases the file. Scanlines
// that were never written are left out of the table. Closing twice is a
// no-op.
func (o *OutputFile) Close() (err error) {
	defer guard("close output file", &err)
	if o.closed {
		return nil
	}
	o.closed = true
	o.fb = nil
	o.pool.release()
	o.pool = nil

	var w xdrWriter
	for _, off := range o.offsets {
		w.Uint64(off)
	}
	err = o.stream.SeekTo(o.tablePos)
	if err == nil {
		err = o.stream.Write(w.Bytes())
	}
	if err != nil {
		err = unspecified("close output file", fmt.Errorf("write line offset table: %w", err))
	}
	logger.WithFields(logrus.Fields{
		"scanlines": o.written,
		"pending":   len(o.pending),
	}).Debug("closed output file")
	if o.closer != nil {
		if cerr := o.closer.Close(); cerr != nil && err == nil {
			err = osError("close", cerr)
		}
	}
	return err
}
