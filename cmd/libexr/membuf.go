package main

/*
#include <stdlib.h>
#include <string.h>
#include "exr_types.h"

// exr_membuf is a growable in-memory stream driven through the C
// callback types. seek_errno, when non-zero, makes every seek fail with
// that code.
typedef struct {
	char *data;
	size_t len;
	size_t pos;
	int seek_errno;
} exr_membuf;

static int membuf_read(void *ctx, char *buf, int n, int *err_out) {
	exr_membuf *b = ctx;
	if (b->pos + (size_t)n > b->len) {
		return EXR_UNSPECIFIED_ERROR;
	}
	memcpy(buf, b->data + b->pos, n);
	b->pos += n;
	return EXR_OK;
}

static int membuf_write(void *ctx, const char *buf, int n, int *err_out) {
	exr_membuf *b = ctx;
	size_t end = b->pos + (size_t)n;
	if (end > b->len) {
		char *p = realloc(b->data, end);
		if (p == NULL) {
			*err_out = 12;
			return EXR_SYSTEM_ERROR;
		}
		memset(p + b->len, 0, end - b->len);
		b->data = p;
		b->len = end;
	}
	memcpy(b->data + b->pos, buf, n);
	b->pos = end;
	return EXR_OK;
}

static int membuf_seek(void *ctx, uint64_t pos, int *err_out) {
	exr_membuf *b = ctx;
	if (b->seek_errno != 0) {
		*err_out = b->seek_errno;
		return EXR_SYSTEM_ERROR;
	}
	b->pos = pos;
	return EXR_OK;
}
*/
import "C"

import (
	"unsafe"

	"github.com/ajroetker/go-exr"
)

// memBuffer is a C-allocated stream for exercising the callback entry
// points from Go.
type memBuffer struct {
	b *C.exr_membuf
}

func newMemBuffer(data []byte) *memBuffer {
	b := (*C.exr_membuf)(C.calloc(1, C.size_t(unsafe.Sizeof(C.exr_membuf{}))))
	if len(data) > 0 {
		b.data = (*C.char)(C.CBytes(data))
		b.len = C.size_t(len(data))
	}
	return &memBuffer{b: b}
}

func (m *memBuffer) failSeeks(code int) { m.b.seek_errno = C.int(code) }

func (m *memBuffer) bytes() []byte {
	return C.GoBytes(unsafe.Pointer(m.b.data), C.int(m.b.len))
}

func (m *memBuffer) free() {
	C.free(unsafe.Pointer(m.b.data))
	C.free(unsafe.Pointer(m.b))
}

// result is an exr_error taken back into Go.
type result struct {
	status exr.Status
	code   int
	msg    string
}

func takeResult(status C.int, e *C.exr_error) result {
	r := result{status: exr.Status(status), code: int(e.code)}
	if e.message != nil {
		r.msg = C.GoString(e.message)
		exr_string_free(e.message)
	}
	return r
}

func (m *memBuffer) inputStream() (uintptr, result) {
	var h C.exr_handle
	var e C.exr_error
	st := exr_istream_new(C.exr_read_fn(C.membuf_read), C.exr_seek_fn(C.membuf_seek), unsafe.Pointer(m.b), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

func (m *memBuffer) outputStream() (uintptr, result) {
	var h C.exr_handle
	var e C.exr_error
	st := exr_ostream_new(C.exr_write_fn(C.membuf_write), C.exr_seek_fn(C.membuf_seek), unsafe.Pointer(m.b), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

// The wrappers below call the exported entry points with Go values.

func inputFile(stream uintptr, threads int) (uintptr, result) {
	var h C.exr_handle
	var e C.exr_error
	st := exr_input_file_new(C.exr_handle(stream), C.int(threads), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

func openInputFile(path string, threads int) (uintptr, result) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	var h C.exr_handle
	var e C.exr_error
	st := exr_input_file_open(cpath, C.int(threads), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

func outputFile(stream, hdr uintptr, threads int) (uintptr, result) {
	var h C.exr_handle
	var e C.exr_error
	st := exr_output_file_new(C.exr_handle(stream), C.exr_handle(hdr), C.int(threads), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

func createOutputFile(path string, hdr uintptr, threads int) (uintptr, result) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	var h C.exr_handle
	var e C.exr_error
	st := exr_output_file_create(cpath, C.exr_handle(hdr), C.int(threads), &h, &e)
	return uintptr(h), takeResult(st, &e)
}

func insertSlice(fb uintptr, name string, s exr.Slice) result {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var data unsafe.Pointer
	if len(s.Data) > 0 {
		data = unsafe.Pointer(&s.Data[0])
	}
	var e C.exr_error
	st := exr_framebuffer_insert(C.exr_handle(fb), cname, C.int(s.Type), data, C.size_t(len(s.Data)),
		C.ptrdiff_t(s.Base), C.ptrdiff_t(s.XStride), C.ptrdiff_t(s.YStride),
		C.int(s.XSampling), C.int(s.YSampling), C.double(s.Fill),
		boolToC(s.XTileCoords), boolToC(s.YTileCoords), &e)
	return takeResult(st, &e)
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func setInputFrameBuffer(f, fb uintptr) result {
	var e C.exr_error
	return takeResult(exr_input_file_set_framebuffer(C.exr_handle(f), C.exr_handle(fb), &e), &e)
}

func setOutputFrameBuffer(f, fb uintptr) result {
	var e C.exr_error
	return takeResult(exr_output_file_set_framebuffer(C.exr_handle(f), C.exr_handle(fb), &e), &e)
}

func readPixels(f uintptr, y0, y1 int) result {
	var e C.exr_error
	return takeResult(exr_input_file_read_pixels(C.exr_handle(f), C.int(y0), C.int(y1), &e), &e)
}

func writePixels(f uintptr, n int) result {
	var e C.exr_error
	return takeResult(exr_output_file_write_pixels(C.exr_handle(f), C.int(n), &e), &e)
}

func inputFileHeader(f uintptr) uintptr {
	return uintptr(exr_input_file_header(C.exr_handle(f)))
}

func deleteInputFile(f uintptr) { exr_input_file_delete(C.exr_handle(f)) }

func closeOutputFile(f uintptr) result {
	var e C.exr_error
	return takeResult(exr_output_file_delete(C.exr_handle(f), &e), &e)
}

// channels walks the header behind h with the C channel iterator.
func channels(h uintptr) ([]string, []exr.Channel) {
	it := exr_header_channel_iterator(C.exr_handle(h))
	defer exr_channel_iterator_delete(it)
	var names []string
	var chans []exr.Channel
	for {
		var name *C.char
		var ch C.exr_channel
		if exr_channel_iterator_next(it, &name, &ch) == 0 {
			return names, chans
		}
		names = append(names, C.GoString(name))
		exr_string_free(name)
		chans = append(chans, channelFromC(&ch))
	}
}
