package main

/*
#include "exr_types.h"

static inline int exr_call_read(exr_read_fn f, void *ctx, char *buf, int n, int *err_out) {
	return f(ctx, buf, n, err_out);
}

static inline int exr_call_write(exr_write_fn f, void *ctx, const char *buf, int n, int *err_out) {
	return f(ctx, buf, n, err_out);
}

static inline int exr_call_seek(exr_seek_fn f, void *ctx, uint64_t pos, int *err_out) {
	return f(ctx, pos, err_out);
}
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/ajroetker/go-exr"
)

// cStream holds the C callbacks and opaque context behind a callback
// stream. ctx is never dereferenced on the Go side.
type cStream struct {
	ctx   unsafe.Pointer
	read  C.exr_read_fn
	write C.exr_write_fn
	seek  C.exr_seek_fn
}

func (s *cStream) inputCallbacks() exr.InputCallbacks {
	return exr.InputCallbacks{Context: s, Read: cRead, Seek: cSeek}
}

func (s *cStream) outputCallbacks() exr.OutputCallbacks {
	return exr.OutputCallbacks{Context: s, Write: cWrite, Seek: cSeek}
}

// Transfers larger than a C int are split.
func cRead(ctx any, p []byte) (exr.Status, int) {
	s := ctx.(*cStream)
	for len(p) > 0 {
		n := min(len(p), math.MaxInt32)
		var code C.int
		st := C.exr_call_read(s.read, s.ctx, (*C.char)(unsafe.Pointer(&p[0])), C.int(n), &code)
		if st != C.EXR_OK {
			return exr.Status(st), int(code)
		}
		p = p[n:]
	}
	return exr.StatusOK, 0
}

func cWrite(ctx any, p []byte) (exr.Status, int) {
	s := ctx.(*cStream)
	for len(p) > 0 {
		n := min(len(p), math.MaxInt32)
		var code C.int
		st := C.exr_call_write(s.write, s.ctx, (*C.char)(unsafe.Pointer(&p[0])), C.int(n), &code)
		if st != C.EXR_OK {
			return exr.Status(st), int(code)
		}
		p = p[n:]
	}
	return exr.StatusOK, 0
}

func cSeek(ctx any, pos uint64) (exr.Status, int) {
	s := ctx.(*cStream)
	var code C.int
	st := C.exr_call_seek(s.seek, s.ctx, C.uint64_t(pos), &code)
	return exr.Status(st), int(code)
}
