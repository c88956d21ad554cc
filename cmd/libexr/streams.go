package main

// #include "exr_types.h"
import "C"

import (
	"unsafe"

	"github.com/ajroetker/go-exr"
)

// exr_istream_new creates an input stream over C callbacks. The stream
// seeks to offset 0 before returning.
//
//export exr_istream_new
func exr_istream_new(read C.exr_read_fn, seek C.exr_seek_fn, ctx unsafe.Pointer, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("create input stream", func() error {
		cs := &cStream{ctx: ctx, read: read, seek: seek}
		cb := cs.inputCallbacks()
		if read == nil {
			cb.Read = nil
		}
		if seek == nil {
			cb.Seek = nil
		}
		s, err := exr.NewCallbackIStream(cb)
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(s))
		return nil
	}))
}

// exr_memory_istream_new creates an input stream over len bytes at data.
// The memory is not copied and must outlive the stream.
//
//export exr_memory_istream_new
func exr_memory_istream_new(name *C.char, data unsafe.Pointer, length C.size_t, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("create memory stream", func() error {
		var buf []byte
		if data != nil && length > 0 {
			buf = unsafe.Slice((*byte)(data), int(length))
		}
		*out = C.exr_handle(newHandle(exr.NewMemoryIStream(C.GoString(name), buf)))
		return nil
	}))
}

//export exr_istream_tell
func exr_istream_tell(h C.exr_handle) C.uint64_t {
	s, err := lookup[exr.IStream](uintptr(h))
	if err != nil {
		return 0
	}
	return C.uint64_t(s.Tell())
}

//export exr_istream_delete
func exr_istream_delete(h C.exr_handle) { deleteHandle(uintptr(h)) }

// exr_ostream_new creates an output stream over C callbacks.
//
//export exr_ostream_new
func exr_ostream_new(write C.exr_write_fn, seek C.exr_seek_fn, ctx unsafe.Pointer, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("create output stream", func() error {
		cs := &cStream{ctx: ctx, write: write, seek: seek}
		cb := cs.outputCallbacks()
		if write == nil {
			cb.Write = nil
		}
		if seek == nil {
			cb.Seek = nil
		}
		s, err := exr.NewCallbackOStream(cb)
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(s))
		return nil
	}))
}

//export exr_ostream_tell
func exr_ostream_tell(h C.exr_handle) C.uint64_t {
	s, err := lookup[exr.OStream](uintptr(h))
	if err != nil {
		return 0
	}
	return C.uint64_t(s.Tell())
}

//export exr_ostream_delete
func exr_ostream_delete(h C.exr_handle) { deleteHandle(uintptr(h)) }
