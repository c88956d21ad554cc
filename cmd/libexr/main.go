// Command libexr exposes the exr package to C. Build it with
//
//	go build -buildmode=c-shared -o libexr.so ./cmd/libexr
//
// Objects cross the boundary as opaque exr_handle values that the caller
// releases with the matching delete function. Deleting handle 0 does
// nothing.
package main

/*
#include <stdlib.h>
#include "exr_types.h"
*/
import "C"

import (
	"unsafe"

	"github.com/ajroetker/go-exr"
)

// The vector types are passed by pointer and reinterpreted in place.
var (
	_ [unsafe.Sizeof(C.exr_v2i{}) - unsafe.Sizeof(exr.V2i{})]struct{}
	_ [unsafe.Sizeof(exr.V2i{}) - unsafe.Sizeof(C.exr_v2i{})]struct{}
	_ [unsafe.Sizeof(C.exr_v2f{}) - unsafe.Sizeof(exr.V2f{})]struct{}
	_ [unsafe.Sizeof(exr.V2f{}) - unsafe.Sizeof(C.exr_v2f{})]struct{}
	_ [unsafe.Sizeof(C.exr_box2i{}) - unsafe.Sizeof(exr.Box2i{})]struct{}
	_ [unsafe.Sizeof(exr.Box2i{}) - unsafe.Sizeof(C.exr_box2i{})]struct{}
)

func main() {}

// report stores err in out and returns its status.
func report(out *C.exr_error, err error) C.int {
	status, code, msg := marshal(err)
	if out != nil {
		out.code = C.int(code)
		out.message = nil
		if msg != "" {
			out.message = C.CString(msg)
		}
	}
	return C.int(status)
}

func v2iToC(v exr.V2i) C.exr_v2i { return *(*C.exr_v2i)(unsafe.Pointer(&v)) }
func v2fToC(v exr.V2f) C.exr_v2f { return *(*C.exr_v2f)(unsafe.Pointer(&v)) }
func box2iToC(b exr.Box2i) C.exr_box2i { return *(*C.exr_box2i)(unsafe.Pointer(&b)) }

func v2fFromC(v *C.exr_v2f) exr.V2f { return *(*exr.V2f)(unsafe.Pointer(v)) }
func box2iFromC(b *C.exr_box2i) exr.Box2i { return *(*exr.Box2i)(unsafe.Pointer(b)) }

func channelFromC(c *C.exr_channel) exr.Channel {
	return exr.Channel{
		Type:      exr.PixelType(c._type),
		XSampling: int32(c.x_sampling),
		YSampling: int32(c.y_sampling),
		PLinear:   c.p_linear != 0,
	}
}

// channelToC ignores a null out.
func channelToC(ch exr.Channel, out *C.exr_channel) {
	if out == nil {
		return
	}
	out._type = C.int32_t(ch.Type)
	out.x_sampling = C.int32_t(ch.XSampling)
	out.y_sampling = C.int32_t(ch.YSampling)
	out.p_linear = 0
	if ch.PLinear {
		out.p_linear = 1
	}
}

//export exr_string_free
func exr_string_free(s *C.char) {
	C.free(unsafe.Pointer(s))
}

//export exr_set_global_thread_count
func exr_set_global_thread_count(n C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("set global thread count", func() error {
		return exr.SetGlobalThreadCount(int(n))
	}))
}

//export exr_global_thread_count
func exr_global_thread_count() C.int {
	return C.int(exr.GlobalThreadCount())
}
