package main

// #include "exr_types.h"
import "C"

import (
	"unsafe"

	"github.com/ajroetker/go-exr"
)

//export exr_framebuffer_new
func exr_framebuffer_new() C.exr_handle {
	return C.exr_handle(newHandle(exr.NewFrameBuffer()))
}

//export exr_framebuffer_delete
func exr_framebuffer_delete(fb C.exr_handle) { deleteHandle(uintptr(fb)) }

// exr_framebuffer_insert adds a slice over length bytes at data. The
// sample for pixel (x, y) starts at byte
// base + (x/x_sampling)*x_stride + (y/y_sampling)*y_stride. The memory
// is not copied and must stay valid while a file uses the frame buffer.
// The tile coordinate flags only matter for tiled files.
//
//export exr_framebuffer_insert
func exr_framebuffer_insert(fb C.exr_handle, name *C.char, pixelType C.int, data unsafe.Pointer, length C.size_t,
	base, xStride, yStride C.ptrdiff_t, xSampling, ySampling C.int, fill C.double,
	xTileCoords, yTileCoords C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("insert slice", func() error {
		f, err := lookup[*exr.FrameBuffer](uintptr(fb))
		if err != nil {
			return err
		}
		var buf []byte
		if data != nil && length > 0 {
			buf = unsafe.Slice((*byte)(data), int(length))
		}
		f.Insert(C.GoString(name), exr.Slice{
			Type:        exr.PixelType(pixelType),
			Data:        buf,
			Base:        int(base),
			XStride:     int(xStride),
			YStride:     int(yStride),
			XSampling:   int(xSampling),
			YSampling:   int(ySampling),
			Fill:        float64(fill),
			XTileCoords: xTileCoords != 0,
			YTileCoords: yTileCoords != 0,
		})
		return nil
	}))
}

// exr_framebuffer_find stores the pixel type and sampling of the slice
// called name in out and returns 1, or returns 0 if there is none.
//
//export exr_framebuffer_find
func exr_framebuffer_find(fb C.exr_handle, name *C.char, out *C.exr_channel) C.int {
	f, err := lookup[*exr.FrameBuffer](uintptr(fb))
	if err != nil {
		return 0
	}
	ch, ok := f.Find(C.GoString(name))
	if !ok {
		return 0
	}
	channelToC(ch, out)
	return 1
}

// exr_framebuffer_copy_and_offset_scanlines returns a new frame buffer
// sharing fb's memory whose slices address scanline offset where fb's
// address scanline 0.
//
//export exr_framebuffer_copy_and_offset_scanlines
func exr_framebuffer_copy_and_offset_scanlines(fb C.exr_handle, offset C.int) C.exr_handle {
	f, err := lookup[*exr.FrameBuffer](uintptr(fb))
	if err != nil {
		return 0
	}
	return C.exr_handle(newHandle(f.CopyAndOffsetScanlines(int(offset))))
}
