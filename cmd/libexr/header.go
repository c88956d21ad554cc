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

func header(h C.exr_handle) *exr.Header {
	hdr, err := lookup[*exr.Header](uintptr(h))
	if err != nil {
		log.WithError(err).Debug("header lookup")
		return nil
	}
	return hdr
}

//export exr_header_new
func exr_header_new(displayWindow, dataWindow *C.exr_box2i, pixelAspectRatio C.float,
	screenWindowCenter *C.exr_v2f, screenWindowWidth C.float, lineOrder, compression C.int) C.exr_handle {
	if displayWindow == nil || dataWindow == nil || screenWindowCenter == nil {
		return 0
	}
	h := exr.NewHeader(box2iFromC(displayWindow), box2iFromC(dataWindow), float32(pixelAspectRatio),
		v2fFromC(screenWindowCenter), float32(screenWindowWidth), exr.LineOrder(lineOrder), exr.Compression(compression))
	return C.exr_handle(newHandle(h))
}

// exr_header_new_size returns a width by height header with one window
// for both display and data.
//
//export exr_header_new_size
func exr_header_new_size(width, height C.int32_t) C.exr_handle {
	return C.exr_handle(newHandle(exr.NewHeaderSize(int32(width), int32(height))))
}

// exr_header_copy returns a deep copy of h.
//
//export exr_header_copy
func exr_header_copy(h C.exr_handle) C.exr_handle {
	hdr := header(h)
	if hdr == nil {
		return 0
	}
	return C.exr_handle(newHandle(hdr.Clone()))
}

//export exr_header_delete
func exr_header_delete(h C.exr_handle) { deleteHandle(uintptr(h)) }

//export exr_header_display_window
func exr_header_display_window(h C.exr_handle, out *C.exr_box2i) {
	if hdr := header(h); hdr != nil && out != nil {
		*out = box2iToC(hdr.DisplayWindow())
	}
}

//export exr_header_set_display_window
func exr_header_set_display_window(h C.exr_handle, b *C.exr_box2i) {
	if hdr := header(h); hdr != nil && b != nil {
		hdr.SetDisplayWindow(box2iFromC(b))
	}
}

//export exr_header_data_window
func exr_header_data_window(h C.exr_handle, out *C.exr_box2i) {
	if hdr := header(h); hdr != nil && out != nil {
		*out = box2iToC(hdr.DataWindow())
	}
}

//export exr_header_set_data_window
func exr_header_set_data_window(h C.exr_handle, b *C.exr_box2i) {
	if hdr := header(h); hdr != nil && b != nil {
		hdr.SetDataWindow(box2iFromC(b))
	}
}

//export exr_header_data_origin
func exr_header_data_origin(h C.exr_handle, out *C.exr_v2i) {
	if hdr := header(h); hdr != nil && out != nil {
		*out = v2iToC(hdr.DataOrigin())
	}
}

//export exr_header_pixel_aspect_ratio
func exr_header_pixel_aspect_ratio(h C.exr_handle) C.float {
	if hdr := header(h); hdr != nil {
		return C.float(hdr.PixelAspectRatio())
	}
	return 0
}

//export exr_header_set_pixel_aspect_ratio
func exr_header_set_pixel_aspect_ratio(h C.exr_handle, r C.float) {
	if hdr := header(h); hdr != nil {
		hdr.SetPixelAspectRatio(float32(r))
	}
}

//export exr_header_screen_window_center
func exr_header_screen_window_center(h C.exr_handle, out *C.exr_v2f) {
	if hdr := header(h); hdr != nil && out != nil {
		*out = v2fToC(hdr.ScreenWindowCenter())
	}
}

//export exr_header_set_screen_window_center
func exr_header_set_screen_window_center(h C.exr_handle, c *C.exr_v2f) {
	if hdr := header(h); hdr != nil && c != nil {
		hdr.SetScreenWindowCenter(v2fFromC(c))
	}
}

//export exr_header_screen_window_width
func exr_header_screen_window_width(h C.exr_handle) C.float {
	if hdr := header(h); hdr != nil {
		return C.float(hdr.ScreenWindowWidth())
	}
	return 0
}

//export exr_header_set_screen_window_width
func exr_header_set_screen_window_width(h C.exr_handle, w C.float) {
	if hdr := header(h); hdr != nil {
		hdr.SetScreenWindowWidth(float32(w))
	}
}

//export exr_header_line_order
func exr_header_line_order(h C.exr_handle) C.int {
	if hdr := header(h); hdr != nil {
		return C.int(hdr.LineOrder())
	}
	return 0
}

//export exr_header_set_line_order
func exr_header_set_line_order(h C.exr_handle, o C.int) {
	if hdr := header(h); hdr != nil {
		hdr.SetLineOrder(exr.LineOrder(o))
	}
}

//export exr_header_compression
func exr_header_compression(h C.exr_handle) C.int {
	if hdr := header(h); hdr != nil {
		return C.int(hdr.Compression())
	}
	return 0
}

//export exr_header_set_compression
func exr_header_set_compression(h C.exr_handle, c C.int) {
	if hdr := header(h); hdr != nil {
		hdr.SetCompression(exr.Compression(c))
	}
}

//export exr_header_insert_channel
func exr_header_insert_channel(h C.exr_handle, name *C.char, ch *C.exr_channel) {
	if hdr := header(h); hdr != nil && ch != nil {
		hdr.InsertChannel(C.GoString(name), channelFromC(ch))
	}
}

// exr_header_find_channel stores the channel called name in out and
// returns 1, or returns 0 if there is none.
//
//export exr_header_find_channel
func exr_header_find_channel(h C.exr_handle, name *C.char, out *C.exr_channel) C.int {
	hdr := header(h)
	if hdr == nil {
		return 0
	}
	ch, ok := hdr.FindChannel(C.GoString(name))
	if !ok {
		return 0
	}
	channelToC(ch, out)
	return 1
}

// exr_header_channel_iterator returns an iterator over the channels of h
// in insertion order.
//
//export exr_header_channel_iterator
func exr_header_channel_iterator(h C.exr_handle) C.exr_handle {
	hdr := header(h)
	if hdr == nil {
		return 0
	}
	return C.exr_handle(newHandle(hdr.Channels().Iterator()))
}

// exr_channel_iterator_next stores the next channel in out and returns 1,
// or returns 0 at the end. *name receives a copy of the channel name for
// the caller to free with exr_string_free.
//
//export exr_channel_iterator_next
func exr_channel_iterator_next(it C.exr_handle, name **C.char, out *C.exr_channel) C.int {
	iter, err := lookup[*exr.ChannelIterator](uintptr(it))
	if err != nil {
		return 0
	}
	n, ch, ok := iter.Next()
	if !ok {
		return 0
	}
	if name != nil {
		*name = C.CString(n)
	}
	channelToC(ch, out)
	return 1
}

//export exr_channel_iterator_reset
func exr_channel_iterator_reset(it C.exr_handle) {
	if iter, err := lookup[*exr.ChannelIterator](uintptr(it)); err == nil {
		iter.Reset()
	}
}

//export exr_channel_iterator_delete
func exr_channel_iterator_delete(it C.exr_handle) {
	if iter, err := lookup[*exr.ChannelIterator](uintptr(it)); err == nil {
		iter.Release()
	}
	deleteHandle(uintptr(it))
}

// exr_header_envmap stores the envmap attribute in out and returns 1, or
// returns 0 if h has none.
//
//export exr_header_envmap
func exr_header_envmap(h C.exr_handle, out *C.int) C.int {
	hdr := header(h)
	if hdr == nil {
		return 0
	}
	e, ok := hdr.Envmap()
	if !ok {
		return 0
	}
	if out != nil {
		*out = C.int(e)
	}
	return 1
}

//export exr_header_set_envmap
func exr_header_set_envmap(h C.exr_handle, e C.int) {
	if hdr := header(h); hdr != nil {
		hdr.SetEnvmap(exr.Envmap(e))
	}
}

// exr_header_multiview returns the number of views, or -1 if h has no
// multiView attribute. When views is not null it receives a malloc'd array
// of malloc'd strings; free each with exr_string_free and the array with
// free.
//
//export exr_header_multiview
func exr_header_multiview(h C.exr_handle, views ***C.char) C.int {
	hdr := header(h)
	if hdr == nil || !hdr.HasAttribute("multiView") {
		return -1
	}
	mv := hdr.MultiView()
	if views != nil {
		*views = nil
		if len(mv) > 0 {
			arr := (**C.char)(C.malloc(C.size_t(len(mv)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
			strs := unsafe.Slice(arr, len(mv))
			for i, v := range mv {
				strs[i] = C.CString(v)
			}
			*views = arr
		}
	}
	return C.int(len(mv))
}

//export exr_header_set_multiview
func exr_header_set_multiview(h C.exr_handle, views **C.char, n C.int) {
	hdr := header(h)
	if hdr == nil {
		return
	}
	mv := make([]string, 0, int(n))
	if views != nil && n > 0 {
		for _, v := range unsafe.Slice(views, int(n)) {
			mv = append(mv, C.GoString(v))
		}
	}
	hdr.SetMultiView(mv)
}

//export exr_header_has_attribute
func exr_header_has_attribute(h C.exr_handle, name *C.char) C.int {
	if hdr := header(h); hdr != nil && hdr.HasAttribute(C.GoString(name)) {
		return 1
	}
	return 0
}

// exr_header_erase_attribute removes an optional attribute. Required
// attributes cannot be erased.
//
//export exr_header_erase_attribute
func exr_header_erase_attribute(h C.exr_handle, name *C.char) {
	if hdr := header(h); hdr != nil {
		hdr.EraseAttribute(C.GoString(name))
	}
}
