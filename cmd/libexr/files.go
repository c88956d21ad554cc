package main

// #include "exr_types.h"
import "C"

import (
	"github.com/ajroetker/go-exr"
)

// exr_input_file_new reads the header and offset table from stream. The
// stream must stay alive until the file is deleted.
//
//export exr_input_file_new
func exr_input_file_new(stream C.exr_handle, threads C.int, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("open input file", func() error {
		s, err := lookup[exr.IStream](uintptr(stream))
		if err != nil {
			return err
		}
		in, err := exr.NewInputFile(s, int(threads))
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(in))
		return nil
	}))
}

// exr_input_file_open opens the file at path. A missing file is a system
// error carrying ENOENT.
//
//export exr_input_file_open
func exr_input_file_open(path *C.char, threads C.int, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("open input file", func() error {
		in, err := exr.OpenInputFile(C.GoString(path), int(threads))
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(in))
		return nil
	}))
}

// exr_input_file_header returns a new handle to the file's header. It
// is owned by the file; deleting the handle does not affect the file.
//
//export exr_input_file_header
func exr_input_file_header(f C.exr_handle) C.exr_handle {
	in, err := lookup[*exr.InputFile](uintptr(f))
	if err != nil {
		return 0
	}
	return C.exr_handle(newHandle(in.Header()))
}

//export exr_input_file_is_complete
func exr_input_file_is_complete(f C.exr_handle) C.int {
	in, err := lookup[*exr.InputFile](uintptr(f))
	if err != nil || !in.IsComplete() {
		return 0
	}
	return 1
}

//export exr_input_file_set_framebuffer
func exr_input_file_set_framebuffer(f, fb C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("set frame buffer", func() error {
		in, err := lookup[*exr.InputFile](uintptr(f))
		if err != nil {
			return err
		}
		buf, err := lookup[*exr.FrameBuffer](uintptr(fb))
		if err != nil {
			return err
		}
		return in.SetFrameBuffer(buf)
	}))
}

//export exr_input_file_read_pixels
func exr_input_file_read_pixels(f C.exr_handle, y0, y1 C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("read pixels", func() error {
		in, err := lookup[*exr.InputFile](uintptr(f))
		if err != nil {
			return err
		}
		return in.ReadPixels(int(y0), int(y1))
	}))
}

// exr_input_file_read_pixels_partial reads up to height scanlines starting
// start rows into the data window into fb, which holds height scanlines.
// *count receives the number read.
//
//export exr_input_file_read_pixels_partial
func exr_input_file_read_pixels_partial(f C.exr_handle, start C.int, fb C.exr_handle, height C.int, count *C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("read pixels", func() error {
		in, err := lookup[*exr.InputFile](uintptr(f))
		if err != nil {
			return err
		}
		buf, err := lookup[*exr.FrameBuffer](uintptr(fb))
		if err != nil {
			return err
		}
		n, err := in.ReadPixelsPartial(int(start), buf, int(height))
		if count != nil {
			*count = C.int(n)
		}
		return err
	}))
}

//export exr_input_file_delete
func exr_input_file_delete(f C.exr_handle) {
	if in, err := lookup[*exr.InputFile](uintptr(f)); err == nil {
		if err := in.Close(); err != nil {
			log.WithError(err).Debug("close input file")
		}
	}
	deleteHandle(uintptr(f))
}

// exr_output_file_new writes a copy of the header to stream.
//
//export exr_output_file_new
func exr_output_file_new(stream, hdr C.exr_handle, threads C.int, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("create output file", func() error {
		s, err := lookup[exr.OStream](uintptr(stream))
		if err != nil {
			return err
		}
		h, err := lookup[*exr.Header](uintptr(hdr))
		if err != nil {
			return err
		}
		o, err := exr.NewOutputFile(s, h, int(threads))
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(o))
		return nil
	}))
}

// exr_output_file_create creates or truncates the file at path and writes
// a copy of the header to it.
//
//export exr_output_file_create
func exr_output_file_create(path *C.char, hdr C.exr_handle, threads C.int, out *C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("create output file", func() error {
		h, err := lookup[*exr.Header](uintptr(hdr))
		if err != nil {
			return err
		}
		o, err := exr.CreateOutputFile(C.GoString(path), h, int(threads))
		if err != nil {
			return err
		}
		*out = C.exr_handle(newHandle(o))
		return nil
	}))
}

//export exr_output_file_header
func exr_output_file_header(f C.exr_handle) C.exr_handle {
	o, err := lookup[*exr.OutputFile](uintptr(f))
	if err != nil {
		return 0
	}
	return C.exr_handle(newHandle(o.Header()))
}

//export exr_output_file_current_scanline
func exr_output_file_current_scanline(f C.exr_handle) C.int {
	o, err := lookup[*exr.OutputFile](uintptr(f))
	if err != nil {
		return 0
	}
	return C.int(o.CurrentScanline())
}

//export exr_output_file_set_framebuffer
func exr_output_file_set_framebuffer(f, fb C.exr_handle, errOut *C.exr_error) C.int {
	return report(errOut, protect("set frame buffer", func() error {
		o, err := lookup[*exr.OutputFile](uintptr(f))
		if err != nil {
			return err
		}
		buf, err := lookup[*exr.FrameBuffer](uintptr(fb))
		if err != nil {
			return err
		}
		return o.SetFrameBuffer(buf)
	}))
}

//export exr_output_file_write_pixels
func exr_output_file_write_pixels(f C.exr_handle, n C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("write pixels", func() error {
		o, err := lookup[*exr.OutputFile](uintptr(f))
		if err != nil {
			return err
		}
		return o.WritePixels(int(n))
	}))
}

// exr_output_file_write_pixels_incremental writes the next n scanlines
// from fb, which holds just those scanlines.
//
//export exr_output_file_write_pixels_incremental
func exr_output_file_write_pixels_incremental(f, fb C.exr_handle, n C.int, errOut *C.exr_error) C.int {
	return report(errOut, protect("write pixels", func() error {
		o, err := lookup[*exr.OutputFile](uintptr(f))
		if err != nil {
			return err
		}
		buf, err := lookup[*exr.FrameBuffer](uintptr(fb))
		if err != nil {
			return err
		}
		return o.WritePixelsIncremental(buf, int(n))
	}))
}

// exr_output_file_delete writes the line offset table and releases the
// file. The handle is released even when writing the table fails.
//
//export exr_output_file_delete
func exr_output_file_delete(f C.exr_handle, errOut *C.exr_error) C.int {
	if f == 0 {
		return report(errOut, nil)
	}
	defer deleteHandle(uintptr(f))
	return report(errOut, protect("close output file", func() error {
		o, err := lookup[*exr.OutputFile](uintptr(f))
		if err != nil {
			return err
		}
		return o.Close()
	}))
}
