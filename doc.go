// Package exr reads and writes OpenEXR scanline images through
// caller-supplied byte streams.
//
// Streams come in two flavours. A CallbackIStream or CallbackOStream wraps
// read, write and seek callbacks plus an opaque context and keeps its own
// cursor, so Tell never calls back. A MemoryIStream reads straight from a
// byte slice and hands chunk data to the decoder without copying.
//
// Reading:
//
//	in, err := exr.NewInputFile(exr.NewMemoryIStream("image.exr", data), exr.GlobalThreadCount())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//	w, h := in.Header().DataDimensions()
//	pixels := make([]float32, w*h)
//	fb := exr.NewFrameBuffer()
//	fb.Insert("R", exr.Float32Slice(pixels, in.Header().DataOrigin(), w))
//	if err := in.SetFrameBuffer(fb); err != nil {
//	    log.Fatal(err)
//	}
//	dw := in.Header().DataWindow()
//	err = in.ReadPixels(int(dw.Min.Y), int(dw.Max.Y))
//
// Writing:
//
//	h := exr.NewHeaderSize(640, 480)
//	h.InsertChannel("R", exr.NewChannel(exr.PixelTypeFloat))
//	out, err := exr.CreateOutputFile("out.exr", h, 0)
//	...
//	out.SetFrameBuffer(fb)
//	out.WritePixels(480)
//	err = out.Close()
//
// Every failure is either a *SystemError, carrying the OS error code a
// callback reported, or an *UnspecifiedError with a message. StatusOf
// turns an error into the numeric status used across the callback
// boundary. Panics inside the codec are recovered at each exported entry
// point and returned as *UnspecifiedError.
//
// Compression uses a process-wide worker pool sized by
// SetGlobalThreadCount. Stream I/O always happens on the calling
// goroutine.
package exr
