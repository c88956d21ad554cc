package exr

import (
	"errors"
	"io"
	"syscall"
)

// IStream is the blocking input stream the file drivers read from.
// ReadFull either fills p completely or fails; Tell never fails.
type IStream interface {
	ReadFull(p []byte) error
	SeekTo(pos uint64) error
	Tell() uint64
}

// OStream is the blocking output stream the file drivers write to.
type OStream interface {
	Write(p []byte) error
	SeekTo(pos uint64) error
	Tell() uint64
}

// MemoryMapped is implemented by input streams that can hand out views of
// their backing memory instead of copying.
type MemoryMapped interface {
	IsMemoryMapped() bool
	ReadMemoryMapped(n int) ([]byte, error)
}

// ReadFunc reads exactly len(p) bytes for the caller context ctx. When it
// returns StatusSystem the int is the OS error code.
type ReadFunc func(ctx any, p []byte) (Status, int)

// WriteFunc writes all of p for the caller context ctx.
type WriteFunc func(ctx any, p []byte) (Status, int)

// SeekFunc moves the caller's stream to the absolute offset pos.
type SeekFunc func(ctx any, pos uint64) (Status, int)

// InputCallbacks is the capability record backing a CallbackIStream.
type InputCallbacks struct {
	Context any
	Read    ReadFunc
	Seek    SeekFunc
}

// OutputCallbacks is the capability record backing a CallbackOStream.
type OutputCallbacks struct {
	Context any
	Write   WriteFunc
	Seek    SeekFunc
}

// ReadSeekerCallbacks adapts rs to the callback convention. OS errors
// surface as StatusSystem with their errno, all others as
// StatusUnspecified.
func ReadSeekerCallbacks(rs io.ReadSeeker) InputCallbacks {
	return InputCallbacks{
		Context: rs,
		Read: func(ctx any, p []byte) (Status, int) {
			_, err := io.ReadFull(ctx.(io.ReadSeeker), p)
			return statusOfIO(err)
		},
		Seek: seekerFunc,
	}
}

// WriteSeekerCallbacks adapts ws to the callback convention.
func WriteSeekerCallbacks(ws io.WriteSeeker) OutputCallbacks {
	return OutputCallbacks{
		Context: ws,
		Write: func(ctx any, p []byte) (Status, int) {
			n, err := ctx.(io.WriteSeeker).Write(p)
			if err == nil && n != len(p) {
				err = io.ErrShortWrite
			}
			return statusOfIO(err)
		},
		Seek: seekerFunc,
	}
}

func seekerFunc(ctx any, pos uint64) (Status, int) {
	if pos > 1<<63-1 {
		return StatusSystem, int(syscall.EINVAL)
	}
	_, err := ctx.(io.Seeker).Seek(int64(pos), io.SeekStart)
	return statusOfIO(err)
}

func statusOfIO(err error) (Status, int) {
	if err == nil {
		return StatusOK, 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return StatusSystem, int(errno)
	}
	return StatusUnspecified, 0
}
