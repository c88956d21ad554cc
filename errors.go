package exr

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	ErrNilCallback            = errors.New("exr: stream callback is nil")
	ErrEndOfData              = errors.New("exr: read past end of data")
	ErrNotOpenEXR             = errors.New("exr: not an OpenEXR file")
	ErrUnsupportedVersion     = errors.New("exr: unsupported file version")
	ErrUnsupportedCompression = errors.New("exr: unsupported compression")
	ErrInvalidHeader          = errors.New("exr: invalid header")
	ErrTruncatedData          = errors.New("exr: truncated data")
	ErrCorruptChunk           = errors.New("exr: corrupt chunk")
	ErrNoFrameBuffer          = errors.New("exr: no frame buffer bound")
	ErrScanlineOutOfRange     = errors.New("exr: scanline out of range")
	ErrSamplingMismatch       = errors.New("exr: slice sampling does not match channel")
	ErrPixelTypeMismatch      = errors.New("exr: slice pixel type does not match channel")
	ErrMissingChannel         = errors.New("exr: channel missing from frame buffer")
	ErrSliceOutOfBounds       = errors.New("exr: slice address outside pixel memory")
	ErrInvalidSlice           = errors.New("exr: invalid slice")
	ErrClosed                 = errors.New("exr: file is closed")
	ErrInvalidThreadCount     = errors.New("exr: invalid thread count")
)

// Status is the tri-state result that crosses the stream callback
// boundary. Any value other than StatusOK and StatusSystem is treated as
// StatusUnspecified.
type Status int

const (
	StatusOK          Status = 0
	StatusSystem      Status = 1
	StatusUnspecified Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSystem:
		return "system error"
	default:
		return "unspecified error"
	}
}

// SystemError is an OS-level failure reported by a caller callback. Code
// is the numeric OS error code exactly as the callback reported it.
type SystemError struct {
	Op   string
	Code int
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("exr: %s: %s (%s, errno %d)", e.Op, syscall.Errno(e.Code).Error(), errnoName(e.Code), e.Code)
}

// Unwrap exposes the code as a syscall.Errno for errors.Is.
func (e *SystemError) Unwrap() error {
	return syscall.Errno(e.Code)
}

// UnspecifiedError is any failure that does not carry an OS code. Msg is
// owned by the error; Err, if set, is the cause.
type UnspecifiedError struct {
	Op  string
	Msg string
	Err error
}

func (e *UnspecifiedError) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return e.Op + ": " + e.Msg
}

func (e *UnspecifiedError) Unwrap() error {
	return e.Err
}

// StatusOf marshals err into the tri-state convention: StatusOK for nil,
// StatusSystem with the OS code when err carries a *SystemError, and
// StatusUnspecified with the error text otherwise.
func StatusOf(err error) (status Status, code int, msg string) {
	if err == nil {
		return StatusOK, 0, ""
	}
	var se *SystemError
	if errors.As(err, &se) {
		return StatusSystem, se.Code, err.Error()
	}
	return StatusUnspecified, 0, err.Error()
}

// statusError unmarshals a callback result into an error.
func statusError(op string, status Status, code int) error {
	switch status {
	case StatusOK:
		return nil
	case StatusSystem:
		return &SystemError{Op: op, Code: code}
	default:
		return &UnspecifiedError{Op: op, Msg: "stream callback failed"}
	}
}

// unspecified normalizes err into an *UnspecifiedError unless it already
// is one of the two boundary error types.
func unspecified(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *SystemError
	var ue *UnspecifiedError
	if errors.As(err, &se) || errors.As(err, &ue) {
		return err
	}
	return &UnspecifiedError{Op: op, Msg: err.Error(), Err: err}
}

// guard converts a panic raised below an exported entry point into an
// *UnspecifiedError stored in *errp. Use as `defer guard("op", &err)`.
func guard(op string, errp *error) {
	if r := recover(); r != nil {
		var cause error
		if e, ok := r.(error); ok {
			cause = e
		}
		*errp = &UnspecifiedError{Op: op, Msg: fmt.Sprint("internal failure: ", r), Err: cause}
		logger.WithField("op", op).WithField("panic", r).Debug("recovered panic")
	}
}
