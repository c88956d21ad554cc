package main

import (
	"errors"
	"fmt"
	"runtime/cgo"

	"github.com/ajroetker/go-exr"
	"github.com/sirupsen/logrus"
)

var errInvalidHandle = errors.New("libexr: invalid handle")

var log = logrus.WithField("component", "libexr")

func newHandle(v any) uintptr { return uintptr(cgo.NewHandle(v)) }

// lookup returns the value behind h if it has type T.
func lookup[T any](h uintptr) (v T, err error) {
	if h == 0 {
		return v, fmt.Errorf("%w: null", errInvalidHandle)
	}
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("%w: %#x", errInvalidHandle, h)
		}
	}()
	val := cgo.Handle(h).Value()
	v, ok := val.(T)
	if !ok {
		return v, fmt.Errorf("%w: %#x holds %T", errInvalidHandle, h, val)
	}
	return v, nil
}

// deleteHandle releases h. Zero and already released handles are ignored.
func deleteHandle(h uintptr) {
	if h == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("handle", h).Debug("delete of released handle")
		}
	}()
	cgo.Handle(h).Delete()
}

// protect runs fn and turns a panic into an unspecified error so that no
// panic crosses into C.
func protect(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &exr.UnspecifiedError{Op: op, Msg: fmt.Sprint("internal failure: ", r)}
			log.WithField("op", op).WithField("panic", r).Debug("recovered panic")
		}
	}()
	return fn()
}

// marshal splits err into the status, OS code and message reported to C.
// System errors carry only a code.
func marshal(err error) (status exr.Status, code int, msg string) {
	status, code, msg = exr.StatusOf(err)
	if status != exr.StatusUnspecified {
		msg = ""
	}
	return status, code, msg
}
