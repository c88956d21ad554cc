package exr

import (
	"errors"
	"os"
	"syscall"
)

// osError converts an error from the os package into a boundary error,
// keeping the errno when there is one.
func osError(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &SystemError{Op: op, Code: int(errno)}
	}
	return &UnspecifiedError{Op: op, Msg: err.Error(), Err: err}
}

func openFileStream(path string) (*os.File, *CallbackIStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, osError("open "+path, err)
	}
	s, err := NewCallbackIStream(ReadSeekerCallbacks(f))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, s, nil
}

func createFileStream(path string) (*os.File, *CallbackOStream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, osError("create "+path, err)
	}
	s, err := NewCallbackOStream(WriteSeekerCallbacks(f))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, s, nil
}
