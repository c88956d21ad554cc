package exr

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   Status
		code     int
		contains string
	}{
		{"nil", nil, StatusOK, 0, ""},
		{"system", &SystemError{Op: "read", Code: 5}, StatusSystem, 5, "errno 5"},
		{"wrapped system", fmt.Errorf("read chunk 3: %w", &SystemError{Op: "read", Code: 28}), StatusSystem, 28, "read chunk 3"},
		{"unspecified", &UnspecifiedError{Op: "open", Msg: "bad"}, StatusUnspecified, 0, "open: bad"},
		{"plain", ErrTruncatedData, StatusUnspecified, 0, "truncated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := StatusOf(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("StatusOf = (%v, %d), want (%v, %d)", status, code, tt.status, tt.code)
			}
			if !strings.Contains(msg, tt.contains) {
				t.Errorf("message %q does not contain %q", msg, tt.contains)
			}
		})
	}
}

func TestSystemErrorUnwrapsToErrno(t *testing.T) {
	err := fmt.Errorf("outer: %w", &SystemError{Op: "seek", Code: int(syscall.EIO)})
	if !errors.Is(err, syscall.EIO) {
		t.Errorf("errors.Is(%v, EIO) = false", err)
	}
}

func TestStatusErrorMapping(t *testing.T) {
	if err := statusError("read", StatusOK, 9); err != nil {
		t.Fatalf("StatusOK gave %v", err)
	}
	var se *SystemError
	if err := statusError("read", StatusSystem, 9); !errors.As(err, &se) || se.Code != 9 {
		t.Errorf("StatusSystem gave %v", err)
	}
	for _, s := range []Status{StatusUnspecified, 7, -1} {
		var ue *UnspecifiedError
		if err := statusError("read", s, 9); !errors.As(err, &ue) {
			t.Errorf("status %d gave %T, want *UnspecifiedError", s, err)
		}
	}
}

func TestGuardRecoversPanic(t *testing.T) {
	f := func() (err error) {
		defer guard("explode", &err)
		var s []int
		_ = s[3]
		return nil
	}
	err := f()
	var ue *UnspecifiedError
	if !errors.As(err, &ue) {
		t.Fatalf("got %T %v, want *UnspecifiedError", err, err)
	}
	if ue.Op != "explode" || !strings.Contains(ue.Msg, "index out of range") {
		t.Errorf("unexpected error %v", ue)
	}
}

func TestUnspecifiedKeepsBoundaryErrors(t *testing.T) {
	se := &SystemError{Op: "write", Code: 32}
	if got := unspecified("op", se); got != se {
		t.Errorf("unspecified rewrapped a *SystemError: %v", got)
	}
	got := unspecified("op", ErrClosed)
	var ue *UnspecifiedError
	if !errors.As(got, &ue) || !errors.Is(got, ErrClosed) {
		t.Errorf("unspecified(ErrClosed) = %v", got)
	}
}
