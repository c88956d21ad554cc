//go:build unix

package exr

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func errnoName(code int) string {
	if name := unix.ErrnoName(syscall.Errno(code)); name != "" {
		return name
	}
	return "unknown"
}
