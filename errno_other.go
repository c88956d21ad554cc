//go:build !unix

package exr

func errnoName(code int) string {
	return "unknown"
}
