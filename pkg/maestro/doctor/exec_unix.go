//go:build unix

package doctor

import "golang.org/x/sys/unix"

// executable reports whether the current user may execute p.
func executable(p string) bool {
	return unix.Access(p, unix.X_OK) == nil
}
