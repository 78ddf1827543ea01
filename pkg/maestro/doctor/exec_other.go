//go:build !unix

package doctor

import "os"

func executable(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().Perm()&0o111 != 0
}
