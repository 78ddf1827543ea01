package merge

import (
	"errors"
	"os"
)

// ReadText loads a text artifact with the same fail-soft rules as
// ReadSettings: anything that cannot be read is treated as empty.
func ReadText(path string) (string, FileState) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", FileMissing
		}
		logger.Warn("unreadable text file treated as empty", "path", path, "err", err)
		return "", FileInvalid
	}
	return string(data), FileLoaded
}
