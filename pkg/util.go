package pkg

import (
	"os"
	"unsafe"
)

// BytesToString converts bytes slice to a string without extra allocation
func BytesToString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}

// PathExists returns whether the given file or directory exists.
// A path of the other kind (a file when looking for a dir, or vice versa) is reported as an error.
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	switch {
	case isDir && !stat.IsDir():
		return false, &os.PathError{Op: "stat", Path: path, Err: errNotADirectory}
	case !isDir && stat.IsDir():
		return false, &os.PathError{Op: "stat", Path: path, Err: errIsADirectory}
	}
	return true, nil
}
