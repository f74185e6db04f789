package fileutil

import (
	"fmt"
	"io"
	"os"
)

// WriteFile writes data to dst with default permissions (0o644), truncating
// any existing file.
func WriteFile(dst string, data []byte) error {
	return WriteFileMode(dst, data, 0o644)
}

// WriteFileMode writes data to dst, setting the given file mode on creation.
// The handle is closed on every path and a close error is reported.
func WriteFileMode(dst string, data []byte, mode os.FileMode) error {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := out.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return out.Close()
}

// EnsureDir creates dir and any missing parents. It fails when dir exists but
// is not a directory.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
